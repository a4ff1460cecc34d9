package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/petrodeal/docgen-cli/internal/db"
	"github.com/petrodeal/docgen-cli/internal/model"
)

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool    db.Pool
	closeFn func()
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// preparedStatements lists queries to prepare on each new connection for
// faster execution of the hottest store operations.
var preparedStatements = map[string]string{
	"get_template":  `SELECT id, title, description, file_name, content_ref, subscription_tier, placeholders, active, created_at, updated_at FROM document_templates WHERE id = $1`,
	"get_aliases":   `SELECT placeholder_key, field FROM template_aliases WHERE template_id = $1`,
	"get_vessel":    `SELECT id, name, imo, mmsi, callsign, flag, vessel_type, built, deadweight, length, width, draught, gross_tonnage, cargo_capacity, owner_name, operator_name, destination FROM vessels WHERE id = $1`,
	"get_port":      `SELECT id, name, country, city, region, port_type, port_authority, capacity, max_draught, berth_count, email, phone, address FROM ports WHERE id = $1`,
	"get_refinery":  `SELECT id, name, country, city, region, refinery_type, operator, owner, processing_capacity, storage_capacity, year_built, products FROM refineries WHERE id = $1`,
	"get_company":   `SELECT id, name, trade_name, country, city, address, email, phone, website, registration_number, representative_name, industry, founded_year, employees_count FROM companies WHERE id = $1`,
	"save_document": `INSERT INTO generated_documents (id, template_id, entity_refs, encodings, byte_refs, encoding_errors, filled, fallback, status, completed_at) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(10)
	minConns := int32(2)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pgxCfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		for name, sql := range preparedStatements {
			if _, err := conn.Prepare(ctx, name, sql); err != nil {
				return eris.Wrapf(err, "postgres: prepare %s", name)
			}
		}
		return nil
	}

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

// NewPostgresWithPool wraps an existing pool. Used by tests with pgxmock.
func NewPostgresWithPool(pool db.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS document_templates (
	id                TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	title             TEXT NOT NULL,
	description       TEXT NOT NULL DEFAULT '',
	file_name         TEXT NOT NULL,
	content_ref       TEXT NOT NULL,
	subscription_tier TEXT NOT NULL DEFAULT 'basic',
	placeholders      JSONB NOT NULL DEFAULT '[]',
	active            BOOLEAN NOT NULL DEFAULT true,
	created_at        TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at        TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS template_aliases (
	template_id     TEXT NOT NULL REFERENCES document_templates(id),
	placeholder_key TEXT NOT NULL,
	field           TEXT NOT NULL,
	revision        INTEGER NOT NULL DEFAULT 1,
	updated_at      TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (template_id, placeholder_key)
);

CREATE TABLE IF NOT EXISTS ai_suggestions (
	id           TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	template_id  TEXT NOT NULL REFERENCES document_templates(id),
	placeholder  TEXT NOT NULL,
	field        TEXT NOT NULL,
	confidence   INTEGER NOT NULL DEFAULT 0,
	reasoning    TEXT NOT NULL DEFAULT '',
	state        TEXT NOT NULL DEFAULT 'suggested',
	custom_field TEXT NOT NULL DEFAULT '',
	created_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
	reviewed_at  TIMESTAMPTZ
);

CREATE TABLE IF NOT EXISTS generated_documents (
	id              TEXT PRIMARY KEY,
	template_id     TEXT NOT NULL REFERENCES document_templates(id),
	entity_refs     JSONB NOT NULL DEFAULT '[]',
	encodings       JSONB NOT NULL DEFAULT '[]',
	byte_refs       JSONB NOT NULL DEFAULT '{}',
	encoding_errors JSONB NOT NULL DEFAULT '{}',
	filled          INTEGER NOT NULL DEFAULT 0,
	fallback        INTEGER NOT NULL DEFAULT 0,
	status          TEXT NOT NULL,
	completed_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS validation_reports (
	id              TEXT PRIMARY KEY,
	template_id     TEXT NOT NULL REFERENCES document_templates(id),
	template_title  TEXT NOT NULL DEFAULT '',
	stages          JSONB NOT NULL DEFAULT '[]',
	issues          JSONB NOT NULL DEFAULT '[]',
	recommendations JSONB NOT NULL DEFAULT '[]',
	coverage_pct    DOUBLE PRECISION NOT NULL DEFAULT 0,
	score           INTEGER NOT NULL DEFAULT 0,
	overall_status  TEXT NOT NULL,
	created_at      TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS vessels (
	id             BIGINT PRIMARY KEY,
	name           TEXT NOT NULL,
	imo            TEXT NOT NULL DEFAULT '',
	mmsi           TEXT NOT NULL DEFAULT '',
	callsign       TEXT NOT NULL DEFAULT '',
	flag           TEXT NOT NULL DEFAULT '',
	vessel_type    TEXT NOT NULL DEFAULT '',
	built          INTEGER NOT NULL DEFAULT 0,
	deadweight     BIGINT NOT NULL DEFAULT 0,
	length         DOUBLE PRECISION NOT NULL DEFAULT 0,
	width          DOUBLE PRECISION NOT NULL DEFAULT 0,
	draught        DOUBLE PRECISION NOT NULL DEFAULT 0,
	gross_tonnage  BIGINT NOT NULL DEFAULT 0,
	cargo_capacity BIGINT NOT NULL DEFAULT 0,
	owner_name     TEXT NOT NULL DEFAULT '',
	operator_name  TEXT NOT NULL DEFAULT '',
	destination    TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS ports (
	id             BIGINT PRIMARY KEY,
	name           TEXT NOT NULL,
	country        TEXT NOT NULL DEFAULT '',
	city           TEXT NOT NULL DEFAULT '',
	region         TEXT NOT NULL DEFAULT '',
	port_type      TEXT NOT NULL DEFAULT '',
	port_authority TEXT NOT NULL DEFAULT '',
	capacity       BIGINT NOT NULL DEFAULT 0,
	max_draught    DOUBLE PRECISION NOT NULL DEFAULT 0,
	berth_count    INTEGER NOT NULL DEFAULT 0,
	email          TEXT NOT NULL DEFAULT '',
	phone          TEXT NOT NULL DEFAULT '',
	address        TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS refineries (
	id                  BIGINT PRIMARY KEY,
	name                TEXT NOT NULL,
	country             TEXT NOT NULL DEFAULT '',
	city                TEXT NOT NULL DEFAULT '',
	region              TEXT NOT NULL DEFAULT '',
	refinery_type       TEXT NOT NULL DEFAULT '',
	operator            TEXT NOT NULL DEFAULT '',
	owner               TEXT NOT NULL DEFAULT '',
	processing_capacity BIGINT NOT NULL DEFAULT 0,
	storage_capacity    BIGINT NOT NULL DEFAULT 0,
	year_built          INTEGER NOT NULL DEFAULT 0,
	products            TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS companies (
	id                  BIGINT PRIMARY KEY,
	name                TEXT NOT NULL,
	trade_name          TEXT NOT NULL DEFAULT '',
	country             TEXT NOT NULL DEFAULT '',
	city                TEXT NOT NULL DEFAULT '',
	address             TEXT NOT NULL DEFAULT '',
	email               TEXT NOT NULL DEFAULT '',
	phone               TEXT NOT NULL DEFAULT '',
	website             TEXT NOT NULL DEFAULT '',
	registration_number TEXT NOT NULL DEFAULT '',
	representative_name TEXT NOT NULL DEFAULT '',
	industry            TEXT NOT NULL DEFAULT '',
	founded_year        INTEGER NOT NULL DEFAULT 0,
	employees_count     INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_templates_active ON document_templates(active);
CREATE INDEX IF NOT EXISTS idx_templates_tier ON document_templates(subscription_tier);
CREATE INDEX IF NOT EXISTS idx_suggestions_template ON ai_suggestions(template_id);
CREATE INDEX IF NOT EXISTS idx_suggestions_state ON ai_suggestions(template_id, state);
CREATE INDEX IF NOT EXISTS idx_documents_template ON generated_documents(template_id);
CREATE INDEX IF NOT EXISTS idx_reports_template ON validation_reports(template_id);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, "SELECT 1")
	return eris.Wrap(err, "postgres: ping")
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

func (s *PostgresStore) CreateTemplate(ctx context.Context, t *model.Template) error {
	if t.ID == "" {
		t.ID = newID()
	}
	now := time.Now().UTC()
	t.CreatedAt = now
	t.UpdatedAt = now

	placeholdersJSON, err := json.Marshal(t.Placeholders)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal placeholders")
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO document_templates (id, title, description, file_name, content_ref, subscription_tier, placeholders, active, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		t.ID, t.Title, t.Description, t.FileName, t.ContentRef, string(t.Tier), placeholdersJSON, t.Active, now, now,
	)
	return eris.Wrap(err, "postgres: insert template")
}

func (s *PostgresStore) GetTemplate(ctx context.Context, id string) (*model.Template, error) {
	var t model.Template
	var placeholdersJSON []byte

	err := s.pool.QueryRow(ctx,
		`SELECT id, title, description, file_name, content_ref, subscription_tier, placeholders, active, created_at, updated_at
		 FROM document_templates WHERE id = $1`,
		id,
	).Scan(&t.ID, &t.Title, &t.Description, &t.FileName, &t.ContentRef, &t.Tier, &placeholdersJSON, &t.Active, &t.CreatedAt, &t.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, eris.Wrapf(model.ErrTemplateNotFound, "postgres: template %s", id)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get template %s", id)
	}

	if err := json.Unmarshal(placeholdersJSON, &t.Placeholders); err != nil {
		return nil, eris.Wrap(err, "postgres: unmarshal placeholders")
	}

	aliases, err := s.GetAliases(ctx, id)
	if err != nil {
		return nil, err
	}
	t.FieldMappings = aliases
	return &t, nil
}

func (s *PostgresStore) ListTemplates(ctx context.Context, filter TemplateFilter) ([]model.Template, error) {
	query := `SELECT id, title, description, file_name, content_ref, subscription_tier, placeholders, active, created_at, updated_at
	 FROM document_templates WHERE true`
	args := []any{}
	argIdx := 1

	if filter.Tier != "" {
		query += fmt.Sprintf(` AND subscription_tier = $%d`, argIdx)
		args = append(args, string(filter.Tier))
		argIdx++
	}
	if filter.ActiveOnly {
		query += ` AND active`
	}
	query += ` ORDER BY created_at DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query += fmt.Sprintf(` LIMIT $%d`, argIdx)
	args = append(args, limit)
	argIdx++

	if filter.Offset > 0 {
		query += fmt.Sprintf(` OFFSET $%d`, argIdx)
		args = append(args, filter.Offset)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list templates")
	}
	defer rows.Close()

	var templates []model.Template
	for rows.Next() {
		var t model.Template
		var placeholdersJSON []byte
		if err := rows.Scan(&t.ID, &t.Title, &t.Description, &t.FileName, &t.ContentRef, &t.Tier, &placeholdersJSON, &t.Active, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan template")
		}
		if err := json.Unmarshal(placeholdersJSON, &t.Placeholders); err != nil {
			return nil, eris.Wrap(err, "postgres: unmarshal placeholders")
		}
		templates = append(templates, t)
	}
	return templates, eris.Wrap(rows.Err(), "postgres: list templates rows")
}

func (s *PostgresStore) UpdateTemplateAnalysis(ctx context.Context, id string, placeholders []string, mappings map[string]string) error {
	placeholdersJSON, err := json.Marshal(placeholders)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal placeholders")
	}

	tag, err := s.pool.Exec(ctx,
		`UPDATE document_templates SET placeholders = $1, updated_at = $2 WHERE id = $3`,
		placeholdersJSON, time.Now().UTC(), id,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: update template analysis %s", id)
	}
	if tag.RowsAffected() == 0 {
		return eris.Wrapf(model.ErrTemplateNotFound, "postgres: template %s", id)
	}

	if len(mappings) > 0 {
		return s.UpsertAliases(ctx, id, mappings)
	}
	return nil
}

func (s *PostgresStore) SetTemplateActive(ctx context.Context, id string, active bool) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE document_templates SET active = $1, updated_at = $2 WHERE id = $3`,
		active, time.Now().UTC(), id,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: set template active %s", id)
	}
	if tag.RowsAffected() == 0 {
		return eris.Wrapf(model.ErrTemplateNotFound, "postgres: template %s", id)
	}
	return nil
}

func (s *PostgresStore) GetAliases(ctx context.Context, templateID string) (map[string]string, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT placeholder_key, field FROM template_aliases WHERE template_id = $1`,
		templateID,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get aliases %s", templateID)
	}
	defer rows.Close()

	aliases := make(map[string]string)
	for rows.Next() {
		var key, field string
		if err := rows.Scan(&key, &field); err != nil {
			return nil, eris.Wrap(err, "postgres: scan alias")
		}
		aliases[key] = field
	}
	return aliases, eris.Wrap(rows.Err(), "postgres: alias rows")
}

// UpsertAliases writes the given placeholder→field mappings in one
// transaction. A re-approved placeholder replaces its row and bumps the
// revision; either every mapping lands or none do.
func (s *PostgresStore) UpsertAliases(ctx context.Context, templateID string, aliases map[string]string) error {
	if len(aliases) == 0 {
		return nil
	}
	err := db.WithTx(ctx, s.pool, func(tx pgx.Tx) error {
		for key, field := range aliases {
			_, err := tx.Exec(ctx,
				`INSERT INTO template_aliases (template_id, placeholder_key, field, revision, updated_at)
				 VALUES ($1, $2, $3, 1, $4)
				 ON CONFLICT (template_id, placeholder_key)
				 DO UPDATE SET field = EXCLUDED.field, revision = template_aliases.revision + 1, updated_at = EXCLUDED.updated_at`,
				templateID, model.NormalizeKey(key), field, time.Now().UTC(),
			)
			if err != nil {
				return eris.Wrapf(err, "postgres: upsert alias %s", key)
			}
		}
		return nil
	})
	return err
}

func (s *PostgresStore) CreateSuggestions(ctx context.Context, suggestions []model.Suggestion) error {
	if len(suggestions) == 0 {
		return nil
	}
	return db.WithTx(ctx, s.pool, func(tx pgx.Tx) error {
		for i := range suggestions {
			sg := &suggestions[i]
			if sg.ID == "" {
				sg.ID = newID()
			}
			if sg.State == "" {
				sg.State = model.SuggestionSuggested
			}
			if sg.CreatedAt.IsZero() {
				sg.CreatedAt = time.Now().UTC()
			}
			_, err := tx.Exec(ctx,
				`INSERT INTO ai_suggestions (id, template_id, placeholder, field, confidence, reasoning, state, custom_field, created_at)
				 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
				sg.ID, sg.TemplateID, sg.Placeholder, sg.Field, sg.Confidence, sg.Reasoning, string(sg.State), sg.CustomField, sg.CreatedAt,
			)
			if err != nil {
				return eris.Wrapf(err, "postgres: insert suggestion %s", sg.Placeholder)
			}
		}
		return nil
	})
}

func (s *PostgresStore) GetSuggestion(ctx context.Context, id string) (*model.Suggestion, error) {
	var sg model.Suggestion
	err := s.pool.QueryRow(ctx,
		`SELECT id, template_id, placeholder, field, confidence, reasoning, state, custom_field, created_at, reviewed_at
		 FROM ai_suggestions WHERE id = $1`,
		id,
	).Scan(&sg.ID, &sg.TemplateID, &sg.Placeholder, &sg.Field, &sg.Confidence, &sg.Reasoning, &sg.State, &sg.CustomField, &sg.CreatedAt, &sg.ReviewedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, eris.Wrapf(err, "postgres: suggestion not found %s", id)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get suggestion %s", id)
	}
	return &sg, nil
}

func (s *PostgresStore) ListSuggestions(ctx context.Context, templateID string, state model.SuggestionState) ([]model.Suggestion, error) {
	query := `SELECT id, template_id, placeholder, field, confidence, reasoning, state, custom_field, created_at, reviewed_at
	 FROM ai_suggestions WHERE template_id = $1`
	args := []any{templateID}
	if state != "" {
		query += ` AND state = $2`
		args = append(args, string(state))
	}
	query += ` ORDER BY created_at, placeholder`

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: list suggestions %s", templateID)
	}
	defer rows.Close()

	var out []model.Suggestion
	for rows.Next() {
		var sg model.Suggestion
		if err := rows.Scan(&sg.ID, &sg.TemplateID, &sg.Placeholder, &sg.Field, &sg.Confidence, &sg.Reasoning, &sg.State, &sg.CustomField, &sg.CreatedAt, &sg.ReviewedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan suggestion")
		}
		out = append(out, sg)
	}
	return out, eris.Wrap(rows.Err(), "postgres: suggestion rows")
}

func (s *PostgresStore) UpdateSuggestion(ctx context.Context, sg *model.Suggestion) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE ai_suggestions SET field = $1, state = $2, custom_field = $3, reviewed_at = $4 WHERE id = $5`,
		sg.Field, string(sg.State), sg.CustomField, sg.ReviewedAt, sg.ID,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: update suggestion %s", sg.ID)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("postgres: suggestion not found: %s", sg.ID)
	}
	return nil
}

func (s *PostgresStore) GetVessel(ctx context.Context, id int64) (*model.Vessel, error) {
	var v model.Vessel
	err := s.pool.QueryRow(ctx,
		`SELECT id, name, imo, mmsi, callsign, flag, vessel_type, built, deadweight, length, width, draught, gross_tonnage, cargo_capacity, owner_name, operator_name, destination
		 FROM vessels WHERE id = $1`,
		id,
	).Scan(&v.ID, &v.Name, &v.IMO, &v.MMSI, &v.Callsign, &v.Flag, &v.Type, &v.Built, &v.Deadweight, &v.Length, &v.Width, &v.Draught, &v.GrossTonnage, &v.CargoCapacity, &v.OwnerName, &v.OperatorName, &v.Destination)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, eris.Wrapf(model.ErrEntityNotFound, "postgres: vessel %d", id)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get vessel %d", id)
	}
	return &v, nil
}

func (s *PostgresStore) GetPort(ctx context.Context, id int64) (*model.Port, error) {
	var p model.Port
	err := s.pool.QueryRow(ctx,
		`SELECT id, name, country, city, region, port_type, port_authority, capacity, max_draught, berth_count, email, phone, address
		 FROM ports WHERE id = $1`,
		id,
	).Scan(&p.ID, &p.Name, &p.Country, &p.City, &p.Region, &p.Type, &p.Authority, &p.Capacity, &p.MaxDraught, &p.BerthCount, &p.Email, &p.Phone, &p.Address)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, eris.Wrapf(model.ErrEntityNotFound, "postgres: port %d", id)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get port %d", id)
	}
	return &p, nil
}

func (s *PostgresStore) GetRefinery(ctx context.Context, id int64) (*model.Refinery, error) {
	var r model.Refinery
	err := s.pool.QueryRow(ctx,
		`SELECT id, name, country, city, region, refinery_type, operator, owner, processing_capacity, storage_capacity, year_built, products
		 FROM refineries WHERE id = $1`,
		id,
	).Scan(&r.ID, &r.Name, &r.Country, &r.City, &r.Region, &r.Type, &r.Operator, &r.Owner, &r.ProcessingCapacity, &r.StorageCapacity, &r.YearBuilt, &r.Products)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, eris.Wrapf(model.ErrEntityNotFound, "postgres: refinery %d", id)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get refinery %d", id)
	}
	return &r, nil
}

func (s *PostgresStore) GetCompany(ctx context.Context, id int64) (*model.Company, error) {
	var c model.Company
	err := s.pool.QueryRow(ctx,
		`SELECT id, name, trade_name, country, city, address, email, phone, website, registration_number, representative_name, industry, founded_year, employees_count
		 FROM companies WHERE id = $1`,
		id,
	).Scan(&c.ID, &c.Name, &c.TradeName, &c.Country, &c.City, &c.Address, &c.Email, &c.Phone, &c.Website, &c.RegistrationNumber, &c.RepresentativeName, &c.Industry, &c.FoundedYear, &c.EmployeesCount)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, eris.Wrapf(model.ErrEntityNotFound, "postgres: company %d", id)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get company %d", id)
	}
	return &c, nil
}

func (s *PostgresStore) SaveDocument(ctx context.Context, doc *model.GeneratedDocument) error {
	refsJSON, err := json.Marshal(doc.EntityRefs)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal entity refs")
	}
	encodingsJSON, err := json.Marshal(doc.Encodings)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal encodings")
	}
	byteRefsJSON, err := json.Marshal(doc.ByteRefs)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal byte refs")
	}
	errorsJSON, err := json.Marshal(doc.EncodingErrors)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal encoding errors")
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO generated_documents (id, template_id, entity_refs, encodings, byte_refs, encoding_errors, filled, fallback, status, completed_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		doc.ID, doc.TemplateID, refsJSON, encodingsJSON, byteRefsJSON, errorsJSON, doc.Filled, doc.Fallback, string(doc.Status), doc.CompletedAt,
	)
	return eris.Wrap(err, "postgres: insert document")
}

func (s *PostgresStore) GetDocument(ctx context.Context, id string) (*model.GeneratedDocument, error) {
	var doc model.GeneratedDocument
	var refsJSON, encodingsJSON, byteRefsJSON, errorsJSON []byte

	err := s.pool.QueryRow(ctx,
		`SELECT id, template_id, entity_refs, encodings, byte_refs, encoding_errors, filled, fallback, status, completed_at
		 FROM generated_documents WHERE id = $1`,
		id,
	).Scan(&doc.ID, &doc.TemplateID, &refsJSON, &encodingsJSON, &byteRefsJSON, &errorsJSON, &doc.Filled, &doc.Fallback, &doc.Status, &doc.CompletedAt)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get document %s", id)
	}

	for _, pair := range []struct {
		data []byte
		dst  any
	}{
		{refsJSON, &doc.EntityRefs},
		{encodingsJSON, &doc.Encodings},
		{byteRefsJSON, &doc.ByteRefs},
		{errorsJSON, &doc.EncodingErrors},
	} {
		if err := json.Unmarshal(pair.data, pair.dst); err != nil {
			return nil, eris.Wrap(err, "postgres: unmarshal document")
		}
	}
	return &doc, nil
}

func (s *PostgresStore) ListDocuments(ctx context.Context, templateID string, limit int) ([]model.GeneratedDocument, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.pool.Query(ctx,
		`SELECT id, template_id, entity_refs, encodings, byte_refs, encoding_errors, filled, fallback, status, completed_at
		 FROM generated_documents WHERE template_id = $1 ORDER BY completed_at DESC LIMIT $2`,
		templateID, limit,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list documents")
	}
	defer rows.Close()

	var docs []model.GeneratedDocument
	for rows.Next() {
		var doc model.GeneratedDocument
		var refsJSON, encodingsJSON, byteRefsJSON, errorsJSON []byte
		if err := rows.Scan(&doc.ID, &doc.TemplateID, &refsJSON, &encodingsJSON, &byteRefsJSON, &errorsJSON, &doc.Filled, &doc.Fallback, &doc.Status, &doc.CompletedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan document")
		}
		json.Unmarshal(refsJSON, &doc.EntityRefs)
		json.Unmarshal(encodingsJSON, &doc.Encodings)
		json.Unmarshal(byteRefsJSON, &doc.ByteRefs)
		json.Unmarshal(errorsJSON, &doc.EncodingErrors)
		docs = append(docs, doc)
	}
	return docs, eris.Wrap(rows.Err(), "postgres: document rows")
}

func (s *PostgresStore) SaveReport(ctx context.Context, report *model.ValidationReport) error {
	if report.ID == "" {
		report.ID = newID()
	}
	if report.CreatedAt.IsZero() {
		report.CreatedAt = time.Now().UTC()
	}

	stagesJSON, err := json.Marshal(report.Stages)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal stages")
	}
	issuesJSON, err := json.Marshal(report.Issues)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal issues")
	}
	recsJSON, err := json.Marshal(report.Recommendations)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal recommendations")
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO validation_reports (id, template_id, template_title, stages, issues, recommendations, coverage_pct, score, overall_status, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		report.ID, report.TemplateID, report.TemplateTitle, stagesJSON, issuesJSON, recsJSON, report.CoveragePct, report.Score, string(report.OverallStatus), report.CreatedAt,
	)
	return eris.Wrap(err, "postgres: insert report")
}

func (s *PostgresStore) ListReports(ctx context.Context, templateID string, limit int) ([]model.ValidationReport, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.pool.Query(ctx,
		`SELECT id, template_id, template_title, stages, issues, recommendations, coverage_pct, score, overall_status, created_at
		 FROM validation_reports WHERE template_id = $1 ORDER BY created_at DESC LIMIT $2`,
		templateID, limit,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list reports")
	}
	defer rows.Close()

	var reports []model.ValidationReport
	for rows.Next() {
		var r model.ValidationReport
		var stagesJSON, issuesJSON, recsJSON []byte
		if err := rows.Scan(&r.ID, &r.TemplateID, &r.TemplateTitle, &stagesJSON, &issuesJSON, &recsJSON, &r.CoveragePct, &r.Score, &r.OverallStatus, &r.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan report")
		}
		json.Unmarshal(stagesJSON, &r.Stages)
		json.Unmarshal(issuesJSON, &r.Issues)
		json.Unmarshal(recsJSON, &r.Recommendations)
		reports = append(reports, r)
	}
	return reports, eris.Wrap(rows.Err(), "postgres: report rows")
}
