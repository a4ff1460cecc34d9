package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/petrodeal/docgen-cli/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite. Used for local
// development and single-node deployments.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS document_templates (
	id                TEXT PRIMARY KEY,
	title             TEXT NOT NULL,
	description       TEXT NOT NULL DEFAULT '',
	file_name         TEXT NOT NULL,
	content_ref       TEXT NOT NULL,
	subscription_tier TEXT NOT NULL DEFAULT 'basic',
	placeholders      TEXT NOT NULL DEFAULT '[]',
	active            INTEGER NOT NULL DEFAULT 1,
	created_at        DATETIME NOT NULL DEFAULT (datetime('now')),
	updated_at        DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS template_aliases (
	template_id     TEXT NOT NULL REFERENCES document_templates(id),
	placeholder_key TEXT NOT NULL,
	field           TEXT NOT NULL,
	revision        INTEGER NOT NULL DEFAULT 1,
	updated_at      DATETIME NOT NULL DEFAULT (datetime('now')),
	PRIMARY KEY (template_id, placeholder_key)
);

CREATE TABLE IF NOT EXISTS ai_suggestions (
	id           TEXT PRIMARY KEY,
	template_id  TEXT NOT NULL REFERENCES document_templates(id),
	placeholder  TEXT NOT NULL,
	field        TEXT NOT NULL,
	confidence   INTEGER NOT NULL DEFAULT 0,
	reasoning    TEXT NOT NULL DEFAULT '',
	state        TEXT NOT NULL DEFAULT 'suggested',
	custom_field TEXT NOT NULL DEFAULT '',
	created_at   DATETIME NOT NULL DEFAULT (datetime('now')),
	reviewed_at  DATETIME
);

CREATE TABLE IF NOT EXISTS generated_documents (
	id              TEXT PRIMARY KEY,
	template_id     TEXT NOT NULL REFERENCES document_templates(id),
	entity_refs     TEXT NOT NULL DEFAULT '[]',
	encodings       TEXT NOT NULL DEFAULT '[]',
	byte_refs       TEXT NOT NULL DEFAULT '{}',
	encoding_errors TEXT NOT NULL DEFAULT '{}',
	filled          INTEGER NOT NULL DEFAULT 0,
	fallback        INTEGER NOT NULL DEFAULT 0,
	status          TEXT NOT NULL,
	completed_at    DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS validation_reports (
	id              TEXT PRIMARY KEY,
	template_id     TEXT NOT NULL REFERENCES document_templates(id),
	template_title  TEXT NOT NULL DEFAULT '',
	stages          TEXT NOT NULL DEFAULT '[]',
	issues          TEXT NOT NULL DEFAULT '[]',
	recommendations TEXT NOT NULL DEFAULT '[]',
	coverage_pct    REAL NOT NULL DEFAULT 0,
	score           INTEGER NOT NULL DEFAULT 0,
	overall_status  TEXT NOT NULL,
	created_at      DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS vessels (
	id             INTEGER PRIMARY KEY,
	name           TEXT NOT NULL,
	imo            TEXT NOT NULL DEFAULT '',
	mmsi           TEXT NOT NULL DEFAULT '',
	callsign       TEXT NOT NULL DEFAULT '',
	flag           TEXT NOT NULL DEFAULT '',
	vessel_type    TEXT NOT NULL DEFAULT '',
	built          INTEGER NOT NULL DEFAULT 0,
	deadweight     INTEGER NOT NULL DEFAULT 0,
	length         REAL NOT NULL DEFAULT 0,
	width          REAL NOT NULL DEFAULT 0,
	draught        REAL NOT NULL DEFAULT 0,
	gross_tonnage  INTEGER NOT NULL DEFAULT 0,
	cargo_capacity INTEGER NOT NULL DEFAULT 0,
	owner_name     TEXT NOT NULL DEFAULT '',
	operator_name  TEXT NOT NULL DEFAULT '',
	destination    TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS ports (
	id             INTEGER PRIMARY KEY,
	name           TEXT NOT NULL,
	country        TEXT NOT NULL DEFAULT '',
	city           TEXT NOT NULL DEFAULT '',
	region         TEXT NOT NULL DEFAULT '',
	port_type      TEXT NOT NULL DEFAULT '',
	port_authority TEXT NOT NULL DEFAULT '',
	capacity       INTEGER NOT NULL DEFAULT 0,
	max_draught    REAL NOT NULL DEFAULT 0,
	berth_count    INTEGER NOT NULL DEFAULT 0,
	email          TEXT NOT NULL DEFAULT '',
	phone          TEXT NOT NULL DEFAULT '',
	address        TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS refineries (
	id                  INTEGER PRIMARY KEY,
	name                TEXT NOT NULL,
	country             TEXT NOT NULL DEFAULT '',
	city                TEXT NOT NULL DEFAULT '',
	region              TEXT NOT NULL DEFAULT '',
	refinery_type       TEXT NOT NULL DEFAULT '',
	operator            TEXT NOT NULL DEFAULT '',
	owner               TEXT NOT NULL DEFAULT '',
	processing_capacity INTEGER NOT NULL DEFAULT 0,
	storage_capacity    INTEGER NOT NULL DEFAULT 0,
	year_built          INTEGER NOT NULL DEFAULT 0,
	products            TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS companies (
	id                  INTEGER PRIMARY KEY,
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
CREATE INDEX IF NOT EXISTS idx_suggestions_template ON ai_suggestions(template_id, state);
CREATE INDEX IF NOT EXISTS idx_documents_template ON generated_documents(template_id);
CREATE INDEX IF NOT EXISTS idx_reports_template ON validation_reports(template_id);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Ping(ctx context.Context) error {
	return eris.Wrap(s.db.PingContext(ctx), "sqlite: ping")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) CreateTemplate(ctx context.Context, t *model.Template) error {
	if t.ID == "" {
		t.ID = newID()
	}
	now := time.Now().UTC()
	t.CreatedAt = now
	t.UpdatedAt = now

	placeholdersJSON, err := json.Marshal(t.Placeholders)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal placeholders")
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO document_templates (id, title, description, file_name, content_ref, subscription_tier, placeholders, active, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.Title, t.Description, t.FileName, t.ContentRef, string(t.Tier), string(placeholdersJSON), boolToInt(t.Active), now, now,
	)
	return eris.Wrap(err, "sqlite: insert template")
}

func (s *SQLiteStore) GetTemplate(ctx context.Context, id string) (*model.Template, error) {
	var t model.Template
	var placeholdersJSON string
	var active int

	err := s.db.QueryRowContext(ctx,
		`SELECT id, title, description, file_name, content_ref, subscription_tier, placeholders, active, created_at, updated_at
		 FROM document_templates WHERE id = ?`,
		id,
	).Scan(&t.ID, &t.Title, &t.Description, &t.FileName, &t.ContentRef, &t.Tier, &placeholdersJSON, &active, &t.CreatedAt, &t.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, eris.Wrapf(model.ErrTemplateNotFound, "sqlite: template %s", id)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get template %s", id)
	}

	t.Active = active != 0
	if err := json.Unmarshal([]byte(placeholdersJSON), &t.Placeholders); err != nil {
		return nil, eris.Wrap(err, "sqlite: unmarshal placeholders")
	}

	aliases, err := s.GetAliases(ctx, id)
	if err != nil {
		return nil, err
	}
	t.FieldMappings = aliases
	return &t, nil
}

func (s *SQLiteStore) ListTemplates(ctx context.Context, filter TemplateFilter) ([]model.Template, error) {
	query := `SELECT id, title, description, file_name, content_ref, subscription_tier, placeholders, active, created_at, updated_at
	 FROM document_templates WHERE 1=1`
	args := []any{}

	if filter.Tier != "" {
		query += ` AND subscription_tier = ?`
		args = append(args, string(filter.Tier))
	}
	if filter.ActiveOnly {
		query += ` AND active = 1`
	}
	query += ` ORDER BY created_at DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query += ` LIMIT ?`
	args = append(args, limit)
	if filter.Offset > 0 {
		query += ` OFFSET ?`
		args = append(args, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list templates")
	}
	defer rows.Close()

	var templates []model.Template
	for rows.Next() {
		var t model.Template
		var placeholdersJSON string
		var active int
		if err := rows.Scan(&t.ID, &t.Title, &t.Description, &t.FileName, &t.ContentRef, &t.Tier, &placeholdersJSON, &active, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan template")
		}
		t.Active = active != 0
		if err := json.Unmarshal([]byte(placeholdersJSON), &t.Placeholders); err != nil {
			return nil, eris.Wrap(err, "sqlite: unmarshal placeholders")
		}
		templates = append(templates, t)
	}
	return templates, eris.Wrap(rows.Err(), "sqlite: template rows")
}

func (s *SQLiteStore) UpdateTemplateAnalysis(ctx context.Context, id string, placeholders []string, mappings map[string]string) error {
	placeholdersJSON, err := json.Marshal(placeholders)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal placeholders")
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE document_templates SET placeholders = ?, updated_at = ? WHERE id = ?`,
		string(placeholdersJSON), time.Now().UTC(), id,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: update template analysis %s", id)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return eris.Wrapf(model.ErrTemplateNotFound, "sqlite: template %s", id)
	}

	if len(mappings) > 0 {
		return s.UpsertAliases(ctx, id, mappings)
	}
	return nil
}

func (s *SQLiteStore) SetTemplateActive(ctx context.Context, id string, active bool) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE document_templates SET active = ?, updated_at = ? WHERE id = ?`,
		boolToInt(active), time.Now().UTC(), id,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: set template active %s", id)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return eris.Wrapf(model.ErrTemplateNotFound, "sqlite: template %s", id)
	}
	return nil
}

func (s *SQLiteStore) GetAliases(ctx context.Context, templateID string) (map[string]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT placeholder_key, field FROM template_aliases WHERE template_id = ?`,
		templateID,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get aliases %s", templateID)
	}
	defer rows.Close()

	aliases := make(map[string]string)
	for rows.Next() {
		var key, field string
		if err := rows.Scan(&key, &field); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan alias")
		}
		aliases[key] = field
	}
	return aliases, eris.Wrap(rows.Err(), "sqlite: alias rows")
}

func (s *SQLiteStore) UpsertAliases(ctx context.Context, templateID string, aliases map[string]string) error {
	if len(aliases) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "sqlite: begin tx")
	}
	defer tx.Rollback()

	for key, field := range aliases {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO template_aliases (template_id, placeholder_key, field, revision, updated_at)
			 VALUES (?, ?, ?, 1, ?)
			 ON CONFLICT (template_id, placeholder_key)
			 DO UPDATE SET field = excluded.field, revision = template_aliases.revision + 1, updated_at = excluded.updated_at`,
			templateID, model.NormalizeKey(key), field, time.Now().UTC(),
		)
		if err != nil {
			return eris.Wrapf(err, "sqlite: upsert alias %s", key)
		}
	}
	return eris.Wrap(tx.Commit(), "sqlite: commit aliases")
}

func (s *SQLiteStore) CreateSuggestions(ctx context.Context, suggestions []model.Suggestion) error {
	if len(suggestions) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "sqlite: begin tx")
	}
	defer tx.Rollback()

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
		_, err := tx.ExecContext(ctx,
			`INSERT INTO ai_suggestions (id, template_id, placeholder, field, confidence, reasoning, state, custom_field, created_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			sg.ID, sg.TemplateID, sg.Placeholder, sg.Field, sg.Confidence, sg.Reasoning, string(sg.State), sg.CustomField, sg.CreatedAt,
		)
		if err != nil {
			return eris.Wrapf(err, "sqlite: insert suggestion %s", sg.Placeholder)
		}
	}
	return eris.Wrap(tx.Commit(), "sqlite: commit suggestions")
}

func (s *SQLiteStore) GetSuggestion(ctx context.Context, id string) (*model.Suggestion, error) {
	var sg model.Suggestion
	err := s.db.QueryRowContext(ctx,
		`SELECT id, template_id, placeholder, field, confidence, reasoning, state, custom_field, created_at, reviewed_at
		 FROM ai_suggestions WHERE id = ?`,
		id,
	).Scan(&sg.ID, &sg.TemplateID, &sg.Placeholder, &sg.Field, &sg.Confidence, &sg.Reasoning, &sg.State, &sg.CustomField, &sg.CreatedAt, &sg.ReviewedAt)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get suggestion %s", id)
	}
	return &sg, nil
}

func (s *SQLiteStore) ListSuggestions(ctx context.Context, templateID string, state model.SuggestionState) ([]model.Suggestion, error) {
	query := `SELECT id, template_id, placeholder, field, confidence, reasoning, state, custom_field, created_at, reviewed_at
	 FROM ai_suggestions WHERE template_id = ?`
	args := []any{templateID}
	if state != "" {
		query += ` AND state = ?`
		args = append(args, string(state))
	}
	query += ` ORDER BY created_at, placeholder`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: list suggestions %s", templateID)
	}
	defer rows.Close()

	var out []model.Suggestion
	for rows.Next() {
		var sg model.Suggestion
		if err := rows.Scan(&sg.ID, &sg.TemplateID, &sg.Placeholder, &sg.Field, &sg.Confidence, &sg.Reasoning, &sg.State, &sg.CustomField, &sg.CreatedAt, &sg.ReviewedAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan suggestion")
		}
		out = append(out, sg)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: suggestion rows")
}

func (s *SQLiteStore) UpdateSuggestion(ctx context.Context, sg *model.Suggestion) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE ai_suggestions SET field = ?, state = ?, custom_field = ?, reviewed_at = ? WHERE id = ?`,
		sg.Field, string(sg.State), sg.CustomField, sg.ReviewedAt, sg.ID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: update suggestion %s", sg.ID)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return eris.Errorf("sqlite: suggestion not found: %s", sg.ID)
	}
	return nil
}

func (s *SQLiteStore) GetVessel(ctx context.Context, id int64) (*model.Vessel, error) {
	var v model.Vessel
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, imo, mmsi, callsign, flag, vessel_type, built, deadweight, length, width, draught, gross_tonnage, cargo_capacity, owner_name, operator_name, destination
		 FROM vessels WHERE id = ?`,
		id,
	).Scan(&v.ID, &v.Name, &v.IMO, &v.MMSI, &v.Callsign, &v.Flag, &v.Type, &v.Built, &v.Deadweight, &v.Length, &v.Width, &v.Draught, &v.GrossTonnage, &v.CargoCapacity, &v.OwnerName, &v.OperatorName, &v.Destination)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, eris.Wrapf(model.ErrEntityNotFound, "sqlite: vessel %d", id)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get vessel %d", id)
	}
	return &v, nil
}

func (s *SQLiteStore) GetPort(ctx context.Context, id int64) (*model.Port, error) {
	var p model.Port
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, country, city, region, port_type, port_authority, capacity, max_draught, berth_count, email, phone, address
		 FROM ports WHERE id = ?`,
		id,
	).Scan(&p.ID, &p.Name, &p.Country, &p.City, &p.Region, &p.Type, &p.Authority, &p.Capacity, &p.MaxDraught, &p.BerthCount, &p.Email, &p.Phone, &p.Address)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, eris.Wrapf(model.ErrEntityNotFound, "sqlite: port %d", id)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get port %d", id)
	}
	return &p, nil
}

func (s *SQLiteStore) GetRefinery(ctx context.Context, id int64) (*model.Refinery, error) {
	var r model.Refinery
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, country, city, region, refinery_type, operator, owner, processing_capacity, storage_capacity, year_built, products
		 FROM refineries WHERE id = ?`,
		id,
	).Scan(&r.ID, &r.Name, &r.Country, &r.City, &r.Region, &r.Type, &r.Operator, &r.Owner, &r.ProcessingCapacity, &r.StorageCapacity, &r.YearBuilt, &r.Products)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, eris.Wrapf(model.ErrEntityNotFound, "sqlite: refinery %d", id)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get refinery %d", id)
	}
	return &r, nil
}

func (s *SQLiteStore) GetCompany(ctx context.Context, id int64) (*model.Company, error) {
	var c model.Company
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, trade_name, country, city, address, email, phone, website, registration_number, representative_name, industry, founded_year, employees_count
		 FROM companies WHERE id = ?`,
		id,
	).Scan(&c.ID, &c.Name, &c.TradeName, &c.Country, &c.City, &c.Address, &c.Email, &c.Phone, &c.Website, &c.RegistrationNumber, &c.RepresentativeName, &c.Industry, &c.FoundedYear, &c.EmployeesCount)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, eris.Wrapf(model.ErrEntityNotFound, "sqlite: company %d", id)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get company %d", id)
	}
	return &c, nil
}

func (s *SQLiteStore) SaveDocument(ctx context.Context, doc *model.GeneratedDocument) error {
	refsJSON, _ := json.Marshal(doc.EntityRefs)
	encodingsJSON, _ := json.Marshal(doc.Encodings)
	byteRefsJSON, _ := json.Marshal(doc.ByteRefs)
	errorsJSON, _ := json.Marshal(doc.EncodingErrors)

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO generated_documents (id, template_id, entity_refs, encodings, byte_refs, encoding_errors, filled, fallback, status, completed_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		doc.ID, doc.TemplateID, string(refsJSON), string(encodingsJSON), string(byteRefsJSON), string(errorsJSON), doc.Filled, doc.Fallback, string(doc.Status), doc.CompletedAt,
	)
	return eris.Wrap(err, "sqlite: insert document")
}

func (s *SQLiteStore) GetDocument(ctx context.Context, id string) (*model.GeneratedDocument, error) {
	var doc model.GeneratedDocument
	var refsJSON, encodingsJSON, byteRefsJSON, errorsJSON string

	err := s.db.QueryRowContext(ctx,
		`SELECT id, template_id, entity_refs, encodings, byte_refs, encoding_errors, filled, fallback, status, completed_at
		 FROM generated_documents WHERE id = ?`,
		id,
	).Scan(&doc.ID, &doc.TemplateID, &refsJSON, &encodingsJSON, &byteRefsJSON, &errorsJSON, &doc.Filled, &doc.Fallback, &doc.Status, &doc.CompletedAt)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get document %s", id)
	}

	for _, pair := range []struct {
		data string
		dst  any
	}{
		{refsJSON, &doc.EntityRefs},
		{encodingsJSON, &doc.Encodings},
		{byteRefsJSON, &doc.ByteRefs},
		{errorsJSON, &doc.EncodingErrors},
	} {
		if err := json.Unmarshal([]byte(pair.data), pair.dst); err != nil {
			return nil, eris.Wrap(err, "sqlite: unmarshal document")
		}
	}
	return &doc, nil
}

func (s *SQLiteStore) ListDocuments(ctx context.Context, templateID string, limit int) ([]model.GeneratedDocument, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, template_id, entity_refs, encodings, byte_refs, encoding_errors, filled, fallback, status, completed_at
		 FROM generated_documents WHERE template_id = ? ORDER BY completed_at DESC LIMIT ?`,
		templateID, limit,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list documents")
	}
	defer rows.Close()

	var docs []model.GeneratedDocument
	for rows.Next() {
		var doc model.GeneratedDocument
		var refsJSON, encodingsJSON, byteRefsJSON, errorsJSON string
		if err := rows.Scan(&doc.ID, &doc.TemplateID, &refsJSON, &encodingsJSON, &byteRefsJSON, &errorsJSON, &doc.Filled, &doc.Fallback, &doc.Status, &doc.CompletedAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan document")
		}
		json.Unmarshal([]byte(refsJSON), &doc.EntityRefs)
		json.Unmarshal([]byte(encodingsJSON), &doc.Encodings)
		json.Unmarshal([]byte(byteRefsJSON), &doc.ByteRefs)
		json.Unmarshal([]byte(errorsJSON), &doc.EncodingErrors)
		docs = append(docs, doc)
	}
	return docs, eris.Wrap(rows.Err(), "sqlite: document rows")
}

func (s *SQLiteStore) SaveReport(ctx context.Context, report *model.ValidationReport) error {
	if report.ID == "" {
		report.ID = newID()
	}
	if report.CreatedAt.IsZero() {
		report.CreatedAt = time.Now().UTC()
	}

	stagesJSON, _ := json.Marshal(report.Stages)
	issuesJSON, _ := json.Marshal(report.Issues)
	recsJSON, _ := json.Marshal(report.Recommendations)

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO validation_reports (id, template_id, template_title, stages, issues, recommendations, coverage_pct, score, overall_status, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		report.ID, report.TemplateID, report.TemplateTitle, string(stagesJSON), string(issuesJSON), string(recsJSON), report.CoveragePct, report.Score, string(report.OverallStatus), report.CreatedAt,
	)
	return eris.Wrap(err, "sqlite: insert report")
}

func (s *SQLiteStore) ListReports(ctx context.Context, templateID string, limit int) ([]model.ValidationReport, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, template_id, template_title, stages, issues, recommendations, coverage_pct, score, overall_status, created_at
		 FROM validation_reports WHERE template_id = ? ORDER BY created_at DESC LIMIT ?`,
		templateID, limit,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list reports")
	}
	defer rows.Close()

	var reports []model.ValidationReport
	for rows.Next() {
		var r model.ValidationReport
		var stagesJSON, issuesJSON, recsJSON string
		if err := rows.Scan(&r.ID, &r.TemplateID, &r.TemplateTitle, &stagesJSON, &issuesJSON, &recsJSON, &r.CoveragePct, &r.Score, &r.OverallStatus, &r.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan report")
		}
		json.Unmarshal([]byte(stagesJSON), &r.Stages)
		json.Unmarshal([]byte(issuesJSON), &r.Issues)
		json.Unmarshal([]byte(recsJSON), &r.Recommendations)
		reports = append(reports, r)
	}
	return reports, eris.Wrap(rows.Err(), "sqlite: report rows")
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
