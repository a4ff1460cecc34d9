package store

import (
	"context"

	"github.com/google/uuid"

	"github.com/petrodeal/docgen-cli/internal/model"
)

func newID() string { return uuid.New().String() }

// TemplateFilter specifies criteria for listing templates.
type TemplateFilter struct {
	Tier       model.SubscriptionTier `json:"tier,omitempty"`
	ActiveOnly bool                   `json:"active_only,omitempty"`
	Limit      int                    `json:"limit,omitempty"`
	Offset     int                    `json:"offset,omitempty"`
}

// Store defines the persistence interface for the document platform.
type Store interface {
	// Templates
	CreateTemplate(ctx context.Context, t *model.Template) error
	GetTemplate(ctx context.Context, id string) (*model.Template, error)
	ListTemplates(ctx context.Context, filter TemplateFilter) ([]model.Template, error)
	UpdateTemplateAnalysis(ctx context.Context, id string, placeholders []string, mappings map[string]string) error
	SetTemplateActive(ctx context.Context, id string, active bool) error

	// Alias mappings
	GetAliases(ctx context.Context, templateID string) (map[string]string, error)
	UpsertAliases(ctx context.Context, templateID string, aliases map[string]string) error

	// AI suggestions
	CreateSuggestions(ctx context.Context, suggestions []model.Suggestion) error
	GetSuggestion(ctx context.Context, id string) (*model.Suggestion, error)
	ListSuggestions(ctx context.Context, templateID string, state model.SuggestionState) ([]model.Suggestion, error)
	UpdateSuggestion(ctx context.Context, s *model.Suggestion) error

	// Entities
	GetVessel(ctx context.Context, id int64) (*model.Vessel, error)
	GetPort(ctx context.Context, id int64) (*model.Port, error)
	GetRefinery(ctx context.Context, id int64) (*model.Refinery, error)
	GetCompany(ctx context.Context, id int64) (*model.Company, error)

	// Generated documents
	SaveDocument(ctx context.Context, doc *model.GeneratedDocument) error
	GetDocument(ctx context.Context, id string) (*model.GeneratedDocument, error)
	ListDocuments(ctx context.Context, templateID string, limit int) ([]model.GeneratedDocument, error)

	// Validation reports
	SaveReport(ctx context.Context, report *model.ValidationReport) error
	ListReports(ctx context.Context, templateID string, limit int) ([]model.ValidationReport, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Ping(ctx context.Context) error
	Close() error
}
