package model

import "time"

// StageStatus is the outcome of one validation stage.
type StageStatus string

const (
	StageSuccess StageStatus = "success"
	StageWarning StageStatus = "warning"
	StageError   StageStatus = "error"
	StageSkipped StageStatus = "skipped"
)

// StageResult is one validator stage with its findings.
type StageResult struct {
	Name     string         `json:"name"`
	Status   StageStatus    `json:"status"`
	Issues   []string       `json:"issues,omitempty"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// ValidationReport scores a template's production readiness. Advisory only;
// never gates generation. Immutable after creation.
type ValidationReport struct {
	ID              string        `json:"id"`
	TemplateID      string        `json:"template_id"`
	TemplateTitle   string        `json:"template_title"`
	Stages          []StageResult `json:"stages"`
	Issues          []string      `json:"issues,omitempty"`
	Recommendations []string      `json:"recommendations,omitempty"`
	CoveragePct     float64       `json:"coverage_pct"`
	Score           int           `json:"score"`
	OverallStatus   StageStatus   `json:"overall_status"`
	CreatedAt       time.Time     `json:"created_at"`
}

// Scoring parameters, preserved from the documented defaults.
const (
	scorePenaltyError   = 40
	scorePenaltyWarning = 15
	scoreCoverageBonus  = 10
	scoreCoverageFloor  = 0.70
)

// Finalize computes the score and overall status from the accumulated stages.
func (r *ValidationReport) Finalize() {
	score := 100
	errs, warns := 0, 0
	for _, s := range r.Stages {
		switch s.Status {
		case StageError:
			errs++
		case StageWarning:
			warns++
		}
	}
	score -= errs * scorePenaltyError
	score -= warns * scorePenaltyWarning
	if r.CoveragePct >= scoreCoverageFloor*100 {
		score += scoreCoverageBonus
	}
	if score < 0 {
		score = 0
	}
	r.Score = score

	switch {
	case errs > 0:
		r.OverallStatus = StageError
	case warns > 0:
		r.OverallStatus = StageWarning
	default:
		r.OverallStatus = StageSuccess
	}
}
