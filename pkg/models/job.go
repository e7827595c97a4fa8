package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	JobStatusPending   = "pending"
	JobStatusRunning   = "running"
	JobStatusCompleted = "completed"
	JobStatusFailed    = "failed"
)

// PolicyAnalysisJob tracks a long-running policy analysis executed by the remote
// start-policy-analysis function. This codebase only reads job rows; clients poll
// until status is completed or failed.
type PolicyAnalysisJob struct {
	ID                uuid.UUID  `db:"id"                 json:"id"`
	UserID            uuid.UUID  `db:"user_id"            json:"user_id"`
	Status            string     `db:"status"             json:"status"`
	ProgressMessage   *string    `db:"progress_message"   json:"progress_message,omitempty"`
	PoliciesProcessed int        `db:"policies_processed" json:"policies_processed"`
	SectionsCreated   int        `db:"sections_created"   json:"sections_created"`
	KeywordsExtracted int        `db:"keywords_extracted" json:"keywords_extracted"`
	TotalPolicies     int        `db:"total_policies"     json:"total_policies"`
	ErrorMessage      *string    `db:"error_message"      json:"error_message,omitempty"`
	StartedAt         *time.Time `db:"started_at"         json:"started_at,omitempty"`
	CompletedAt       *time.Time `db:"completed_at"       json:"completed_at,omitempty"`
	CreatedAt         time.Time  `db:"created_at"         json:"created_at"`
	UpdatedAt         time.Time  `db:"updated_at"         json:"updated_at"`
}

// IsTerminal reports whether the job has reached completed or failed.
func (j *PolicyAnalysisJob) IsTerminal() bool {
	return j.Status == JobStatusCompleted || j.Status == JobStatusFailed
}
