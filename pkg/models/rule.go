// Package models contains shared data models used across the Listing Shield codebase.
package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	RiskLevelHigh    = "high"
	RiskLevelWarning = "warning"
)

// ComplianceRule is a stored term with a risk classification and a human-readable
// justification. Rules are maintained by administrators; the analyzer only reads them.
type ComplianceRule struct {
	ID        uuid.UUID `db:"id"         json:"id"          yaml:"-"`
	Term      string    `db:"term"       json:"term"        yaml:"term"`
	RiskLevel string    `db:"risk_level" json:"risk_level"  yaml:"risk_level"`
	Reason    string    `db:"reason"     json:"reason"      yaml:"reason"`
	IsActive  bool      `db:"is_active"  json:"is_active"   yaml:"is_active"`
	CreatedAt time.Time `db:"created_at" json:"created_at"  yaml:"-"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"  yaml:"-"`
}

// ValidRiskLevel reports whether level is one of the supported risk levels.
func ValidRiskLevel(level string) bool {
	return level == RiskLevelHigh || level == RiskLevelWarning
}
