package models

const (
	StatusPass    = "pass"
	StatusWarning = "warning"
	StatusFail    = "fail"
)

// RuleMatch is the projection of a ComplianceRule that matched the listing text.
type RuleMatch struct {
	Term      string `json:"term"`
	RiskLevel string `json:"risk_level"`
	Reason    string `json:"reason"`
}

// ComplianceResult is the verdict of scanning listing text against the active rules.
// It is derived per call and never persisted by the analyzer itself.
type ComplianceResult struct {
	Status       string      `json:"status"`
	FlaggedTerms []string    `json:"flaggedTerms"`
	Suggestions  []string    `json:"suggestions"`
	Confidence   float64     `json:"confidence"`
	RuleMatches  []RuleMatch `json:"ruleMatches"`
}
