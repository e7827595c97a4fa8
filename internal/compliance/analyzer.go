// Package compliance scans listing text against the active compliance rules.
package compliance

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/kiranshivaraju/listingshield/pkg/models"
)

const (
	confidencePass     = 0.95
	confidenceWarning  = 0.75
	confidenceFail     = 0.85
	confidenceDegraded = 0.5
	confidenceFault    = 0.1
)

const (
	msgRulesUnavailable = "Compliance rules could not be loaded; listing was not fully verified"
	msgRetry            = "Compliance check failed. Please try again."
)

// RuleSource provides the active compliance rules.
type RuleSource interface {
	ListActiveRules(ctx context.Context) ([]models.ComplianceRule, error)
}

// Checker is anything that produces a verdict for a listing.
type Checker interface {
	Analyze(ctx context.Context, title, description string) models.ComplianceResult
}

// Analyzer checks listings by case-insensitive substring match against every
// active rule. It never fails: store errors and internal faults degrade the verdict.
type Analyzer struct {
	rules RuleSource
}

// NewAnalyzer creates a new Analyzer.
func NewAnalyzer(rules RuleSource) *Analyzer {
	return &Analyzer{rules: rules}
}

// Analyze fetches the active rules and scans title and description.
func (a *Analyzer) Analyze(ctx context.Context, title, description string) (result models.ComplianceResult) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("panic in compliance analysis", "error", r)
			result = faultResult()
			checksTotal.WithLabelValues(result.Status, sourceFallback).Inc()
		}
	}()

	rules, err := a.rules.ListActiveRules(ctx)
	if err != nil {
		slog.Error("fetch compliance rules failed", "error", err)
		result = degradedResult()
		checksTotal.WithLabelValues(result.Status, sourceFallback).Inc()
		return result
	}

	result = Evaluate(title, description, rules)
	checksTotal.WithLabelValues(result.Status, sourceAnalyzer).Inc()
	return result
}

// Evaluate is the pure scan: a single pass over rules, one match per rule.
func Evaluate(title, description string, rules []models.ComplianceRule) models.ComplianceResult {
	text := strings.ToLower(title + " " + description)

	result := models.ComplianceResult{
		FlaggedTerms: []string{},
		Suggestions:  []string{},
		RuleMatches:  []models.RuleMatch{},
	}

	hasHigh := false
	for _, rule := range rules {
		term := strings.ToLower(rule.Term)
		if term == "" || !strings.Contains(text, term) {
			continue
		}
		result.RuleMatches = append(result.RuleMatches, models.RuleMatch{
			Term:      rule.Term,
			RiskLevel: rule.RiskLevel,
			Reason:    rule.Reason,
		})
		result.FlaggedTerms = append(result.FlaggedTerms, rule.Term)
		result.Suggestions = append(result.Suggestions,
			fmt.Sprintf("%s: Remove or replace \"%s\"", rule.Reason, rule.Term))
		if rule.RiskLevel == models.RiskLevelHigh {
			hasHigh = true
		}
	}

	switch {
	case len(result.RuleMatches) == 0:
		result.Status = models.StatusPass
		result.Confidence = confidencePass
	case hasHigh:
		result.Status = models.StatusFail
		result.Confidence = confidenceFail
	default:
		result.Status = models.StatusWarning
		result.Confidence = confidenceWarning
	}
	return result
}

func degradedResult() models.ComplianceResult {
	return models.ComplianceResult{
		Status:       models.StatusPass,
		FlaggedTerms: []string{},
		Suggestions:  []string{msgRulesUnavailable},
		Confidence:   confidenceDegraded,
		RuleMatches:  []models.RuleMatch{},
	}
}

func faultResult() models.ComplianceResult {
	return models.ComplianceResult{
		Status:       models.StatusWarning,
		FlaggedTerms: []string{},
		Suggestions:  []string{msgRetry},
		Confidence:   confidenceFault,
		RuleMatches:  []models.RuleMatch{},
	}
}
