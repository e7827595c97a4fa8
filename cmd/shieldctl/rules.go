package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/kiranshivaraju/listingshield/internal/cacheadmin"
	"github.com/kiranshivaraju/listingshield/pkg/jsonrepair"
	"github.com/kiranshivaraju/listingshield/pkg/models"
)

// ruleFile is the on-disk layout accepted by "rules import".
type ruleFile struct {
	Rules []ruleEntry `json:"rules" yaml:"rules"`
}

type ruleEntry struct {
	Term      string `json:"term"       yaml:"term"`
	RiskLevel string `json:"risk_level" yaml:"risk_level"`
	Reason    string `json:"reason"     yaml:"reason"`
	IsActive  *bool  `json:"is_active"  yaml:"is_active"`
}

func newRulesCmd(open openStoreFunc) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rules",
		Short: "Manage compliance rules",
	}

	var dryRun, clearCache bool
	importCmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Create or update rules from a YAML or JSON file",
		Long: `Reads rules from a .yaml, .yml or .json file and upserts them by term.

JSON files are normalized first, so hand-edited files with trailing commas,
unquoted keys or single-quoted strings are accepted.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rules, err := readRuleFile(args[0])
			if err != nil {
				return err
			}
			if dryRun {
				fmt.Fprintf(cmd.OutOrStdout(), "%d rules valid\n", len(rules))
				return nil
			}

			st, release, err := open(cmd.Context())
			if err != nil {
				return err
			}
			defer release()

			for i := range rules {
				if err := st.UpsertRule(cmd.Context(), &rules[i]); err != nil {
					return fmt.Errorf("upsert rule %q: %w", rules[i].Term, err)
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d rules\n", len(rules))

			// Cached verdicts were computed against the previous rule set.
			if !clearCache {
				fmt.Fprintln(cmd.OutOrStdout(), "cached verdicts may be stale until they expire; run 'shieldctl cache clear --yes' to drop them")
				return nil
			}
			if !cacheadmin.NewManager(st).ClearAllCache(cmd.Context()) {
				return fmt.Errorf("rules imported but clearing the verdict cache failed")
			}
			fmt.Fprintln(cmd.OutOrStdout(), "cache cleared")
			return nil
		},
	}
	importCmd.Flags().BoolVar(&dryRun, "dry-run", false, "validate the file without writing")
	importCmd.Flags().BoolVar(&clearCache, "clear-cache", false, "drop cached verdicts after importing")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List every rule, active or not",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			st, release, err := open(cmd.Context())
			if err != nil {
				return err
			}
			defer release()

			rules, err := st.ListRules(cmd.Context())
			if err != nil {
				return fmt.Errorf("list rules: %w", err)
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "TERM\tRISK\tACTIVE\tREASON")
			for _, r := range rules {
				fmt.Fprintf(tw, "%s\t%s\t%t\t%s\n", r.Term, r.RiskLevel, r.IsActive, r.Reason)
			}
			return tw.Flush()
		},
	}

	cmd.AddCommand(importCmd, listCmd)
	return cmd
}

func readRuleFile(path string) ([]models.ComplianceRule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rule file: %w", err)
	}
	return parseRules(filepath.Ext(path), data)
}

// parseRules decodes and validates a rule file. ext selects the format.
func parseRules(ext string, data []byte) ([]models.ComplianceRule, error) {
	var f ruleFile
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &f); err != nil {
			return nil, fmt.Errorf("parse yaml: %w", err)
		}
	case ".json":
		if err := json.Unmarshal([]byte(jsonrepair.Repair(string(data))), &f); err != nil {
			return nil, fmt.Errorf("parse json: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported rule file extension %q", ext)
	}

	if len(f.Rules) == 0 {
		return nil, fmt.Errorf("rule file contains no rules")
	}

	seen := make(map[string]bool, len(f.Rules))
	rules := make([]models.ComplianceRule, 0, len(f.Rules))
	for i, e := range f.Rules {
		term := strings.TrimSpace(e.Term)
		if term == "" {
			return nil, fmt.Errorf("rule %d: term is required", i+1)
		}
		level := strings.ToLower(strings.TrimSpace(e.RiskLevel))
		if !models.ValidRiskLevel(level) {
			return nil, fmt.Errorf("rule %d (%s): risk_level must be %q or %q, got %q",
				i+1, term, models.RiskLevelHigh, models.RiskLevelWarning, e.RiskLevel)
		}
		key := strings.ToLower(term)
		if seen[key] {
			return nil, fmt.Errorf("rule %d: duplicate term %q", i+1, term)
		}
		seen[key] = true

		active := true
		if e.IsActive != nil {
			active = *e.IsActive
		}
		rules = append(rules, models.ComplianceRule{
			Term:      term,
			RiskLevel: level,
			Reason:    strings.TrimSpace(e.Reason),
			IsActive:  active,
		})
	}
	return rules, nil
}
