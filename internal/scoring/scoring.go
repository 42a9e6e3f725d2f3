// Package scoring reduces the finding multiset of a scan into the
// compliance score, the numeric security score, and the deduplicated
// remediation list. Every function here is pure: identical finding sets
// produce identical output regardless of discovery order.
package scoring

import (
	"github.com/gqlaudit/gqlaudit/internal/finding"
)

// Weights maps each severity to the points it subtracts from the
// security score. The defaults mirror the long-standing audit heuristic;
// operators can override them from the config file.
type Weights map[finding.Severity]int

// DefaultWeights returns the standard severity weighting.
func DefaultWeights() Weights {
	return Weights{
		finding.SeverityCritical: 10,
		finding.SeverityHigh:     5,
		finding.SeverityMedium:   2,
		finding.SeverityLow:      1,
		finding.SeverityInfo:     0,
	}
}

// SecurityScore computes the 0-100 security score: start at 100,
// subtract the configured weight per finding, floor at zero.
func SecurityScore(findings []finding.Finding, weights Weights) int {
	if weights == nil {
		weights = DefaultWeights()
	}
	score := 100
	for _, f := range findings {
		score -= weights[f.Severity]
	}
	if score < 0 {
		score = 0
	}
	return score
}

// SeverityCounts tallies findings per severity. Every severity level is
// present in the result, so the counts always total len(findings).
func SeverityCounts(findings []finding.Finding) map[finding.Severity]int {
	counts := make(map[finding.Severity]int, 5)
	for _, sev := range finding.AllSeverities() {
		counts[sev] = 0
	}
	for _, f := range findings {
		counts[f.Severity]++
	}
	return counts
}

// CategorySummary describes one weakness category in the report.
type CategorySummary struct {
	Name      string `json:"name"`
	Findings  int    `json:"findings"`
	Compliant bool   `json:"compliant"`
}

// Summarize builds the per-category summary over all ten categories. A
// category is compliant iff it holds no HIGH or CRITICAL finding;
// INFO/LOW/MEDIUM findings never break compliance.
func Summarize(findings []finding.Finding) map[finding.Category]CategorySummary {
	summaries := make(map[finding.Category]CategorySummary, len(finding.AllCategories()))
	for _, cat := range finding.AllCategories() {
		summaries[cat] = CategorySummary{Name: cat.Name(), Compliant: true}
	}
	for _, f := range findings {
		s, ok := summaries[f.Category]
		if !ok {
			s = CategorySummary{Name: f.Category.Name(), Compliant: true}
		}
		s.Findings++
		if f.Severity.Actionable() {
			s.Compliant = false
		}
		summaries[f.Category] = s
	}
	return summaries
}

// ComplianceScore computes (compliant categories / total categories) *
// 100 over the fixed category set.
func ComplianceScore(findings []finding.Finding) float64 {
	summaries := Summarize(findings)
	total := len(finding.AllCategories())
	compliant := 0
	for _, cat := range finding.AllCategories() {
		if summaries[cat].Compliant {
			compliant++
		}
	}
	return float64(compliant) / float64(total) * 100
}
