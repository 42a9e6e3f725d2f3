// Package report assembles the immutable scan report from the collected
// findings and projects it to JSON, HTML, and PDF.
package report

import (
	"time"

	"github.com/google/uuid"

	"github.com/gqlaudit/gqlaudit/internal/finding"
	"github.com/gqlaudit/gqlaudit/internal/probe"
	"github.com/gqlaudit/gqlaudit/internal/scoring"
)

// Exit codes for the scan command.
const (
	ExitClean    = 0
	ExitHigh     = 1
	ExitCritical = 2
)

// ScanReport is the fully aggregated output of one scan run. It is
// built exactly once, after every probe has completed or timed out, and
// never mutated afterwards.
type ScanReport struct {
	ScanID          string                                       `json:"scan_id"`
	Target          string                                       `json:"target"`
	ScanTimestamp   time.Time                                    `json:"scan_timestamp"`
	SecurityScore   int                                          `json:"security_score"`
	ComplianceScore float64                                      `json:"owasp_compliance_score"`
	SeverityCounts  map[finding.Severity]int                     `json:"severity_counts"`
	TotalFindings   int                                          `json:"total_findings"`
	Findings        []finding.Finding                            `json:"findings"`
	CategorySummary map[finding.Category]scoring.CategorySummary `json:"category_summary"`
	Recommendations []string                                     `json:"recommendations"`
	Diagnostics     []probe.Diagnostic                           `json:"diagnostics,omitempty"`
	Partial         bool                                         `json:"partial"`
}

// Assemble builds the report. Findings keep their discovery order; the
// derived scoring fields are order-independent.
func Assemble(target string, findings []finding.Finding, diags []probe.Diagnostic, weights scoring.Weights) *ScanReport {
	snapshot := make([]finding.Finding, len(findings))
	copy(snapshot, findings)

	return &ScanReport{
		ScanID:          uuid.NewString(),
		Target:          target,
		ScanTimestamp:   time.Now().UTC(),
		SecurityScore:   scoring.SecurityScore(snapshot, weights),
		ComplianceScore: scoring.ComplianceScore(snapshot),
		SeverityCounts:  scoring.SeverityCounts(snapshot),
		TotalFindings:   len(snapshot),
		Findings:        snapshot,
		CategorySummary: scoring.Summarize(snapshot),
		Recommendations: scoring.Recommendations(snapshot),
		Diagnostics:     diags,
		Partial:         len(diags) > 0,
	}
}

// ExitCode maps the report to the process exit code: 2 when any
// CRITICAL finding exists, 1 for HIGH, 0 otherwise.
func (r *ScanReport) ExitCode() int {
	if r.SeverityCounts[finding.SeverityCritical] > 0 {
		return ExitCritical
	}
	if r.SeverityCounts[finding.SeverityHigh] > 0 {
		return ExitHigh
	}
	return ExitClean
}

// CompliantCategories counts categories with no HIGH/CRITICAL finding.
func (r *ScanReport) CompliantCategories() int {
	n := 0
	for _, s := range r.CategorySummary {
		if s.Compliant {
			n++
		}
	}
	return n
}
