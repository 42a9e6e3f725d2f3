package report

import (
	"encoding/json"
	"fmt"
	"html/template"
	"io"
	"sort"
	"strings"

	"github.com/jung-kurt/gofpdf"

	"github.com/gqlaudit/gqlaudit/internal/finding"
	"github.com/gqlaudit/gqlaudit/internal/scoring"
	sharederrors "github.com/gqlaudit/gqlaudit/internal/shared/errors"
)

// Supported output formats.
const (
	FormatJSON = "json"
	FormatHTML = "html"
	FormatPDF  = "pdf"
)

// Write renders the report in the requested format.
func Write(w io.Writer, r *ScanReport, format string) error {
	if r == nil {
		return sharederrors.ErrEmptyReport
	}
	switch strings.ToLower(format) {
	case FormatJSON:
		return WriteJSON(w, r)
	case FormatHTML:
		return WriteHTML(w, r)
	case FormatPDF:
		return WritePDF(w, r)
	default:
		return fmt.Errorf("%w: %q", sharederrors.ErrUnsupportedFormat, format)
	}
}

// WriteJSON emits the canonical machine-readable report.
func WriteJSON(w io.Writer, r *ScanReport) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

// categoryRow is one line of the rendered category table, in fixed
// category order.
type categoryRow struct {
	ID        string
	Name      string
	Findings  int
	Compliant bool
}

func (r *ScanReport) categoryRows() []categoryRow {
	rows := make([]categoryRow, 0, len(finding.AllCategories()))
	for _, cat := range finding.AllCategories() {
		s, ok := r.CategorySummary[cat]
		if !ok {
			s = scoring.CategorySummary{Name: cat.Name(), Compliant: true}
		}
		rows = append(rows, categoryRow{
			ID:        cat.String(),
			Name:      s.Name,
			Findings:  s.Findings,
			Compliant: s.Compliant,
		})
	}
	return rows
}

// severityRow is one line of the rendered severity table, most severe
// first.
type severityRow struct {
	Severity string
	Count    int
}

func (r *ScanReport) severityRows() []severityRow {
	sevs := finding.AllSeverities()
	rows := make([]severityRow, 0, len(sevs))
	for i := len(sevs) - 1; i >= 0; i-- {
		rows = append(rows, severityRow{
			Severity: sevs[i].String(),
			Count:    r.SeverityCounts[sevs[i]],
		})
	}
	return rows
}

// sortedFindings orders findings by severity (most severe first), then
// category, for human-facing formats. The JSON report keeps discovery
// order.
func (r *ScanReport) sortedFindings() []finding.Finding {
	out := make([]finding.Finding, len(r.Findings))
	copy(out, r.Findings)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Severity.Rank() != out[j].Severity.Rank() {
			return out[i].Severity.Rank() > out[j].Severity.Rank()
		}
		return out[i].Category < out[j].Category
	})
	return out
}

// WriteHTML renders the report with the embedded template.
func WriteHTML(w io.Writer, r *ScanReport) error {
	tmpl, err := template.New("report").Parse(htmlTemplate)
	if err != nil {
		return fmt.Errorf("parse report template: %w", err)
	}

	data := struct {
		*ScanReport
		Categories  []categoryRow
		Severities  []severityRow
		Sorted      []finding.Finding
		Compliant   int
		Total       int
		GeneratedAt string
	}{
		ScanReport:  r,
		Categories:  r.categoryRows(),
		Severities:  r.severityRows(),
		Sorted:      r.sortedFindings(),
		Compliant:   r.CompliantCategories(),
		Total:       len(finding.AllCategories()),
		GeneratedAt: r.ScanTimestamp.Format("2006-01-02 15:04:05 UTC"),
	}
	return tmpl.Execute(w, data)
}

// WritePDF renders the report as a PDF document.
func WritePDF(w io.Writer, r *ScanReport) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("GraphQL Security Audit Report", false)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 18)
	pdf.Cell(0, 12, "GraphQL Security Audit Report")
	pdf.Ln(14)

	pdf.SetFont("Arial", "", 10)
	pdf.Cell(0, 6, fmt.Sprintf("Scan ID: %s", r.ScanID))
	pdf.Ln(6)
	pdf.Cell(0, 6, fmt.Sprintf("Target: %s", r.Target))
	pdf.Ln(6)
	pdf.Cell(0, 6, fmt.Sprintf("Scanned: %s", r.ScanTimestamp.Format("2006-01-02 15:04:05 UTC")))
	pdf.Ln(10)

	pdf.SetFont("Arial", "B", 13)
	pdf.Cell(0, 8, "Scores")
	pdf.Ln(9)
	pdf.SetFont("Arial", "", 11)
	pdf.Cell(0, 6, fmt.Sprintf("Security score: %d/100", r.SecurityScore))
	pdf.Ln(6)
	pdf.Cell(0, 6, fmt.Sprintf("OWASP compliance: %.1f%% (%d/%d categories)",
		r.ComplianceScore, r.CompliantCategories(), len(finding.AllCategories())))
	pdf.Ln(6)
	pdf.Cell(0, 6, fmt.Sprintf("Total findings: %d", r.TotalFindings))
	pdf.Ln(10)

	pdf.SetFont("Arial", "B", 13)
	pdf.Cell(0, 8, "Findings by Severity")
	pdf.Ln(9)
	pdf.SetFont("Arial", "", 10)
	for _, row := range r.severityRows() {
		pdf.Cell(0, 5, fmt.Sprintf("%-10s %d", row.Severity, row.Count))
		pdf.Ln(5)
	}
	pdf.Ln(5)

	pdf.SetFont("Arial", "B", 13)
	pdf.Cell(0, 8, "Category Compliance")
	pdf.Ln(9)
	pdf.SetFont("Arial", "", 9)
	for _, row := range r.categoryRows() {
		status := "COMPLIANT"
		if !row.Compliant {
			status = "NON-COMPLIANT"
		}
		pdf.Cell(0, 5, fmt.Sprintf("%s %s: %d finding(s), %s", row.ID, row.Name, row.Findings, status))
		pdf.Ln(5)
	}
	pdf.Ln(5)

	if len(r.Findings) > 0 {
		pdf.SetFont("Arial", "B", 13)
		pdf.Cell(0, 8, "Findings")
		pdf.Ln(9)
		for _, f := range r.sortedFindings() {
			pdf.SetFont("Arial", "B", 10)
			pdf.MultiCell(0, 5, fmt.Sprintf("[%s] %s - %s", f.Severity, f.Category, f.Title), "", "L", false)
			pdf.SetFont("Arial", "", 9)
			pdf.MultiCell(0, 4, f.Description, "", "L", false)
			if f.Evidence != "" {
				pdf.SetFont("Arial", "I", 8)
				pdf.MultiCell(0, 4, "Evidence: "+f.Evidence, "", "L", false)
			}
			pdf.Ln(3)
		}
	}

	if len(r.Recommendations) > 0 {
		pdf.SetFont("Arial", "B", 13)
		pdf.Cell(0, 8, "Recommendations")
		pdf.Ln(9)
		pdf.SetFont("Arial", "", 9)
		for _, rec := range r.Recommendations {
			pdf.MultiCell(0, 5, "- "+rec, "", "L", false)
		}
	}

	return pdf.Output(w)
}
