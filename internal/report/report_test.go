package report

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/gqlaudit/gqlaudit/internal/finding"
	"github.com/gqlaudit/gqlaudit/internal/probe"
	sharederrors "github.com/gqlaudit/gqlaudit/internal/shared/errors"
)

func mk(cat finding.Category, sev finding.Severity, title string) finding.Finding {
	return finding.New(cat, sev, title, "desc", "evidence")
}

func TestAssembleCleanScan(t *testing.T) {
	r := Assemble("http://localhost:4000", nil, nil, nil)

	if r.ScanID == "" {
		t.Error("scan ID not set")
	}
	if r.SecurityScore != 100 {
		t.Errorf("SecurityScore = %d, want 100", r.SecurityScore)
	}
	if r.ComplianceScore != 100 {
		t.Errorf("ComplianceScore = %v, want 100", r.ComplianceScore)
	}
	if r.TotalFindings != 0 {
		t.Errorf("TotalFindings = %d", r.TotalFindings)
	}
	if len(r.Recommendations) != 0 {
		t.Errorf("clean scan should have no recommendations: %v", r.Recommendations)
	}
	if r.Partial {
		t.Error("scan with no diagnostics should not be partial")
	}
	if r.ExitCode() != ExitClean {
		t.Errorf("ExitCode = %d, want %d", r.ExitCode(), ExitClean)
	}
}

func TestAssembleVulnerableScan(t *testing.T) {
	findings := []finding.Finding{
		mk(finding.CategoryInjection, finding.SeverityCritical, "SQL Injection Vulnerability"),
		mk(finding.CategoryAccessControl, finding.SeverityHigh, "Horizontal Privilege Escalation"),
		mk(finding.CategoryMisconfig, finding.SeverityMedium, "GraphQL Introspection Enabled"),
	}

	r := Assemble("http://localhost:4000", findings, nil, nil)

	// 100 - 10 - 5 - 2 = 83
	if r.SecurityScore != 83 {
		t.Errorf("SecurityScore = %d, want 83", r.SecurityScore)
	}
	// Injection and AccessControl are non-compliant: 8/10.
	if r.ComplianceScore != 80 {
		t.Errorf("ComplianceScore = %v, want 80", r.ComplianceScore)
	}
	if r.TotalFindings != 3 {
		t.Errorf("TotalFindings = %d, want 3", r.TotalFindings)
	}
	if len(r.Recommendations) == 0 {
		t.Error("expected recommendations for non-compliant categories")
	}
	if r.ExitCode() != ExitCritical {
		t.Errorf("ExitCode = %d, want %d", r.ExitCode(), ExitCritical)
	}
	if got := r.CompliantCategories(); got != 8 {
		t.Errorf("CompliantCategories = %d, want 8", got)
	}
}

func TestExitCodeHighWithoutCritical(t *testing.T) {
	r := Assemble("http://t", []finding.Finding{
		mk(finding.CategorySSRF, finding.SeverityHigh, "SSRF"),
	}, nil, nil)
	if r.ExitCode() != ExitHigh {
		t.Errorf("ExitCode = %d, want %d", r.ExitCode(), ExitHigh)
	}
}

func TestAssemblePartialOnDiagnostics(t *testing.T) {
	diags := []probe.Diagnostic{{Category: finding.CategoryInjection, Probe: "injection", Error: "timed out"}}
	r := Assemble("http://t", nil, diags, nil)
	if !r.Partial {
		t.Error("diagnostics should mark the report partial")
	}
	// A timed-out probe contributes no findings, so its category stays compliant.
	if !r.CategorySummary[finding.CategoryInjection].Compliant {
		t.Error("failed probe should not break category compliance by itself")
	}
}

func TestWriteJSONFieldContract(t *testing.T) {
	r := Assemble("http://localhost:4000", []finding.Finding{
		mk(finding.CategoryCrypto, finding.SeverityHigh, "Unencrypted Communication"),
	}, nil, nil)

	var buf bytes.Buffer
	if err := WriteJSON(&buf, r); err != nil {
		t.Fatalf("WriteJSON failed: %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("report is not valid JSON: %v", err)
	}

	for _, key := range []string{
		"scan_id", "target", "scan_timestamp", "security_score",
		"owasp_compliance_score", "severity_counts", "total_findings",
		"findings", "category_summary", "recommendations", "partial",
	} {
		if _, ok := decoded[key]; !ok {
			t.Errorf("JSON report missing key %q", key)
		}
	}

	counts, _ := decoded["severity_counts"].(map[string]any)
	if len(counts) != 5 {
		t.Errorf("severity_counts has %d keys, want 5", len(counts))
	}
}

func TestWriteJSONIdempotent(t *testing.T) {
	r := Assemble("http://t", []finding.Finding{
		mk(finding.CategoryLogging, finding.SeverityMedium, "No Rate Limiting Detected"),
	}, nil, nil)

	var first, second bytes.Buffer
	if err := WriteJSON(&first, r); err != nil {
		t.Fatalf("first write: %v", err)
	}
	if err := WriteJSON(&second, r); err != nil {
		t.Fatalf("second write: %v", err)
	}
	if !bytes.Equal(first.Bytes(), second.Bytes()) {
		t.Error("rendering the same report twice produced different bytes")
	}
}

func TestWriteHTML(t *testing.T) {
	r := Assemble("http://localhost:4000", []finding.Finding{
		mk(finding.CategoryInjection, finding.SeverityCritical, "SQL Injection Vulnerability"),
	}, nil, nil)

	var buf bytes.Buffer
	if err := WriteHTML(&buf, r); err != nil {
		t.Fatalf("WriteHTML failed: %v", err)
	}

	html := buf.String()
	for _, want := range []string{
		r.ScanID,
		"http://localhost:4000",
		"SQL Injection Vulnerability",
		"NON-COMPLIANT",
		"A03:2021",
	} {
		if !strings.Contains(html, want) {
			t.Errorf("HTML report missing %q", want)
		}
	}
}

func TestWriteHTMLEscapesFindingText(t *testing.T) {
	r := Assemble("http://t", []finding.Finding{
		mk(finding.CategoryInjection, finding.SeverityHigh, "<script>alert('x')</script>"),
	}, nil, nil)

	var buf bytes.Buffer
	if err := WriteHTML(&buf, r); err != nil {
		t.Fatalf("WriteHTML failed: %v", err)
	}
	if strings.Contains(buf.String(), "<script>alert") {
		t.Error("finding text rendered unescaped")
	}
}

func TestWritePDF(t *testing.T) {
	r := Assemble("http://localhost:4000", []finding.Finding{
		mk(finding.CategorySSRF, finding.SeverityHigh, "Server-Side Request Forgery (SSRF)"),
	}, nil, nil)

	var buf bytes.Buffer
	if err := WritePDF(&buf, r); err != nil {
		t.Fatalf("WritePDF failed: %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("%PDF")) {
		t.Error("output does not start with a PDF header")
	}
}

func TestWriteUnsupportedFormat(t *testing.T) {
	r := Assemble("http://t", nil, nil, nil)
	err := Write(&bytes.Buffer{}, r, "yaml")
	if !errors.Is(err, sharederrors.ErrUnsupportedFormat) {
		t.Errorf("expected ErrUnsupportedFormat, got %v", err)
	}
}

func TestWriteNilReport(t *testing.T) {
	if err := Write(&bytes.Buffer{}, nil, "json"); !errors.Is(err, sharederrors.ErrEmptyReport) {
		t.Errorf("expected ErrEmptyReport, got %v", err)
	}
}

func TestSortedFindingsMostSevereFirst(t *testing.T) {
	r := Assemble("http://t", []finding.Finding{
		mk(finding.CategoryLogging, finding.SeverityInfo, "info"),
		mk(finding.CategoryInjection, finding.SeverityCritical, "crit"),
		mk(finding.CategoryCrypto, finding.SeverityHigh, "high"),
	}, nil, nil)

	sorted := r.sortedFindings()
	if sorted[0].Severity != finding.SeverityCritical || sorted[2].Severity != finding.SeverityInfo {
		t.Errorf("unexpected order: %v, %v, %v", sorted[0].Severity, sorted[1].Severity, sorted[2].Severity)
	}

	// The report's own finding list keeps discovery order.
	if r.Findings[0].Severity != finding.SeverityInfo {
		t.Error("sorting leaked into the report's finding list")
	}
}
