package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/gqlaudit/gqlaudit/internal/finding"
	"github.com/gqlaudit/gqlaudit/internal/report"
)

const telemetryFile = "telemetry.jsonl"

type telemetryRecord struct {
	Timestamp       time.Time `json:"timestamp"`
	Command         string    `json:"command"`
	ScanID          string    `json:"scan_id"`
	Target          string    `json:"target"`
	TotalFindings   int       `json:"total_findings"`
	CriticalCount   int       `json:"critical_count"`
	HighCount       int       `json:"high_count"`
	SecurityScore   int       `json:"security_score"`
	ComplianceScore float64   `json:"compliance_score"`
	DurationSeconds float64   `json:"duration_seconds"`
	Partial         bool      `json:"partial"`
}

func recordTelemetry(command string, r *report.ScanReport, duration time.Duration) error {
	record := telemetryRecord{
		Timestamp:       time.Now().UTC(),
		Command:         command,
		ScanID:          r.ScanID,
		Target:          r.Target,
		TotalFindings:   r.TotalFindings,
		CriticalCount:   r.SeverityCounts[finding.SeverityCritical],
		HighCount:       r.SeverityCounts[finding.SeverityHigh],
		SecurityScore:   r.SecurityScore,
		ComplianceScore: r.ComplianceScore,
		DurationSeconds: duration.Seconds(),
		Partial:         r.Partial,
	}

	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshal telemetry: %w", err)
	}

	f, err := os.OpenFile(telemetryFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open telemetry file: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("write telemetry: %w", err)
	}

	return nil
}
