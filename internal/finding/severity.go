package finding

import (
	"fmt"
	"strings"
)

// Severity is the ordered severity level of a finding.
type Severity string

const (
	SeverityInfo     Severity = "INFO"
	SeverityLow      Severity = "LOW"
	SeverityMedium   Severity = "MEDIUM"
	SeverityHigh     Severity = "HIGH"
	SeverityCritical Severity = "CRITICAL"
)

// AllSeverities returns every severity in ascending order.
func AllSeverities() []Severity {
	return []Severity{SeverityInfo, SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical}
}

// Rank returns the ordinal position of the severity: INFO=0 up to CRITICAL=4.
// Unknown severities rank below INFO.
func (s Severity) Rank() int {
	switch s {
	case SeverityInfo:
		return 0
	case SeverityLow:
		return 1
	case SeverityMedium:
		return 2
	case SeverityHigh:
		return 3
	case SeverityCritical:
		return 4
	default:
		return -1
	}
}

// IsValid reports whether s is a recognized severity level.
func (s Severity) IsValid() bool {
	return s.Rank() >= 0
}

// Actionable reports whether the severity breaks category compliance.
// Only HIGH and CRITICAL findings do.
func (s Severity) Actionable() bool {
	return s == SeverityHigh || s == SeverityCritical
}

func (s Severity) String() string {
	return string(s)
}

// ParseSeverity converts a string into a Severity, case-insensitively,
// rejecting unknown values.
func ParseSeverity(value string) (Severity, error) {
	s := Severity(strings.ToUpper(value))
	if !s.IsValid() {
		return "", fmt.Errorf("unknown severity %q", value)
	}
	return s, nil
}
