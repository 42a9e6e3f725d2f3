package cmd

import (
	"github.com/fatih/color"

	"github.com/gqlaudit/gqlaudit/internal/finding"
)

var (
	colorSuccess  = color.New(color.FgGreen).SprintFunc()
	colorInfo     = color.New(color.FgCyan).SprintFunc()
	colorWarn     = color.New(color.FgYellow).SprintFunc()
	colorError    = color.New(color.FgRed).SprintFunc()
	colorCritical = color.New(color.FgRed, color.Bold).SprintFunc()
)

func formatSeverityWithColor(sev finding.Severity) string {
	switch sev {
	case finding.SeverityCritical:
		return colorCritical(sev.String())
	case finding.SeverityHigh:
		return colorError(sev.String())
	case finding.SeverityMedium:
		return colorWarn(sev.String())
	case finding.SeverityLow:
		return colorInfo(sev.String())
	default:
		return sev.String()
	}
}

func formatComplianceWithColor(compliant bool) string {
	if compliant {
		return colorSuccess("COMPLIANT")
	}
	return colorError("NON-COMPLIANT")
}
