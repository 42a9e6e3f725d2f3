package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/gqlaudit/gqlaudit/internal/client"
	"github.com/gqlaudit/gqlaudit/internal/finding"
	"github.com/gqlaudit/gqlaudit/internal/probe"
	"github.com/gqlaudit/gqlaudit/internal/probes"
	"github.com/gqlaudit/gqlaudit/internal/report"
)

var (
	scanToken       string
	scanOutput      string
	scanFormat      string
	scanGraphQLPath string
	scanTimeout     int
	scanRate        int
	scanTelemetry   bool
	scanProgress    bool

	// scanExitCode is consulted by Execute after the command returns.
	scanExitCode int
)

var scanCmd = &cobra.Command{
	Use:   "scan <target-url>",
	Short: "Run the OWASP Top 10 probe suite against a GraphQL endpoint",
	Long: `Scan runs every registered weakness probe against the target GraphQL
endpoint, aggregates the findings into security and compliance scores,
and writes the report in JSON, HTML, or PDF.

Only scan systems you are authorized to test.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		target := args[0]

		cliConfig.Scan.TimeoutSecs = scanTimeout
		cliConfig.Scan.RateLimit = scanRate
		cliConfig.Scan.TelemetryEnabled = scanTelemetry
		applyConfigDefaults(cmd)

		timeout := time.Duration(cliConfig.Scan.TimeoutSecs) * time.Second

		tc, err := client.New(target,
			client.WithToken(scanToken),
			client.WithTimeout(timeout),
			client.WithGraphQLPath(scanGraphQLPath),
		)
		if err != nil {
			return err
		}

		env := &probe.ExecContext{
			Target:      tc.BaseURL(),
			GraphQLPath: scanGraphQLPath,
			Token:       scanToken,
			Timeout:     timeout,
		}

		registry := probes.DefaultRegistry()

		var progress *progressPrinter
		if scanProgress {
			progress = newProgressPrinter(registry.Len(), "scan")
			progress.Start()
		}

		started := time.Now()
		lastProbe := started

		dispatcher := &probe.Dispatcher{
			Logger:    logger,
			RateLimit: cliConfig.Scan.RateLimit,
			OnCategory: func(cat finding.Category) {
				if !scanProgress {
					fmt.Printf("%s %s: %s\n", colorInfo("==>"), cat, cat.Name())
				}
			},
			OnFindings: func(name string, found []finding.Finding) {
				now := time.Now()
				if progress != nil {
					progress.Increment(len(found) == 0, now.Sub(lastProbe).Seconds())
					lastProbe = now
					return
				}
				for _, f := range found {
					fmt.Printf("  [%s] %s\n", formatSeverityWithColor(f.Severity), f.Title)
				}
			},
		}

		logger.Infow("starting scan", "target", tc.BaseURL(), "probes", registry.Len())

		findings, diags, err := dispatcher.Run(context.Background(), registry, env, tc)
		if err != nil {
			return err
		}
		elapsed := time.Since(started)

		if progress != nil {
			progress.Stop()
		}

		scanReport := report.Assemble(tc.BaseURL(), findings, diags, cliConfig.Scan.Weights)
		printScanSummary(scanReport, elapsed)

		if err := writeScanReport(scanReport); err != nil {
			return err
		}

		if cliConfig.Scan.TelemetryEnabled {
			if err := recordTelemetry("scan", scanReport, elapsed); err != nil {
				logger.Warnw("telemetry write failed", "error", err)
			}
		}

		scanExitCode = scanReport.ExitCode()
		return nil
	},
}

func printScanSummary(r *report.ScanReport, elapsed time.Duration) {
	fmt.Println()
	fmt.Printf("Security score:   %d/100\n", r.SecurityScore)
	fmt.Printf("OWASP compliance: %.1f%% (%d/%d categories)\n",
		r.ComplianceScore, r.CompliantCategories(), len(finding.AllCategories()))
	fmt.Printf("Total findings:   %d\n", r.TotalFindings)
	fmt.Printf("Scan duration:    %.1fs\n", elapsed.Seconds())

	fmt.Println()
	for _, cat := range finding.AllCategories() {
		s := r.CategorySummary[cat]
		fmt.Printf("%s %s: %s (%d finding(s))\n",
			cat, s.Name, formatComplianceWithColor(s.Compliant), s.Findings)
	}

	if r.Partial {
		fmt.Printf("\n%s %d probe(s) failed or timed out; the report is partial\n",
			colorWarn("warning:"), len(r.Diagnostics))
	}
}

func writeScanReport(r *report.ScanReport) error {
	if scanOutput == "" {
		return report.Write(os.Stdout, r, scanFormat)
	}

	f, err := os.Create(scanOutput)
	if err != nil {
		return fmt.Errorf("create report file: %w", err)
	}
	defer f.Close()

	if err := report.Write(f, r, scanFormat); err != nil {
		return err
	}
	fmt.Printf("\nReport saved to: %s\n", scanOutput)
	return nil
}

func init() {
	scanCmd.Flags().StringVarP(&scanToken, "token", "t", "", "JWT bearer token used for authenticated probes")
	scanCmd.Flags().StringVarP(&scanOutput, "output", "o", "", "output file for the report (default stdout)")
	scanCmd.Flags().StringVarP(&scanFormat, "format", "f", "json", "report format: json, html, or pdf")
	scanCmd.Flags().StringVar(&scanGraphQLPath, "graphql-path", "/graphql", "path of the GraphQL endpoint")
	scanCmd.Flags().IntVar(&scanTimeout, "timeout", defaultProbeTimeoutSeconds, "per-probe timeout in seconds")
	scanCmd.Flags().IntVar(&scanRate, "rate", defaultRateLimit, "probe starts per second (0 = unlimited)")
	scanCmd.Flags().BoolVar(&scanTelemetry, "telemetry", false, "append scan statistics to telemetry.jsonl")
	scanCmd.Flags().BoolVar(&scanProgress, "progress", false, "show a progress line instead of per-finding output")
}
