package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/gqlaudit/gqlaudit/internal/perf"
)

var perfFormat string

var perfCmd = &cobra.Command{
	Use:   "perf <results-file>",
	Short: "Analyze k6 or Artillery load test results",
	Long: `Perf reduces a load test result file into response time, success rate,
and throughput metrics, then prints insights and optimization advice.

k6 NDJSON streams and Artillery aggregate JSON reports are supported;
pass --input-format to skip autodetection.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]

		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("open results file: %w", err)
		}
		defer f.Close()

		var analysis *perf.Analysis
		switch perfFormat {
		case "k6":
			analysis, err = perf.AnalyzeK6(f)
		case "artillery":
			analysis, err = perf.AnalyzeArtillery(f)
		case "auto":
			analysis, err = autodetectAndAnalyze(path)
		default:
			return fmt.Errorf("unknown input format %q (want k6, artillery, or auto)", perfFormat)
		}
		if err != nil {
			return err
		}

		printAnalysis(analysis)
		return nil
	},
}

// autodetectAndAnalyze tries the Artillery reader first (a single JSON
// document) and falls back to the k6 NDJSON reader.
func autodetectAndAnalyze(path string) (*perf.Analysis, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open results file: %w", err)
	}
	if analysis, err := perf.AnalyzeArtillery(f); err == nil {
		f.Close()
		return analysis, nil
	}
	f.Close()

	f, err = os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open results file: %w", err)
	}
	defer f.Close()
	return perf.AnalyzeK6(f)
}

func printAnalysis(a *perf.Analysis) {
	fmt.Printf("Source:            %s\n", a.Source)
	fmt.Printf("Total requests:    %d\n", a.TotalRequests)
	fmt.Printf("Failed requests:   %d\n", a.FailedRequests)
	fmt.Printf("Success rate:      %.2f%%\n", a.SuccessRate)
	fmt.Printf("Avg response time: %.2fms\n", a.AvgResponseTime)
	fmt.Printf("Min response time: %.2fms\n", a.MinResponseTime)
	fmt.Printf("Max response time: %.2fms\n", a.MaxResponseTime)
	fmt.Printf("P95 response time: %.2fms\n", a.P95ResponseTime)
	fmt.Printf("P99 response time: %.2fms\n", a.P99ResponseTime)
	fmt.Printf("Throughput:        %.2f req/s\n", a.Throughput)

	fmt.Println("\nInsights:")
	for _, insight := range perf.Insights(a) {
		fmt.Printf("  - %s\n", insight)
	}

	fmt.Println("\nRecommendations:")
	for _, rec := range perf.Recommendations(a) {
		fmt.Printf("  - %s\n", rec)
	}
}

func init() {
	perfCmd.Flags().StringVar(&perfFormat, "input-format", "auto", "results format: k6, artillery, or auto")
}
