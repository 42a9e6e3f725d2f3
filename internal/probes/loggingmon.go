package probes

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gqlaudit/gqlaudit/internal/client"
	"github.com/gqlaudit/gqlaudit/internal/finding"
	"github.com/gqlaudit/gqlaudit/internal/harness"
	"github.com/gqlaudit/gqlaudit/internal/probe"
)

const (
	// rateLimitRequests is the burst size used to detect rate limiting.
	rateLimitRequests = 50
	rateLimitInterval = 10 * time.Millisecond
)

// LoggingProbe covers A09: it infers monitoring posture from whether the
// target rate limits a rapid request burst.
type LoggingProbe struct{}

func (LoggingProbe) Category() finding.Category { return finding.CategoryLogging }
func (LoggingProbe) Name() string               { return "logging-monitoring" }

func (LoggingProbe) Execute(ctx context.Context, env *probe.ExecContext, tc *client.Client) ([]finding.Finding, error) {
	limitedAt := -1

	outcomes := harness.RunBurst(ctx, rateLimitRequests, rateLimitInterval, func(ctx context.Context, attempt int) harness.Outcome {
		resp, err := tc.GraphQL(ctx, trivialQuery, nil, nil)
		if err != nil {
			return harness.Outcome{Err: err}
		}
		status := resp.Status
		// Some gateways answer 403 with a rate limit message.
		if status == http.StatusForbidden {
			if _, ok := probe.MatchSignature(string(resp.Body), probe.RateLimitSignatures); ok {
				status = http.StatusTooManyRequests
			}
		}
		if status == http.StatusTooManyRequests && limitedAt < 0 {
			limitedAt = attempt
		}
		return harness.Outcome{Status: status, Elapsed: resp.Elapsed}
	})

	summary := harness.Summarize(outcomes)
	if summary.RateLimited > 0 {
		return []finding.Finding{finding.New(
			finding.CategoryLogging,
			finding.SeverityInfo,
			"Rate Limiting Detected",
			"System has rate limiting in place (good security practice)",
			fmt.Sprintf("Rate limited after %d requests", limitedAt),
		)}, nil
	}
	if summary.Total < rateLimitRequests {
		// The burst was cut short, not enough evidence either way.
		return nil, nil
	}
	return []finding.Finding{finding.New(
		finding.CategoryLogging,
		finding.SeverityMedium,
		"No Rate Limiting Detected",
		"No rate limiting detected, security events may not be monitored",
		fmt.Sprintf("Completed %d rapid requests without rate limiting", rateLimitRequests),
	)}, nil
}
