package probes

import (
	"context"
	"fmt"

	"github.com/gqlaudit/gqlaudit/internal/client"
	"github.com/gqlaudit/gqlaudit/internal/finding"
	"github.com/gqlaudit/gqlaudit/internal/harness"
	"github.com/gqlaudit/gqlaudit/internal/probe"
)

// raceWorkers is how many createReview requests are released at once for
// the race condition check.
const raceWorkers = 5

// InsecureDesignProbe covers A04: duplicate-review business logic, race
// conditions on creation, and missing depth/complexity limits.
type InsecureDesignProbe struct{}

func (InsecureDesignProbe) Category() finding.Category { return finding.CategoryInsecureDesign }
func (InsecureDesignProbe) Name() string               { return "insecure-design" }

func (InsecureDesignProbe) Execute(ctx context.Context, env *probe.ExecContext, tc *client.Client) ([]finding.Finding, error) {
	var out []finding.Finding

	out = append(out, checkDuplicateReviews(ctx, tc)...)
	out = append(out, checkReviewRaceCondition(ctx, tc)...)
	out = append(out, checkDepthLimiting(ctx, tc)...)
	out = append(out, checkComplexityLimiting(ctx, tc)...)

	return out, nil
}

// checkDuplicateReviews creates three reviews for the same offer in
// sequence. More than one success means the one-review-per-offer rule is
// missing.
func checkDuplicateReviews(ctx context.Context, tc *client.Client) []finding.Finding {
	successes := 0
	for i := 0; i < 3; i++ {
		resp, err := tc.GraphQL(ctx, createReviewMutation, map[string]any{
			"input": map[string]any{
				"offerId": seededOfferID,
				"rating":  5,
				"text":    fmt.Sprintf("Business logic test review %d", i),
			},
		}, nil)
		if err != nil || !resp.OK() {
			continue
		}
		if resp.GraphQL().HasData("createReview") {
			successes++
		}
	}
	if successes <= 1 {
		return nil
	}
	return []finding.Finding{finding.New(
		finding.CategoryInsecureDesign,
		finding.SeverityMedium,
		"Business Logic Flaw",
		"Users can create multiple reviews for the same offer",
		fmt.Sprintf("Created %d reviews for the same offer", successes),
	)}
}

// checkReviewRaceCondition releases concurrent createReview requests
// through a shared start gate. Multiple successes mean creation is not
// serialized.
func checkReviewRaceCondition(ctx context.Context, tc *client.Client) []finding.Finding {
	outcomes := harness.RunConcurrent(ctx, raceWorkers, func(ctx context.Context, attempt int) harness.Outcome {
		resp, err := tc.GraphQL(ctx, createReviewMutation, map[string]any{
			"input": map[string]any{
				"offerId": seededOfferID,
				"rating":  4,
				"text":    "Race condition test",
			},
		}, nil)
		if err != nil {
			return harness.Outcome{Err: err}
		}
		status := resp.Status
		if resp.OK() && !resp.GraphQL().HasData("createReview") {
			// HTTP 200 with a GraphQL error is a rejected create.
			status = 422
		}
		return harness.Outcome{Status: status, Elapsed: resp.Elapsed}
	})

	summary := harness.Summarize(outcomes)
	if summary.Successes <= 1 {
		return nil
	}
	return []finding.Finding{finding.New(
		finding.CategoryInsecureDesign,
		finding.SeverityMedium,
		"Race Condition Vulnerability",
		"Concurrent review creation is not properly handled",
		fmt.Sprintf("Successfully created %d concurrent reviews", summary.Successes),
	)}
}

// checkDepthLimiting sends a deeply nested query. A depth error is the
// control working; data back is a resource exhaustion vector.
func checkDepthLimiting(ctx context.Context, tc *client.Client) []finding.Finding {
	resp, err := tc.GraphQL(ctx, deepNestedQuery, nil, nil)
	if err != nil || !resp.OK() {
		return nil
	}
	result := resp.GraphQL()
	if result == nil {
		return nil
	}

	for _, msg := range result.ErrorMessages() {
		if _, ok := probe.MatchSignature(msg, []string{"depth"}); ok {
			return []finding.Finding{finding.New(
				finding.CategoryInsecureDesign,
				finding.SeverityInfo,
				"Query Depth Limiting Enabled",
				"Query depth limiting is properly configured.",
				fmt.Sprintf("Depth limit error: %s", msg),
			)}
		}
	}
	if len(result.Data) == 0 {
		return nil
	}
	return []finding.Finding{finding.New(
		finding.CategoryInsecureDesign,
		finding.SeverityHigh,
		"No Query Depth Limiting",
		"Deep nested queries are allowed, which could lead to DoS attacks.",
		"Deep query executed successfully without depth limit error",
	)}
}

// checkComplexityLimiting sends a wide, expensive query and looks for a
// cost analysis rejection.
func checkComplexityLimiting(ctx context.Context, tc *client.Client) []finding.Finding {
	resp, err := tc.GraphQL(ctx, complexWideQuery, nil, nil)
	if err != nil || !resp.OK() {
		return nil
	}
	result := resp.GraphQL()
	if result == nil {
		return nil
	}

	for _, msg := range result.ErrorMessages() {
		if _, ok := probe.MatchSignature(msg, []string{"complexity", "cost", "limit"}); ok {
			return []finding.Finding{finding.New(
				finding.CategoryInsecureDesign,
				finding.SeverityInfo,
				"Query Complexity Limiting Enabled",
				"Query complexity limiting is properly configured.",
				fmt.Sprintf("Complexity limit error: %s", msg),
			)}
		}
	}
	if len(result.Data) == 0 {
		return nil
	}
	return []finding.Finding{finding.New(
		finding.CategoryInsecureDesign,
		finding.SeverityHigh,
		"No Query Complexity Limiting",
		"Complex queries are allowed without limits, which could lead to resource exhaustion.",
		"Complex query executed successfully without complexity limit error",
	)}
}
