package probes

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gqlaudit/gqlaudit/internal/client"
	"github.com/gqlaudit/gqlaudit/internal/finding"
	"github.com/gqlaudit/gqlaudit/internal/probe"
)

// timingInjectionThreshold marks a pg_sleep payload as effective when
// the response takes longer than this.
const timingInjectionThreshold = 4 * time.Second

// InjectionProbe covers A03: SQL, NoSQL, GraphQL document splicing, and
// stored XSS.
type InjectionProbe struct{}

func (InjectionProbe) Category() finding.Category { return finding.CategoryInjection }
func (InjectionProbe) Name() string               { return "injection" }

func (InjectionProbe) Execute(ctx context.Context, env *probe.ExecContext, tc *client.Client) ([]finding.Finding, error) {
	var out []finding.Finding

	out = append(out, checkSQLInjection(ctx, tc)...)
	out = append(out, checkNoSQLInjection(ctx, tc)...)
	out = append(out, checkGraphQLSplicing(ctx, tc)...)
	out = append(out, checkStoredXSS(ctx, tc)...)

	return out, nil
}

// checkSQLInjection feeds SQL payloads through the review ID argument
// and watches for database error fingerprints or sleep-induced delays.
// The first hit of each kind ends that detection.
func checkSQLInjection(ctx context.Context, tc *client.Client) []finding.Finding {
	var out []finding.Finding
	errorFound, timingFound := false, false

	for _, payload := range sqlInjectionPayloads {
		if errorFound && timingFound {
			break
		}
		resp, err := tc.GraphQL(ctx, reviewByIDQuery, map[string]any{"id": payload}, nil)
		if err != nil || !resp.OK() {
			continue
		}

		if !errorFound {
			if sig, ok := probe.MatchSignature(string(resp.Body), probe.SQLErrorSignatures); ok {
				errorFound = true
				out = append(out, finding.New(
					finding.CategoryInjection,
					finding.SeverityCritical,
					"SQL Injection Vulnerability",
					fmt.Sprintf("SQL injection detected with payload: %s", payload),
					fmt.Sprintf("Error pattern found: %s", sig),
				))
			}
		}

		if !timingFound && strings.Contains(payload, "pg_sleep") && resp.Elapsed > timingInjectionThreshold {
			timingFound = true
			out = append(out, finding.New(
				finding.CategoryInjection,
				finding.SeverityCritical,
				"Time-based SQL Injection",
				fmt.Sprintf("Time-based SQL injection detected with payload: %s", payload),
				fmt.Sprintf("Response time: %.2fs", resp.Elapsed.Seconds()),
			))
		}
	}
	return out
}

// checkNoSQLInjection smuggles operator objects through the reviews
// filter argument. Data coming back means the operator reached a query
// engine.
func checkNoSQLInjection(ctx context.Context, tc *client.Client) []finding.Finding {
	for _, payload := range nosqlInjectionPayloads {
		resp, err := tc.GraphQL(ctx, reviewsFilterQuery, map[string]any{"filter": payload}, nil)
		if err != nil || !resp.OK() {
			continue
		}
		reviews := resp.GraphQL().Object("reviews")
		if reviews == nil {
			continue
		}
		edges, _ := reviews["edges"].([]any)
		if len(edges) == 0 {
			continue
		}
		return []finding.Finding{finding.New(
			finding.CategoryInjection,
			finding.SeverityHigh,
			"Potential NoSQL Injection",
			fmt.Sprintf("NoSQL injection payload returned data: %v", payload),
			fmt.Sprintf("Returned %d reviews", len(edges)),
		)}
	}
	return nil
}

// checkGraphQLSplicing interpolates breakout payloads directly into the
// query document. Sensitive data or schema leakage in the response means
// the splice executed.
func checkGraphQLSplicing(ctx context.Context, tc *client.Client) []finding.Finding {
	for _, payload := range graphqlSplicePayloads {
		query := fmt.Sprintf(`query GraphQLSpliceTest { user(id: "%s") { id name } }`, payload)
		resp, err := tc.GraphQL(ctx, query, nil, nil)
		if err != nil || !resp.OK() {
			continue
		}
		result := resp.GraphQL()
		if result == nil || len(result.Data) == 0 {
			continue
		}
		if resp.BodyContains("password") || resp.BodyContains("__schema") {
			return []finding.Finding{finding.New(
				finding.CategoryInjection,
				finding.SeverityHigh,
				"GraphQL Injection Vulnerability",
				fmt.Sprintf("GraphQL injection successful with payload: %s", payload),
				"Response contains sensitive data",
			)}
		}
	}
	return nil
}

// checkStoredXSS submits script payloads as review text and reports when
// the target echoes them back unsanitized.
func checkStoredXSS(ctx context.Context, tc *client.Client) []finding.Finding {
	var out []finding.Finding
	for _, payload := range xssPayloads {
		resp, err := tc.GraphQL(ctx, createReviewMutation, map[string]any{
			"input": map[string]any{
				"offerId": seededOfferID,
				"rating":  5,
				"text":    payload,
			},
		}, nil)
		if err != nil || !resp.OK() {
			continue
		}
		review := resp.GraphQL().Object("createReview")
		if review == nil {
			continue
		}
		text, _ := review["text"].(string)
		if !strings.Contains(text, payload) {
			continue
		}
		out = append(out, finding.New(
			finding.CategoryInjection,
			finding.SeverityHigh,
			"Stored XSS Vulnerability",
			fmt.Sprintf("XSS payload was stored without sanitization: %s", payload),
			fmt.Sprintf("Review ID: %v", review["id"]),
		))
	}
	return out
}
