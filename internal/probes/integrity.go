package probes

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/gqlaudit/gqlaudit/internal/client"
	"github.com/gqlaudit/gqlaudit/internal/finding"
	"github.com/gqlaudit/gqlaudit/internal/probe"
)

// IntegrityProbe covers A08: JWT signature verification and server-side
// validation of mutation input.
type IntegrityProbe struct{}

func (IntegrityProbe) Category() finding.Category { return finding.CategoryIntegrity }
func (IntegrityProbe) Name() string               { return "integrity-failures" }

func (IntegrityProbe) Execute(ctx context.Context, env *probe.ExecContext, tc *client.Client) ([]finding.Finding, error) {
	var out []finding.Finding

	if env.Token != "" {
		out = append(out, checkSignatureVerification(ctx, env.Token, tc)...)
	}
	out = append(out, checkRatingValidation(ctx, tc)...)

	return out, nil
}

// checkSignatureVerification replaces the JWT signature segment and
// replays the token. Acceptance is CRITICAL; a rejection is confirmed as
// INFO.
func checkSignatureVerification(ctx context.Context, token string, tc *client.Client) []finding.Finding {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return nil
	}
	forged := base64.RawURLEncoding.EncodeToString([]byte("modified_signature"))
	tampered := parts[0] + "." + parts[1] + "." + forged

	resp, err := tc.GraphQL(ctx, trivialQuery, nil, map[string]string{
		"Authorization": "Bearer " + tampered,
	})
	if err != nil || !resp.OK() {
		return nil
	}

	result := resp.GraphQL()
	if result != nil && len(result.Data) > 0 {
		return []finding.Finding{finding.New(
			finding.CategoryIntegrity,
			finding.SeverityCritical,
			"JWT Signature Not Verified",
			"Modified JWT tokens are accepted without signature verification",
			"Modified signature accepted",
		)}
	}
	if _, ok := probe.MatchAnySignature(result.ErrorMessages(), probe.AuthRejectionSignatures); ok {
		return []finding.Finding{finding.New(
			finding.CategoryIntegrity,
			finding.SeverityInfo,
			"JWT Signature Verified",
			"Tampered tokens are rejected.",
			"",
		)}
	}
	return nil
}

// checkRatingValidation submits an out-of-range rating. The value coming
// back unchanged means server-side validation is missing.
func checkRatingValidation(ctx context.Context, tc *client.Client) []finding.Finding {
	resp, err := tc.GraphQL(ctx, createReviewMutation, map[string]any{
		"input": map[string]any{
			"offerId": seededOfferID,
			"rating":  10,
			"text":    "Data integrity test",
		},
	}, nil)
	if err != nil || !resp.OK() {
		return nil
	}

	review := resp.GraphQL().Object("createReview")
	if review == nil {
		return nil
	}
	rating, _ := review["rating"].(float64)
	if rating != 10 {
		return nil
	}
	return []finding.Finding{finding.New(
		finding.CategoryIntegrity,
		finding.SeverityHigh,
		"Data Validation Bypass",
		"Invalid data values are accepted without proper validation",
		fmt.Sprintf("Invalid rating accepted: %d", int(rating)),
	)}
}
