package probes

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/gqlaudit/gqlaudit/internal/client"
	"github.com/gqlaudit/gqlaudit/internal/finding"
	"github.com/gqlaudit/gqlaudit/internal/harness"
	"github.com/gqlaudit/gqlaudit/internal/probe"
)

const (
	// bruteForceAttempts is how many wrong-password logins are issued
	// before concluding lockout is absent.
	bruteForceAttempts = 10
	bruteForceInterval = 100 * time.Millisecond

	// maxTokenLifetime flags JWTs whose exp claim lies further out.
	maxTokenLifetime = 24 * time.Hour
)

// AuthFailureProbe covers A07: brute force protection, authentication
// bypass, missing auth enforcement, and JWT lifetime.
type AuthFailureProbe struct{}

func (AuthFailureProbe) Category() finding.Category { return finding.CategoryAuthFailure }
func (AuthFailureProbe) Name() string               { return "authentication-failures" }

func (AuthFailureProbe) Execute(ctx context.Context, env *probe.ExecContext, tc *client.Client) ([]finding.Finding, error) {
	var out []finding.Finding

	out = append(out, checkBruteForceProtection(ctx, tc)...)
	out = append(out, checkUnauthenticatedMutation(ctx, tc)...)

	if env.Token != "" {
		out = append(out, checkTokenLifetime(env.Token)...)
	}

	return out, nil
}

// checkBruteForceProtection issues repeated wrong-password logins. Every
// attempt rejected with no slowdown means no lockout; an accepted wrong
// password is an outright bypass.
func checkBruteForceProtection(ctx context.Context, tc *client.Client) []finding.Finding {
	var bypass *finding.Finding
	failed := 0

	harness.RunBurst(ctx, bruteForceAttempts, bruteForceInterval, func(ctx context.Context, attempt int) harness.Outcome {
		password := fmt.Sprintf("wrongpassword%d", attempt)
		resp, err := tc.GraphQL(ctx, loginMutation, map[string]any{
			"username": "testuser",
			"password": password,
		}, nil)
		if err != nil {
			return harness.Outcome{Err: err}
		}
		if resp.OK() {
			result := resp.GraphQL()
			if login := result.Object("login"); login != nil {
				if token, _ := login["token"].(string); token != "" && bypass == nil {
					f := finding.New(
						finding.CategoryAuthFailure,
						finding.SeverityCritical,
						"Authentication Bypass",
						"Login succeeded with incorrect password",
						fmt.Sprintf("Password: %s", password),
					)
					bypass = &f
				}
			} else if result != nil && len(result.Errors) > 0 {
				failed++
			}
		}
		return harness.Outcome{Status: resp.Status, Elapsed: resp.Elapsed}
	})

	if bypass != nil {
		return []finding.Finding{*bypass}
	}
	if failed == bruteForceAttempts {
		return []finding.Finding{finding.New(
			finding.CategoryAuthFailure,
			finding.SeverityMedium,
			"No Brute Force Protection",
			fmt.Sprintf("No account lockout or rate limiting detected after %d failed login attempts", bruteForceAttempts),
			fmt.Sprintf("Failed attempts: %d", failed),
		)}
	}
	return nil
}

// checkUnauthenticatedMutation attempts a protected mutation with the
// bearer token stripped. A proper rejection is confirmed as INFO.
func checkUnauthenticatedMutation(ctx context.Context, tc *client.Client) []finding.Finding {
	// An empty Authorization override removes the session token.
	headers := map[string]string{"Authorization": ""}

	resp, err := tc.GraphQL(ctx, createReviewMutation, map[string]any{
		"input": map[string]any{
			"offerId": seededOfferID,
			"rating":  5,
			"text":    "Security test review",
		},
	}, headers)
	if err != nil || !resp.OK() {
		return nil
	}

	result := resp.GraphQL()
	if result.HasData("createReview") {
		created := result.Object("createReview")
		return []finding.Finding{finding.New(
			finding.CategoryAuthFailure,
			finding.SeverityCritical,
			"Authentication Bypass",
			"Protected mutations can be executed without authentication.",
			fmt.Sprintf("Created review without auth: %v", created["id"]),
		)}
	}
	if _, ok := probe.MatchAnySignature(result.ErrorMessages(), probe.AuthRejectionSignatures); ok {
		return []finding.Finding{finding.New(
			finding.CategoryAuthFailure,
			finding.SeverityInfo,
			"Authentication Required",
			"Authentication is properly enforced for protected operations.",
			"",
		)}
	}
	return nil
}

// checkTokenLifetime decodes the JWT exp claim and flags lifetimes over
// a day.
func checkTokenLifetime(token string) []finding.Finding {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return nil
	}
	decoded, err := decodeJWTSegment(parts[1])
	if err != nil {
		return nil
	}
	var claims struct {
		Exp int64 `json:"exp"`
	}
	if err := json.Unmarshal(decoded, &claims); err != nil || claims.Exp == 0 {
		return nil
	}

	remaining := time.Until(time.Unix(claims.Exp, 0))
	if remaining <= maxTokenLifetime {
		return nil
	}
	return []finding.Finding{finding.New(
		finding.CategoryAuthFailure,
		finding.SeverityMedium,
		"Long Token Expiration",
		"JWT tokens have very long expiration times",
		fmt.Sprintf("Token expires in %.1f hours", remaining.Hours()),
	)}
}
