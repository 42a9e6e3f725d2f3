package probes

import (
	"context"
	"fmt"

	"github.com/gqlaudit/gqlaudit/internal/client"
	"github.com/gqlaudit/gqlaudit/internal/finding"
	"github.com/gqlaudit/gqlaudit/internal/probe"
)

// MisconfigProbe covers A05: introspection exposure, verbose error
// messages, and default credentials.
type MisconfigProbe struct{}

func (MisconfigProbe) Category() finding.Category { return finding.CategoryMisconfig }
func (MisconfigProbe) Name() string               { return "security-misconfiguration" }

func (MisconfigProbe) Execute(ctx context.Context, env *probe.ExecContext, tc *client.Client) ([]finding.Finding, error) {
	var out []finding.Finding

	out = append(out, checkIntrospection(ctx, tc)...)
	out = append(out, checkVerboseErrors(ctx, tc)...)
	out = append(out, checkDefaultCredentials(ctx, tc)...)

	return out, nil
}

// checkIntrospection asks for the schema. Either answer is recorded:
// exposure as MEDIUM, a refusal as an INFO confirmation.
func checkIntrospection(ctx context.Context, tc *client.Client) []finding.Finding {
	resp, err := tc.GraphQL(ctx, introspectionQry, nil, nil)
	if err != nil || !resp.OK() {
		return nil
	}

	schema := resp.GraphQL().Object("__schema")
	if schema == nil {
		return []finding.Finding{finding.New(
			finding.CategoryMisconfig,
			finding.SeverityInfo,
			"GraphQL Introspection Disabled",
			"GraphQL introspection is properly disabled.",
			"",
		)}
	}

	types, _ := schema["types"].([]any)
	return []finding.Finding{finding.New(
		finding.CategoryMisconfig,
		finding.SeverityMedium,
		"GraphQL Introspection Enabled",
		"GraphQL introspection is enabled in production",
		fmt.Sprintf("Schema types exposed: %d", len(types)),
	)}
}

// checkVerboseErrors provokes error responses with malformed queries and
// scans the messages for internals leakage.
func checkVerboseErrors(ctx context.Context, tc *client.Client) []finding.Finding {
	invalidQueries := []string{
		invalidFieldQry,
		`query { user(id: "invalid-uuid") { id } }`,
		"mutation { nonExistentMutation }",
		"query { review(id: null) { id } }",
	}

	var out []finding.Finding
	for _, query := range invalidQueries {
		resp, err := tc.GraphQL(ctx, query, nil, nil)
		if err != nil || !resp.OK() {
			continue
		}
		result := resp.GraphQL()
		if result == nil {
			continue
		}
		for _, msg := range result.ErrorMessages() {
			if sig, ok := probe.MatchSignature(msg, probe.SensitiveErrorSignatures); ok {
				out = append(out, finding.New(
					finding.CategoryMisconfig,
					finding.SeverityMedium,
					"Information Disclosure in Error Messages",
					"Error messages contain sensitive information",
					fmt.Sprintf("Pattern %q in error: %s", sig, msg),
				))
				break
			}
		}
	}
	return out
}

// checkDefaultCredentials walks the stock username/password pairs
// through the login mutation.
func checkDefaultCredentials(ctx context.Context, tc *client.Client) []finding.Finding {
	var out []finding.Finding
	for _, cred := range defaultCredentials {
		username, password := cred[0], cred[1]
		resp, err := tc.GraphQL(ctx, loginMutation, map[string]any{
			"username": username,
			"password": password,
		}, nil)
		if err != nil || !resp.OK() {
			continue
		}
		login := resp.GraphQL().Object("login")
		if login == nil {
			continue
		}
		token, _ := login["token"].(string)
		if token == "" {
			continue
		}
		user, _ := login["user"].(map[string]any)
		out = append(out, finding.New(
			finding.CategoryMisconfig,
			finding.SeverityCritical,
			"Default Credentials",
			fmt.Sprintf("Default credentials work: %s/%s", username, password),
			fmt.Sprintf("User roles: %v", user["roles"]),
		))
	}
	return out
}
