package probes

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/gqlaudit/gqlaudit/internal/client"
	"github.com/gqlaudit/gqlaudit/internal/finding"
	"github.com/gqlaudit/gqlaudit/internal/probe"
)

// AccessControlProbe covers A01: vertical and horizontal privilege
// escalation, direct object references, and mutations over GET.
type AccessControlProbe struct{}

func (AccessControlProbe) Category() finding.Category { return finding.CategoryAccessControl }
func (AccessControlProbe) Name() string               { return "broken-access-control" }

func (AccessControlProbe) Execute(ctx context.Context, env *probe.ExecContext, tc *client.Client) ([]finding.Finding, error) {
	var out []finding.Finding

	out = append(out, checkVerticalEscalation(ctx, tc)...)
	out = append(out, checkHorizontalEscalation(ctx, tc)...)
	out = append(out, checkDirectObjectReferences(ctx, tc)...)
	out = append(out, checkMutationOverGET(ctx, env, tc)...)

	return out, nil
}

// checkVerticalEscalation attempts an admin-only moderation mutation
// with regular-user credentials.
func checkVerticalEscalation(ctx context.Context, tc *client.Client) []finding.Finding {
	resp, err := tc.GraphQL(ctx, moderateReviewMutation, map[string]any{
		"reviewId": seededReviewID,
		"status":   "APPROVED",
	}, nil)
	if err != nil || !resp.OK() {
		return nil
	}

	result := resp.GraphQL()
	if !result.HasData("moderateReview") {
		return nil
	}
	moderated := result.Object("moderateReview")
	return []finding.Finding{finding.New(
		finding.CategoryAccessControl,
		finding.SeverityCritical,
		"Vertical Privilege Escalation",
		"Regular users can perform admin operations (review moderation)",
		fmt.Sprintf("Moderated review: %v", moderated["id"]),
	)}
}

// checkHorizontalEscalation requests another user's private fields.
func checkHorizontalEscalation(ctx context.Context, tc *client.Client) []finding.Finding {
	resp, err := tc.GraphQL(ctx, userPrivateDataQuery, map[string]any{
		"userId": foreignUserID,
	}, nil)
	if err != nil || !resp.OK() {
		return nil
	}

	user := resp.GraphQL().Object("user")
	if user == nil {
		return nil
	}

	var exposed []string
	for _, field := range []string{"email", "phone", "address", "paymentMethods"} {
		if v, ok := user[field]; ok && v != nil {
			exposed = append(exposed, field)
		}
	}
	if len(exposed) == 0 {
		return nil
	}
	return []finding.Finding{finding.New(
		finding.CategoryAccessControl,
		finding.SeverityHigh,
		"Horizontal Privilege Escalation",
		"Users can access other users' private data",
		fmt.Sprintf("Exposed fields: %v", exposed),
	)}
}

// checkDirectObjectReferences sweeps sequential review IDs looking for
// records readable without ownership checks.
func checkDirectObjectReferences(ctx context.Context, tc *client.Client) []finding.Finding {
	reviewIDs := []string{
		"770e8400-e29b-41d4-a716-446655440001",
		"770e8400-e29b-41d4-a716-446655440002",
		"770e8400-e29b-41d4-a716-446655440003",
	}

	accessible := 0
	for _, id := range reviewIDs {
		resp, err := tc.GraphQL(ctx, reviewWithAuthorQuery, map[string]any{"id": id}, nil)
		if err != nil || !resp.OK() {
			continue
		}
		if resp.GraphQL().HasData("review") {
			accessible++
		}
	}
	if accessible == 0 {
		return nil
	}
	return []finding.Finding{finding.New(
		finding.CategoryAccessControl,
		finding.SeverityMedium,
		"Insecure Direct Object References",
		"Reviews can be accessed directly without proper authorization checks",
		fmt.Sprintf("Accessible reviews: %d/%d", accessible, len(reviewIDs)),
	)}
}

// checkMutationOverGET sends a state-changing mutation as a GET query
// parameter. Accepting it leaves the endpoint open to CSRF.
func checkMutationOverGET(ctx context.Context, env *probe.ExecContext, tc *client.Client) []finding.Finding {
	mutation := `mutation { createReview(input: {offerId: "` + seededOfferID + `", rating: 5, text: "get test"}) { id } }`
	gqlPath := env.GraphQLPath
	if gqlPath == "" {
		gqlPath = "/graphql"
	}
	path := gqlPath + "?query=" + url.QueryEscape(mutation)

	resp, err := tc.Do(ctx, http.MethodGet, path, nil, nil)
	if err != nil || !resp.OK() {
		return nil
	}
	if !resp.GraphQL().HasData("createReview") {
		return nil
	}
	return []finding.Finding{finding.New(
		finding.CategoryAccessControl,
		finding.SeverityHigh,
		"Mutation Accepted Over GET",
		"State-changing mutations execute via GET requests, enabling cross-site request forgery",
		"createReview succeeded through a GET query parameter",
	)}
}
