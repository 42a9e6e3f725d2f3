// Package probe defines the contract every weakness check satisfies and
// the registry/dispatcher machinery that runs checks category by
// category, collecting findings and isolating failures.
package probe

import (
	"context"
	"time"

	"github.com/gqlaudit/gqlaudit/internal/client"
	"github.com/gqlaudit/gqlaudit/internal/finding"
)

// ExecContext carries the read-only configuration shared by every probe
// in one scan. No probe mutates it.
type ExecContext struct {
	// Target is the normalized base address of the endpoint under test.
	Target string

	// GraphQLPath is the path of the GraphQL endpoint, default /graphql.
	GraphQLPath string

	// Token is the optional bearer credential supplied by the operator.
	Token string

	// Timeout is the per-probe time budget.
	Timeout time.Duration
}

// Probe is a single self-contained weakness check. Expected failure
// responses (HTTP errors, GraphQL error payloads, refused connections)
// are interpreted into findings or silence; only an unusable network
// layer or a malformed context surfaces as an error.
type Probe interface {
	// Category is the weakness class this probe reports under.
	Category() finding.Category

	// Name identifies the probe in diagnostics.
	Name() string

	// Execute runs the check and returns zero or more findings.
	Execute(ctx context.Context, env *ExecContext, tc *client.Client) ([]finding.Finding, error)
}
