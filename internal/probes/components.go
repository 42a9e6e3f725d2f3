package probes

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gqlaudit/gqlaudit/internal/client"
	"github.com/gqlaudit/gqlaudit/internal/finding"
	"github.com/gqlaudit/gqlaudit/internal/probe"
)

// ComponentsProbe covers A06: version disclosure in the Server header
// and reachable development endpoints.
type ComponentsProbe struct{}

func (ComponentsProbe) Category() finding.Category { return finding.CategoryComponents }
func (ComponentsProbe) Name() string               { return "vulnerable-components" }

func (ComponentsProbe) Execute(ctx context.Context, env *probe.ExecContext, tc *client.Client) ([]finding.Finding, error) {
	var out []finding.Finding

	resp, err := tc.Do(ctx, http.MethodGet, "/", nil, nil)
	if err == nil {
		server := resp.Headers.Get("Server")
		if server != "" {
			if _, ok := probe.MatchSignature(server, probe.VersionedServerSignatures); ok {
				out = append(out, finding.New(
					finding.CategoryComponents,
					finding.SeverityMedium,
					"Server Version Disclosure",
					fmt.Sprintf("Server header exposes potentially vulnerable version: %s", server),
					fmt.Sprintf("Server: %s", server),
				))
			}
		}
	}

	for _, path := range exposedEndpointPaths {
		resp, err := tc.Do(ctx, http.MethodGet, path, nil, nil)
		if err != nil || resp.Status != http.StatusOK {
			continue
		}
		out = append(out, finding.New(
			finding.CategoryComponents,
			finding.SeverityLow,
			"Exposed Development Endpoint",
			fmt.Sprintf("Development/admin endpoint is accessible: %s", path),
			fmt.Sprintf("Status: %d", resp.Status),
		))
	}

	return out, nil
}
