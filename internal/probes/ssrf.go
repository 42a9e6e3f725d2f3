package probes

import (
	"context"
	"fmt"
	"time"

	"github.com/gqlaudit/gqlaudit/internal/client"
	"github.com/gqlaudit/gqlaudit/internal/finding"
	"github.com/gqlaudit/gqlaudit/internal/probe"
)

// ssrfTimingThreshold marks a URL payload as reaching the network when
// the response takes longer than this.
const ssrfTimingThreshold = 5 * time.Second

// SSRFProbe covers A10: it plants internal and file URLs in the
// avatarUrl profile field and watches for fetch errors or delays that
// betray a server-side request.
type SSRFProbe struct{}

func (SSRFProbe) Category() finding.Category { return finding.CategorySSRF }
func (SSRFProbe) Name() string               { return "server-side-request-forgery" }

func (SSRFProbe) Execute(ctx context.Context, env *probe.ExecContext, tc *client.Client) ([]finding.Finding, error) {
	var out []finding.Finding

	for _, payload := range ssrfPayloads {
		resp, err := tc.GraphQL(ctx, updateProfileMutation, map[string]any{
			"input": map[string]any{
				"avatarUrl": payload,
			},
		}, nil)
		if err != nil || !resp.OK() {
			continue
		}

		result := resp.GraphQL()
		if result == nil {
			continue
		}

		for _, msg := range result.ErrorMessages() {
			if _, ok := probe.MatchSignature(msg, probe.SSRFErrorSignatures); ok {
				out = append(out, finding.New(
					finding.CategorySSRF,
					finding.SeverityHigh,
					"Server-Side Request Forgery (SSRF)",
					fmt.Sprintf("SSRF vulnerability detected with payload: %s", payload),
					fmt.Sprintf("Error: %s", msg),
				))
				break
			}
		}

		if resp.Elapsed > ssrfTimingThreshold {
			out = append(out, finding.New(
				finding.CategorySSRF,
				finding.SeverityMedium,
				"Potential Time-based SSRF",
				fmt.Sprintf("Long response time with URL payload: %s", payload),
				fmt.Sprintf("Response time: %.2fs", resp.Elapsed.Seconds()),
			))
		}
	}

	return out, nil
}
