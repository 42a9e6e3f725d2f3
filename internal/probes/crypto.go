package probes

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/gqlaudit/gqlaudit/internal/client"
	"github.com/gqlaudit/gqlaudit/internal/finding"
	"github.com/gqlaudit/gqlaudit/internal/probe"
)

// CryptoProbe covers A02: unencrypted transport, weak JWT algorithms,
// and weak password acceptance.
type CryptoProbe struct{}

func (CryptoProbe) Category() finding.Category { return finding.CategoryCrypto }
func (CryptoProbe) Name() string               { return "cryptographic-failures" }

func (CryptoProbe) Execute(ctx context.Context, env *probe.ExecContext, tc *client.Client) ([]finding.Finding, error) {
	var out []finding.Finding

	if strings.HasPrefix(env.Target, "http://") {
		out = append(out, finding.New(
			finding.CategoryCrypto,
			finding.SeverityHigh,
			"Unencrypted Communication",
			"Application is accessible over HTTP instead of HTTPS",
			fmt.Sprintf("URL: %s", env.Target),
		))
	}

	if env.Token != "" {
		if alg, weak := weakJWTAlgorithm(env.Token); weak {
			out = append(out, finding.New(
				finding.CategoryCrypto,
				finding.SeverityMedium,
				"Weak JWT Algorithm",
				fmt.Sprintf("JWT uses potentially weak algorithm: %s", alg),
				fmt.Sprintf("Algorithm: %s", alg),
			))
		}
	}

	out = append(out, checkWeakPasswordPolicy(ctx, tc)...)
	return out, nil
}

// weakJWTAlgorithm decodes the JWT header and flags none/HS256. A token
// that is not a JWT is simply skipped.
func weakJWTAlgorithm(token string) (string, bool) {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return "", false
	}
	decoded, err := decodeJWTSegment(parts[0])
	if err != nil {
		return "", false
	}
	var header struct {
		Alg string `json:"alg"`
	}
	if err := json.Unmarshal(decoded, &header); err != nil {
		return "", false
	}
	alg := strings.ToUpper(header.Alg)
	return alg, alg == "NONE" || alg == "HS256"
}

// decodeJWTSegment handles the unpadded base64url encoding of JWT parts.
func decodeJWTSegment(segment string) ([]byte, error) {
	if pad := len(segment) % 4; pad != 0 {
		segment += strings.Repeat("=", 4-pad)
	}
	return base64.URLEncoding.DecodeString(segment)
}

// checkWeakPasswordPolicy offers the target a three-character password.
func checkWeakPasswordPolicy(ctx context.Context, tc *client.Client) []finding.Finding {
	resp, err := tc.GraphQL(ctx, changePasswordMutation, map[string]any{
		"oldPassword": "oldpass123",
		"newPassword": "123",
	}, nil)
	if err != nil || !resp.OK() {
		return nil
	}

	change := resp.GraphQL().Object("changePassword")
	if change == nil {
		return nil
	}
	if ok, _ := change["success"].(bool); !ok {
		return nil
	}
	return []finding.Finding{finding.New(
		finding.CategoryCrypto,
		finding.SeverityMedium,
		"Weak Password Policy",
		"System accepts very weak passwords",
		`Accepted password: "123"`,
	)}
}
