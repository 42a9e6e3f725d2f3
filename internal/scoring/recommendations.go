package scoring

import (
	"sort"

	"github.com/gqlaudit/gqlaudit/internal/finding"
)

// categoryRecommendations is the fixed remediation advice per weakness
// category. A category's bullets enter the report only when it holds at
// least one HIGH or CRITICAL finding.
var categoryRecommendations = map[finding.Category][]string{
	finding.CategoryAccessControl: {
		"Implement proper access control checks for all operations",
		"Use role-based access control (RBAC) consistently",
		"Validate user permissions at the API level",
	},
	finding.CategoryCrypto: {
		"Enforce HTTPS for all communications",
		"Use strong cryptographic algorithms (AES-256, RSA-2048+)",
		"Implement proper key management",
	},
	finding.CategoryInjection: {
		"Use parameterized queries to prevent SQL injection",
		"Implement input validation and sanitization",
		"Use GraphQL query complexity analysis",
	},
	finding.CategoryInsecureDesign: {
		"Implement proper business logic validation",
		"Add concurrency controls for critical operations",
		"Conduct threat modeling for business processes",
	},
	finding.CategoryMisconfig: {
		"Disable GraphQL introspection in production",
		"Remove verbose error messages",
		"Implement security headers and configurations",
	},
	finding.CategoryComponents: {
		"Keep all dependencies up to date",
		"Run regular vulnerability scanning of components",
		"Remove unused dependencies and features",
	},
	finding.CategoryAuthFailure: {
		"Implement strong authentication mechanisms",
		"Add brute force protection",
		"Use appropriate session timeouts",
	},
	finding.CategoryIntegrity: {
		"Implement JWT signature verification",
		"Add data integrity checks",
		"Use secure software update mechanisms",
	},
	finding.CategoryLogging: {
		"Implement comprehensive security logging",
		"Set up security monitoring and alerting",
		"Monitor for suspicious activities",
	},
	finding.CategorySSRF: {
		"Validate and sanitize all URLs",
		"Implement URL allowlists for external requests",
		"Use network segmentation to limit SSRF impact",
	},
}

// Recommendations derives the remediation list: collect each
// non-compliant category's bullets, deduplicate, and sort
// lexicographically so identical finding sets always render identically.
func Recommendations(findings []finding.Finding) []string {
	flagged := make(map[finding.Category]bool)
	for _, f := range findings {
		if f.Severity.Actionable() {
			flagged[f.Category] = true
		}
	}

	seen := make(map[string]bool)
	out := make([]string, 0)
	for cat := range flagged {
		for _, rec := range categoryRecommendations[cat] {
			if !seen[rec] {
				seen[rec] = true
				out = append(out, rec)
			}
		}
	}

	sort.Strings(out)
	return out
}
