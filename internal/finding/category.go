package finding

// Category identifies the weakness class a probe or finding belongs to.
// The codes follow the OWASP Top 10 (2021) numbering used by the report.
type Category string

const (
	CategoryAccessControl  Category = "A01:2021"
	CategoryCrypto         Category = "A02:2021"
	CategoryInjection      Category = "A03:2021"
	CategoryInsecureDesign Category = "A04:2021"
	CategoryMisconfig      Category = "A05:2021"
	CategoryComponents     Category = "A06:2021"
	CategoryAuthFailure    Category = "A07:2021"
	CategoryIntegrity      Category = "A08:2021"
	CategoryLogging        Category = "A09:2021"
	CategorySSRF           Category = "A10:2021"
)

var categoryNames = map[Category]string{
	CategoryAccessControl:  "Broken Access Control",
	CategoryCrypto:         "Cryptographic Failures",
	CategoryInjection:      "Injection",
	CategoryInsecureDesign: "Insecure Design",
	CategoryMisconfig:      "Security Misconfiguration",
	CategoryComponents:     "Vulnerable and Outdated Components",
	CategoryAuthFailure:    "Identification and Authentication Failures",
	CategoryIntegrity:      "Software and Data Integrity Failures",
	CategoryLogging:        "Security Logging and Monitoring Failures",
	CategorySSRF:           "Server-Side Request Forgery (SSRF)",
}

// AllCategories returns every weakness category in report order.
func AllCategories() []Category {
	return []Category{
		CategoryAccessControl,
		CategoryCrypto,
		CategoryInjection,
		CategoryInsecureDesign,
		CategoryMisconfig,
		CategoryComponents,
		CategoryAuthFailure,
		CategoryIntegrity,
		CategoryLogging,
		CategorySSRF,
	}
}

// Name returns the human-readable category title.
func (c Category) Name() string {
	if name, ok := categoryNames[c]; ok {
		return name
	}
	return string(c)
}

// IsValid reports whether c is one of the known weakness categories.
func (c Category) IsValid() bool {
	_, ok := categoryNames[c]
	return ok
}

func (c Category) String() string {
	return string(c)
}
