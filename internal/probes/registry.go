package probes

import "github.com/gqlaudit/gqlaudit/internal/probe"

// DefaultRegistry returns the built-in probe set, registered in OWASP
// Top 10 order.
func DefaultRegistry() *probe.Registry {
	reg := probe.NewRegistry()
	reg.Register(AccessControlProbe{})
	reg.Register(CryptoProbe{})
	reg.Register(InjectionProbe{})
	reg.Register(InsecureDesignProbe{})
	reg.Register(MisconfigProbe{})
	reg.Register(ComponentsProbe{})
	reg.Register(AuthFailureProbe{})
	reg.Register(IntegrityProbe{})
	reg.Register(LoggingProbe{})
	reg.Register(SSRFProbe{})
	return reg
}
