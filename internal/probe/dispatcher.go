package probe

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/gqlaudit/gqlaudit/internal/client"
	"github.com/gqlaudit/gqlaudit/internal/finding"
	sharederrors "github.com/gqlaudit/gqlaudit/internal/shared/errors"
)

// Diagnostic records a probe-level failure. Diagnostics are not
// findings: they describe scan coverage, not target weaknesses.
type Diagnostic struct {
	Category finding.Category `json:"category"`
	Probe    string           `json:"probe"`
	Error    string           `json:"error"`
}

// Dispatcher drives a registry against one target: categories run in
// registration order, probes within a category sequentially. A probe
// failure or timeout is caught at the dispatch boundary and the scan
// continues with whatever probes remain.
type Dispatcher struct {
	Logger    *zap.SugaredLogger
	RateLimit int // probe starts per second, 0 = unlimited

	// OnCategory, if set, is invoked before each category begins.
	OnCategory func(cat finding.Category)

	// OnFindings, if set, is invoked with each probe's emitted findings.
	OnFindings func(probe string, findings []finding.Finding)
}

type probeOutput struct {
	findings []finding.Finding
	err      error
}

// Run executes every registered probe and returns the order-preserving
// finding list plus diagnostics for probes that failed or timed out.
func (d *Dispatcher) Run(ctx context.Context, reg *Registry, env *ExecContext, tc *client.Client) ([]finding.Finding, []Diagnostic, error) {
	if reg == nil || reg.Len() == 0 {
		return nil, nil, sharederrors.ErrNoProbesRegistered
	}

	var limiter *rate.Limiter
	if d.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(d.RateLimit), d.RateLimit)
	}

	collector := finding.NewCollector()
	var diags []Diagnostic

	for _, cat := range reg.Categories() {
		if ctx.Err() != nil {
			break
		}
		if d.OnCategory != nil {
			d.OnCategory(cat)
		}

		for _, p := range reg.Probes(cat) {
			if ctx.Err() != nil {
				break
			}
			if limiter != nil {
				if err := limiter.Wait(ctx); err != nil {
					break
				}
			}

			found, err := d.runOne(ctx, p, env, tc)
			if err != nil {
				diags = append(diags, Diagnostic{Category: cat, Probe: p.Name(), Error: err.Error()})
				if d.Logger != nil {
					d.Logger.Warnw("probe failed", "category", cat.String(), "probe", p.Name(), "error", err)
				}
				continue
			}

			collector.Append(found...)
			if d.OnFindings != nil {
				d.OnFindings(p.Name(), found)
			}
		}
	}

	return collector.Snapshot(), diags, nil
}

// runOne executes a single probe under its time budget. The probe runs
// in its own goroutine so a stuck network call cannot stall the scan; on
// expiry the in-flight request is abandoned and the probe contributes
// nothing further.
func (d *Dispatcher) runOne(ctx context.Context, p Probe, env *ExecContext, tc *client.Client) ([]finding.Finding, error) {
	budget := env.Timeout
	if budget <= 0 {
		budget = 30 * time.Second
	}
	probeCtx, cancel := context.WithTimeout(ctx, budget)
	defer cancel()

	done := make(chan probeOutput, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- probeOutput{err: fmt.Errorf("%w: %v", sharederrors.ErrProbePanic, r)}
			}
		}()
		findings, err := p.Execute(probeCtx, env, tc)
		done <- probeOutput{findings: findings, err: err}
	}()

	select {
	case out := <-done:
		return out.findings, out.err
	case <-probeCtx.Done():
		return nil, fmt.Errorf("%w after %s", sharederrors.ErrProbeTimeout, budget)
	}
}
