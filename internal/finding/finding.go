// Package finding defines the structured observation model produced by
// probes: weakness categories, ordered severities, and the append-only
// collector that gathers findings during a scan.
package finding

import (
	"sync"
	"time"
)

// Finding is a single structured observation produced by a probe.
// Findings are immutable once created.
type Finding struct {
	Category    Category  `json:"category"`
	Severity    Severity  `json:"severity"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Evidence    string    `json:"evidence,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}

// New builds a finding stamped with the current UTC time.
func New(category Category, severity Severity, title, description, evidence string) Finding {
	return Finding{
		Category:    category,
		Severity:    severity,
		Title:       title,
		Description: description,
		Evidence:    evidence,
		Timestamp:   time.Now().UTC(),
	}
}

// Collector accumulates findings in emission order. It is owned by the
// dispatcher; probes never write to it directly.
type Collector struct {
	mu       sync.Mutex
	findings []Finding
}

// NewCollector returns an empty collector.
func NewCollector() *Collector {
	return &Collector{}
}

// Append adds findings to the collection, preserving order.
func (c *Collector) Append(findings ...Finding) {
	if len(findings) == 0 {
		return
	}
	c.mu.Lock()
	c.findings = append(c.findings, findings...)
	c.mu.Unlock()
}

// Len returns the number of collected findings.
func (c *Collector) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.findings)
}

// Snapshot returns an order-preserving copy of the collected findings.
func (c *Collector) Snapshot() []Finding {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Finding, len(c.findings))
	copy(out, c.findings)
	return out
}
