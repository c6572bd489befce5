// Package diag collects the declaration scoped problems of a run.
package diag

import (
	"fmt"
	"sort"
	"sync"

	"github.com/ardanlabs/hostbind/decl"
)

type Severity int

const (
	Warning Severity = iota
	Error
)

func (s Severity) String() string {
	if s == Error {
		return "error"
	}
	return "warning"
}

func (s Severity) MarshalYAML() (any, error) { return s.String(), nil }

// Diagnostic reports one excluded declaration or group.
type Diagnostic struct {
	Span     decl.Span `yaml:"-"`
	Location string    `yaml:"location"`
	Severity Severity  `yaml:"severity"`
	Decl     string    `yaml:"decl"`
	Reason   string    `yaml:"reason"`

	seq int
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s: %s: %s: %s", d.Location, d.Severity, d.Decl, d.Reason)
}

// Collector accepts diagnostics from concurrent workers.
type Collector struct {
	mu    sync.Mutex
	diags []Diagnostic
}

func NewCollector() *Collector {
	return &Collector{}
}

// Add records a diagnostic.
func (c *Collector) Add(span decl.Span, sev Severity, declName, reason string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.diags = append(c.diags, Diagnostic{
		Span:     span,
		Location: span.String(),
		Severity: sev,
		Decl:     declName,
		Reason:   reason,
		seq:      len(c.diags),
	})
}

// Len returns the number of diagnostics recorded so far.
func (c *Collector) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.diags)
}

// Sorted returns the diagnostics ordered by source location. Diagnostics
// at the same location are ordered by declaration name, then reason, so
// the result does not depend on the order workers reported them.
func (c *Collector) Sorted() []Diagnostic {
	c.mu.Lock()
	out := append([]Diagnostic(nil), c.diags...)
	c.mu.Unlock()

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		switch {
		case a.Span.Less(b.Span):
			return true
		case b.Span.Less(a.Span):
			return false
		case a.Decl != b.Decl:
			return a.Decl < b.Decl
		case a.Reason != b.Reason:
			return a.Reason < b.Reason
		}
		return a.seq < b.seq
	})
	for i := range out {
		out[i].seq = i
	}

	return out
}
