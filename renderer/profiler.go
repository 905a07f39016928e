package renderer

import (
	"fmt"
	"slices"
	"strings"
	"time"
)

// Profiler records the CPU time of named scopes for the last frame and a
// set of counters. It is not safe for concurrent use.
type Profiler struct {
	Scopes     map[string]time.Duration
	StartTimes map[string]time.Time
	Counts     map[string]int
	Order      []string

	now func() time.Time
}

func NewProfiler() *Profiler {
	return &Profiler{
		Scopes:     make(map[string]time.Duration),
		StartTimes: make(map[string]time.Time),
		Counts:     make(map[string]int),
		now:        time.Now,
	}
}

func (p *Profiler) BeginScope(name string) {
	p.StartTimes[name] = p.now()
	if !slices.Contains(p.Order, name) {
		p.Order = append(p.Order, name)
	}
}

func (p *Profiler) EndScope(name string) time.Duration {
	start, ok := p.StartTimes[name]
	if !ok {
		return 0
	}
	d := p.now().Sub(start)
	p.Scopes[name] = d
	delete(p.StartTimes, name)
	return d
}

func (p *Profiler) SetCount(name string, count int) {
	p.Counts[name] = count
}

func (p *Profiler) Scope(name string) time.Duration {
	return p.Scopes[name]
}

// StatsString renders timings in first-use order and counters sorted by
// name.
func (p *Profiler) StatsString() string {
	var sb strings.Builder

	sb.WriteString("Timings (CPU):\n")
	for _, name := range p.Order {
		ms := float64(p.Scopes[name].Microseconds()) / 1000.0
		fmt.Fprintf(&sb, "  %-15s: %.2f ms\n", name, ms)
	}

	sb.WriteString("\nStats:\n")
	keys := make([]string, 0, len(p.Counts))
	for k := range p.Counts {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		fmt.Fprintf(&sb, "  %-15s: %d\n", k, p.Counts[k])
	}
	return sb.String()
}
