// Metrics collection for the arm simulator.
//
// Provides a small Prometheus-compatible registry with counters and
// gauges, exported in the Prometheus text format. The registry is created
// by the application shell and injected where needed; there is no global
// registry.
package metrics

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Counter is a monotonically increasing value
type Counter struct {
	mu    sync.Mutex
	value float64
}

// Inc increments the counter by 1
func (c *Counter) Inc() {
	c.Add(1)
}

// Add increments the counter by v. Negative increments are ignored.
func (c *Counter) Add(v float64) {
	if v < 0 {
		return
	}
	c.mu.Lock()
	c.value += v
	c.mu.Unlock()
}

// Value returns the current counter value
func (c *Counter) Value() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.value
}

// Gauge is a value that can go up and down
type Gauge struct {
	mu    sync.Mutex
	value float64
}

// Set sets the gauge to v
func (g *Gauge) Set(v float64) {
	g.mu.Lock()
	g.value = v
	g.mu.Unlock()
}

// Value returns the current gauge value
func (g *Gauge) Value() float64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.value
}

// Registry holds named metrics and renders them for scraping
type Registry struct {
	mu       sync.RWMutex
	counters map[string]*Counter
	gauges   map[string]*Gauge
	help     map[string]string
}

// NewRegistry creates an empty metrics registry
func NewRegistry() *Registry {
	return &Registry{
		counters: make(map[string]*Counter),
		gauges:   make(map[string]*Gauge),
		help:     make(map[string]string),
	}
}

// NewCounter registers and returns a counter. Registering the same name
// twice returns the existing counter.
func (r *Registry) NewCounter(name, help string) *Counter {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.counters[name]; ok {
		return c
	}
	c := &Counter{}
	r.counters[name] = c
	r.help[name] = help
	return c
}

// NewGauge registers and returns a gauge. Registering the same name twice
// returns the existing gauge.
func (r *Registry) NewGauge(name, help string) *Gauge {
	r.mu.Lock()
	defer r.mu.Unlock()
	if g, ok := r.gauges[name]; ok {
		return g
	}
	g := &Gauge{}
	r.gauges[name] = g
	r.help[name] = help
	return g
}

// Export renders all metrics in Prometheus text format, sorted by name.
func (r *Registry) Export() string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.counters)+len(r.gauges))
	for name := range r.counters {
		names = append(names, name)
	}
	for name := range r.gauges {
		names = append(names, name)
	}
	sort.Strings(names)

	var sb strings.Builder
	for _, name := range names {
		if help := r.help[name]; help != "" {
			fmt.Fprintf(&sb, "# HELP %s %s\n", name, help)
		}
		if c, ok := r.counters[name]; ok {
			fmt.Fprintf(&sb, "# TYPE %s counter\n", name)
			fmt.Fprintf(&sb, "%s %g\n", name, c.Value())
			continue
		}
		g := r.gauges[name]
		fmt.Fprintf(&sb, "# TYPE %s gauge\n", name)
		fmt.Fprintf(&sb, "%s %g\n", name, g.Value())
	}
	return sb.String()
}
