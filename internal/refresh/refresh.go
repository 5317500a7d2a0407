// Package refresh recomputes derived artifacts once per logical operation.
//
// A Graph maps each table to the routines that depend on it. Mutating code
// records the tables it touched on a per-operation Log and flushes the log
// once at the end, so a routine shared by several dirty tables runs once.
package refresh

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"go.alis.build/alog"

	"clubsheet/pkg/domain"
)

// Routine is a named recompute step. Names identify routines across tables.
type Routine struct {
	Name string
	Run  func(ctx context.Context) error
}

// Graph is the static table to routines map. It is safe for concurrent use
// once registration is done.
type Graph struct {
	mu       sync.RWMutex
	routines map[string]Routine
	deps     map[domain.Table][]string
	order    []string
}

// NewGraph returns an empty graph.
func NewGraph() *Graph {
	return &Graph{
		routines: make(map[string]Routine),
		deps:     make(map[domain.Table][]string),
	}
}

// Register makes r depend on tables. Registration order is the per-table run
// order. Registering the same name twice adds tables to the first routine.
func (g *Graph) Register(r Routine, tables ...domain.Table) error {
	if r.Name == "" || r.Run == nil {
		return domain.IllegalArgumentf("refresh routine needs a name and a func")
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.routines[r.Name]; !ok {
		g.routines[r.Name] = r
		g.order = append(g.order, r.Name)
	}
	for _, t := range tables {
		if !t.Valid() {
			return domain.IllegalArgumentf("refresh routine %s: unknown table %d", r.Name, int(t))
		}
		if !slices.Contains(g.deps[t], r.Name) {
			g.deps[t] = append(g.deps[t], r.Name)
		}
	}
	return nil
}

// Routines lists every registered routine name in registration order.
func (g *Graph) Routines() []string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return slices.Clone(g.order)
}

// Dependents returns the routine names registered for t.
func (g *Graph) Dependents(t domain.Table) []string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return slices.Clone(g.deps[t])
}

// NewLog starts a dirty set for one top-level operation.
func (g *Graph) NewLog() *Log {
	return &Log{graph: g}
}

// Log accumulates the tables one operation changed.
type Log struct {
	graph *Graph
	dirty []domain.Table
}

// Include marks tables dirty. Repeats are ignored.
func (l *Log) Include(tables ...domain.Table) {
	for _, t := range tables {
		if !slices.Contains(l.dirty, t) {
			l.dirty = append(l.dirty, t)
		}
	}
}

// Dirty returns the tables included since the last Run.
func (l *Log) Dirty() []domain.Table {
	return slices.Clone(l.dirty)
}

// Plan returns the routine names Run would invoke now.
func (l *Log) Plan() []string {
	l.graph.mu.RLock()
	defer l.graph.mu.RUnlock()
	var names []string
	for _, t := range l.dirty {
		for _, n := range l.graph.deps[t] {
			if !slices.Contains(names, n) {
				names = append(names, n)
			}
		}
	}
	return names
}

// Run invokes every routine reachable from the dirty tables exactly once, in
// first-occurrence order. The dirty set is consumed before the first routine
// runs, so a failed Run is not retried by the next one. Run stops at the
// first routine error.
func (l *Log) Run(ctx context.Context) error {
	names := l.Plan()
	l.dirty = nil
	for _, n := range names {
		l.graph.mu.RLock()
		r := l.graph.routines[n]
		l.graph.mu.RUnlock()
		alog.Debugf(ctx, "refresh %s", n)
		if err := r.Run(ctx); err != nil {
			return fmt.Errorf("refresh %s: %w", n, err)
		}
	}
	return nil
}
