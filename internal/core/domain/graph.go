// Package domain contains the core domain models of the bundle builder.
package domain

import "slices"

// ImportGraph records modules and the import edges discovered between them.
type ImportGraph struct {
	modules map[ModuleName]ModuleRecord
	edges   map[ModuleName][]ModuleName
}

// NewImportGraph creates a new empty ImportGraph.
func NewImportGraph() *ImportGraph {
	return &ImportGraph{
		modules: make(map[ModuleName]ModuleRecord),
		edges:   make(map[ModuleName][]ModuleName),
	}
}

// AddModule adds a resolved module. It reports false if the module was already present.
func (g *ImportGraph) AddModule(rec ModuleRecord) bool {
	if _, exists := g.modules[rec.Name]; exists {
		return false
	}
	g.modules[rec.Name] = rec
	return true
}

// AddEdge records that from imports to. Duplicate edges are ignored.
func (g *ImportGraph) AddEdge(from, to ModuleName) {
	if slices.Contains(g.edges[from], to) {
		return
	}
	g.edges[from] = append(g.edges[from], to)
}

// Module returns the record for name.
func (g *ImportGraph) Module(name ModuleName) (ModuleRecord, bool) {
	rec, ok := g.modules[name]
	return rec, ok
}

// Has reports whether name is a node of the graph.
func (g *ImportGraph) Has(name ModuleName) bool {
	_, ok := g.modules[name]
	return ok
}

// Imports returns the direct imports of name.
func (g *ImportGraph) Imports(name ModuleName) []ModuleName {
	return slices.Clone(g.edges[name])
}

// Closure returns every module reachable from roots, breadth first.
// Modules for which skip returns true are neither included nor traversed.
// Import cycles are permitted.
func (g *ImportGraph) Closure(roots []ModuleName, skip func(ModuleName) bool) []ModuleName {
	visited := make(map[ModuleName]bool, len(g.modules))
	var out []ModuleName
	queue := make([]ModuleName, 0, len(roots))

	push := func(n ModuleName) {
		if visited[n] || !g.Has(n) {
			return
		}
		visited[n] = true
		if skip != nil && skip(n) {
			return
		}
		queue = append(queue, n)
	}

	for _, r := range roots {
		push(r)
	}
	for len(queue) > 0 {
		u := queue[0]
		queue = queue[1:]
		out = append(out, u)
		for _, v := range g.edges[u] {
			push(v)
		}
	}
	return out
}
