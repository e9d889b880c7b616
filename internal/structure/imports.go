package structure

import "sort"

// ProjectImportGraph is the whole-project file-level import graph
// (§4.4.7), distinct from the per-directory DependencyGraph: its nodes
// are every source file in the project and its edges follow resolved
// import paths across directory boundaries, the input to cross-package
// cycle detection.
type ProjectImportGraph struct {
	edges map[string][]string
}

// NewProjectImportGraph builds an empty graph.
func NewProjectImportGraph() *ProjectImportGraph {
	return &ProjectImportGraph{edges: make(map[string][]string)}
}

// AddImport records that file imports target.
func (g *ProjectImportGraph) AddImport(file, target string) {
	g.edges[file] = append(g.edges[file], target)
}

// Outgoing returns the set of files that file directly imports.
func (g *ProjectImportGraph) Outgoing(file string) map[string]bool {
	out := make(map[string]bool, len(g.edges[file]))
	for _, e := range g.edges[file] {
		out[e] = true
	}
	return out
}

// Incoming returns the set of files that directly import file, the
// §4.4.6 file-split "importers" set. Derived by scanning every
// recorded edge since the graph only stores outgoing adjacency.
func (g *ProjectImportGraph) Incoming(file string) map[string]bool {
	out := make(map[string]bool)
	for from, targets := range g.edges {
		for _, t := range targets {
			if t == file {
				out[from] = true
			}
		}
	}
	return out
}

// Cycle is one detected import cycle, the file path sequence that closes
// back on itself.
type Cycle struct {
	Files []string
}

// DetectCycles finds every simple cycle reachable via DFS from each
// file, per §4.4.7. Cycles are deduplicated by their lexicographically
// smallest rotation so A->B->A and B->A->B report once.
func (g *ProjectImportGraph) DetectCycles() []Cycle {
	files := make([]string, 0, len(g.edges))
	for f := range g.edges {
		files = append(files, f)
	}
	sort.Strings(files)

	seen := make(map[string]bool)
	var cycles []Cycle

	for _, start := range files {
		path := []string{start}
		onPath := map[string]bool{start: true}
		var walk func(node string)
		walk = func(node string) {
			for _, next := range g.edges[node] {
				if next == start {
					cycle := normalizeCycle(append(append([]string(nil), path...), start))
					key := cycleKey(cycle)
					if !seen[key] {
						seen[key] = true
						cycles = append(cycles, Cycle{Files: cycle})
					}
					continue
				}
				if onPath[next] {
					continue
				}
				onPath[next] = true
				path = append(path, next)
				walk(next)
				path = path[:len(path)-1]
				onPath[next] = false
			}
		}
		walk(start)
	}
	return cycles
}

func normalizeCycle(cycle []string) []string {
	if len(cycle) <= 1 {
		return cycle
	}
	body := cycle[:len(cycle)-1]
	minIdx := 0
	for i, f := range body {
		if f < body[minIdx] {
			minIdx = i
		}
	}
	rotated := append(append([]string(nil), body[minIdx:]...), body[:minIdx]...)
	return append(rotated, rotated[0])
}

func cycleKey(cycle []string) string {
	key := ""
	for _, f := range cycle {
		key += f + "\x00"
	}
	return key
}

// Exports derives a file's exported symbol names from a simple
// language-agnostic convention check: callers pass in the candidate
// names (e.g. top-level entity names for that file) and Exports filters
// to those considered public by the given predicate, so language-
// specific export rules (capitalised in Go, no leading underscore in
// Python) stay at the call site rather than inside this package.
func Exports(names []string, isPublic func(string) bool) []string {
	var out []string
	for _, n := range names {
		if isPublic(n) {
			out = append(out, n)
		}
	}
	sort.Strings(out)
	return out
}
