package structure

import "sort"

// FileNode is one file in a directory's intra-directory dependency graph
// (§4.4.2): its path and LOC, used by partitioning to balance LOC across
// clusters.
type FileNode struct {
	Path string
	LOC  int
}

// DependencyGraph is the intra-directory import graph: files as nodes,
// edges weighted by how many times one file imports another (import
// paths are resolved to sibling files within the same directory; cross-
// directory imports are out of scope for this graph, per §4.4.2).
type DependencyGraph struct {
	Nodes []FileNode
	index map[string]int
	edges map[int]map[int]int
}

// NewDependencyGraph builds an empty graph over the given files.
func NewDependencyGraph(files []FileNode) *DependencyGraph {
	idx := make(map[string]int, len(files))
	for i, f := range files {
		idx[f.Path] = i
	}
	return &DependencyGraph{Nodes: files, index: idx, edges: make(map[int]map[int]int)}
}

// AddEdge records one import reference from file `from` to file `to`,
// both identified by path. Edges to paths outside the graph are
// silently ignored (they refer to a file outside this directory).
func (g *DependencyGraph) AddEdge(from, to string) {
	fi, ok1 := g.index[from]
	ti, ok2 := g.index[to]
	if !ok1 || !ok2 || fi == ti {
		return
	}
	if g.edges[fi] == nil {
		g.edges[fi] = make(map[int]int)
	}
	g.edges[fi][ti]++
}

// EdgeWeight returns the weight of the edge u->v (or the sum of both
// directions, since partitioning treats the graph as undirected for cut
// purposes), 0 if absent.
func (g *DependencyGraph) EdgeWeight(u, v int) int {
	w := 0
	if m, ok := g.edges[u]; ok {
		w += m[v]
	}
	if m, ok := g.edges[v]; ok {
		w += m[u]
	}
	return w
}

// NodeCount returns the number of files in the graph.
func (g *DependencyGraph) NodeCount() int { return len(g.Nodes) }

// CutSize sums the edge weights crossing between two node-index sets
// (§4.4.3's bipartition cost function).
func (g *DependencyGraph) CutSize(part1, part2 []int) int {
	set2 := make(map[int]bool, len(part2))
	for _, n := range part2 {
		set2[n] = true
	}
	cut := 0
	for _, u := range part1 {
		for v := range set2 {
			if m, ok := g.edges[u]; ok {
				cut += m[v]
			}
		}
	}
	return cut
}

// Partition is one output cluster: the file paths it contains and their
// combined LOC.
type Partition struct {
	Name  string
	Files []string
	LOC   int
}

// PartitionConfig bundles the partitioning knobs of §4.4.3.
type PartitionConfig struct {
	MaxClusters      int
	MinClusters      int
	BalanceTolerance float64
	TargetLOCPerSub  int
	NamingFallbacks  []string
}

// PartitionDirectory splits a directory's dependency graph into
// clusters, choosing the algorithm by graph size as §4.4.3 specifies:
// exhaustive bipartition search for graphs of at most 8 nodes, label
// propagation plus Kernighan-Lin refinement for larger ones, and a
// round-robin fallback when no balanced bipartition exists.
func PartitionDirectory(g *DependencyGraph, totalLOC int, cfg PartitionConfig) []Partition {
	if g.NodeCount() == 0 {
		return nil
	}

	k := clampInt(roundDiv(totalLOC, cfg.TargetLOCPerSub), 2, cfg.MaxClusters)

	nodes := make([]int, g.NodeCount())
	for i := range nodes {
		nodes[i] = i
	}

	var communities [][]int
	if len(nodes) <= 8 {
		communities = bruteForcePartition(nodes, g, k, cfg)
	} else {
		initial := labelPropagation(g, nodes)
		communities = refineWithKL(g, initial, k, cfg)
	}

	return communitiesToPartitions(g, communities, k, cfg.NamingFallbacks)
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func roundDiv(a, b int) int {
	if b == 0 {
		return 0
	}
	return int(float64(a)/float64(b) + 0.5)
}

// bruteForcePartition mirrors §4.4.3's small-graph path: for k==2 it
// exhaustively searches every bipartition for the minimum cut among
// those within balance tolerance; for other k (or if nothing balances)
// it falls back to a deterministic round-robin split.
func bruteForcePartition(nodes []int, g *DependencyGraph, k int, cfg PartitionConfig) [][]int {
	if k == 2 && len(nodes) <= 8 {
		return findOptimalBipartition(nodes, g, cfg)
	}
	return roundRobinPartition(nodes, k)
}

func findOptimalBipartition(nodes []int, g *DependencyGraph, cfg PartitionConfig) [][]int {
	n := len(nodes)
	bestCut := -1
	bestBalance := math1Max
	var best [][]int

	total := 0
	for _, idx := range nodes {
		total += g.Nodes[idx].LOC
	}

	for mask := 1; mask < (1<<n)-1; mask++ {
		var part1, part2 []int
		loc1 := 0
		for i := 0; i < n; i++ {
			if mask&(1<<i) != 0 {
				part1 = append(part1, nodes[i])
				loc1 += g.Nodes[nodes[i]].LOC
			} else {
				part2 = append(part2, nodes[i])
			}
		}
		cut := g.CutSize(part1, part2)
		balance := 0.0
		if total > 0 {
			balance = absFloat(float64(loc1)/float64(total) - 0.5)
		}
		if balance > cfg.BalanceTolerance {
			continue
		}
		if bestCut == -1 || cut < bestCut || (cut == bestCut && balance < bestBalance) {
			bestCut = cut
			bestBalance = balance
			best = [][]int{append([]int(nil), part1...), append([]int(nil), part2...)}
		}
	}

	if best == nil {
		return roundRobinPartition(nodes, 2)
	}
	return best
}

const math1Max = 1e18

func absFloat(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

// roundRobinPartition is the degenerate fallback (§4.4.3) used when no
// balanced bipartition exists or when k demands more than two clusters
// without committing to a full multi-way search.
func roundRobinPartition(nodes []int, k int) [][]int {
	communities := make([][]int, k)
	for i, n := range nodes {
		communities[i%k] = append(communities[i%k], n)
	}
	return communities
}

// labelPropagation runs synchronous label propagation (§4.4.3): each
// node adopts the label most represented among its neighbours, weighted
// by edge weight, iterating until stable or a cap of 100 rounds. Ties
// resolve by the lowest label value for determinism (an intentional
// restriction tighter than the original's unordered map iteration,
// justified by §5's determinism requirements).
func labelPropagation(g *DependencyGraph, nodes []int) [][]int {
	labels := make(map[int]int, len(nodes))
	for i, n := range nodes {
		labels[n] = i
	}

	for iteration := 0; iteration < 100; iteration++ {
		changed := false
		ordered := append([]int(nil), nodes...)
		sort.Ints(ordered)

		for _, node := range ordered {
			counts := make(map[int]int)
			for _, other := range nodes {
				if other == node {
					continue
				}
				if w := g.EdgeWeight(node, other); w > 0 {
					counts[labels[other]] += w
				}
			}
			if len(counts) == 0 {
				continue
			}
			best, bestCount := -1, -1
			keys := make([]int, 0, len(counts))
			for l := range counts {
				keys = append(keys, l)
			}
			sort.Ints(keys)
			for _, l := range keys {
				if counts[l] > bestCount {
					best, bestCount = l, counts[l]
				}
			}
			if labels[node] != best {
				labels[node] = best
				changed = true
			}
		}
		if !changed {
			break
		}
	}

	grouped := make(map[int][]int)
	for _, n := range nodes {
		grouped[labels[n]] = append(grouped[labels[n]], n)
	}
	labelsSorted := make([]int, 0, len(grouped))
	for l := range grouped {
		labelsSorted = append(labelsSorted, l)
	}
	sort.Ints(labelsSorted)

	communities := make([][]int, 0, len(labelsSorted))
	for _, l := range labelsSorted {
		communities = append(communities, grouped[l])
	}
	return communities
}

// refineWithKL merges or splits communities to reach targetK, then
// applies Kernighan-Lin node-swap refinement to reduce the inter-
// community cut (§4.4.3).
func refineWithKL(g *DependencyGraph, communities [][]int, targetK int, cfg PartitionConfig) [][]int {
	for len(communities) > targetK {
		sort.Slice(communities, func(i, j int) bool { return len(communities[i]) < len(communities[j]) })
		smallest := communities[0]
		secondSmallest := communities[1]
		merged := append(append([]int(nil), smallest...), secondSmallest...)
		communities = append(communities[2:], merged)
	}
	for len(communities) < targetK {
		sort.Slice(communities, func(i, j int) bool { return len(communities[i]) < len(communities[j]) })
		largest := communities[len(communities)-1]
		communities = communities[:len(communities)-1]
		if len(largest) >= cfg.MinClusters {
			mid := len(largest) / 2
			communities = append(communities, largest[:mid], largest[mid:])
		} else {
			communities = append(communities, largest)
			break
		}
	}
	return kernighanLinRefine(g, communities)
}

func kernighanLinRefine(g *DependencyGraph, communities [][]int) [][]int {
	for iteration := 0; iteration < 10; iteration++ {
		improved := false
		for i := 0; i < len(communities); i++ {
			for j := i + 1; j < len(communities); j++ {
				node, from, improvement := bestSwap(g, communities[i], communities[j])
				if improvement > 0 {
					if from == i {
						communities[i] = removeInt(communities[i], node)
						communities[j] = append(communities[j], node)
					} else {
						communities[j] = removeInt(communities[j], node)
						communities[i] = append(communities[i], node)
					}
					improved = true
				}
			}
		}
		if !improved {
			break
		}
	}
	return communities
}

func bestSwap(g *DependencyGraph, comm1, comm2 []int) (node, fromIdx int, improvement float64) {
	bestImprovement := 0.0
	bestNode, bestFrom := -1, -1

	tryMove := func(candidates, other []int, from int) {
		for _, n := range candidates {
			gain := swapImprovement(g, n, candidates, other)
			if gain > bestImprovement {
				bestImprovement = gain
				bestNode = n
				bestFrom = from
			}
		}
	}
	tryMove(comm1, comm2, 0)
	tryMove(comm2, comm1, 1)
	return bestNode, bestFrom, bestImprovement
}

func swapImprovement(g *DependencyGraph, node int, fromComm, toComm []int) float64 {
	internalLost, externalGained := 0, 0
	for _, other := range fromComm {
		if other != node {
			internalLost += g.EdgeWeight(node, other)
		}
	}
	for _, other := range toComm {
		externalGained += g.EdgeWeight(node, other)
	}
	return float64(externalGained - internalLost)
}

func removeInt(xs []int, v int) []int {
	out := xs[:0]
	for _, x := range xs {
		if x != v {
			out = append(out, x)
		}
	}
	return out
}

func communitiesToPartitions(g *DependencyGraph, communities [][]int, k int, fallbacks []string) []Partition {
	var partitions []Partition
	for i, community := range communities {
		if i >= k {
			break
		}
		var files []string
		loc := 0
		for _, idx := range community {
			files = append(files, g.Nodes[idx].Path)
			loc += g.Nodes[idx].LOC
		}
		sort.Strings(files)
		partitions = append(partitions, Partition{
			Name:  generatePartitionName(files, i, fallbacks),
			Files: files,
			LOC:   loc,
		})
	}
	return partitions
}
