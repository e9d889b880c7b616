package pipeline

import (
	"path"
	"sort"
	"strings"

	"github.com/valknut-go/valknut/internal/entity"
	"github.com/valknut-go/valknut/internal/lang"
	"github.com/valknut-go/valknut/internal/structure"
	"github.com/valknut-go/valknut/internal/vkconfig"
	"github.com/valknut-go/valknut/pkg/pathutil"
)

// structureOutput bundles stage 5's products (§4.4, §4.6): proposed
// directory reorganisations, cohesion-based file-split candidates, and
// project-wide import cycles.
type structureOutput struct {
	ReorgPacks   []structure.BranchReorgPack
	SplitFiles   map[string]structure.FileSplitPack
	ImportCycles []structure.Cycle
}

// runStructureAnalysis implements stage 5: per-directory dispersion and
// imbalance metrics, dependency-graph partitioning into reorganisation
// packs, cohesion-community file-split candidates for oversized files,
// and project-wide import-cycle detection.
func runStructureAnalysis(cfg vkconfig.Structure, files []parsedFile, index *entity.ParseIndex, registry *lang.Registry) structureOutput {
	byDir := groupFilesByDir(files)

	project := structure.NewProjectImportGraph()
	stemIndex := buildStemIndex(files)
	for _, f := range files {
		for _, imp := range f.Imports {
			if target, ok := resolveImportTarget(imp.Path, pathutil.Dir(f.RelPath), stemIndex); ok {
				project.AddImport(f.RelPath, target)
			}
		}
	}

	var packs []structure.BranchReorgPack
	splits := make(map[string]structure.FileSplitPack)

	dirs := make([]string, 0, len(byDir))
	for d := range byDir {
		dirs = append(dirs, d)
	}
	sort.Strings(dirs)

	for _, dir := range dirs {
		dirFiles := byDir[dir]
		locs := make([]int, len(dirFiles))
		nodes := make([]structure.FileNode, len(dirFiles))
		for i, f := range dirFiles {
			loc := strings.Count(f.Source, "\n") + 1
			locs[i] = loc
			nodes[i] = structure.FileNode{Path: f.RelPath, LOC: loc}
		}
		subdirs := countImmediateSubdirs(dir, dirs)

		metrics := structure.ComputeMetrics(structure.DirectoryStats{
			Files: len(dirFiles), Subdirs: subdirs, LOCs: locs,
		}, cfg.FSDir)

		depGraph := structure.NewDependencyGraph(nodes)
		for _, f := range dirFiles {
			for _, imp := range f.Imports {
				if target, ok := resolveImportTarget(imp.Path, dir, stemIndex); ok {
					if pathutil.Dir(target) == dir {
						depGraph.AddEdge(f.RelPath, target)
					}
				}
			}
		}

		if structure.NeedsReorg(metrics, cfg.FSDir) {
			totalLOC := 0
			for _, l := range locs {
				totalLOC += l
			}
			partitions := structure.PartitionDirectory(depGraph, totalLOC, structure.PartitionConfig{
				MaxClusters:      cfg.Partitioning.MaxClusters,
				MinClusters:      cfg.Partitioning.MinClusters,
				BalanceTolerance: cfg.Partitioning.BalanceTolerance,
				TargetLOCPerSub:  cfg.FSDir.TargetLOCPerSubdir,
				NamingFallbacks:  cfg.Partitioning.NamingFallbacks,
			})
			if len(partitions) > 0 {
				crossReduced := structure.CrossEdgesReduced(depGraph, partitions)
				limits := structure.FSDirLimits{MaxFilesPerDir: cfg.FSDir.MaxFilesPerDir, MaxDirLOC: cfg.FSDir.MaxDirLOC}
				gain := structure.EstimateGain(metrics, partitions, limits, crossReduced)
				if gain.ImbalanceDelta >= cfg.Partitioning.MinBranchRecommendationGain {
					effort := structure.EstimateEffort(partitions)
					packs = append(packs, structure.BranchReorgPack{
						DirPath: dir, Metrics: metrics, Partitions: partitions, Gain: gain, Effort: effort,
					})
				}
			}
		}

		for _, f := range dirFiles {
			loc := strings.Count(f.Source, "\n") + 1
			if loc < cfg.FSFile.HugeLOC && int64(len(f.Source)) < cfg.FSFile.HugeBytes {
				continue
			}
			entities := index.EntitiesInFile(f.RelPath)
			if len(entities) < cfg.FSFile.MinEntitiesPerSplit {
				continue
			}
			adapter, ok := registry.AdapterFor(f.RelPath)
			if !ok {
				continue
			}
			var idents []structure.EntityIdentifiers
			identifiers := make(map[string]map[string]bool, len(entities))
			names := make(map[string]string, len(entities))
			for _, e := range entities {
				src := sliceSpan(f.Source, e.Span)
				set := make(map[string]bool)
				for _, id := range adapter.ExtractIdentifiers(src) {
					set[id] = true
				}
				idents = append(idents, structure.EntityIdentifiers{EntityID: e.ID, Identifiers: set})
				identifiers[e.ID] = set
				names[e.ID] = e.Name
			}
			communities := structure.DetectCohesionCommunities(idents, 0.2)
			if structure.ShouldSplit(communities, cfg.FSFile.MinEntitiesPerSplit) {
				outgoing, incoming := project.Outgoing(f.RelPath), project.Incoming(f.RelPath)
				pack := structure.BuildFileSplitPack(f.RelPath, communities, cfg.FSFile.MinEntitiesPerSplit, loc, cfg.FSFile.HugeLOC, outgoing, incoming, identifiers, names)
				if len(pack.Splits) > 0 {
					splits[f.RelPath] = pack
				}
			}
		}
	}

	return structureOutput{
		ReorgPacks:   packs,
		SplitFiles:   splits,
		ImportCycles: project.DetectCycles(),
	}
}

func groupFilesByDir(files []parsedFile) map[string][]parsedFile {
	out := make(map[string][]parsedFile)
	for _, f := range files {
		dir := pathutil.Dir(f.RelPath)
		out[dir] = append(out[dir], f)
	}
	return out
}

func countImmediateSubdirs(dir string, allDirs []string) int {
	seen := make(map[string]bool)
	prefix := dir + "/"
	if dir == "." {
		prefix = ""
	}
	for _, d := range allDirs {
		if d == dir || !strings.HasPrefix(d, prefix) {
			continue
		}
		rest := strings.TrimPrefix(d, prefix)
		if rest == "" {
			continue
		}
		seen[strings.SplitN(rest, "/", 2)[0]] = true
	}
	return len(seen)
}

// buildStemIndex maps each file's extension-stripped path to its full
// repo-relative path, letting import resolution match "./foo" or "pkg/foo"
// style references without needing real per-language module resolution.
func buildStemIndex(files []parsedFile) map[string]string {
	idx := make(map[string]string, len(files))
	for _, f := range files {
		stem := strings.TrimSuffix(f.RelPath, path.Ext(f.RelPath))
		idx[stem] = f.RelPath
	}
	return idx
}

func resolveImportTarget(importPath, fromDir string, stemIndex map[string]string) (string, bool) {
	candidates := []string{importPath}
	if strings.HasPrefix(importPath, ".") {
		candidates = append(candidates, path.Clean(path.Join(fromDir, importPath)))
	}
	for _, c := range candidates {
		c = strings.TrimSuffix(c, "/")
		if target, ok := stemIndex[c]; ok {
			return target, true
		}
	}
	return "", false
}
