package coverage

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/valknut-go/valknut/internal/vkconfig"
	"github.com/valknut-go/valknut/internal/vkerrors"
)

// Discovered is a loaded coverage report plus the metadata the Coverage
// feature extractor needs to compute staleness (§"Coverage-driven
// staleness" in the coverage file's own mtime).
type Discovered struct {
	Report    *Report
	SourceMTime time.Time
}

// Discover loads a coverage report per §6's `coverage.*` options: an
// explicit `coverage_file` wins outright; otherwise, when `auto_discover`
// is set, every root is searched (recursively, via doublestar) for files
// matching `file_patterns`, and the most recently modified match within
// `max_age_days` is used.
func Discover(cfg vkconfig.Coverage, roots []string) (*Discovered, error) {
	if cfg.CoverageFile != "" {
		return load(cfg.CoverageFile)
	}
	if !cfg.AutoDiscover {
		return nil, nil
	}

	searchRoots := cfg.SearchPaths
	if len(searchRoots) == 0 {
		searchRoots = roots
	}

	var best string
	var bestMTime time.Time
	for _, root := range searchRoots {
		_ = filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
			if err != nil || d.IsDir() {
				return nil
			}
			rel, relErr := filepath.Rel(root, path)
			if relErr != nil {
				rel = path
			}
			rel = filepath.ToSlash(rel)
			for _, pattern := range cfg.FilePatterns {
				matched, _ := doublestar.Match(pattern, rel)
				if !matched {
					matched, _ = doublestar.Match(pattern, filepath.Base(path))
				}
				if !matched {
					continue
				}
				info, statErr := d.Info()
				if statErr != nil {
					return nil
				}
				if info.ModTime().After(bestMTime) {
					best, bestMTime = path, info.ModTime()
				}
				break
			}
			return nil
		})
	}

	if best == "" {
		return nil, nil
	}
	if cfg.MaxAgeDays > 0 {
		age := time.Since(bestMTime)
		if age > time.Duration(cfg.MaxAgeDays)*24*time.Hour {
			return nil, nil
		}
	}
	return load(best)
}

func load(path string) (*Discovered, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, vkerrors.New(vkerrors.KindIO, "load_coverage", err).WithPath(path)
	}
	defer f.Close()

	info, statErr := f.Stat()
	mtime := time.Now()
	if statErr == nil {
		mtime = info.ModTime()
	}

	var report *Report
	if looksLikeXML(path) {
		report, err = ParseCobertura(f)
	} else {
		report, err = ParseLCOV(f)
	}
	if err != nil {
		return nil, err
	}
	return &Discovered{Report: report, SourceMTime: mtime}, nil
}

func looksLikeXML(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".xml"
}

// StaleSinceDays reports how many days have elapsed since the coverage
// report was generated, relative to now (the Coverage feature extractor's
// `stale_since_days` value).
func StaleSinceDays(sourceMTime time.Time) float64 {
	return time.Since(sourceMTime).Hours() / 24
}
