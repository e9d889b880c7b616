package pipeline

import (
	"os"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/valknut-go/valknut/internal/lang"
	"github.com/valknut-go/valknut/internal/security"
	"github.com/valknut-go/valknut/internal/vkconfig"
	"github.com/valknut-go/valknut/pkg/pathutil"
)

// fileValidator catches source files disguised as something else (a
// renamed binary, an image saved with a .go extension) before the parse
// stage wastes a parse attempt on them. Only applied to files above its
// threshold — most source files are small enough to skip the header read.
var fileValidator = security.NewFileValidator(256)

// DiscoveredFile is one file stage 1 selected for parsing: its
// repo-relative path, the adapter that owns its extension, and the
// absolute path to read it from.
type DiscoveredFile struct {
	RelPath  string
	AbsPath  string
	Language string
}

// Discover walks every configured root, keeping files that match
// include_patterns and none of exclude_patterns, resolve to a known
// language adapter, and fall within that language's max_file_size_mb
// (§4.6 stage 1). Results are sorted by RelPath for determinism.
func Discover(cfg vkconfig.Config, registry *lang.Registry) ([]DiscoveredFile, error) {
	var out []DiscoveredFile
	seen := make(map[string]bool)

	for _, root := range cfg.Project.Roots {
		err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
			if err != nil {
				return nil // unreadable entries are skipped, not fatal (§7)
			}
			if d.IsDir() {
				return nil
			}
			rel := pathutil.Normalize(path, root)

			if !matchesAny(cfg.Analysis.IncludePatterns, rel) || matchesAny(cfg.Analysis.ExcludePatterns, rel) {
				return nil
			}

			adapter, ok := registry.AdapterFor(path)
			if !ok {
				return nil
			}
			langCfg, ok := cfg.Languages[adapter.LanguageName()]
			if ok && !langCfg.Enabled {
				return nil
			}

			if ok && langCfg.MaxFileSizeMB > 0 {
				info, statErr := d.Info()
				if statErr == nil {
					maxBytes := int64(langCfg.MaxFileSizeMB * 1024 * 1024)
					if info.Size() > maxBytes {
						return nil
					}
				}
			}

			if err := fileValidator.ValidateLargeFile(path); err != nil {
				return nil // disguised or binary content, skip rather than fail the whole walk
			}

			if seen[rel] {
				return nil
			}
			seen[rel] = true
			out = append(out, DiscoveredFile{RelPath: rel, AbsPath: path, Language: adapter.LanguageName()})

			if cfg.Analysis.MaxFiles > 0 && len(out) >= cfg.Analysis.MaxFiles {
				return errStopWalk
			}
			return nil
		})
		if err != nil && err != errStopWalk {
			return nil, err
		}
		if cfg.Analysis.MaxFiles > 0 && len(out) >= cfg.Analysis.MaxFiles {
			break
		}
	}

	sort.Slice(out, func(i, j int) bool { return out[i].RelPath < out[j].RelPath })
	return out, nil
}

func matchesAny(patterns []string, path string) bool {
	for _, p := range patterns {
		if matched, _ := doublestar.Match(p, path); matched {
			return true
		}
	}
	return false
}

// errStopWalk is a sentinel returned by the WalkDir callback once
// analysis.max_files is reached, to stop the walk early without treating
// the cutoff as an error.
var errStopWalk = stopWalkError{}

type stopWalkError struct{}

func (stopWalkError) Error() string { return "max_files reached" }
