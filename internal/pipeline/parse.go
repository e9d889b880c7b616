package pipeline

import (
	"context"
	"os"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/valknut-go/valknut/internal/entity"
	"github.com/valknut-go/valknut/internal/lang"
	"github.com/valknut-go/valknut/internal/vkerrors"
)

// parsedFile is one file's parse output, kept alongside its source text
// so later stages (feature extraction, clone detection) don't re-read
// the file from disk.
type parsedFile struct {
	RelPath string
	Source  string
	Index   *entity.ParseIndex
	Imports []lang.ImportStatement
}

// parseAll runs stage 2 (§4.6): every discovered file is read and parsed
// concurrently, bounded by maxThreads, with a per-file timeout. A parse
// failure is file-local: it contributes zero entities and one Warning,
// never aborts the run (§7).
func parseAll(ctx context.Context, files []DiscoveredFile, registry *lang.Registry, maxThreads int, fileTimeout time.Duration) ([]parsedFile, []vkerrors.Warning) {
	results := make([]*parsedFile, len(files))
	warningsByIdx := make([][]vkerrors.Warning, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(threadLimit(maxThreads))

	for i, f := range files {
		i, f := i, f
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return nil
			default:
			}

			adapter, ok := registry.AdapterFor(f.AbsPath)
			if !ok {
				return nil
			}

			src, err := readWithTimeout(f.AbsPath, fileTimeout)
			if err != nil {
				warningsByIdx[i] = []vkerrors.Warning{vkerrors.AsWarning(
					vkerrors.New(vkerrors.KindIO, "read_file", err).WithPath(f.RelPath))}
				return nil
			}

			idx, imports, parseErr := adapter.Parse(f.RelPath, src)
			if parseErr != nil {
				warningsByIdx[i] = []vkerrors.Warning{vkerrors.AsWarning(
					vkerrors.New(vkerrors.KindParse, "parse_file", parseErr).WithPath(f.RelPath))}
				return nil
			}
			if idx == nil {
				idx = entity.NewParseIndex()
			}

			results[i] = &parsedFile{RelPath: f.RelPath, Source: src, Index: idx, Imports: imports}
			return nil
		})
	}
	_ = g.Wait() // per-file errors are captured as warnings; g itself never fails

	var out []parsedFile
	var warnings []vkerrors.Warning
	for i, r := range results {
		warnings = append(warnings, warningsByIdx[i]...)
		if r != nil {
			out = append(out, *r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RelPath < out[j].RelPath })
	return out, warnings
}

func readWithTimeout(path string, timeout time.Duration) (string, error) {
	type result struct {
		data string
		err  error
	}
	done := make(chan result, 1)
	go func() {
		b, err := os.ReadFile(path)
		done <- result{string(b), err}
	}()
	if timeout <= 0 {
		r := <-done
		return r.data, r.err
	}
	select {
	case r := <-done:
		return r.data, r.err
	case <-time.After(timeout):
		return "", vkerrors.New(vkerrors.KindTimeout, "read_file", context.DeadlineExceeded).WithPath(path)
	}
}

func threadLimit(maxThreads int) int {
	if maxThreads <= 0 {
		return 8
	}
	return maxThreads
}
