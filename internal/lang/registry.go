package lang

import "path/filepath"

// Registry resolves a file path to the Adapter that owns its extension.
// Adapters are constructed once at startup: tree-sitter parsers and
// compiled queries are expensive to build and are safe to reuse across
// files of the same language.
type Registry struct {
	byExt map[string]Adapter
}

// NewRegistry builds the full language registry. A per-language
// construction failure (a broken query string) is returned immediately
// rather than silently dropping a language, since it represents a
// programming error in this binary, not a runtime condition.
func NewRegistry() (*Registry, error) {
	r := &Registry{byExt: make(map[string]Adapter)}

	builders := []func() (Adapter, error){
		NewGoAdapter,
		NewPythonAdapter,
		NewJavaScriptAdapter,
		NewTypeScriptAdapter,
		NewRustAdapter,
		NewJavaAdapter,
		NewCppAdapter,
		NewCSharpAdapter,
	}
	for _, build := range builders {
		adapter, err := build()
		if err != nil {
			return nil, err
		}
		for _, ext := range adapter.Extensions() {
			r.byExt[ext] = adapter
		}
	}
	return r, nil
}

// AdapterFor returns the adapter responsible for path's extension, or
// false if no adapter claims it (the file is skipped by the pipeline's
// discovery stage, not an error).
func (r *Registry) AdapterFor(path string) (Adapter, bool) {
	ext := filepath.Ext(path)
	a, ok := r.byExt[ext]
	return a, ok
}

// Languages returns the distinct language names registered.
func (r *Registry) Languages() []string {
	seen := make(map[string]bool)
	var out []string
	for _, a := range r.byExt {
		if !seen[a.LanguageName()] {
			seen[a.LanguageName()] = true
			out = append(out, a.LanguageName())
		}
	}
	return out
}
