// Package lang implements the language-adapter layer of §4.1: one
// tree-sitter grammar per supported language, each producing the common
// entity.ParseIndex shape so every downstream stage (feature extraction,
// LSH, structure analysis) is language-agnostic.
package lang

import "github.com/valknut-go/valknut/internal/entity"

// ImportStatement is one import/use/include edge discovered while
// parsing a file, used by the structure analyser's dependency graph
// (§4.4.2) and by the extractors' I/O-signature comparisons.
type ImportStatement struct {
	Path string
	Line int
}

// Adapter is the interface every language binding implements (§4.1):
// parse a single file's source into entities, plus the small set of
// textual queries the entity extractors and clone detector need
// (function-call targets, identifiers, distinct-block counts).
type Adapter interface {
	// LanguageName returns the canonical language identifier (e.g. "go",
	// "python") used in config.languages and in entity metadata.
	LanguageName() string

	// Extensions lists the file extensions this adapter claims,
	// including the leading dot (e.g. ".go").
	Extensions() []string

	// Parse extracts entities and import statements from one file's
	// source. A parse failure returns a non-nil error; callers must
	// treat it as non-fatal (§7: "a file that fails to parse produces
	// zero entities and one warning, never aborts the run").
	Parse(relPath, source string) (*entity.ParseIndex, []ImportStatement, error)

	// ExtractFunctionCalls returns the callee names referenced in
	// source, used to build the module-scoped call graph (§4.2's Graph
	// extractor).
	ExtractFunctionCalls(source string) []string

	// ExtractIdentifiers returns every identifier token in source
	// (function/variable/type names), used for the I/O-signature
	// Jaccard comparison in the clone detector's quality gate (§4.3.7).
	ExtractIdentifiers(source string) []string

	// CountDistinctBlocks returns the number of distinct lexical blocks
	// (function/class/method bodies) discovered, used by the quality
	// gate's MinDistinctBlocks check.
	CountDistinctBlocks(source string) int
}
