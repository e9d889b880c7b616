package lang

import (
	"fmt"
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/valknut-go/valknut/internal/entity"
)

// captureRule maps one tree-sitter query capture name to the entity.Kind
// it should produce, plus the capture name (if any) that carries the
// entity's name.
type captureRule struct {
	capture  string
	kind     entity.Kind
	nameCap  string
	isImport bool
}

// tsAdapter is the shared implementation behind every concrete language
// adapter: one parser, one query, and a small capture-name -> Kind table
// (§4.1's "grammar-specific queries feeding a shared extraction loop").
type tsAdapter struct {
	language string
	exts     []string
	ts       *tree_sitter.Language
	query    *tree_sitter.Query
	rules    []captureRule
}

func newTSAdapter(language string, exts []string, ts *tree_sitter.Language, queryStr string, rules []captureRule) (*tsAdapter, error) {
	parserQuery, err := tree_sitter.NewQuery(ts, queryStr)
	if err != nil {
		return nil, fmt.Errorf("compile %s query: %w", language, err)
	}
	return &tsAdapter{
		language: language,
		exts:     exts,
		ts:       ts,
		query:    parserQuery,
		rules:    rules,
	}, nil
}

func (a *tsAdapter) LanguageName() string  { return a.language }
func (a *tsAdapter) Extensions() []string  { return a.exts }

func (a *tsAdapter) ruleFor(capture string) (captureRule, bool) {
	for _, r := range a.rules {
		if r.capture == capture {
			return r, true
		}
	}
	return captureRule{}, false
}

// Parse runs the adapter's entity query over source and assembles a
// ParseIndex. Ordinals are assigned per (file, kind) in capture order so
// entity.NewID stays stable across runs of the same parser version on
// unchanged source (P5-style determinism, applied at the parsing layer).
func (a *tsAdapter) Parse(relPath, source string) (*entity.ParseIndex, []ImportStatement, error) {
	parser := tree_sitter.NewParser()
	defer parser.Close()
	if err := parser.SetLanguage(a.ts); err != nil {
		return nil, nil, fmt.Errorf("set language %s: %w", a.language, err)
	}

	content := []byte(source)
	tree := parser.Parse(content, nil)
	if tree == nil {
		return nil, nil, fmt.Errorf("%s: parse returned no tree", relPath)
	}
	defer tree.Close()

	qc := tree_sitter.NewQueryCursor()
	defer qc.Close()

	matches := qc.Matches(a.query, tree.RootNode(), content)
	captureNames := a.query.CaptureNames()

	idx := entity.NewParseIndex()
	var imports []ImportStatement
	ordinals := make(map[entity.Kind]int)

	for {
		match := matches.Next()
		if match == nil {
			break
		}

		names := make(map[string]string, 2)
		for _, c := range match.Captures {
			cn := captureNames[c.Index]
			if strings.HasSuffix(cn, ".name") || strings.HasSuffix(cn, ".source") || strings.HasSuffix(cn, ".path") {
				names[cn] = nodeText(c.Node, content)
			}
		}

		for _, c := range match.Captures {
			cn := captureNames[c.Index]
			rule, ok := a.ruleFor(cn)
			if !ok {
				continue
			}
			node := c.Node

			if rule.isImport {
				path := names[rule.nameCap]
				if path == "" {
					path = nodeText(node, content)
				}
				imports = append(imports, ImportStatement{
					Path: cleanImportPath(path),
					Line: int(node.StartPosition().Row) + 1,
				})
				continue
			}

			name := names[rule.nameCap]
			if name == "" {
				name = "anonymous"
			}

			ordinal := ordinals[rule.kind]
			ordinals[rule.kind] = ordinal + 1

			e := &entity.CodeEntity{
				ID:   entity.NewID(relPath, rule.kind, ordinal),
				Kind: rule.kind,
				Name: name,
				File: relPath,
				Span: entity.Span{
					StartByte:   int(node.StartByte()),
					EndByte:     int(node.EndByte()),
					StartLine:   int(node.StartPosition().Row) + 1,
					StartColumn: int(node.StartPosition().Column),
					EndLine:     int(node.EndPosition().Row) + 1,
					EndColumn:   int(node.EndPosition().Column),
				},
				Source:   nodeText(node, content),
				Metadata: map[string]any{},
			}
			idx.Add(e)
		}
	}

	return idx, imports, nil
}

func nodeText(node tree_sitter.Node, content []byte) string {
	return string(content[node.StartByte():node.EndByte()])
}

// cleanImportPath strips surrounding quotes tree-sitter string-literal
// captures carry.
func cleanImportPath(s string) string {
	s = strings.TrimSpace(s)
	s = strings.Trim(s, `"'`)
	return s
}

// ExtractFunctionCalls does a lightweight lexical scan for `identifier(`
// sequences rather than a second compiled query per language: call-graph
// construction only needs approximate callee names, and every language
// in this adapter set uses the same `name(` call-expression shape at the
// token level.
func (a *tsAdapter) ExtractFunctionCalls(source string) []string {
	var calls []string
	tokens := tokenizeIdentifiers(source)
	for i := 0; i < len(tokens)-1; i++ {
		if tokens[i].text == "(" || !isIdentToken(tokens[i].text) {
			continue
		}
		if i+1 < len(tokens) && tokens[i+1].text == "(" {
			calls = append(calls, tokens[i].text)
		}
	}
	return calls
}

// ExtractIdentifiers returns every identifier-shaped token in source.
func (a *tsAdapter) ExtractIdentifiers(source string) []string {
	var out []string
	for _, t := range tokenizeIdentifiers(source) {
		if isIdentToken(t.text) {
			out = append(out, t.text)
		}
	}
	return out
}

// CountDistinctBlocks counts braces/indentation-block openers as a
// language-agnostic proxy for distinct lexical blocks, used by the
// clone-detector quality gate (§4.3.7).
func (a *tsAdapter) CountDistinctBlocks(source string) int {
	count := 0
	for _, r := range source {
		if r == '{' {
			count++
		}
	}
	if count == 0 {
		// Indentation-based languages (Python): approximate via colon
		// at end of line.
		for _, line := range strings.Split(source, "\n") {
			trimmed := strings.TrimRight(strings.TrimSpace(line), " \t")
			if strings.HasSuffix(trimmed, ":") {
				count++
			}
		}
	}
	return count
}

type lexToken struct {
	text string
}

func tokenizeIdentifiers(source string) []lexToken {
	var tokens []lexToken
	var cur strings.Builder
	flush := func() {
		if cur.Len() > 0 {
			tokens = append(tokens, lexToken{cur.String()})
			cur.Reset()
		}
	}
	for _, r := range source {
		switch {
		case r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9'):
			cur.WriteRune(r)
		case r == '(':
			flush()
			tokens = append(tokens, lexToken{"("})
		default:
			flush()
		}
	}
	flush()
	return tokens
}

func isIdentToken(s string) bool {
	if s == "" || s == "(" {
		return false
	}
	if s[0] >= '0' && s[0] <= '9' {
		return false
	}
	return true
}
