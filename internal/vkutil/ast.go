package vkutil

import "strings"

// LineSlice returns the 1-indexed, inclusive [startLine, endLine] window of
// source as a single string, used by extractors and the LSH normaliser to
// recover an entity's raw text from a span without re-reading the file.
func LineSlice(source string, startLine, endLine int) string {
	lines := strings.Split(source, "\n")
	if startLine < 1 {
		startLine = 1
	}
	if endLine > len(lines) {
		endLine = len(lines)
	}
	if startLine > endLine || startLine > len(lines) {
		return ""
	}
	return strings.Join(lines[startLine-1:endLine], "\n")
}

// EstimateNodeCount is the fallback AST-node estimator used when an
// adapter cannot report an exact tree-sitter node count (e.g. the file
// failed to parse past a recoverable point). It approximates the node
// count as whitespace-separated tokens plus lines, which tree-sitter grammars tend to
// track within a small constant factor for C-family and Python-family
// syntax alike.
func EstimateNodeCount(source string) int {
	lines := strings.Split(source, "\n")
	tokens := 0
	for _, l := range lines {
		tokens += len(strings.Fields(l))
	}
	return tokens + len(lines)
}

// CountLines returns the number of lines in source, counting a trailing
// newline as not starting an additional empty line.
func CountLines(source string) int {
	if source == "" {
		return 0
	}
	n := strings.Count(source, "\n")
	if !strings.HasSuffix(source, "\n") {
		n++
	}
	return n
}
