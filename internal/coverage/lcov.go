package coverage

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/valknut-go/valknut/internal/vkerrors"
)

// ParseLCOV reads an LCOV tracefile (the `SF:`/`DA:`/`BRDA:`/`end_of_record`
// format emitted by genhtml/lcov and most JS/Python coverage tools). No
// third-party LCOV library appears anywhere in the example pack, and the
// format itself is a simple line-oriented key:value grammar, so a
// bufio.Scanner reader is the idiomatic choice here rather than stdlib
// overreach — see DESIGN.md.
func ParseLCOV(r io.Reader) (*Report, error) {
	report := NewReport()
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	var current FileCoverage
	var path string
	flush := func() {
		if path == "" {
			return
		}
		if current.LinesFound == 0 && len(current.Lines) > 0 {
			found, hit := 0, 0
			for _, hits := range current.Lines {
				found++
				if hits > 0 {
					hit++
				}
			}
			current.LinesFound, current.LinesHit = found, hit
		}
		report.Files[path] = current
	}

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		switch {
		case strings.HasPrefix(line, "SF:"):
			path = normalizeSlashes(strings.TrimPrefix(line, "SF:"))
			current = FileCoverage{Path: path, Lines: make(map[int]int)}
		case strings.HasPrefix(line, "DA:"):
			parts := strings.SplitN(strings.TrimPrefix(line, "DA:"), ",", 3)
			if len(parts) < 2 {
				continue
			}
			lineNo, err1 := strconv.Atoi(parts[0])
			hits, err2 := strconv.Atoi(parts[1])
			if err1 != nil || err2 != nil {
				continue
			}
			current.Lines[lineNo] = hits
		case strings.HasPrefix(line, "LF:"):
			current.LinesFound, _ = strconv.Atoi(strings.TrimPrefix(line, "LF:"))
		case strings.HasPrefix(line, "LH:"):
			current.LinesHit, _ = strconv.Atoi(strings.TrimPrefix(line, "LH:"))
		case strings.HasPrefix(line, "BRF:"):
			current.BranchesFound, _ = strconv.Atoi(strings.TrimPrefix(line, "BRF:"))
		case strings.HasPrefix(line, "BRH:"):
			current.BranchesHit, _ = strconv.Atoi(strings.TrimPrefix(line, "BRH:"))
		case line == "end_of_record":
			flush()
			path = ""
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, vkerrors.New(vkerrors.KindIO, "parse_lcov", err)
	}
	flush() // tolerate a tracefile missing its final end_of_record
	return report, nil
}

func normalizeSlashes(path string) string {
	return strings.ReplaceAll(strings.TrimSpace(path), "\\", "/")
}
