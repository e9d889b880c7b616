package coverage

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleLCOV = `SF:src/foo.go
DA:1,1
DA:2,0
DA:3,5
LF:3
LH:2
BRDA:2,0,0,0
end_of_record
SF:src/bar.go
DA:1,0
end_of_record
`

func TestParseLCOV(t *testing.T) {
	report, err := ParseLCOV(strings.NewReader(sampleLCOV))
	require.NoError(t, err)
	require.Len(t, report.Files, 2)

	foo, ok := report.Lookup("src/foo.go")
	require.True(t, ok)
	assert.Equal(t, 3, foo.LinesFound)
	assert.Equal(t, 2, foo.LinesHit)
	assert.InDelta(t, 66.666, foo.PercentLines(), 0.01)

	bar, ok := report.Lookup("src/bar.go")
	require.True(t, ok)
	assert.Equal(t, 0, bar.LinesHit)
}

func TestParseLCOVMissingEndOfRecordStillFlushes(t *testing.T) {
	report, err := ParseLCOV(strings.NewReader("SF:src/only.go\nDA:1,1\n"))
	require.NoError(t, err)
	fc, ok := report.Lookup("src/only.go")
	require.True(t, ok)
	assert.Equal(t, 1, fc.LinesHit)
}

const sampleCobertura = `<?xml version="1.0"?>
<coverage>
  <packages>
    <package>
      <classes>
        <class filename="src/widget.go">
          <lines>
            <line number="1" hits="4"/>
            <line number="2" hits="0"/>
            <line number="3" hits="1" branch="true" condition-coverage="50% (1/2)"/>
          </lines>
        </class>
      </classes>
    </package>
  </packages>
</coverage>`

func TestParseCobertura(t *testing.T) {
	report, err := ParseCobertura(strings.NewReader(sampleCobertura))
	require.NoError(t, err)
	fc, ok := report.Lookup("src/widget.go")
	require.True(t, ok)
	assert.Equal(t, 3, fc.LinesFound)
	assert.Equal(t, 2, fc.LinesHit)
	assert.Equal(t, 2, fc.BranchesFound)
	assert.Equal(t, 1, fc.BranchesHit)
}

func TestLinesCoveredInRange(t *testing.T) {
	fc := FileCoverage{Lines: map[int]int{10: 1, 11: 0, 12: 1, 20: 1}}
	percent, instrumented := fc.LinesCoveredInRange(10, 12)
	assert.Equal(t, 3, instrumented)
	assert.InDelta(t, 66.666, percent, 0.01)
}

func TestStaleSinceDays(t *testing.T) {
	days := StaleSinceDays(time.Now().Add(-48 * time.Hour))
	assert.InDelta(t, 2.0, days, 0.05)
}
