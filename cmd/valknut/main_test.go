package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var testBinaryPath string

func TestMain(m *testing.M) {
	tempBinary := filepath.Join(os.TempDir(), "valknut-test-"+fmt.Sprintf("%d", time.Now().UnixNano()))

	buildCmd := exec.Command("go", "build", "-o", tempBinary, ".")
	var buildOut bytes.Buffer
	buildCmd.Stdout = &buildOut
	buildCmd.Stderr = &buildOut
	if err := buildCmd.Run(); err != nil {
		fmt.Printf("failed to build valknut for testing: %v\n%s\n", err, buildOut.String())
		os.Exit(1)
	}
	testBinaryPath = tempBinary

	code := m.Run()
	os.Remove(testBinaryPath)
	os.Exit(code)
}

func writeSample(t *testing.T, dir string) {
	t.Helper()
	content := `package sample

func Handle(a, b, c, d int) int {
	if a > 0 {
		if b > 0 {
			for i := 0; i < c; i++ {
				if d > 0 {
					a = a + i
				}
			}
		}
	}
	return a
}
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "handle.go"), []byte(content), 0o644))
}

func TestAnalyzeCommandJSONOutput(t *testing.T) {
	dir := t.TempDir()
	writeSample(t, dir)

	cmd := exec.Command(testBinaryPath, "--json", dir)
	out, err := cmd.CombinedOutput()
	require.NoError(t, err, "output: %s", out)

	var res map[string]interface{}
	require.NoError(t, json.Unmarshal(out, &res))
	require.Contains(t, res, "summary")
}

func TestVersionCommand(t *testing.T) {
	cmd := exec.Command(testBinaryPath, "version")
	out, err := cmd.CombinedOutput()
	require.NoError(t, err, "output: %s", out)
	require.Contains(t, string(out), "dev")
}
