// Package cache persists the stop-motif and auto-calibration caches
// under .valknut/cache/denoise/ (§3/§4.3.8/§9) using write-temp-then-
// rename so a crash mid-write never leaves a corrupt cache file for the
// next run to read.
package cache

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/valknut-go/valknut/internal/vkerrors"
)

const (
	StopMotifFilename       = "stop_motifs.v1.json"
	AutoCalibrationFilename = "auto_calibration.v1.json"
)

// Dir returns the cache directory for a project root.
func Dir(rootDir string) string {
	return filepath.Join(rootDir, ".valknut", "cache", "denoise")
}

// WriteJSON marshals v and writes it atomically to path: the payload
// lands in a sibling temp file first, then os.Rename moves it into
// place, so readers never observe a partially-written file.
func WriteJSON(path string, v any) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return vkerrors.New(vkerrors.KindIO, "cache.write", err).WithPath(path)
	}

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return vkerrors.New(vkerrors.KindIO, "cache.write", err).WithPath(path)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return vkerrors.New(vkerrors.KindIO, "cache.write", err).WithPath(path)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return vkerrors.New(vkerrors.KindIO, "cache.write", err).WithPath(path)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return vkerrors.New(vkerrors.KindIO, "cache.write", err).WithPath(path)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return vkerrors.New(vkerrors.KindIO, "cache.write", err).WithPath(path)
	}
	return nil
}

// ReadJSON reads and unmarshals a cache file. A missing file is not an
// error: callers treat it as "no cache yet" and remine, per §4.3.8's
// cold-start behaviour.
func ReadJSON(path string, v any) (bool, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, vkerrors.New(vkerrors.KindIO, "cache.read", err).WithPath(path)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, vkerrors.New(vkerrors.KindParse, "cache.read", fmt.Errorf("corrupt cache file: %w", err)).WithPath(path)
	}
	return true, nil
}
