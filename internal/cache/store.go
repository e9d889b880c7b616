package cache

import (
	"github.com/google/uuid"

	"github.com/valknut-go/valknut/internal/lsh"
)

// LoadStopMotifs reads the persisted stop-motif cache for a project
// root. It returns (nil, nil) when no cache exists yet.
func LoadStopMotifs(rootDir string) (*lsh.StopMotifCache, error) {
	path := Dir(rootDir) + "/" + StopMotifFilename
	var c lsh.StopMotifCache
	ok, err := ReadJSON(path, &c)
	if err != nil || !ok {
		return nil, err
	}
	return &c, nil
}

// SaveStopMotifs atomically persists a freshly mined stop-motif cache.
func SaveStopMotifs(rootDir string, c *lsh.StopMotifCache) error {
	path := Dir(rootDir) + "/" + StopMotifFilename
	return WriteJSON(path, c)
}

// StoredCalibration is the on-disk shape of an auto-calibration run
// (§4.3.6): the chosen threshold plus enough provenance to decide
// whether it's still applicable to the current codebase.
type StoredCalibration struct {
	SchemaVersion     int     `json:"schema_version"`
	CodebaseSignature string  `json:"codebase_signature"`
	RunID             string  `json:"run_id"`
	Threshold         float64 `json:"threshold"`
	Quality           float64 `json:"quality"`
	MinedAtUnix       int64   `json:"mined_at_unix"`
}

const calibrationSchemaVersion = 1

// NewStoredCalibration wraps a calibration result with provenance for
// persistence. Each mining run gets a fresh RunID so mining-stats logs
// across several calibration attempts against the same codebase signature
// can still be told apart.
func NewStoredCalibration(signature string, minedAtUnix int64, result lsh.CalibrationResult) *StoredCalibration {
	return &StoredCalibration{
		SchemaVersion:     calibrationSchemaVersion,
		CodebaseSignature: signature,
		RunID:             uuid.NewString(),
		Threshold:         result.Threshold,
		Quality:           result.Quality,
		MinedAtUnix:       minedAtUnix,
	}
}

// Stale mirrors lsh.StopMotifCache.Stale: schema mismatch, signature
// mismatch, or age beyond refreshDays invalidates a stored calibration.
func (s *StoredCalibration) Stale(currentSignature string, nowUnix int64, refreshDays int) bool {
	if s == nil {
		return true
	}
	if s.SchemaVersion != calibrationSchemaVersion {
		return true
	}
	if s.CodebaseSignature != currentSignature {
		return true
	}
	ageDays := float64(nowUnix-s.MinedAtUnix) / 86400.0
	return ageDays > float64(refreshDays)
}

// LoadCalibration reads the persisted auto-calibration result, or
// returns (nil, nil) if none exists.
func LoadCalibration(rootDir string) (*StoredCalibration, error) {
	path := Dir(rootDir) + "/" + AutoCalibrationFilename
	var c StoredCalibration
	ok, err := ReadJSON(path, &c)
	if err != nil || !ok {
		return nil, err
	}
	return &c, nil
}

// SaveCalibration atomically persists an auto-calibration run.
func SaveCalibration(rootDir string, c *StoredCalibration) error {
	path := Dir(rootDir) + "/" + AutoCalibrationFilename
	return WriteJSON(path, c)
}
