package vkconfig

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/valknut-go/valknut/internal/vkerrors"
)

// fileConfig is the on-disk shape for YAML/TOML config files. Only the
// top-level sections carry tags; fields inside a section have none, so
// they are matched by Go field name (lowercased for YAML, case-
// insensitively for TOML): "numhashes" is recognised, "num_hashes" is
// not. Keeping this
// separate from Config lets the wire format evolve without touching the
// in-memory representation extractors and scorers depend on.
type fileConfig struct {
	Analysis  *Analysis                  `yaml:"analysis" toml:"analysis"`
	Scoring   *Scoring                   `yaml:"scoring" toml:"scoring"`
	Graph     *Graph                     `yaml:"graph" toml:"graph"`
	LSH       *LSH                       `yaml:"lsh" toml:"lsh"`
	Denoise   *Denoise                   `yaml:"denoise" toml:"denoise"`
	Languages map[string]LanguageConfig  `yaml:"languages" toml:"languages"`
	Structure *Structure                 `yaml:"structure" toml:"structure"`
	Coverage  *Coverage                  `yaml:"coverage" toml:"coverage"`
	Performance *Performance             `yaml:"performance" toml:"performance"`
}

// Load reads a configuration file at path: TOML for ".toml", KDL (via
// LoadKDL) for ".kdl", YAML otherwise. For YAML/TOML, each top-level
// section present in the file replaces the matching Default() section
// as a whole, so fields the section omits are zero rather than
// defaulted. A missing file is not an error: the caller gets defaults,
// matching the teacher's Load/LoadWithRoot fallback.
func Load(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, vkerrors.New(vkerrors.KindIO, "read_config", err).WithPath(path)
	}

	var fc fileConfig
	switch filepath.Ext(path) {
	case ".toml":
		if err := toml.Unmarshal(data, &fc); err != nil {
			return nil, vkerrors.New(vkerrors.KindConfig, "parse_toml", err).WithPath(path)
		}
	case ".kdl":
		loaded, err := LoadKDL(data)
		if err != nil {
			return nil, vkerrors.New(vkerrors.KindConfig, "parse_kdl", err).WithPath(path)
		}
		return loaded, nil
	default:
		if err := yaml.Unmarshal(data, &fc); err != nil {
			return nil, vkerrors.New(vkerrors.KindConfig, "parse_yaml", err).WithPath(path)
		}
	}
	applyFileConfig(cfg, &fc)
	return cfg, nil
}

// LoadWithOverride loads path, then applies a project-local .valknut.kdl
// override if present in rootDir, mirroring the teacher's base+project
// config merge (project settings win; list-valued settings are unioned).
func LoadWithOverride(path, rootDir string) (*Config, error) {
	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}
	kdlPath := filepath.Join(rootDir, ".valknut.kdl")
	if data, err := os.ReadFile(kdlPath); err == nil {
		override, err := LoadKDL(data)
		if err != nil {
			return nil, vkerrors.New(vkerrors.KindConfig, "parse_kdl_override", err).WithPath(kdlPath)
		}
		cfg = mergeConfigs(cfg, override)
	}
	cfg.Project.Roots = append(cfg.Project.Roots, rootDir)
	return cfg, nil
}

func applyFileConfig(cfg *Config, fc *fileConfig) {
	if fc.Analysis != nil {
		cfg.Analysis = *fc.Analysis
	}
	if fc.Scoring != nil {
		cfg.Scoring = *fc.Scoring
	}
	if fc.Graph != nil {
		cfg.Graph = *fc.Graph
	}
	if fc.LSH != nil {
		cfg.LSH = *fc.LSH
	}
	if fc.Denoise != nil {
		cfg.Denoise = *fc.Denoise
	}
	if len(fc.Languages) > 0 {
		cfg.Languages = fc.Languages
	}
	if fc.Structure != nil {
		cfg.Structure = *fc.Structure
	}
	if fc.Coverage != nil {
		cfg.Coverage = *fc.Coverage
	}
	if fc.Performance != nil {
		cfg.Performance = *fc.Performance
	}
}

// mergeConfigs overlays override onto base, preferring override's non-zero
// scalar fields and unioning its exclude-style list fields, the same
// precedence rule the teacher's mergeConfigs applies to Include/Exclude.
func mergeConfigs(base, override *Config) *Config {
	merged := *base
	if len(override.Analysis.ExcludePatterns) > 0 {
		seen := map[string]bool{}
		union := make([]string, 0, len(base.Analysis.ExcludePatterns)+len(override.Analysis.ExcludePatterns))
		for _, p := range append(append([]string{}, base.Analysis.ExcludePatterns...), override.Analysis.ExcludePatterns...) {
			if !seen[p] {
				seen[p] = true
				union = append(union, p)
			}
		}
		merged.Analysis = override.Analysis
		merged.Analysis.ExcludePatterns = union
	} else {
		merged.Analysis = override.Analysis
		merged.Analysis.ExcludePatterns = base.Analysis.ExcludePatterns
	}
	return &merged
}

// String renders a human-readable summary, used in warnings/logs.
func (c *Config) String() string {
	return fmt.Sprintf("Config{roots=%v lsh(H=%d,B=%d) denoise=%v}",
		c.Project.Roots, c.LSH.NumHashes, c.LSH.NumBands, c.Denoise.Enabled)
}
