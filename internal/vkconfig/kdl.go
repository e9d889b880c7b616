package vkconfig

import (
	"fmt"
	"strconv"

	kdl "github.com/sblinch/kdl-go"
	"github.com/sblinch/kdl-go/document"
)

// LoadKDL parses a project-local KDL override document (.valknut.kdl). Only
// a handful of leaf settings are recognised — the ones an operator is most
// likely to override per-repo (LSH thresholds, denoise toggle, exclusions)
// — everything else falls through to the YAML/defaults layer, mirroring
// the teacher's deliberately small LoadKDL surface.
func LoadKDL(data []byte) (*Config, error) {
	doc, err := kdl.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse kdl: %w", err)
	}
	cfg := Default()
	for _, node := range doc.Nodes {
		switch node.Name.ValueString() {
		case "lsh":
			applyKDLLSH(node, &cfg.LSH)
		case "denoise":
			applyKDLDenoise(node, &cfg.Denoise)
		case "exclude":
			for _, arg := range node.Arguments {
				cfg.Analysis.ExcludePatterns = append(cfg.Analysis.ExcludePatterns, arg.ValueString())
			}
		}
	}
	return cfg, nil
}

func applyKDLLSH(node *document.Node, l *LSH) {
	for _, child := range node.Children {
		switch child.Name.ValueString() {
		case "num_hashes":
			l.NumHashes = kdlInt(child, l.NumHashes)
		case "num_bands":
			l.NumBands = kdlInt(child, l.NumBands)
		case "similarity_threshold":
			l.SimilarityThreshold = kdlFloat(child, l.SimilarityThreshold)
		}
	}
}

func applyKDLDenoise(node *document.Node, d *Denoise) {
	for _, child := range node.Children {
		switch child.Name.ValueString() {
		case "enabled":
			d.Enabled = kdlBool(child, d.Enabled)
		case "auto":
			d.Auto = kdlBool(child, d.Auto)
		}
	}
}

func kdlInt(n *document.Node, fallback int) int {
	if len(n.Arguments) == 0 {
		return fallback
	}
	if v, err := strconv.Atoi(n.Arguments[0].ValueString()); err == nil {
		return v
	}
	return fallback
}

func kdlFloat(n *document.Node, fallback float64) float64 {
	if len(n.Arguments) == 0 {
		return fallback
	}
	if v, err := strconv.ParseFloat(n.Arguments[0].ValueString(), 64); err == nil {
		return v
	}
	return fallback
}

func kdlBool(n *document.Node, fallback bool) bool {
	if len(n.Arguments) == 0 {
		return fallback
	}
	switch n.Arguments[0].ValueString() {
	case "true", "#true":
		return true
	case "false", "#false":
		return false
	}
	return fallback
}
