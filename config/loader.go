// Package config loads ScopeConfig values from YAML files, following
// the pack's internal/config.Manager pattern: read, default, validate.
// This is optional sugar around the scope builder (§4.6) for operators
// who want to seed many scopes without hand-writing builder calls.
package config

import (
	"fmt"
	"os"

	"github.com/blockberries/hashvote/types"
	"gopkg.in/yaml.v3"
)

// scopeConfigYAML mirrors types.ScopeConfig with YAML tags and string
// enums, since NetworkType's numeric encoding isn't operator-friendly.
type scopeConfigYAML struct {
	NetworkType         string  `yaml:"network_type"`
	ConsensusThreshold  float64 `yaml:"consensus_threshold"`
	TimeoutSeconds      uint32  `yaml:"timeout_seconds"`
	LivenessCriteriaYes bool    `yaml:"liveness_criteria_yes"`
	MaxSessions         int     `yaml:"max_sessions"`
}

// LoadScopeConfig reads a single ScopeConfig document from path and
// applies types.ScopeConfig.Clamp, which replaces a zero or out-of-range
// threshold, timeout or max_sessions with its default. An absent
// liveness_criteria_yes stays false; an absent or unknown network_type
// becomes gossipsub.
func LoadScopeConfig(path string) (types.ScopeConfig, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return types.ScopeConfig{}, fmt.Errorf("config: read %s: %w", path, err)
	}

	var doc scopeConfigYAML
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return types.ScopeConfig{}, fmt.Errorf("config: parse %s: %w", path, err)
	}

	cfg := types.ScopeConfig{
		NetworkType:         parseNetworkType(doc.NetworkType),
		ConsensusThreshold:  doc.ConsensusThreshold,
		TimeoutSeconds:      doc.TimeoutSeconds,
		LivenessCriteriaYes: doc.LivenessCriteriaYes,
		MaxSessions:         doc.MaxSessions,
	}
	cfg.Clamp()
	return cfg, nil
}

func parseNetworkType(s string) types.NetworkType {
	switch s {
	case "p2p":
		return types.NetworkP2P
	case "gossipsub", "":
		return types.NetworkGossipsub
	default:
		return types.NetworkGossipsub
	}
}
