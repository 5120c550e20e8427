// Package config loads the YAML configuration for the flushnoded
// binary: the policy thresholds plus the engine and transport settings
// a running node needs that the policy core itself has no opinion
// about.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/arborfs/flushnode/flushpolicy"
)

// PolicyConfig mirrors flushpolicy.PolicyConfig with YAML tags and a
// Duration wrapper for MaxTimeGain, since the core type intentionally
// carries no serialization concerns of its own.
type PolicyConfig struct {
	MaxMemoryGain        uint64   `yaml:"max_memory_gain"`
	GlobalMaxMemory      uint64   `yaml:"global_max_memory"`
	TotalDiskBloatFactor float64  `yaml:"total_disk_bloat_factor"`
	MaxGlobalTlsSize     uint64   `yaml:"max_global_tls_size"`
	DiskBloatFactor      float64  `yaml:"disk_bloat_factor"`
	MaxTimeGain          Duration `yaml:"max_time_gain"`
}

// ToPolicy converts the YAML-shaped config into the core's
// flushpolicy.PolicyConfig.
func (p PolicyConfig) ToPolicy() flushpolicy.PolicyConfig {
	return flushpolicy.PolicyConfig{
		MaxMemoryGain:        p.MaxMemoryGain,
		GlobalMaxMemory:      p.GlobalMaxMemory,
		TotalDiskBloatFactor: p.TotalDiskBloatFactor,
		MaxGlobalTlsSize:     p.MaxGlobalTlsSize,
		DiskBloatFactor:      p.DiskBloatFactor,
		MaxTimeGain:          p.MaxTimeGain.Duration(),
	}
}

// NodeConfig is the root YAML document flushnoded loads.
type NodeConfig struct {
	Policy      PolicyConfig `yaml:"policy"`
	Interval    Duration     `yaml:"interval"`
	ListenAddr  string       `yaml:"listen_addr"`
	WorkerLimit int          `yaml:"worker_limit"`
}

// DefaultNodeConfig returns the settings flushnoded uses when a field
// is left unset in the YAML document.
func DefaultNodeConfig() NodeConfig {
	return NodeConfig{
		Interval:    Duration(10e9), // 10s
		ListenAddr:  ":9091",
		WorkerLimit: 4,
	}
}

// Load reads and decodes the YAML document at path into a NodeConfig,
// seeded with DefaultNodeConfig's values.
func Load(path string) (*NodeConfig, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	cfg := DefaultNodeConfig()
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config file %s: %w", path, err)
	}
	return &cfg, nil
}
