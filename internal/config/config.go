// Package config loads opsgate configuration from YAML with defaults
// overlay: missing files yield defaults, partial files override only the
// fields they set.
package config

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/opsgate/opsgate/internal/alert"
)

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port int `yaml:"port"`
}

// Config holds all configurable parameters.
type Config struct {
	// ActivePrinciples selects the enforced principles. Empty means the
	// full fixed set. Unknown names fail at evaluator construction.
	ActivePrinciples []string `yaml:"active_principles"`

	EnablePolicyEvaluation     *bool `yaml:"enable_policy_evaluation"`
	EnableResilienceMonitoring *bool `yaml:"enable_resilience_monitoring"`
	EnableAudit                *bool `yaml:"enable_audit"`

	// AuditSink is the JSONL persistence path. Empty disables persistence;
	// the in-memory ledger still operates.
	AuditSink string `yaml:"audit_sink"`

	// RecoveryOverrides maps component name to a fixed recovery strategy,
	// replacing the status-based default.
	RecoveryOverrides map[string]string `yaml:"recovery_overrides"`

	Server ServerConfig   `yaml:"server"`
	Alerts []alert.Config `yaml:"alerts"`
}

// PolicyEnabled reports whether policy evaluation is on (default true).
func (c *Config) PolicyEnabled() bool {
	return c.EnablePolicyEvaluation == nil || *c.EnablePolicyEvaluation
}

// ResilienceEnabled reports whether resilience monitoring is on (default true).
func (c *Config) ResilienceEnabled() bool {
	return c.EnableResilienceMonitoring == nil || *c.EnableResilienceMonitoring
}

// AuditEnabled reports whether audit recording is on (default true).
func (c *Config) AuditEnabled() bool {
	return c.EnableAudit == nil || *c.EnableAudit
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{Port: 8372},
	}
}

// DefaultPath returns ~/.opsgate/config.yaml, or empty when the home
// directory cannot be resolved.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".opsgate", "config.yaml")
}

// Load reads configuration from a YAML file. Empty path falls back to
// ~/.opsgate/config.yaml. Missing file returns defaults. Invalid YAML
// returns an error.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultPath()
		if path == "" {
			return Default(), nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	// Start with defaults, YAML overwrites only specified fields.
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return cfg, nil
}

// LoadWithHash loads configuration and returns its SHA-256 hash.
// The hash is computed over the raw YAML bytes on disk.
// When no file exists (defaults used), the hash is the SHA-256 of empty input.
func LoadWithHash(path string) (*Config, string, error) {
	if path == "" {
		path = DefaultPath()
	}
	if path == "" {
		h := sha256.Sum256(nil)
		return Default(), "sha256:" + hex.EncodeToString(h[:]), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			h := sha256.Sum256(nil)
			return Default(), "sha256:" + hex.EncodeToString(h[:]), nil
		}
		return nil, "", fmt.Errorf("failed to read config: %w", err)
	}

	h := sha256.Sum256(data)
	hash := "sha256:" + hex.EncodeToString(h[:])

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, "", fmt.Errorf("failed to parse config: %w", err)
	}

	return cfg, hash, nil
}

// DefaultYAML returns a commented YAML string for init-config.
func DefaultYAML() string {
	return `# opsgate configuration
# Generated by: opsgate init-config

# Principles enforced by the policy evaluator. Omit (or leave empty) to
# enforce the full fixed set:
#   transparency, fairness, privacy, accountability,
#   beneficence, non_maleficence, autonomy, justice
# Unknown names fail at startup, not at evaluation time.
#active_principles:
#  - transparency
#  - privacy
#  - non_maleficence

# Component toggles. All default to true.
#enable_policy_evaluation: true
#enable_resilience_monitoring: true
#enable_audit: true

# Append-only JSONL audit persistence. Each line is a hash-chained audit
# entry; verify with: opsgate audit verify <path>
# Empty/omitted keeps the ledger in-memory only.
#audit_sink: ~/.opsgate/audit.jsonl

# Per-component recovery strategy overrides. Default mapping:
#   critical -> restart_component, degraded -> reduce_load,
#   else     -> monitor_and_wait
#recovery_overrides:
#  payment-gateway: monitor_and_wait

server:
  port: 8372

# Webhook alerts for denied decisions and failing health checks.
# events: denied | critical | degraded | recovery_failed
#alerts:
#  - url: https://hooks.slack.com/services/T000/B000/XXXX
#    format: slack
#    events: [denied, critical]
`
}
