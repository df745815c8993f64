// Package config provides the tool configuration with layered precedence.
//
// Configuration sources are loaded in the following order (highest precedence first):
//  1. CLI flags (passed via LoadWithOverrides)
//  2. Environment variables (UNIVERSE_* prefix)
//  3. Unit config (<unit>/.universe.yaml)
//  4. Global config (~/.universe/config.yaml)
//  5. Built-in defaults
//
// IMPORTANT: This package may import internal/constants and internal/errors,
// but MUST NOT import internal/lifecycle or other domain packages.
package config

import "time"

// Config is the root configuration structure.
type Config struct {
	// Repository is the publish endpoint. An empty value makes publish fail.
	Repository string `yaml:"repository" mapstructure:"repository"`

	// Kind selects the layout allow-list: "role" or "composition".
	// Default: "role"
	Kind string `yaml:"kind" mapstructure:"kind"`

	// Exclude lists doublestar patterns of user-owned paths that are never
	// generated, removed or packaged.
	Exclude []string `yaml:"exclude" mapstructure:"exclude"`

	Rules   RulesConfig   `yaml:"rules" mapstructure:"rules"`
	Lint    LintConfig    `yaml:"lint" mapstructure:"lint"`
	Syntax  SyntaxConfig  `yaml:"syntax" mapstructure:"syntax"`
	Publish PublishConfig `yaml:"publish" mapstructure:"publish"`
}

// RulesConfig adjusts the default rule selection. Entries are rule ids or groups.
type RulesConfig struct {
	Enable  []string `yaml:"enable" mapstructure:"enable"`
	Disable []string `yaml:"disable" mapstructure:"disable"`
}

// LintConfig contains settings for rule evaluation.
type LintConfig struct {
	// Parallel evaluates rules concurrently. Output order does not depend on it.
	// Default: true
	Parallel bool `yaml:"parallel" mapstructure:"parallel"`
}

// SyntaxConfig controls the external syntax checker run by check.
type SyntaxConfig struct {
	// Enabled runs the checker after a passing lint.
	// Default: true
	Enabled bool `yaml:"enabled" mapstructure:"enabled"`

	// Command is the playbook runner invoked with --syntax-check.
	// Default: "ansible-playbook"
	Command string `yaml:"command" mapstructure:"command"`

	// Timeout bounds one checker run.
	// Default: 5 minutes
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`
}

// PublishConfig controls archive uploads.
type PublishConfig struct {
	// Timeout bounds one upload attempt.
	// Default: 2 minutes
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`

	// Insecure skips TLS certificate verification.
	Insecure bool `yaml:"insecure" mapstructure:"insecure"`
}
