package config

import (
	"github.com/spf13/viper"

	"github.com/Leenie/ansible-universe/internal/constants"
)

// DefaultConfig returns a Config populated with the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		Kind:    constants.KindRole,
		Exclude: []string{},
		Rules: RulesConfig{
			Enable:  []string{},
			Disable: []string{},
		},
		Lint: LintConfig{Parallel: true},
		Syntax: SyntaxConfig{
			Enabled: true,
			Command: constants.DefaultSyntaxCommand,
			Timeout: constants.DefaultSyntaxTimeout,
		},
		Publish: PublishConfig{
			Timeout: constants.DefaultPublishTimeout,
		},
	}
}

// setDefaults configures all default values on the Viper instance.
// Keys must match the mapstructure tags so that environment variables bind.
func setDefaults(v *viper.Viper) {
	d := DefaultConfig()

	v.SetDefault("repository", d.Repository)
	v.SetDefault("kind", d.Kind)
	v.SetDefault("exclude", d.Exclude)

	v.SetDefault("rules.enable", d.Rules.Enable)
	v.SetDefault("rules.disable", d.Rules.Disable)

	v.SetDefault("lint.parallel", d.Lint.Parallel)

	v.SetDefault("syntax.enabled", d.Syntax.Enabled)
	v.SetDefault("syntax.command", d.Syntax.Command)
	v.SetDefault("syntax.timeout", d.Syntax.Timeout.String())

	v.SetDefault("publish.timeout", d.Publish.Timeout.String())
	v.SetDefault("publish.insecure", d.Publish.Insecure)
}
