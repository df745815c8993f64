package config

import (
	"context"
	stderrors "errors"
	"os"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	uerrors "github.com/Leenie/ansible-universe/internal/errors"
)

// EnvPrefix is the prefix of environment variables read by Load.
const EnvPrefix = "UNIVERSE"

// newViperInstance creates a Viper instance with defaults and environment binding.
func newViperInstance() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

func isConfigNotFoundError(err error) bool {
	if err == nil {
		return false
	}
	var notFound viper.ConfigFileNotFoundError
	return stderrors.As(err, &notFound) || os.IsNotExist(err)
}

// Load reads the global and unit configuration files for the unit rooted at
// root, then the environment. Missing files are not an error.
func Load(ctx context.Context, root string) (*Config, error) {
	global := ""
	if path, err := GlobalConfigPath(); err == nil && fileExists(path) {
		global = path
	}
	unit := UnitConfigPath(root)
	if !fileExists(unit) {
		unit = ""
	}

	cfg, err := LoadFromPaths(ctx, unit, global)
	if err != nil {
		return nil, err
	}

	zerolog.Ctx(ctx).Debug().
		Str("component", "config").
		Str("global", global).
		Str("unit", unit).
		Str("kind", cfg.Kind).
		Bool("syntax.enabled", cfg.Syntax.Enabled).
		Dur("syntax.timeout", cfg.Syntax.Timeout).
		Msg("configuration loaded")
	return cfg, nil
}

// LoadFromPaths loads configuration from explicit file paths. unitPath takes
// precedence over globalPath; either may be empty to skip that level.
func LoadFromPaths(_ context.Context, unitPath, globalPath string) (*Config, error) {
	v := newViperInstance()

	if globalPath != "" {
		v.SetConfigFile(globalPath)
		if err := v.ReadInConfig(); err != nil && !isConfigNotFoundError(err) {
			return nil, uerrors.Tag(uerrors.ErrConfigInvalid, err, "read global config "+globalPath)
		}
	}
	if unitPath != "" {
		v.SetConfigFile(unitPath)
		if err := v.MergeInConfig(); err != nil && !isConfigNotFoundError(err) {
			return nil, uerrors.Tag(uerrors.ErrConfigInvalid, err, "read unit config "+unitPath)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, viperDecoderOption()); err != nil {
		return nil, uerrors.Tag(uerrors.ErrConfigInvalid, err, "decode config")
	}
	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Overrides are values set on the command line. Zero values leave the loaded
// configuration untouched; booleans are applied by the caller when the flag
// was set explicitly.
type Overrides struct {
	Repository string
	Kind       string
	Exclude    []string
	Enable     []string
	Disable    []string
}

// LoadWithOverrides loads configuration and applies command-line overrides.
// Excludes and rule selectors from flags are appended to the configured ones.
func LoadWithOverrides(ctx context.Context, root string, o *Overrides) (*Config, error) {
	cfg, err := Load(ctx, root)
	if err != nil {
		return nil, err
	}
	if o != nil {
		applyOverrides(cfg, o)
	}
	if err := Validate(cfg); err != nil {
		return nil, uerrors.Wrap(err, "invalid configuration after overrides")
	}
	return cfg, nil
}

func applyOverrides(cfg *Config, o *Overrides) {
	if o.Repository != "" {
		cfg.Repository = o.Repository
	}
	if o.Kind != "" {
		cfg.Kind = o.Kind
	}
	cfg.Exclude = append(cfg.Exclude, o.Exclude...)
	cfg.Rules.Enable = append(cfg.Rules.Enable, o.Enable...)
	cfg.Rules.Disable = append(cfg.Rules.Disable, o.Disable...)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// viperDecoderOption decodes durations and comma-separated lists, which is
// how both arrive from environment variables.
func viperDecoderOption() viper.DecoderConfigOption {
	return viper.DecodeHook(
		mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
	)
}
