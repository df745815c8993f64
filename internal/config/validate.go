package config

import (
	"net/url"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/Leenie/ansible-universe/internal/constants"
	uerrors "github.com/Leenie/ansible-universe/internal/errors"
)

// Validate checks the configuration for invalid or inconsistent values.
// It returns the first failure found, wrapping ErrConfigInvalid.
//
// Validation rules:
//   - kind must be role or composition
//   - every exclude must be a valid doublestar pattern
//   - repository, when set, must be an http or https URL
//   - syntax command and timeout must be set when the checker is enabled
//   - publish timeout must be positive
func Validate(cfg *Config) error {
	if cfg == nil {
		return uerrors.ErrConfigNil
	}

	switch cfg.Kind {
	case constants.KindRole, constants.KindComposition:
	default:
		return uerrors.Wrapf(uerrors.ErrConfigInvalid,
			"kind must be %q or %q, got %q", constants.KindRole, constants.KindComposition, cfg.Kind)
	}

	for _, pattern := range cfg.Exclude {
		if !doublestar.ValidatePattern(pattern) {
			return uerrors.Wrapf(uerrors.ErrConfigInvalid, "exclude: bad pattern %q", pattern)
		}
	}

	if err := validateRepository(cfg.Repository); err != nil {
		return err
	}

	if cfg.Syntax.Enabled {
		if strings.TrimSpace(cfg.Syntax.Command) == "" {
			return uerrors.Wrapf(uerrors.ErrConfigInvalid, "syntax.command must not be empty")
		}
		if cfg.Syntax.Timeout <= 0 {
			return uerrors.Wrapf(uerrors.ErrConfigInvalid,
				"syntax.timeout must be positive, got %s", cfg.Syntax.Timeout)
		}
	}

	if cfg.Publish.Timeout <= 0 {
		return uerrors.Wrapf(uerrors.ErrConfigInvalid,
			"publish.timeout must be positive, got %s", cfg.Publish.Timeout)
	}
	return nil
}

func validateRepository(raw string) error {
	if raw == "" {
		return nil
	}
	u, err := url.Parse(raw)
	if err != nil {
		return uerrors.Wrap(uerrors.ErrConfigInvalid, "repository is not a valid URL")
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return uerrors.Wrapf(uerrors.ErrConfigInvalid, "repository: scheme must be http or https, got %q", u.Scheme)
	}
	if u.Host == "" {
		return uerrors.Wrapf(uerrors.ErrConfigInvalid, "repository: missing host")
	}
	return nil
}
