package errors_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	uerrors "github.com/Leenie/ansible-universe/internal/errors"
)

func TestSentinelErrors_AreDistinct(t *testing.T) {
	all := []error{
		uerrors.ErrMalformedManifest,
		uerrors.ErrIncompatibleVersion,
		uerrors.ErrUnreadableLayout,
		uerrors.ErrDuplicateRule,
		uerrors.ErrGenerationIO,
		uerrors.ErrTargetAction,
		uerrors.ErrLintFailed,
	}
	for i, a := range all {
		for j, b := range all {
			if i == j {
				continue
			}
			assert.NotErrorIs(t, a, b)
		}
	}
}

func TestWrap(t *testing.T) {
	t.Run("nil stays nil", func(t *testing.T) {
		assert.NoError(t, uerrors.Wrap(nil, "ctx"))
		assert.NoError(t, uerrors.Wrapf(nil, "ctx %d", 1))
	})

	t.Run("preserves chain", func(t *testing.T) {
		err := uerrors.Wrapf(uerrors.ErrGenerationIO, "write %s", "README.md")
		require.Error(t, err)
		assert.ErrorIs(t, err, uerrors.ErrGenerationIO)
		assert.Equal(t, "write README.md: artifact write failed", err.Error())
	})
}

func TestTag(t *testing.T) {
	cause := fmt.Errorf("permission denied")
	err := uerrors.Tag(uerrors.ErrUnreadableLayout, cause, "read tasks")

	assert.ErrorIs(t, err, uerrors.ErrUnreadableLayout)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "unreadable layout: read tasks: permission denied", err.Error())

	bare := uerrors.Tag(uerrors.ErrNoRepository, nil, "publish")
	assert.Equal(t, "no repository: publish", bare.Error())
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, uerrors.ExitSuccess},
		{"lint failure", uerrors.Wrap(uerrors.ErrLintFailed, "check"), uerrors.ExitLintFailure},
		{"unknown target", uerrors.ErrUnknownTarget, uerrors.ExitInvalidInput},
		{"no repository", uerrors.ErrNoRepository, uerrors.ExitInvalidInput},
		{"infrastructure", uerrors.ErrUnreadableLayout, uerrors.ExitError},
		{"plain", errors.New("boom"), uerrors.ExitError},
		{"explicit", uerrors.NewExitCodeError(7, errors.New("x")), 7},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, uerrors.ExitCode(tc.err))
		})
	}
}

func TestActionable(t *testing.T) {
	msg, action := uerrors.Actionable(uerrors.Wrap(uerrors.ErrNoRepository, "publish"))
	assert.Contains(t, msg, "repository")
	assert.Contains(t, action, "--repository")

	msg, action = uerrors.Actionable(errors.New("custom"))
	assert.Equal(t, "custom", msg)
	assert.Empty(t, action)

	assert.Empty(t, uerrors.UserMessage(nil))
}
