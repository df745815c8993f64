package constants

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanonicalPaths(t *testing.T) {
	assert.Equal(t, filepath.Join("meta", "main.yml"), ManifestPath)
	assert.Equal(t, filepath.Join("tasks", "main.yml"), AggregationPath)
	assert.Equal(t, filepath.Join("defaults", "main.yml"), DefaultsPath)
	assert.Equal(t, "README.md", DescriptionPath)
}

func TestAllowedSubdirs(t *testing.T) {
	t.Run("role allow-list", func(t *testing.T) {
		assert.Contains(t, AllowedSubdirs(KindRole), "tasks")
		assert.NotContains(t, AllowedSubdirs(KindRole), "scripts")
	})

	t.Run("composition allow-list", func(t *testing.T) {
		assert.Contains(t, AllowedSubdirs(KindComposition), "playbooks")
		assert.NotContains(t, AllowedSubdirs(KindComposition), "tasks")
	})

	t.Run("unknown kind falls back to role", func(t *testing.T) {
		assert.Equal(t, RoleSubdirs, AllowedSubdirs("bogus"))
	})
}

func TestTargetStatus(t *testing.T) {
	tests := []struct {
		status  TargetStatus
		success bool
	}{
		{TargetStatusSucceeded, true},
		{TargetStatusUpToDate, true},
		{TargetStatusFailed, false},
		{TargetStatusNotRun, false},
	}
	for _, tc := range tests {
		t.Run(tc.status.String(), func(t *testing.T) {
			assert.Equal(t, tc.success, tc.status.IsTerminalSuccess())
		})
	}
}
