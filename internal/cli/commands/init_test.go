package commands

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conduit-lang/derivekit/internal/cli/config"
)

func TestInitWritesDefaults(t *testing.T) {
	dir := t.TempDir()

	stdout, _, err := execute(t, "init", dir, "--yes")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Created "+filepath.Join(dir, config.FileName))
	assert.Contains(t, stdout, "derivekit expand")

	cfg, err := config.Load(dir)
	require.NoError(t, err)
	assert.Equal(t, config.Default(), cfg)
}

func TestInitRefusesToOverwrite(t *testing.T) {
	dir := t.TempDir()

	_, _, err := execute(t, "init", dir, "-y")
	require.NoError(t, err)

	_, stderr, err := execute(t, "init", dir, "-y")
	require.Error(t, err)
	assert.Contains(t, stderr, "ALREADY INITIALIZED")
	assert.Contains(t, stderr, "derivekit init --force")

	_, _, err = execute(t, "init", dir, "-y", "--force")
	assert.NoError(t, err)
}

func TestInitRequiresDirectory(t *testing.T) {
	_, _, err := execute(t, "init", filepath.Join(t.TempDir(), "missing"), "--yes")
	assert.Error(t, err)
}

func TestValidateCrateName(t *testing.T) {
	tests := []struct {
		name    string
		input   interface{}
		wantErr bool
	}{
		{"default", "derivekit", false},
		{"underscore", "my_runtime", false},
		{"digits", "rt2", false},
		{"empty", "  ", true},
		{"hyphen", "my-runtime", true},
		{"leading digit", "2rt", true},
		{"not a string", 42, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateCrateName(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
