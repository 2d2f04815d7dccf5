package commands

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conduit-lang/derivekit/internal/compiler/driver"
)

func TestExpandWritesOutput(t *testing.T) {
	dir, cfg := writeProject(t, map[string]string{"src/shapes.rs": pointSource})

	stdout, _, err := execute(t, "expand", dir, "--config", cfg)
	require.NoError(t, err)
	assert.Contains(t, stdout, "1 written")

	generated, err := os.ReadFile(filepath.Join(dir, "src", "shapes.derive.rs"))
	require.NoError(t, err)
	assert.Contains(t, string(generated), "impl ::core::ops::Add for Point2D")
}

func TestExpandDefaultsToProjectRoot(t *testing.T) {
	dir, cfg := writeProject(t, map[string]string{"shapes.rs": pointSource})

	_, _, err := execute(t, "expand", "--config", cfg)
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(dir, "shapes.derive.rs"))
}

func TestExpandStdout(t *testing.T) {
	dir, cfg := writeProject(t, map[string]string{"shapes.rs": pointSource})

	stdout, _, err := execute(t, "expand", filepath.Join(dir, "shapes.rs"), "--stdout", "--config", cfg)
	require.NoError(t, err)

	assert.Contains(t, stdout, "impl ::core::ops::Add for Point2D")
	assert.NotContains(t, stdout, "==>", "a single file is printed without a banner")
	assert.NoFileExists(t, filepath.Join(dir, "shapes.derive.rs"))
}

func TestExpandDryRun(t *testing.T) {
	dir, cfg := writeProject(t, map[string]string{"shapes.rs": pointSource})

	stdout, _, err := execute(t, "expand", dir, "--dry-run", "--config", cfg)
	require.NoError(t, err)

	assert.Contains(t, stdout, "nothing written")
	assert.NoFileExists(t, filepath.Join(dir, "shapes.derive.rs"))
}

func TestExpandJSON(t *testing.T) {
	dir, cfg := writeProject(t, map[string]string{
		"a.rs": pointSource,
		"b.rs": brokenSource,
	})

	stdout, stderr, err := execute(t, "expand", dir, "--json", "--config", cfg)
	require.Error(t, err)
	assert.NotContains(t, stderr, "EXPANSION FAILED")

	var report driver.Report
	require.NoError(t, json.Unmarshal([]byte(stdout), &report))
	assert.NotEmpty(t, report.RunID)
	assert.Equal(t, 2, report.Metrics.TotalFiles)
	assert.Equal(t, 1, report.Metrics.FilesFailed)
	require.Len(t, report.Files, 2)
	assert.Equal(t, filepath.Join(dir, "b.rs"), report.Files[1].Path)
	require.Len(t, report.Files[1].Errors, 1)
	assert.Equal(t, "STR005", string(report.Files[1].Errors[0].Code))
}

func TestExpandFailureReportsDiagnostics(t *testing.T) {
	dir, cfg := writeProject(t, map[string]string{"broken.rs": brokenSource})

	_, stderr, err := execute(t, "expand", dir, "--config", cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 1 file(s) failed")

	assert.Contains(t, stderr, "error[STR005]")
	assert.Contains(t, stderr, "EXPANSION FAILED")
}

func TestExpandCompactFormat(t *testing.T) {
	dir, cfg := writeProject(t, map[string]string{"broken.rs": brokenSource})

	_, stderr, err := execute(t, "expand", dir, "--format", "compact", "--config", cfg)
	require.Error(t, err)
	assert.Contains(t, stderr, filepath.Join(dir, "broken.rs")+":")
	assert.Contains(t, stderr, "[STR005]")

	_, _, err = execute(t, "expand", dir, "--format", "xml", "--config", cfg)
	assert.Error(t, err)
}

func TestExpandNoSources(t *testing.T) {
	dir, cfg := writeProject(t, map[string]string{"README.md": "# nothing here"})

	_, stderr, err := execute(t, "expand", dir, "--config", cfg)
	require.NoError(t, err)
	assert.Contains(t, stderr, "No Rust sources found.")

	stdout, _, err := execute(t, "expand", dir, "--json", "--config", cfg)
	require.NoError(t, err)
	var report driver.Report
	require.NoError(t, json.Unmarshal([]byte(stdout), &report))
	assert.Empty(t, report.Files)
}

func TestExpandMissingPath(t *testing.T) {
	_, cfg := writeProject(t, nil)

	_, _, err := execute(t, "expand", filepath.Join(t.TempDir(), "missing.rs"), "--config", cfg)
	assert.Error(t, err)
}
