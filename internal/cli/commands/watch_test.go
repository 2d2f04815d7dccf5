package commands

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conduit-lang/derivekit/internal/cli/ui"
	"github.com/conduit-lang/derivekit/internal/compiler/ast"
	"github.com/conduit-lang/derivekit/internal/compiler/driver"
	"github.com/conduit-lang/derivekit/internal/compiler/errors"
	"github.com/conduit-lang/derivekit/internal/watch"
)

func TestWatchCommandFlags(t *testing.T) {
	cmd := NewWatchCommand()

	assert.Equal(t, "watch [dir]", cmd.Use)
	assert.NotEmpty(t, cmd.Long)

	debounce := cmd.Flags().Lookup("debounce")
	require.NotNil(t, debounce)
	assert.Equal(t, "0s", debounce.DefValue)
	assert.NotNil(t, cmd.Flags().Lookup("format"))
}

func TestWatchRequiresDirectory(t *testing.T) {
	dir, cfg := writeProject(t, map[string]string{"shapes.rs": pointSource})

	_, _, err := execute(t, "watch", filepath.Join(dir, "shapes.rs"), "--config", cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "is not a directory")
}

func TestRebuildPrinter(t *testing.T) {
	var out, errOut bytes.Buffer
	p := &rebuildPrinter{out: &out, errOut: &errOut, format: ui.FormatCompact, noColor: true}

	p.print(&watch.RebuildResult{
		Removed: []string{"gone.derive.rs"},
		Report: &driver.Report{
			Metrics: driver.Metrics{TotalFiles: 2, FilesWritten: 1},
		},
		Duration: 12 * time.Millisecond,
	})

	assert.Contains(t, out.String(), "Removed gone.derive.rs")
	assert.Contains(t, out.String(), "2 file(s) expanded, 1 written in 12ms")
	assert.Empty(t, errOut.String())
}

func TestRebuildPrinterFailure(t *testing.T) {
	var out, errOut bytes.Buffer
	p := &rebuildPrinter{out: &out, errOut: &errOut, format: ui.FormatCompact, noColor: true}

	failed := &driver.FileResult{
		Path: "broken.rs",
		Errors: errors.ErrorList{
			errors.NewFieldCount(ast.SourceLocation{Line: 2, Column: 1}, "Deref", "Broken", 2).WithFile("broken.rs"),
		},
	}
	p.print(&watch.RebuildResult{
		Report: &driver.Report{
			Files:   []*driver.FileResult{failed},
			Metrics: driver.Metrics{TotalFiles: 1, FilesFailed: 1},
		},
	})

	assert.Empty(t, out.String())
	assert.Contains(t, errOut.String(), "broken.rs:2:1: error:")
	assert.Contains(t, errOut.String(), "1 of 1 file(s) failed")
}

func TestRebuildPrinterRemovalOnly(t *testing.T) {
	var out bytes.Buffer
	p := &rebuildPrinter{out: &out, errOut: os.Stderr, noColor: true}

	p.print(&watch.RebuildResult{Removed: []string{"a.derive.rs"}})
	assert.Contains(t, out.String(), "a.derive.rs")
	assert.NotContains(t, out.String(), "expanded")
}
