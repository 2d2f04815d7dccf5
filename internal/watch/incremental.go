package watch

import (
	"context"
	"os"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/conduit-lang/derivekit/internal/compiler/driver"
)

// RebuildResult is the outcome of handling one batch of changes
type RebuildResult struct {
	Report *driver.Report
	// Removed lists outputs deleted because their source disappeared
	Removed  []string
	Changed  []string
	Duration time.Duration
}

// Failed reports whether any changed file failed to expand
func (r *RebuildResult) Failed() bool {
	return r.Report != nil && r.Report.Failed()
}

// IncrementalBuilder re-expands only the files named in a change batch.
// Batches are handled one at a time.
type IncrementalBuilder struct {
	driver *driver.Driver
	logger *zap.Logger
	mu     sync.Mutex

	lastBuild time.Time
}

// NewIncrementalBuilder creates a builder around a driver
func NewIncrementalBuilder(d *driver.Driver, logger *zap.Logger) *IncrementalBuilder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &IncrementalBuilder{driver: d, logger: logger}
}

// Match reports whether a changed path is an input file
func (ib *IncrementalBuilder) Match(path string) bool {
	return driver.IsSource(path, ib.driver.Options().Suffix)
}

// Rebuild expands the changed files that still exist and removes the
// outputs of the ones that were deleted
func (ib *IncrementalBuilder) Rebuild(ctx context.Context, changed []string) (*RebuildResult, error) {
	ib.mu.Lock()
	defer ib.mu.Unlock()

	start := time.Now()
	result := &RebuildResult{Changed: changed}

	var existing []string
	for _, path := range changed {
		if !ib.Match(path) {
			continue
		}
		if _, err := os.Stat(path); err != nil {
			output := ib.driver.OutputPath(path)
			if err := os.Remove(output); err == nil {
				result.Removed = append(result.Removed, output)
				ib.logger.Info("removed output of deleted source", zap.String("file", output))
			}
			continue
		}
		existing = append(existing, path)
	}

	if len(existing) > 0 {
		report, err := ib.driver.Run(ctx, existing)
		if err != nil {
			return nil, err
		}
		result.Report = report
	}

	result.Duration = time.Since(start)
	ib.lastBuild = time.Now()
	return result, nil
}

// FullBuild expands every input under root
func (ib *IncrementalBuilder) FullBuild(ctx context.Context, root string, ignore []string) (*RebuildResult, error) {
	files, err := driver.Collect([]string{root}, ib.driver.Options().Suffix, ignore)
	if err != nil {
		return nil, err
	}
	return ib.Rebuild(ctx, files)
}

// LastBuild returns when the last batch finished
func (ib *IncrementalBuilder) LastBuild() time.Time {
	ib.mu.Lock()
	defer ib.mu.Unlock()
	return ib.lastBuild
}
