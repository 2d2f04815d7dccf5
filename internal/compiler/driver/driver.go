// Package driver expands the derives of whole source files in parallel and
// writes one generated file per input.
package driver

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/conduit-lang/derivekit/internal/compiler/ast"
	"github.com/conduit-lang/derivekit/internal/compiler/cache"
	"github.com/conduit-lang/derivekit/internal/compiler/codegen"
	"github.com/conduit-lang/derivekit/internal/compiler/errors"
	"github.com/conduit-lang/derivekit/internal/compiler/parser"
)

// DefaultSuffix is appended to the input name, minus its extension, to
// form the output name
const DefaultSuffix = ".derive.rs"

// Options configure a run
type Options struct {
	Codegen codegen.Options
	// OutputDir receives the generated files; empty writes next to the input
	OutputDir string
	// Suffix of generated files, DefaultSuffix when empty
	Suffix string
	// Parallelism bounds the number of files expanded at once
	Parallelism int
	// DryRun expands without writing anything
	DryRun bool
	// OnFile, when set, is called once per finished file. Calls are
	// serialised but arrive in completion order.
	OnFile func(*FileResult)
}

// Metrics summarises a run
type Metrics struct {
	TotalFiles    int           `json:"total_files"`
	CacheHits     int           `json:"cache_hits"`
	CacheMisses   int           `json:"cache_misses"`
	FilesExpanded int           `json:"files_expanded"`
	FilesWritten  int           `json:"files_written"`
	FilesFailed   int           `json:"files_failed"`
	Declarations  int           `json:"declarations"`
	Duration      time.Duration `json:"duration"`
}

// CacheHitRate returns the cache hit rate as a percentage
func (m *Metrics) CacheHitRate() float64 {
	if m.TotalFiles == 0 {
		return 0.0
	}
	return float64(m.CacheHits) / float64(m.TotalFiles) * 100.0
}

// FileResult is the outcome of one input file
type FileResult struct {
	Path       string `json:"path"`
	OutputPath string `json:"output_path"`
	// Output is the rendered generated file; empty when nothing was derived
	Output       string                        `json:"-"`
	Declarations []*codegen.DeclarationResult `json:"declarations,omitempty"`
	Errors       errors.ErrorList             `json:"errors,omitempty"`
	Cached       bool                          `json:"cached"`
	Written      bool                          `json:"written"`
}

// Failed reports whether any error (not warning) was recorded
func (r *FileResult) Failed() bool {
	return r.Errors.HasErrors()
}

// Report is the result of a run
type Report struct {
	RunID   string        `json:"run_id"`
	Files   []*FileResult `json:"files"`
	Metrics Metrics       `json:"metrics"`
}

// Failed reports whether any file failed
func (r *Report) Failed() bool {
	for _, f := range r.Files {
		if f.Failed() {
			return true
		}
	}
	return false
}

// Errors returns the diagnostics of every file in input order
func (r *Report) Errors() errors.ErrorList {
	var all errors.ErrorList
	for _, f := range r.Files {
		all = append(all, f.Errors...)
	}
	return all
}

// Driver expands files. It is safe for concurrent use.
type Driver struct {
	opts       Options
	generator  *codegen.Generator
	expansions *cache.Expansions
	logger     *zap.Logger
}

// New creates a driver. A nil expansions cache disables caching.
func New(opts Options, expansions *cache.Expansions, logger *zap.Logger) *Driver {
	if opts.Suffix == "" {
		opts.Suffix = DefaultSuffix
	}
	if opts.Parallelism <= 0 {
		opts.Parallelism = runtime.NumCPU()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if expansions == nil {
		expansions = cache.NewExpansions(nil, "", logger)
	}
	return &Driver{
		opts:       opts,
		generator:  codegen.NewGenerator(opts.Codegen),
		expansions: expansions,
		logger:     logger,
	}
}

// Generator returns the generator the driver expands with
func (d *Driver) Generator() *codegen.Generator {
	return d.generator
}

// Options returns the effective options
func (d *Driver) Options() Options {
	return d.opts
}

// OutputPath returns where the generated file of an input goes
func (d *Driver) OutputPath(path string) string {
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)) + d.opts.Suffix
	if d.opts.OutputDir != "" {
		return filepath.Join(d.opts.OutputDir, base)
	}
	return filepath.Join(filepath.Dir(path), base)
}

// ExpandSource expands one source text without touching the file system
// or the cache. path is used for diagnostics and the output header only.
func (d *Driver) ExpandSource(path, source string) *FileResult {
	file, parseErrs := parser.ParseSource(source)
	return d.ExpandParsed(path, source, file, parseErrs)
}

// ExpandParsed is ExpandSource for a file that was already parsed, e.g. by
// an editor session holding its own syntax tree cache
func (d *Driver) ExpandParsed(path, source string, file *ast.File, parseErrs []parser.ParseError) *FileResult {
	result := &FileResult{Path: path, OutputPath: d.OutputPath(path)}

	if len(parseErrs) > 0 {
		lines := strings.Split(source, "\n")
		for _, pe := range parseErrs {
			ce := errors.NewSyntaxError(pe.Location, pe.Message, pe.Token.Lexeme)
			result.Errors = append(result.Errors, withSourceContext(ce, lines))
		}
		result.Errors.WithFile(path)
		return result
	}

	result.Declarations = d.generator.ExpandFile(file)
	lines := strings.Split(source, "\n")
	for _, decl := range result.Declarations {
		for _, ce := range decl.Errors {
			result.Errors = append(result.Errors, withSourceContext(ce, lines))
		}
	}
	result.Errors.WithFile(path)

	if hasExpansions(result.Declarations) {
		result.Output = codegen.Render(filepath.Base(path), result.Declarations)
	}
	return result
}

func hasExpansions(decls []*codegen.DeclarationResult) bool {
	for _, d := range decls {
		if !d.Failed() && len(d.Expansions) > 0 {
			return true
		}
	}
	return false
}

// withSourceContext attaches the offending line and its neighbours
func withSourceContext(ce *errors.CompilerError, lines []string) *errors.CompilerError {
	line := ce.Location.Line
	if ce.Context != nil || line < 1 || line > len(lines) {
		return ce
	}
	start := line - 2
	if start < 0 {
		start = 0
	}
	end := line + 1
	if end > len(lines) {
		end = len(lines)
	}
	return ce.WithContext(lines[line-1], lines[start:end])
}

// Run expands every path. Files are processed concurrently and fail
// independently; the returned error is only set when the run itself could
// not proceed, e.g. on cancellation.
func (d *Driver) Run(ctx context.Context, paths []string) (*Report, error) {
	start := time.Now()
	report := &Report{
		RunID: uuid.NewString(),
		Files: make([]*FileResult, len(paths)),
	}
	logger := d.logger.With(zap.String("run_id", report.RunID))
	logger.Debug("starting run", zap.Int("files", len(paths)), zap.Int("parallelism", d.opts.Parallelism))

	var mu sync.Mutex
	metrics := &report.Metrics
	metrics.TotalFiles = len(paths)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(d.opts.Parallelism)
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			result := d.runFile(gctx, path, logger)

			mu.Lock()
			defer mu.Unlock()
			report.Files[i] = result
			if result.Cached {
				metrics.CacheHits++
			} else {
				metrics.CacheMisses++
				metrics.FilesExpanded++
			}
			if result.Written {
				metrics.FilesWritten++
			}
			if result.Failed() {
				metrics.FilesFailed++
			}
			metrics.Declarations += len(result.Declarations)
			if d.opts.OnFile != nil {
				d.opts.OnFile(result)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	metrics.Duration = time.Since(start)
	logger.Info("run finished",
		zap.Int("files", metrics.TotalFiles),
		zap.Int("failed", metrics.FilesFailed),
		zap.Int("cache_hits", metrics.CacheHits),
		zap.Duration("duration", metrics.Duration))
	return report, nil
}

func (d *Driver) runFile(ctx context.Context, path string, logger *zap.Logger) *FileResult {
	content, err := os.ReadFile(path)
	if err != nil {
		return &FileResult{
			Path:       path,
			OutputPath: d.OutputPath(path),
			Errors:     errors.ErrorList{errors.NewCodeGenFailed(ast.SourceLocation{}, fmt.Sprintf("failed to read file: %v", err)).WithFile(path)},
		}
	}

	// the output names its source file, so identical content under another
	// name is a different entry
	key := d.expansions.Key(append([]byte(filepath.Base(path)+"\x00"), content...))
	if output, ok := d.expansions.Lookup(ctx, key); ok {
		result := &FileResult{Path: path, OutputPath: d.OutputPath(path), Output: output, Cached: true}
		logger.Debug("cache hit", zap.String("file", path))
		d.write(result, logger)
		return result
	}

	result := d.ExpandSource(path, string(content))
	if !result.Errors.HasErrors() && !result.Errors.HasWarnings() {
		d.expansions.Store(ctx, key, result.Output)
	}
	d.write(result, logger)
	return result
}

// write stores the generated file. Declarations that failed are left out
// of it. A file without derives gets no output and a stale one is removed;
// a file that produced nothing because it failed keeps its last output.
func (d *Driver) write(result *FileResult, logger *zap.Logger) {
	if d.opts.DryRun {
		return
	}
	if result.Output == "" {
		if result.Failed() {
			return
		}
		if err := os.Remove(result.OutputPath); err == nil {
			logger.Debug("removed stale output", zap.String("file", result.OutputPath))
		}
		return
	}

	if existing, err := os.ReadFile(result.OutputPath); err == nil && string(existing) == result.Output {
		return
	}
	if err := os.MkdirAll(filepath.Dir(result.OutputPath), 0755); err != nil {
		result.Errors = append(result.Errors, errors.NewOutputWrite(result.OutputPath, err).WithFile(result.Path))
		return
	}
	if err := os.WriteFile(result.OutputPath, []byte(result.Output), 0644); err != nil {
		result.Errors = append(result.Errors, errors.NewOutputWrite(result.OutputPath, err).WithFile(result.Path))
		return
	}
	result.Written = true
	logger.Debug("wrote output", zap.String("file", result.OutputPath))
}
