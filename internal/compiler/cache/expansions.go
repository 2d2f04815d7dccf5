package cache

import (
	"context"

	"go.uber.org/zap"
)

// Expansions stores rendered output files by source key. Backend failures
// are logged and treated as misses; a broken cache never fails a run.
type Expansions struct {
	backend Cache
	hasher  *FileHasher
	logger  *zap.Logger
}

// NewExpansions wraps a backend. salt must capture every option that
// changes generated code.
func NewExpansions(backend Cache, salt string, logger *zap.Logger) *Expansions {
	if backend == nil {
		backend = Noop{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Expansions{
		backend: backend,
		hasher:  NewFileHasher(salt),
		logger:  logger,
	}
}

// Key returns the cache key of a source text
func (e *Expansions) Key(source []byte) string {
	return e.hasher.HashContent(source)
}

// Lookup returns the stored output for key
func (e *Expansions) Lookup(ctx context.Context, key string) (string, bool) {
	value, err := e.backend.Get(ctx, key)
	if err != nil {
		if !IsCacheMiss(err) {
			e.logger.Warn("cache lookup failed", zap.String("key", key), zap.Error(err))
		}
		return "", false
	}
	return string(value), true
}

// Store records the output for key with the backend's default TTL
func (e *Expansions) Store(ctx context.Context, key, output string) {
	if err := e.backend.Set(ctx, key, []byte(output), 0); err != nil {
		e.logger.Warn("cache store failed", zap.String("key", key), zap.Error(err))
	}
}

// Forget drops the output for key
func (e *Expansions) Forget(ctx context.Context, key string) {
	if err := e.backend.Delete(ctx, key); err != nil {
		e.logger.Warn("cache delete failed", zap.String("key", key), zap.Error(err))
	}
}

// Close closes the backend
func (e *Expansions) Close() error {
	return e.backend.Close()
}
