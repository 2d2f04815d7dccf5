package cache

import (
	"sync"
	"time"

	"github.com/conduit-lang/derivekit/internal/compiler/ast"
	"github.com/conduit-lang/derivekit/internal/compiler/parser"
)

// CachedFile is a parsed source file with its content hash
type CachedFile struct {
	File     *ast.File
	Errors   []parser.ParseError
	Hash     string
	Path     string
	CachedAt time.Time
}

// ASTCache keeps parsed files in memory so editors and watch mode only
// reparse what changed
type ASTCache struct {
	entries map[string]*CachedFile
	hasher  *FileHasher
	mu      sync.RWMutex
}

// NewASTCache creates a new AST cache
func NewASTCache() *ASTCache {
	return &ASTCache{
		entries: make(map[string]*CachedFile),
		hasher:  NewFileHasher(""),
	}
}

// Get retrieves a cached file by path
func (ac *ASTCache) Get(path string) (*CachedFile, bool) {
	ac.mu.RLock()
	defer ac.mu.RUnlock()

	entry, exists := ac.entries[path]
	return entry, exists
}

// Parse returns the parsed form of source, reusing the cached entry when
// the content is unchanged. The second result reports a cache hit.
func (ac *ASTCache) Parse(path, source string) (*CachedFile, bool) {
	hash := ac.hasher.HashString(source)
	if entry, ok := ac.Get(path); ok && entry.Hash == hash {
		return entry, true
	}

	file, errs := parser.ParseSource(source)
	entry := &CachedFile{
		File:     file,
		Errors:   errs,
		Hash:     hash,
		Path:     path,
		CachedAt: time.Now(),
	}

	ac.mu.Lock()
	ac.entries[path] = entry
	ac.mu.Unlock()
	return entry, false
}

// Invalidate removes an entry from the cache
func (ac *ASTCache) Invalidate(path string) {
	ac.mu.Lock()
	defer ac.mu.Unlock()

	delete(ac.entries, path)
}

// InvalidateAll clears the entire cache
func (ac *ASTCache) InvalidateAll() {
	ac.mu.Lock()
	defer ac.mu.Unlock()

	ac.entries = make(map[string]*CachedFile)
}

// Size returns the number of cached entries
func (ac *ASTCache) Size() int {
	ac.mu.RLock()
	defer ac.mu.RUnlock()

	return len(ac.entries)
}

// Paths returns the cached paths
func (ac *ASTCache) Paths() []string {
	ac.mu.RLock()
	defer ac.mu.RUnlock()

	paths := make([]string, 0, len(ac.entries))
	for p := range ac.entries {
		paths = append(paths, p)
	}
	return paths
}
