// Package cache stores expansion results between runs. Entries are keyed
// by a hash of the source text and of everything else that shapes the
// generated code, so a hit can be written out without parsing.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"hash"
	"io"
	"os"
)

// keyVersion changes whenever generated code changes shape for the same
// input, invalidating every stored entry
const keyVersion = "derivekit/v1"

// FileHasher computes content hashes for cache keys
type FileHasher struct {
	salt string
}

// NewFileHasher creates a hasher whose keys also depend on salt, e.g. the
// runtime crate path
func NewFileHasher(salt string) *FileHasher {
	return &FileHasher{salt: salt}
}

// HashFile computes the key of a file's contents
func (fh *FileHasher) HashFile(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer file.Close()

	hasher := fh.newHash()
	if _, err := io.Copy(hasher, file); err != nil {
		return "", err
	}

	return hex.EncodeToString(hasher.Sum(nil)), nil
}

// HashContent computes the key of the given content
func (fh *FileHasher) HashContent(content []byte) string {
	hasher := fh.newHash()
	hasher.Write(content)
	return hex.EncodeToString(hasher.Sum(nil))
}

// HashString computes the key of the given string
func (fh *FileHasher) HashString(content string) string {
	return fh.HashContent([]byte(content))
}

func (fh *FileHasher) newHash() hash.Hash {
	h := sha256.New()
	io.WriteString(h, keyVersion)
	h.Write([]byte{0})
	io.WriteString(h, fh.salt)
	h.Write([]byte{0})
	return h
}
