package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// HashPrefixLen is the number of hex characters of the content hash
// carried in the remote cache display name. The full hash is kept in
// the local registry; the prefix is only a human-readable label.
const HashPrefixLen = 12

// CacheSession tracks a remote LLM context cache entry for one law.
// The remote service owns the cached content; this record associates
// the remote handle with the law and the content it was built from.
type CacheSession struct {
	// CacheID is the handle assigned by the remote cache service.
	CacheID string

	// LawID identifies the owning law document.
	LawID string

	// ContentHash is the SHA-256 hex digest of the processed document
	// text the cache was created from.
	ContentHash string

	// ExpiresAt is the absolute expiry time of the remote entry.
	ExpiresAt time.Time

	// Model is the generation model the cache was created for.
	Model string
}

// Valid reports whether the session can be reused for content with the
// given hash at the given instant. Reuse requires a hash match and an
// expiry strictly in the future.
func (s CacheSession) Valid(now time.Time, contentHash string) bool {
	return s.ContentHash == contentHash && now.Before(s.ExpiresAt)
}

// Expired reports whether the session has passed its expiry time.
func (s CacheSession) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// HashPrefix returns the short display form of the content hash.
func (s CacheSession) HashPrefix() string {
	if len(s.ContentHash) <= HashPrefixLen {
		return s.ContentHash
	}
	return s.ContentHash[:HashPrefixLen]
}

// ContentHash computes the SHA-256 hex digest of document content.
func ContentHash(content string) string {
	sum := sha256.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])
}
