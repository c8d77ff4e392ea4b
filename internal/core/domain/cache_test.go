package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestContentHash_Deterministic(t *testing.T) {
	h1 := ContentHash("texto de la ley")
	h2 := ContentHash("texto de la ley")

	assert.Equal(t, h1, h2)
	assert.Len(t, h1, 64)
}

func TestContentHash_ChangesWithContent(t *testing.T) {
	assert.NotEqual(t, ContentHash("versión original"), ContentHash("versión modificada"))
}

func TestCacheSession_Valid_MatchingHashAndLive(t *testing.T) {
	now := time.Now()
	hash := ContentHash("contenido")
	session := CacheSession{
		CacheID:     "cachedContents/abc",
		LawID:       "ley_24714",
		ContentHash: hash,
		ExpiresAt:   now.Add(time.Hour),
	}

	assert.True(t, session.Valid(now, hash))
}

func TestCacheSession_Valid_RejectsChangedContent(t *testing.T) {
	now := time.Now()
	session := CacheSession{
		ContentHash: ContentHash("contenido original"),
		ExpiresAt:   now.Add(time.Hour),
	}

	assert.False(t, session.Valid(now, ContentHash("contenido nuevo")))
}

func TestCacheSession_Valid_RejectsExpired(t *testing.T) {
	now := time.Now()
	hash := ContentHash("contenido")
	session := CacheSession{ContentHash: hash, ExpiresAt: now}

	// Expiry must be strictly in the future.
	assert.False(t, session.Valid(now, hash))
	assert.True(t, session.Expired(now))
}

func TestCacheSession_HashPrefix(t *testing.T) {
	session := CacheSession{ContentHash: ContentHash("contenido")}
	assert.Len(t, session.HashPrefix(), HashPrefixLen)

	short := CacheSession{ContentHash: "abcd"}
	assert.Equal(t, "abcd", short.HashPrefix())
}
