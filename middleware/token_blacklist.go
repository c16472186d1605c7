package middleware

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
)

// TokenBlacklist keeps revoked tokens until they expire. Entries live in
// Redis when a client is configured and in process memory otherwise.
type TokenBlacklist struct {
	client *redis.Client

	mu    sync.Mutex
	local map[string]time.Time
}

func NewTokenBlacklist(client *redis.Client) *TokenBlacklist {
	return &TokenBlacklist{client: client, local: make(map[string]time.Time)}
}

func tokenKey(token string) string {
	sum := sha256.Sum256([]byte(token))
	return "blacklist:" + hex.EncodeToString(sum[:])
}

// Add revokes the token until expiry. A Redis failure still revokes the token
// for this process and is returned to the caller.
func (b *TokenBlacklist) Add(ctx context.Context, token string, expiry time.Time) error {
	ttl := time.Until(expiry)
	if ttl <= 0 {
		return nil
	}
	key := tokenKey(token)

	if b.client != nil {
		err := b.client.Set(ctx, key, "1", ttl).Err()
		if err == nil {
			return nil
		}
		b.remember(key, expiry)
		return err
	}

	b.remember(key, expiry)
	return nil
}

// Contains reports whether the token was revoked
func (b *TokenBlacklist) Contains(ctx context.Context, token string) (bool, error) {
	key := tokenKey(token)

	b.mu.Lock()
	expiry, ok := b.local[key]
	if ok && time.Now().After(expiry) {
		delete(b.local, key)
		ok = false
	}
	b.mu.Unlock()
	if ok || b.client == nil {
		return ok, nil
	}

	n, err := b.client.Exists(ctx, key).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Cleanup drops expired in-memory entries
func (b *TokenBlacklist) Cleanup() {
	now := time.Now()
	b.mu.Lock()
	defer b.mu.Unlock()
	for key, expiry := range b.local {
		if now.After(expiry) {
			delete(b.local, key)
		}
	}
}

func (b *TokenBlacklist) remember(key string, expiry time.Time) {
	b.mu.Lock()
	b.local[key] = expiry
	b.mu.Unlock()
}
