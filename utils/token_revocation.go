package utils

import (
	"context"
	"sync"
	"time"
)

const revokedKeyPrefix = "jwt:revoked:"

var (
	revoked   = map[string]time.Time{}
	revokedMu sync.Mutex
)

// RevokeToken rejects tokenID until expiresAt, the token's own expiry.
func RevokeToken(tokenID string, expiresAt time.Time) {
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return
	}
	if rc := GetRedis(); rc != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := rc.Set(ctx, revokedKeyPrefix+tokenID, "1", ttl).Err(); err == nil {
			return
		}
	}
	revokedMu.Lock()
	defer revokedMu.Unlock()
	pruneRevokedLocked(time.Now())
	revoked[tokenID] = expiresAt
}

// IsTokenRevoked checks if a token was revoked before natural expiration.
func IsTokenRevoked(tokenID string) bool {
	if rc := GetRedis(); rc != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		n, err := rc.Exists(ctx, revokedKeyPrefix+tokenID).Result()
		if err == nil && n > 0 {
			return true
		}
	}
	revokedMu.Lock()
	defer revokedMu.Unlock()
	exp, ok := revoked[tokenID]
	if !ok {
		return false
	}
	if time.Now().After(exp) {
		delete(revoked, tokenID)
		return false
	}
	return true
}

func pruneRevokedLocked(now time.Time) {
	for id, exp := range revoked {
		if now.After(exp) {
			delete(revoked, id)
		}
	}
}
