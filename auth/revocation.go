package auth

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const revokedKeyPrefix = "auth:revoked:"

// Revocations 記錄已登出的Token，key在Token到期時自動刪除
type Revocations struct {
	rdb *redis.Client
	now func() time.Time
}

func NewRevocations(rdb *redis.Client) *Revocations {
	return &Revocations{rdb: rdb, now: time.Now}
}

func (r *Revocations) Revoke(ctx context.Context, claims Claims) error {
	ttl := claims.Expiry.Sub(r.now())
	if ttl <= 0 {
		return nil //已過期的Token不需記錄
	}
	return r.rdb.Set(ctx, revokedKeyPrefix+claims.ID, 1, ttl).Err()
}

func (r *Revocations) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	err := r.rdb.Get(ctx, revokedKeyPrefix+tokenID).Err()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
