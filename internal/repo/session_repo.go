package repo

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/tazhibayda/portal-service/internal/domain"
)

func sessionKey(token string) string { return "session:" + token }

// SaveSession writes the session record under the opaque token with the
// given TTL. Redis expiry is the only session-expiry mechanism.
func (r *Redis) SaveSession(ctx context.Context, token string, su domain.SessionUser, ttl time.Duration) error {
	body, err := json.Marshal(su)
	if err != nil {
		return err
	}
	return r.C.Set(ctx, sessionKey(token), body, ttl).Err()
}

// GetSession looks up the record for token. An unknown or expired token
// is (nil, nil): the caller treats it as an anonymous session.
func (r *Redis) GetSession(ctx context.Context, token string) (*domain.SessionUser, error) {
	body, err := r.C.Get(ctx, sessionKey(token)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var su domain.SessionUser
	if err := json.Unmarshal(body, &su); err != nil {
		return nil, err
	}
	return &su, nil
}

// DeleteSession clears the record. Deleting a missing key is a no-op,
// which keeps sign-out idempotent.
func (r *Redis) DeleteSession(ctx context.Context, token string) error {
	return r.C.Del(ctx, sessionKey(token)).Err()
}
