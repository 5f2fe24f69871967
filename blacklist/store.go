package blacklist

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrRedisUnavailable wraps any Redis transport or server failure. Callers
// must treat it as "revocation state unknown", never as "not revoked".
var ErrRedisUnavailable = errors.New("redis unavailable")

// Store is a Redis-backed, append-only set of revoked (userID, tokenID)
// pairs. It is safe for concurrent use.
type Store struct {
	redis     redis.UniversalClient
	prefix    string
	retention time.Duration
	now       func() time.Time
}

// NewStore creates a [Store] with the given key prefix and retention window.
// retention bounds how long a revocation record outlives its write; zero or
// negative keeps records forever.
func NewStore(client redis.UniversalClient, prefix string, retention time.Duration) *Store {
	if prefix == "" {
		prefix = "bl"
	}
	return &Store{
		redis:     client,
		prefix:    prefix,
		retention: retention,
		now:       time.Now,
	}
}

func (s *Store) key(userID, tokenID string) string {
	return s.prefix + ":" + userID + ":" + tokenID
}

// Revoke marks the (userID, tokenID) family as revoked. Revoking an
// already-revoked pair is a no-op success; the original revocation
// timestamp and its retention clock are preserved.
func (s *Store) Revoke(ctx context.Context, userID, tokenID string) error {
	if userID == "" || tokenID == "" {
		return errors.New("userID and tokenID required")
	}

	stamp := strconv.FormatInt(s.now().Unix(), 10)
	err := s.redis.SetNX(ctx, s.key(userID, tokenID), stamp, s.retention).Err()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}

// IsRevoked reports whether the (userID, tokenID) family has been revoked.
// The read observes any revocation committed before this call began.
func (s *Store) IsRevoked(ctx context.Context, userID, tokenID string) (bool, error) {
	if userID == "" || tokenID == "" {
		return false, errors.New("userID and tokenID required")
	}

	n, err := s.redis.Exists(ctx, s.key(userID, tokenID)).Result()
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return n > 0, nil
}

// RevokedAt returns the unix timestamp recorded when the family was revoked,
// or zero when the family is not revoked.
func (s *Store) RevokedAt(ctx context.Context, userID, tokenID string) (int64, error) {
	val, err := s.redis.Get(ctx, s.key(userID, tokenID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	stamp, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("corrupt revocation record: %v", err)
	}
	return stamp, nil
}
