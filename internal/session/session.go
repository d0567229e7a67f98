package session

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/khatapp/udhaar/internal/model"
	"github.com/khatapp/udhaar/pkg/redis"
)

var (
	ErrSessionNotFound = errors.New("session not found or expired")
)

const keyPrefix = "session:"

// Store keeps login sessions in Redis: opaque uuid token -> Identity
// JSON, expiring after TTL. Every authenticated request resolves its
// Identity through Get; logout is a plain Destroy. Nothing else is ever
// derived from ambient state.
type Store struct {
	redis redis.RedisAdapter
	ttl   time.Duration
}

func NewStore(adapter redis.RedisAdapter, ttl time.Duration) *Store {
	return &Store{
		redis: adapter,
		ttl:   ttl,
	}
}

// Create issues a fresh opaque token for the identity.
func (s *Store) Create(identity model.Identity) (string, error) {
	payload, err := json.Marshal(identity)
	if err != nil {
		return "", err
	}

	token := uuid.NewString()
	if err := s.redis.Set(keyPrefix+token, payload, s.ttl); err != nil {
		return "", err
	}
	return token, nil
}

// Get resolves a token back into its Identity and slides the expiry, so
// active sessions stay alive.
func (s *Store) Get(token string) (model.Identity, error) {
	if token == "" {
		return model.Identity{}, ErrSessionNotFound
	}

	payload, err := s.redis.Get(keyPrefix + token)
	if err != nil {
		if errors.Is(err, redis.NilError) {
			return model.Identity{}, ErrSessionNotFound
		}
		return model.Identity{}, err
	}

	var identity model.Identity
	if err := json.Unmarshal(payload, &identity); err != nil {
		return model.Identity{}, err
	}

	if err := s.redis.Expire(keyPrefix+token, s.ttl); err != nil {
		return model.Identity{}, err
	}

	return identity, nil
}

// Destroy drops the session. Destroying an unknown token is not an error;
// logout must be idempotent.
func (s *Store) Destroy(token string) error {
	if token == "" {
		return nil
	}
	return s.redis.Del(keyPrefix + token)
}
