package oauth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrBadState is returned when a callback presents a state nonce that was
// never issued, already consumed, or expired.
var ErrBadState = errors.New("unknown or expired oauth state")

const stateTTL = 10 * time.Minute

// StateStore issues single-use CSRF nonces for the initiate -> callback
// handoff. Consume succeeds at most once per nonce.
type StateStore interface {
	Issue(ctx context.Context) (string, error)
	Consume(ctx context.Context, state string) error
}

func newState() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

type redisStateStore struct {
	rdb *redis.Client
}

func NewRedisStateStore(rdb *redis.Client) StateStore {
	return &redisStateStore{rdb: rdb}
}

func (s *redisStateStore) Issue(ctx context.Context) (string, error) {
	state, err := newState()
	if err != nil {
		return "", err
	}

	key := "oauth_state:" + state
	if err := s.rdb.SetNX(ctx, key, "1", stateTTL).Err(); err != nil {
		return "", fmt.Errorf("failed to store oauth state in redis: %w", err)
	}

	return state, nil
}

func (s *redisStateStore) Consume(ctx context.Context, state string) error {
	key := "oauth_state:" + state
	if err := s.rdb.GetDel(ctx, key).Err(); err != nil {
		if errors.Is(err, redis.Nil) {
			return ErrBadState
		}
		return fmt.Errorf("failed to consume oauth state in redis: %w", err)
	}

	return nil
}

// memoryStateStore backs single-process deployments and tests.
type memoryStateStore struct {
	mu     sync.Mutex
	states map[string]time.Time
}

func NewMemoryStateStore() StateStore {
	return &memoryStateStore{states: make(map[string]time.Time)}
}

func (s *memoryStateStore) Issue(ctx context.Context) (string, error) {
	state, err := newState()
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.states[state] = time.Now().Add(stateTTL)

	return state, nil
}

func (s *memoryStateStore) Consume(ctx context.Context, state string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	expiry, ok := s.states[state]
	if !ok {
		return ErrBadState
	}
	delete(s.states, state)

	if time.Now().After(expiry) {
		return ErrBadState
	}

	return nil
}
