// Package redis stores wizard drafts in Redis so several server replicas
// can share in-progress input.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	backend "github.com/redis/go-redis/v9"

	"github.com/waggy/go-wizard/pkg/session"
)

// DefaultPrefix namespaces draft keys.
const DefaultPrefix = "waggy:wizard:draft:"

// noExpiryScore ranks drafts without a TTL in the index (2100-01-01).
const noExpiryScore = 4102444800

// Store implements session.Store on a Redis client.
type Store struct {
	client *backend.Client
	prefix string
	ttl    time.Duration
	now    func() time.Time
}

// Option customises a Store.
type Option func(*Store)

// WithTTL expires drafts after ttl. Zero keeps them forever.
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) {
		s.ttl = ttl
	}
}

// WithPrefix overrides DefaultPrefix.
func WithPrefix(prefix string) Option {
	return func(s *Store) {
		if prefix != "" {
			s.prefix = prefix
		}
	}
}

// New dials Redis at address.
func New(address, password string, db int, opts ...Option) *Store {
	client := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	return NewFromClient(client, opts...)
}

// NewFromClient wraps an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *Store {
	store := &Store{
		client: client,
		prefix: DefaultPrefix,
		now:    time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(store)
		}
	}
	return store
}

func (s *Store) key(sessionID string) string {
	return s.prefix + sessionID
}

func (s *Store) indexKey() string {
	return s.prefix + "index"
}

// Save writes the draft and records it in the expiry index.
func (s *Store) Save(ctx context.Context, sessionID string, draft session.Draft) error {
	data, err := json.Marshal(draft)
	if err != nil {
		return fmt.Errorf("session/redis: marshal draft: %w", err)
	}

	score := float64(s.now().Add(s.ttl).Unix())
	if s.ttl == 0 {
		score = noExpiryScore
	}

	pipe := s.client.Pipeline()
	pipe.Set(ctx, s.key(sessionID), data, s.ttl)
	pipe.ZAdd(ctx, s.indexKey(), backend.Z{Score: score, Member: sessionID})
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("session/redis: save %q: %w", sessionID, err)
	}
	return nil
}

// Load reads a draft. Expired or unknown sessions yield session.ErrNotFound.
func (s *Store) Load(ctx context.Context, sessionID string) (session.Draft, error) {
	raw, err := s.client.Get(ctx, s.key(sessionID)).Bytes()
	if err != nil {
		if errors.Is(err, backend.Nil) {
			return session.Draft{}, session.ErrNotFound
		}
		return session.Draft{}, fmt.Errorf("session/redis: load %q: %w", sessionID, err)
	}

	var draft session.Draft
	if err := json.Unmarshal(raw, &draft); err != nil {
		return session.Draft{}, fmt.Errorf("session/redis: decode %q: %w", sessionID, err)
	}
	return draft, nil
}

// Delete removes the draft and its index entry.
func (s *Store) Delete(ctx context.Context, sessionID string) error {
	pipe := s.client.Pipeline()
	pipe.Del(ctx, s.key(sessionID))
	pipe.ZRem(ctx, s.indexKey(), sessionID)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("session/redis: delete %q: %w", sessionID, err)
	}
	return nil
}

// List prunes expired index entries and returns the live session ids.
func (s *Store) List(ctx context.Context) ([]string, error) {
	cutoff := fmt.Sprintf("%d", s.now().Unix())
	if err := s.client.ZRemRangeByScore(ctx, s.indexKey(), "-inf", "("+cutoff).Err(); err != nil {
		return nil, fmt.Errorf("session/redis: prune index: %w", err)
	}

	ids, err := s.client.ZRange(ctx, s.indexKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("session/redis: list: %w", err)
	}
	return ids, nil
}

// Ping checks connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close closes the underlying client.
func (s *Store) Close() error {
	return s.client.Close()
}
