package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/kruchat2026/devlog/internal/domain"
)

var ErrNotFound = errors.New("session not found")

// Store keeps the cached user object and pending alerts per session id.
type Store struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewStore(rdb *redis.Client, ttl time.Duration) *Store {
	return &Store{rdb: rdb, ttl: ttl}
}

func userKey(sid string) string {
	return fmt.Sprintf("session:%s:user", sid)
}

func flashKey(sid string) string {
	return fmt.Sprintf("session:%s:flash", sid)
}

func (s *Store) Load(ctx context.Context, sid string) (*domain.User, error) {
	raw, err := s.rdb.Get(ctx, userKey(sid)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	user := &domain.User{}
	if err := json.Unmarshal(raw, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *Store) Save(ctx context.Context, sid string, user *domain.User) error {
	raw, err := json.Marshal(user)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, userKey(sid), raw, s.ttl).Err()
}

func (s *Store) Clear(ctx context.Context, sid string) error {
	return s.rdb.Del(ctx, userKey(sid), flashKey(sid)).Err()
}

type FlashKind string

const (
	FlashSuccess FlashKind = "success"
	FlashWarning FlashKind = "warning"
	FlashError   FlashKind = "error"
)

type Flash struct {
	Kind    FlashKind `json:"kind"`
	Message string    `json:"message"`
}

func (s *Store) AddFlash(ctx context.Context, sid string, f Flash) error {
	raw, err := json.Marshal(f)
	if err != nil {
		return err
	}
	pipe := s.rdb.TxPipeline()
	pipe.RPush(ctx, flashKey(sid), raw)
	pipe.Expire(ctx, flashKey(sid), s.ttl)
	_, err = pipe.Exec(ctx)
	return err
}

// PopFlashes returns and removes all pending alerts.
func (s *Store) PopFlashes(ctx context.Context, sid string) ([]Flash, error) {
	pipe := s.rdb.TxPipeline()
	rangeCmd := pipe.LRange(ctx, flashKey(sid), 0, -1)
	pipe.Del(ctx, flashKey(sid))
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, err
	}

	flashes := []Flash{}
	for _, raw := range rangeCmd.Val() {
		f := Flash{}
		if err := json.Unmarshal([]byte(raw), &f); err != nil {
			continue
		}
		flashes = append(flashes, f)
	}
	return flashes, nil
}
