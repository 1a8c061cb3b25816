package conversation

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"schedulo/models"

	"github.com/go-redis/redis/v8"
)

const sessionKeyPrefix = "chatSession:"

// RedisSessionStore keeps sessions in Redis as JSON under a key
// prefix, with the inactivity window enforced by the key TTL. Saves
// refresh the TTL; saves against an expired key are dropped so an
// in-flight turn cannot resurrect an evicted session.
type RedisSessionStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisSessionStore(client *redis.Client, ttl time.Duration) *RedisSessionStore {
	return &RedisSessionStore{client: client, ttl: ttl}
}

func (s *RedisSessionStore) key(id string) string {
	return sessionKeyPrefix + id
}

func (s *RedisSessionStore) GetOrCreate(ctx context.Context, id string, now time.Time) (*models.Session, bool, error) {
	fresh := newSession(id, now)
	data, err := json.Marshal(fresh)
	if err != nil {
		return nil, false, err
	}

	created, err := s.client.SetNX(ctx, s.key(id), data, s.ttl).Result()
	if err != nil {
		return nil, false, fmt.Errorf("failed to create session: %w", err)
	}
	if created {
		return fresh, true, nil
	}

	sess, err := s.Get(ctx, id)
	if err != nil {
		return nil, false, err
	}
	return sess, false, nil
}

func (s *RedisSessionStore) Get(ctx context.Context, id string) (*models.Session, error) {
	data, err := s.client.Get(ctx, s.key(id)).Result()
	if err == redis.Nil {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}
	var sess models.Session
	if err := json.Unmarshal([]byte(data), &sess); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}
	return &sess, nil
}

func (s *RedisSessionStore) Save(ctx context.Context, sess *models.Session) error {
	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}
	// SetXX: only overwrite a still-live key.
	return s.client.SetXX(ctx, s.key(sess.ID), data, s.ttl).Err()
}

func (s *RedisSessionStore) Delete(ctx context.Context, id string) error {
	removed, err := s.client.Del(ctx, s.key(id)).Result()
	if err != nil {
		return err
	}
	if removed == 0 {
		return ErrSessionNotFound
	}
	return nil
}

func (s *RedisSessionStore) List(ctx context.Context) ([]string, error) {
	var ids []string
	iter := s.client.Scan(ctx, 0, sessionKeyPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		ids = append(ids, iter.Val()[len(sessionKeyPrefix):])
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}
	return ids, nil
}
