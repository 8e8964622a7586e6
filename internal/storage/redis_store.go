package storage

import (
	"context"
	"errors"
	"strings"

	"github.com/Duffman2k/duffvouchbot/internal/models"
	"github.com/Duffman2k/duffvouchbot/internal/structures"
	"github.com/redis/go-redis/v9"
)

const (
	defaultKeyPrefix = "vouch:activity:"
	maxMutateRetries = 100
	scanBatch        = 256
)

type RedisStore struct {
	client *redis.Client
	prefix string
}

func NewRedisStore(ctx context.Context, conf structures.RedisConfig) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     conf.Addr,
		Password: conf.Password,
		DB:       conf.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, persistenceErr("connect", "", err)
	}
	return NewRedisStoreWithClient(client, conf.KeyPrefix), nil
}

func NewRedisStoreWithClient(client *redis.Client, prefix string) *RedisStore {
	if prefix == "" {
		prefix = defaultKeyPrefix
	}
	return &RedisStore{client: client, prefix: prefix}
}

func (s *RedisStore) key(userID string) string {
	return s.prefix + userID
}

func (s *RedisStore) Get(ctx context.Context, userID string) (*models.ActivityRecord, error) {
	rec, err := s.load(ctx, s.client, userID)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, notFound(userID)
	}
	return rec, nil
}

func (s *RedisStore) Set(ctx context.Context, rec *models.ActivityRecord) error {
	if rec == nil || rec.UserID == "" {
		return persistenceErr("set", "", errors.New("record without user id"))
	}
	data, err := models.EncodeRecord(rec)
	if err != nil {
		return persistenceErr("set", rec.UserID, err)
	}
	if err := s.client.Set(ctx, s.key(rec.UserID), data, 0).Err(); err != nil {
		return persistenceErr("set", rec.UserID, err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, userID string) error {
	if err := s.client.Del(ctx, s.key(userID)).Err(); err != nil {
		return persistenceErr("delete", userID, err)
	}
	return nil
}

func (s *RedisStore) Keys(ctx context.Context) ([]string, error) {
	var (
		keys   []string
		cursor uint64
	)
	for {
		batch, next, err := s.client.Scan(ctx, cursor, s.prefix+"*", scanBatch).Result()
		if err != nil {
			return nil, persistenceErr("keys", "", err)
		}
		for _, k := range batch {
			keys = append(keys, strings.TrimPrefix(k, s.prefix))
		}
		if next == 0 {
			return keys, nil
		}
		cursor = next
	}
}

// Mutate runs fn inside WATCH/MULTI and retries when another writer touched
// the key first. fn may therefore run more than once.
func (s *RedisStore) Mutate(ctx context.Context, userID string, fn MutateFunc) (*models.ActivityRecord, error) {
	key := s.key(userID)
	var (
		result *models.ActivityRecord
		halted error
	)

	txf := func(tx *redis.Tx) error {
		current, err := s.load(ctx, tx, userID)
		if err != nil {
			halted = err
			return err
		}
		next, err := fn(current.Clone())
		if errors.Is(err, ErrSkipWrite) {
			result = current
			return nil
		}
		if err != nil {
			halted = err
			return err
		}

		var data []byte
		if next != nil {
			next.UserID = userID
			if data, err = models.EncodeRecord(next); err != nil {
				halted = persistenceErr("mutate", userID, err)
				return halted
			}
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			if next == nil {
				pipe.Del(ctx, key)
			} else {
				pipe.Set(ctx, key, data, 0)
			}
			return nil
		})
		if err != nil {
			return err
		}
		result = next
		return nil
	}

	for attempt := 0; attempt < maxMutateRetries; attempt++ {
		halted = nil
		err := s.client.Watch(ctx, txf, key)
		switch {
		case err == nil:
			return result, nil
		case errors.Is(err, redis.TxFailedErr):
			continue
		case halted != nil:
			return nil, halted
		default:
			return nil, persistenceErr("mutate", userID, err)
		}
	}
	return nil, persistenceErr("mutate", userID, errors.New("too many concurrent writers"))
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}

type redisGetter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

func (s *RedisStore) load(ctx context.Context, c redisGetter, userID string) (*models.ActivityRecord, error) {
	data, err := c.Get(ctx, s.key(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, persistenceErr("get", userID, err)
	}
	rec, err := models.DecodeRecord(userID, data)
	if err != nil {
		return nil, &models.DecodeError{What: "activity record", Err: err}
	}
	return rec, nil
}
