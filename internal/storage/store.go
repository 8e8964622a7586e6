package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/Duffman2k/duffvouchbot/internal/models"
	"github.com/Duffman2k/duffvouchbot/internal/providers"
	"github.com/Duffman2k/duffvouchbot/internal/structures"
)

// ErrSkipWrite lets a MutateFunc leave the stored record untouched.
var ErrSkipWrite = errors.New("skip write")

// MutateFunc receives a private copy of the stored record, or nil when there
// is none, and returns the record to persist. Returning nil deletes it.
type MutateFunc func(current *models.ActivityRecord) (*models.ActivityRecord, error)

// RecordStore persists ActivityRecords keyed by user id. Mutate is the only
// read-modify-write path and is atomic per user.
type RecordStore interface {
	Get(ctx context.Context, userID string) (*models.ActivityRecord, error)
	Set(ctx context.Context, rec *models.ActivityRecord) error
	Delete(ctx context.Context, userID string) error
	Keys(ctx context.Context) ([]string, error)
	Mutate(ctx context.Context, userID string, fn MutateFunc) (*models.ActivityRecord, error)
	Close() error
}

func notFound(userID string) error {
	return &models.NotFoundError{Kind: "activity record", Key: userID}
}

func persistenceErr(op, userID string, err error) error {
	return &models.PersistenceError{Op: op, UserID: userID, Err: err}
}

func NewRecordStore(conf *structures.Config, logger providers.Logger) (RecordStore, error) {
	switch conf.Storage.Driver {
	case "", "memory":
		logger.Infof(providers.TypeLedger, "Using in-memory activity store")
		return NewMemoryStore(), nil
	case "sqlite":
		logger.Infof(providers.TypeLedger, "Using sqlite activity store at %s", conf.Storage.SQLitePath)
		return NewSQLiteStore(context.Background(), conf.Storage.SQLitePath)
	case "redis":
		logger.Infof(providers.TypeLedger, "Using redis activity store at %s", conf.Storage.Redis.Addr)
		return NewRedisStore(context.Background(), conf.Storage.Redis)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", conf.Storage.Driver)
	}
}
