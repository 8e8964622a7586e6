package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Duffman2k/duffvouchbot/internal/models"
	json "github.com/goccy/go-json"
	_ "github.com/mattn/go-sqlite3"
)

const sqliteDriver = "sqlite3"

// migrations are applied in order; the index plus one is the schema version.
var migrations = []string{
	`CREATE TABLE IF NOT EXISTS activity_records (
		user_id TEXT PRIMARY KEY,
		display_name TEXT NOT NULL DEFAULT '',
		approvals TEXT NOT NULL DEFAULT '[]',
		total_approvals INTEGER NOT NULL DEFAULT 0,
		is_promoted INTEGER NOT NULL DEFAULT 0
	);`,
	`ALTER TABLE activity_records ADD COLUMN updated_at INTEGER NOT NULL DEFAULT 0;`,
}

const (
	selectRecordSQL = `SELECT user_id, display_name, approvals, total_approvals, is_promoted FROM activity_records WHERE user_id = ?`
	upsertRecordSQL = `INSERT INTO activity_records (user_id, display_name, approvals, total_approvals, is_promoted, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			display_name = excluded.display_name,
			approvals = excluded.approvals,
			total_approvals = excluded.total_approvals,
			is_promoted = excluded.is_promoted,
			updated_at = excluded.updated_at`
	deleteRecordSQL = `DELETE FROM activity_records WHERE user_id = ?`
	selectKeysSQL   = `SELECT user_id FROM activity_records ORDER BY user_id`
)

type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens the database at path and applies pending migrations.
// A single connection serializes writers, which also keeps ":memory:" stable.
func NewSQLiteStore(ctx context.Context, path string) (*SQLiteStore, error) {
	dsn := path
	if !strings.Contains(dsn, "?") {
		dsn += "?_busy_timeout=5000&_txlock=immediate"
	}
	db, err := sql.Open(sqliteDriver, dsn)
	if err != nil {
		return nil, persistenceErr("open", "", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	s := &SQLiteStore{db: db}
	if err := s.Migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (
		version INTEGER PRIMARY KEY,
		applied_at INTEGER NOT NULL
	);`); err != nil {
		return persistenceErr("migrate", "", err)
	}

	var current int
	if err := s.db.QueryRowContext(ctx, `SELECT COALESCE(MAX(version), 0) FROM schema_migrations`).Scan(&current); err != nil {
		return persistenceErr("migrate", "", err)
	}

	for i := current; i < len(migrations); i++ {
		version := i + 1
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return persistenceErr("migrate", "", err)
		}
		if _, err := tx.ExecContext(ctx, migrations[i]); err != nil {
			tx.Rollback()
			return persistenceErr("migrate", "", fmt.Errorf("version %d: %w", version, err))
		}
		if _, err := tx.ExecContext(ctx, `INSERT INTO schema_migrations (version, applied_at) VALUES (?, ?)`, version, time.Now().Unix()); err != nil {
			tx.Rollback()
			return persistenceErr("migrate", "", err)
		}
		if err := tx.Commit(); err != nil {
			return persistenceErr("migrate", "", err)
		}
	}
	return nil
}

func (s *SQLiteStore) SchemaVersion(ctx context.Context) (int, error) {
	var v int
	err := s.db.QueryRowContext(ctx, `SELECT COALESCE(MAX(version), 0) FROM schema_migrations`).Scan(&v)
	if err != nil {
		return 0, persistenceErr("schema version", "", err)
	}
	return v, nil
}

func (s *SQLiteStore) Get(ctx context.Context, userID string) (*models.ActivityRecord, error) {
	rec, err := s.load(ctx, s.db, userID)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, notFound(userID)
	}
	return rec, nil
}

func (s *SQLiteStore) Set(ctx context.Context, rec *models.ActivityRecord) error {
	if rec == nil || rec.UserID == "" {
		return persistenceErr("set", "", errors.New("record without user id"))
	}
	return s.save(ctx, s.db, rec)
}

func (s *SQLiteStore) Delete(ctx context.Context, userID string) error {
	if _, err := s.db.ExecContext(ctx, deleteRecordSQL, userID); err != nil {
		return persistenceErr("delete", userID, err)
	}
	return nil
}

func (s *SQLiteStore) Keys(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, selectKeysSQL)
	if err != nil {
		return nil, persistenceErr("keys", "", err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, persistenceErr("keys", "", err)
		}
		keys = append(keys, id)
	}
	if err := rows.Err(); err != nil {
		return nil, persistenceErr("keys", "", err)
	}
	return keys, nil
}

func (s *SQLiteStore) Mutate(ctx context.Context, userID string, fn MutateFunc) (*models.ActivityRecord, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, persistenceErr("mutate", userID, err)
	}

	current, err := s.load(ctx, tx, userID)
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	next, err := fn(current.Clone())
	if errors.Is(err, ErrSkipWrite) {
		tx.Rollback()
		return current, nil
	}
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	if next == nil {
		if _, err := tx.ExecContext(ctx, deleteRecordSQL, userID); err != nil {
			tx.Rollback()
			return nil, persistenceErr("mutate", userID, err)
		}
	} else {
		next.UserID = userID
		if err := s.save(ctx, tx, next); err != nil {
			tx.Rollback()
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, persistenceErr("mutate", userID, err)
	}
	return next, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) load(ctx context.Context, q queryer, userID string) (*models.ActivityRecord, error) {
	var (
		v        models.RecordV2
		raw      string
		promoted int
	)
	err := q.QueryRowContext(ctx, selectRecordSQL, userID).Scan(&v.UserID, &v.DisplayName, &raw, &v.TotalApprovals, &promoted)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, persistenceErr("get", userID, err)
	}
	if err := json.Unmarshal([]byte(raw), &v.Approvals); err != nil {
		return nil, &models.DecodeError{What: "approvals column", Err: err}
	}
	v.IsPromoted = promoted != 0
	return v.Record(), nil
}

func (s *SQLiteStore) save(ctx context.Context, q queryer, rec *models.ActivityRecord) error {
	v := models.ToRecordV2(rec)
	approvals, err := json.Marshal(v.Approvals)
	if err != nil {
		return persistenceErr("set", rec.UserID, err)
	}
	promoted := 0
	if v.IsPromoted {
		promoted = 1
	}
	if _, err := q.ExecContext(ctx, upsertRecordSQL, v.UserID, v.DisplayName, string(approvals), v.TotalApprovals, promoted, time.Now().UnixNano()); err != nil {
		return persistenceErr("set", rec.UserID, err)
	}
	return nil
}
