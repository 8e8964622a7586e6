package services

import (
	"context"
	"errors"
	"time"

	"github.com/Duffman2k/duffvouchbot/internal/models"
	"github.com/Duffman2k/duffvouchbot/internal/providers"
	"github.com/Duffman2k/duffvouchbot/internal/storage"
	"github.com/Duffman2k/duffvouchbot/internal/structures"
)

type LedgerServiceInterface interface {
	RecordApproval(ctx context.Context, userID, displayName string, ts time.Time) (*models.ActivityRecord, bool, error)
	Sweep(ctx context.Context) (SweepResult, error)
	Activity(ctx context.Context, userID string) (*models.ActivityRecord, error)
}

type SweepResult struct {
	Scanned int
	Pruned  int
	Deleted int
}

type LedgerService struct {
	store     storage.RecordStore
	evaluator PromotionEvaluatorInterface
	window    time.Duration
	now       Clock
	logger    providers.Logger
	metrics   providers.MetricsProviderInterface
}

func NewLedgerService(conf *structures.Config, store storage.RecordStore, evaluator PromotionEvaluatorInterface, logger providers.Logger, metrics providers.MetricsProviderInterface) *LedgerService {
	return &LedgerService{
		store:     store,
		evaluator: evaluator,
		window:    conf.Promotion.Window,
		now:       time.Now,
		logger:    logger,
		metrics:   metrics,
	}
}

// RecordApproval appends ts, prunes against the current time and bumps the
// lifetime counter in one atomic store update, then runs the evaluator. The
// returned record is non-nil whenever the approval was persisted.
func (l *LedgerService) RecordApproval(ctx context.Context, userID, displayName string, ts time.Time) (*models.ActivityRecord, bool, error) {
	started := time.Now()
	rec, err := l.store.Mutate(ctx, userID, func(cur *models.ActivityRecord) (*models.ActivityRecord, error) {
		if cur == nil {
			cur = models.NewActivityRecord(userID, displayName)
		}
		if displayName != "" {
			cur.DisplayName = displayName
		}
		cur.ApprovalTimestamps = append(cur.ApprovalTimestamps, ts)
		cur.Prune(l.now(), l.window)
		cur.TotalApprovalsEver++
		return cur, nil
	})
	l.metrics.ObservePersistenceDuration(time.Since(started))
	if err != nil {
		return nil, false, err
	}

	promoted, err := l.evaluator.Evaluate(ctx, rec)
	if promoted {
		rec.IsPromoted = true
	}
	return rec, promoted, err
}

func (l *LedgerService) Activity(ctx context.Context, userID string) (*models.ActivityRecord, error) {
	return l.store.Get(ctx, userID)
}

// Sweep prunes every record and deletes the ones left without approvals.
// IsPromoted and TotalApprovalsEver are never touched. Per-user failures are
// logged and joined; the sweep continues with the next key.
func (l *LedgerService) Sweep(ctx context.Context) (SweepResult, error) {
	started := time.Now()
	var res SweepResult

	keys, err := l.store.Keys(ctx)
	if err != nil {
		return res, err
	}

	now := l.now()
	var errs []error
	for _, id := range keys {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		res.Scanned++

		var removed int
		var deleted bool
		_, err := l.store.Mutate(ctx, id, func(cur *models.ActivityRecord) (*models.ActivityRecord, error) {
			removed, deleted = 0, false
			if cur == nil {
				return nil, storage.ErrSkipWrite
			}
			removed = cur.Prune(now, l.window)
			if cur.WindowCount() == 0 {
				deleted = true
				return nil, nil
			}
			if removed == 0 {
				return cur, storage.ErrSkipWrite
			}
			return cur, nil
		})
		if err != nil {
			l.logger.Errorf(providers.TypeSweep, "Sweep of %s failed: %v", id, err)
			errs = append(errs, err)
			continue
		}
		switch {
		case deleted:
			res.Deleted++
		case removed > 0:
			res.Pruned++
		}
	}

	l.metrics.ObserveSweep(time.Since(started), res.Deleted)
	l.logger.Infof(providers.TypeSweep, "Sweep done: scanned=%d pruned=%d deleted=%d in %s", res.Scanned, res.Pruned, res.Deleted, time.Since(started))
	return res, errors.Join(errs...)
}
