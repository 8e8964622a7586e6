package services

import (
	"context"
	"errors"

	"github.com/Duffman2k/duffvouchbot/internal/models"
	"github.com/Duffman2k/duffvouchbot/internal/providers"
	"github.com/Duffman2k/duffvouchbot/internal/storage"
	"github.com/Duffman2k/duffvouchbot/internal/structures"
)

type PromotionEvaluatorInterface interface {
	Evaluate(ctx context.Context, rec *models.ActivityRecord) (bool, error)
}

// PromotionEvaluator grants membership once a user reaches the threshold
// inside the activity window. Once IsPromoted is set it is never re-evaluated.
type PromotionEvaluator struct {
	store     storage.RecordStore
	granter   MembershipGranter
	threshold int
	locks     *keyedMutex
	logger    providers.Logger
	metrics   providers.MetricsProviderInterface
}

func NewPromotionEvaluator(conf *structures.Config, store storage.RecordStore, granter MembershipGranter, logger providers.Logger, metrics providers.MetricsProviderInterface) *PromotionEvaluator {
	return &PromotionEvaluator{
		store:     store,
		granter:   granter,
		threshold: conf.Promotion.Threshold,
		locks:     newKeyedMutex(),
		logger:    logger,
		metrics:   metrics,
	}
}

func (p *PromotionEvaluator) eligible(rec *models.ActivityRecord) bool {
	return rec != nil && !rec.IsPromoted && rec.WindowCount() >= p.threshold
}

// Evaluate reports whether this call promoted the user. A failed grant leaves
// the record unpromoted so the next approval retries.
func (p *PromotionEvaluator) Evaluate(ctx context.Context, rec *models.ActivityRecord) (bool, error) {
	if !p.eligible(rec) {
		return false, nil
	}

	unlock := p.locks.Lock(rec.UserID)
	defer unlock()

	current, err := p.store.Get(ctx, rec.UserID)
	if errors.Is(err, models.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if !p.eligible(current) {
		return false, nil
	}

	if err := p.granter.GrantMembership(ctx, rec.UserID); err != nil {
		p.logger.Errorf(providers.TypeLedger, "Membership grant for %s failed: %v", rec.UserID, err)
		return false, err
	}

	_, err = p.store.Mutate(ctx, rec.UserID, func(cur *models.ActivityRecord) (*models.ActivityRecord, error) {
		if cur == nil {
			return nil, storage.ErrSkipWrite
		}
		cur.IsPromoted = true
		return cur, nil
	})
	if err != nil {
		p.logger.Errorf(providers.TypeLedger, "Membership granted to %s but promotion flag not stored: %v", rec.UserID, err)
		return true, err
	}

	p.metrics.IncPromotions()
	p.logger.Infof(providers.TypeLedger, "Promoted %s (%s) with %d approvals in window", rec.UserID, current.DisplayName, current.WindowCount())
	return true, nil
}
