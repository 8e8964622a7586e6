package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Duffman2k/duffvouchbot/internal/models"
	"github.com/Duffman2k/duffvouchbot/internal/providers"
	"github.com/Duffman2k/duffvouchbot/internal/structures"
)

type Action int

const (
	ActionApprove Action = iota + 1
	ActionDeny
)

func (a Action) String() string {
	switch a {
	case ActionApprove:
		return "approve"
	case ActionDeny:
		return "deny"
	}
	return "unknown"
}

func ParseAction(s string) (Action, error) {
	switch strings.ToLower(s) {
	case "approve":
		return ActionApprove, nil
	case "deny":
		return ActionDeny, nil
	}
	return 0, fmt.Errorf("unknown action %q", s)
}

// Decision describes what happened to a resolved submission. BroadcastErr and
// LedgerErr are reported here rather than as the call error because the
// submission has already left the pending queue.
type Decision struct {
	Submission   *models.Submission
	Action       Action
	BroadcastErr error
	Record       *models.ActivityRecord
	LedgerErr    error
	Promoted     bool
}

// Disposition is the text shown on the moderator message after the decision.
func (d *Decision) Disposition() string {
	switch {
	case d.Action == ActionDeny:
		return MsgDenied
	case d.BroadcastErr != nil:
		return MsgBroadcastFailed
	default:
		return MsgApproved
	}
}

type ApprovalServiceInterface interface {
	Enqueue(ctx context.Context, sub *models.Submission) error
	ListPending() []*models.Submission
	Decide(ctx context.Context, submitterID string, action Action) (*Decision, error)
	IsModerator(userID string) bool
}

type ApprovalService struct {
	queue       *models.PendingQueue
	broadcaster Broadcaster
	notifier    PendingNotifier
	ledger      LedgerServiceInterface
	moderators  map[string]struct{}
	glyph       string
	showHandle  bool
	maxPending  int
	notify      bool
	now         Clock
	logger      providers.Logger
	metrics     providers.MetricsProviderInterface
}

func NewApprovalService(conf *structures.Config, queue *models.PendingQueue, broadcaster Broadcaster, notifier PendingNotifier, ledger LedgerServiceInterface, logger providers.Logger, metrics providers.MetricsProviderInterface) *ApprovalService {
	mods := make(map[string]struct{}, len(conf.Moderators))
	for _, id := range conf.Moderators {
		if id = strings.TrimSpace(id); id != "" {
			mods[id] = struct{}{}
		}
	}
	if notifier == nil {
		notifier = noopNotifier{}
	}
	return &ApprovalService{
		queue:       queue,
		broadcaster: broadcaster,
		notifier:    notifier,
		ledger:      ledger,
		moderators:  mods,
		glyph:       conf.Broadcast.Glyph,
		showHandle:  conf.Broadcast.ShowHandle,
		maxPending:  conf.Submission.MaxPendingPerUser,
		notify:      conf.Submission.NotifyOnSubmit,
		now:         time.Now,
		logger:      logger,
		metrics:     metrics,
	}
}

func (a *ApprovalService) IsModerator(userID string) bool {
	_, ok := a.moderators[userID]
	return ok
}

func (a *ApprovalService) Enqueue(ctx context.Context, sub *models.Submission) error {
	if a.maxPending > 0 && a.queue.CountFor(sub.SubmitterID) >= a.maxPending {
		a.metrics.IncSubmissions("rejected")
		return &models.DuplicateSubmissionError{UserID: sub.SubmitterID, Reason: "pending limit reached"}
	}
	a.queue.Enqueue(sub)
	a.metrics.IncSubmissions("pending")
	a.logger.Infof(providers.TypeModeration, "Submission %s from %s queued for review (%s)", sub.ID, sub.SubmitterID, sub.ProductName)

	if a.notify {
		if err := a.notifier.NotifyPending(ctx, sub); err != nil {
			a.logger.Warnf(providers.TypeModeration, "Could not notify moderators about %s: %v", sub.ID, err)
		}
	}
	return nil
}

func (a *ApprovalService) ListPending() []*models.Submission {
	return a.queue.List()
}

// Decide resolves the earliest pending submission of submitterID. The removal
// from the queue is final even when the broadcast later fails.
func (a *ApprovalService) Decide(ctx context.Context, submitterID string, action Action) (*Decision, error) {
	if action != ActionApprove && action != ActionDeny {
		return nil, fmt.Errorf("unsupported action %d", action)
	}

	sub, ok := a.queue.RemoveFirst(submitterID)
	if !ok {
		return nil, &models.NotFoundError{Kind: "pending submission", Key: submitterID}
	}
	a.metrics.IncDecisions(action.String())
	d := &Decision{Submission: sub, Action: action}

	if action == ActionDeny {
		sub.Advance(models.StateDenied)
		sub.Image = models.ImagePayload{}
		a.logger.Infof(providers.TypeModeration, "Submission %s from %s denied, image discarded", sub.ID, submitterID)
		return d, nil
	}

	sub.Advance(models.StateApproved)
	caption := a.caption(sub)
	if err := a.broadcaster.Broadcast(ctx, caption, sub.Image.NewReader()); err != nil {
		a.metrics.IncBroadcastFailures()
		a.logger.Errorf(providers.TypeModeration, "Broadcast of %s failed: %v", sub.ID, err)
		d.BroadcastErr = err
		return d, nil
	}
	a.logger.Infof(providers.TypeModeration, "Submission %s from %s approved and broadcast", sub.ID, submitterID)

	rec, promoted, err := a.ledger.RecordApproval(ctx, sub.SubmitterID, sub.SubmitterDisplayName, a.now())
	if err != nil {
		a.metrics.IncLedgerFailures()
		a.logger.Errorf(providers.TypeLedger, "Ledger update for %s failed after broadcast: %v", submitterID, err)
		d.LedgerErr = err
	}
	d.Record = rec
	d.Promoted = promoted
	return d, nil
}

func (a *ApprovalService) caption(sub *models.Submission) string {
	handle := ""
	if a.showHandle {
		handle = sub.SubmitterDisplayName
	}
	return FormatCaption(a.glyph, sub.ProductName, handle)
}

// FormatCaption renders the public caption: glyph, upper-cased product and an
// optional "vouched by" line.
func FormatCaption(glyph, product, handle string) string {
	var b strings.Builder
	if glyph != "" {
		b.WriteString(glyph)
		b.WriteByte(' ')
	}
	b.WriteString(strings.ToUpper(strings.TrimSpace(product)))
	if handle != "" {
		b.WriteString("\nvouched by ")
		b.WriteString(handle)
	}
	return b.String()
}

// PendingCaption is the moderator-facing caption for a queued submission.
func PendingCaption(sub *models.Submission) string {
	return fmt.Sprintf(MsgPendingCaption, sub.ProductName, sub.SubmitterDisplayName)
}
