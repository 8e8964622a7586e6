package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/Duffman2k/duffvouchbot/internal/models"
	"github.com/Duffman2k/duffvouchbot/internal/providers"
	"github.com/Duffman2k/duffvouchbot/internal/structures"
	"github.com/google/uuid"
)

// Enqueuer receives finished submissions.
type Enqueuer interface {
	Enqueue(ctx context.Context, sub *models.Submission) error
}

type SubmissionServiceInterface interface {
	Handle(ctx context.Context, ev models.ConversationEvent) (models.Reply, error)
	State(userID string) models.ConversationState
}

type conversation struct {
	state       models.ConversationState
	displayName string
	product     string
}

type transitionKey struct {
	state models.ConversationState
	event models.EventKind
}

type transitionFunc func(s *SubmissionService, ctx context.Context, conv conversation, ev models.ConversationEvent) (conversation, string, error)

// transitions covers every (non-terminal state, event) pair. Terminal
// conversations are never stored, so they do not appear here.
var transitions = map[transitionKey]transitionFunc{
	{models.ConversationIdle, models.EventStart}:  startConversation,
	{models.ConversationIdle, models.EventText}:   hint(MsgUseStart),
	{models.ConversationIdle, models.EventImage}:  hint(MsgUseStart),
	{models.ConversationIdle, models.EventCancel}: hint(MsgNothingToCancel),

	{models.ConversationAwaitingProduct, models.EventStart}:  restartConversation,
	{models.ConversationAwaitingProduct, models.EventText}:   acceptProduct,
	{models.ConversationAwaitingProduct, models.EventImage}:  hint(MsgNeedProduct),
	{models.ConversationAwaitingProduct, models.EventCancel}: cancelConversation,

	{models.ConversationAwaitingImage, models.EventStart}:  restartConversation,
	{models.ConversationAwaitingImage, models.EventText}:   hint(MsgNeedImage),
	{models.ConversationAwaitingImage, models.EventImage}:  acceptImage,
	{models.ConversationAwaitingImage, models.EventCancel}: cancelConversation,
}

// SubmissionService drives the per-user vouch conversation. Events of one user
// are serialized; different users proceed in parallel.
type SubmissionService struct {
	mu            sync.Mutex
	conversations map[string]conversation
	users         *keyedMutex

	watermarker   Watermarker
	approvals     Enqueuer
	rejectRestart bool
	now           Clock
	newID         func() string
	logger        providers.Logger
	metrics       providers.MetricsProviderInterface
}

func NewSubmissionService(conf *structures.Config, watermarker Watermarker, approvals ApprovalServiceInterface, logger providers.Logger, metrics providers.MetricsProviderInterface) *SubmissionService {
	return &SubmissionService{
		conversations: make(map[string]conversation),
		users:         newKeyedMutex(),
		watermarker:   watermarker,
		approvals:     approvals,
		rejectRestart: conf.Submission.RejectDuplicateStart,
		now:           time.Now,
		newID:         uuid.NewString,
		logger:        logger,
		metrics:       metrics,
	}
}

func (s *SubmissionService) State(userID string) models.ConversationState {
	s.mu.Lock()
	defer s.mu.Unlock()
	if conv, ok := s.conversations[userID]; ok {
		return conv.state
	}
	return models.ConversationIdle
}

func (s *SubmissionService) load(userID string) conversation {
	s.mu.Lock()
	defer s.mu.Unlock()
	if conv, ok := s.conversations[userID]; ok {
		return conv
	}
	return conversation{state: models.ConversationIdle}
}

func (s *SubmissionService) store(userID string, conv conversation) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if conv.state.Terminal() || conv.state == models.ConversationIdle {
		delete(s.conversations, userID)
		return
	}
	s.conversations[userID] = conv
}

// Handle applies one event. The reply is always meaningful to the user; the
// error carries the typed cause when the conversation was aborted or refused.
func (s *SubmissionService) Handle(ctx context.Context, ev models.ConversationEvent) (models.Reply, error) {
	unlock := s.users.Lock(ev.UserID)
	defer unlock()

	conv := s.load(ev.UserID)
	fn, ok := transitions[transitionKey{conv.state, ev.Kind}]
	if !ok {
		return models.Reply{Text: MsgUseStart, State: conv.state}, nil
	}

	next, text, err := fn(s, ctx, conv, ev)
	s.store(ev.UserID, next)
	if next.state != conv.state {
		s.logger.Debugf(providers.TypeBot, "Conversation %s: %s --%s--> %s", ev.UserID, conv.state, ev.Kind, next.state)
	}
	return models.Reply{Text: text, State: next.state}, err
}

func hint(text string) transitionFunc {
	return func(_ *SubmissionService, _ context.Context, conv conversation, _ models.ConversationEvent) (conversation, string, error) {
		return conv, text, nil
	}
}

func startConversation(_ *SubmissionService, _ context.Context, _ conversation, ev models.ConversationEvent) (conversation, string, error) {
	return conversation{state: models.ConversationAwaitingProduct, displayName: ev.DisplayName}, MsgWelcome, nil
}

func restartConversation(s *SubmissionService, ctx context.Context, conv conversation, ev models.ConversationEvent) (conversation, string, error) {
	if s.rejectRestart {
		return conv, MsgAlreadyStarted, &models.DuplicateSubmissionError{UserID: ev.UserID, Reason: "submission already in progress"}
	}
	s.logger.Debugf(providers.TypeBot, "Conversation %s restarted, dropping product %q", ev.UserID, conv.product)
	return startConversation(s, ctx, conv, ev)
}

func acceptProduct(_ *SubmissionService, _ context.Context, conv conversation, ev models.ConversationEvent) (conversation, string, error) {
	product := strings.TrimSpace(ev.Text)
	if product == "" {
		return conv, MsgWelcome, nil
	}
	conv.product = product
	if ev.DisplayName != "" {
		conv.displayName = ev.DisplayName
	}
	conv.state = models.ConversationAwaitingImage
	return conv, MsgAskImage, nil
}

func cancelConversation(_ *SubmissionService, _ context.Context, _ conversation, _ models.ConversationEvent) (conversation, string, error) {
	return conversation{state: models.ConversationCancelled}, MsgCancelled, nil
}

func acceptImage(s *SubmissionService, ctx context.Context, conv conversation, ev models.ConversationEvent) (conversation, string, error) {
	if ev.ImageURL == "" {
		return conv, MsgNeedImage, nil
	}

	data, err := s.watermarker.Watermark(ctx, ev.ImageURL)
	if err != nil {
		s.metrics.IncSubmissions("failed")
		s.logger.Warnf(providers.TypeBot, "Watermarking for %s failed: %v", ev.UserID, err)
		return conversation{state: models.ConversationCancelled}, MsgImageFailed, err
	}

	sub := &models.Submission{
		ID:                   s.newID(),
		SubmitterID:          ev.UserID,
		SubmitterDisplayName: conv.displayName,
		ProductName:          conv.product,
		Image:                models.NewImagePayload(data),
		CreatedAt:            s.now(),
		State:                models.StatePending,
	}
	if err := s.approvals.Enqueue(ctx, sub); err != nil {
		text := MsgImageFailed
		if errors.Is(err, models.ErrDuplicateSubmission) {
			text = MsgTooManyPending
		}
		return conversation{state: models.ConversationCancelled}, text, err
	}
	return conversation{state: models.ConversationSubmitted}, MsgSubmitted, nil
}
