package services

import (
	"context"
	"errors"
	"testing"

	"github.com/Duffman2k/duffvouchbot/internal/models"
	"github.com/Duffman2k/duffvouchbot/internal/structures"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func event(kind models.EventKind, userID string) models.ConversationEvent {
	return models.ConversationEvent{Kind: kind, UserID: userID, DisplayName: "name-" + userID}
}

func TestTransitions_CoverEveryLiveState(t *testing.T) {
	states := []models.ConversationState{
		models.ConversationIdle,
		models.ConversationAwaitingProduct,
		models.ConversationAwaitingImage,
	}
	events := []models.EventKind{models.EventStart, models.EventText, models.EventImage, models.EventCancel}
	for _, s := range states {
		for _, e := range events {
			_, ok := transitions[transitionKey{s, e}]
			assert.True(t, ok, "missing transition %s/%s", s, e)
		}
	}
	assert.Len(t, transitions, len(states)*len(events))
}

func TestSubmission_HappyPath(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()

	reply, err := h.submissions.Handle(ctx, event(models.EventStart, "u1"))
	require.NoError(t, err)
	assert.Equal(t, MsgWelcome, reply.Text)
	assert.Equal(t, models.ConversationAwaitingProduct, reply.State)

	ev := event(models.EventText, "u1")
	ev.Text = "  Widget "
	reply, err = h.submissions.Handle(ctx, ev)
	require.NoError(t, err)
	assert.Equal(t, MsgAskImage, reply.Text)
	assert.Equal(t, models.ConversationAwaitingImage, h.submissions.State("u1"))

	ev = event(models.EventImage, "u1")
	ev.ImageURL = "https://cdn.example/a.png"
	reply, err = h.submissions.Handle(ctx, ev)
	require.NoError(t, err)
	assert.Equal(t, MsgSubmitted, reply.Text)
	assert.Equal(t, models.ConversationSubmitted, reply.State)
	assert.Equal(t, models.ConversationIdle, h.submissions.State("u1"))
	assert.Equal(t, []string{"https://cdn.example/a.png"}, h.watermarker.URLs)

	list := h.approvals.ListPending()
	require.Len(t, list, 1)
	sub := list[0]
	assert.Equal(t, "Widget", sub.ProductName)
	assert.Equal(t, "u1", sub.SubmitterID)
	assert.Equal(t, "name-u1", sub.SubmitterDisplayName)
	assert.Equal(t, models.StatePending, sub.State)
	assert.Equal(t, epoch, sub.CreatedAt)
	assert.NotEmpty(t, sub.ID)
	assert.Equal(t, len("jpeg-bytes"), sub.Image.Len())
}

func TestSubmission_CancelDiscardsState(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()
	_, _ = h.submissions.Handle(ctx, event(models.EventStart, "u1"))
	ev := event(models.EventText, "u1")
	ev.Text = "Widget"
	_, _ = h.submissions.Handle(ctx, ev)

	reply, err := h.submissions.Handle(ctx, event(models.EventCancel, "u1"))
	require.NoError(t, err)
	assert.Equal(t, MsgCancelled, reply.Text)
	assert.Equal(t, models.ConversationCancelled, reply.State)
	assert.Equal(t, models.ConversationIdle, h.submissions.State("u1"))

	reply, err = h.submissions.Handle(ctx, event(models.EventImage, "u1"))
	require.NoError(t, err)
	assert.Equal(t, MsgUseStart, reply.Text)
	assert.Equal(t, 0, h.queue.Len())
	assert.Empty(t, h.watermarker.URLs)
}

func TestSubmission_CancelFromIdle(t *testing.T) {
	h := newHarness(t, nil)
	reply, err := h.submissions.Handle(context.Background(), event(models.EventCancel, "u1"))
	require.NoError(t, err)
	assert.Equal(t, MsgNothingToCancel, reply.Text)
	assert.Equal(t, models.ConversationIdle, reply.State)
}

func TestSubmission_HintsKeepState(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()
	_, _ = h.submissions.Handle(ctx, event(models.EventStart, "u1"))

	reply, err := h.submissions.Handle(ctx, event(models.EventImage, "u1"))
	require.NoError(t, err)
	assert.Equal(t, MsgNeedProduct, reply.Text)
	assert.Equal(t, models.ConversationAwaitingProduct, reply.State)

	reply, err = h.submissions.Handle(ctx, event(models.EventText, "u1"))
	require.NoError(t, err)
	assert.Equal(t, MsgWelcome, reply.Text)
	assert.Equal(t, models.ConversationAwaitingProduct, reply.State)

	ev := event(models.EventText, "u1")
	ev.Text = "Widget"
	_, _ = h.submissions.Handle(ctx, ev)
	reply, err = h.submissions.Handle(ctx, ev)
	require.NoError(t, err)
	assert.Equal(t, MsgNeedImage, reply.Text)
	assert.Equal(t, models.ConversationAwaitingImage, reply.State)
	assert.Empty(t, h.watermarker.URLs)
}

func TestSubmission_RestartOverwritesByDefault(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()
	_, _ = h.submissions.Handle(ctx, event(models.EventStart, "u1"))
	ev := event(models.EventText, "u1")
	ev.Text = "Old"
	_, _ = h.submissions.Handle(ctx, ev)

	reply, err := h.submissions.Handle(ctx, event(models.EventStart, "u1"))
	require.NoError(t, err)
	assert.Equal(t, models.ConversationAwaitingProduct, reply.State)

	h.submit(t, "u2", "Bob", "Other")
	ev.Text = "New"
	_, _ = h.submissions.Handle(ctx, ev)
	img := event(models.EventImage, "u1")
	img.ImageURL = "https://cdn.example/x.png"
	_, err = h.submissions.Handle(ctx, img)
	require.NoError(t, err)

	list := h.approvals.ListPending()
	require.Len(t, list, 2)
	assert.Equal(t, "New", list[1].ProductName)
}

func TestSubmission_RestartRejectedWhenStrict(t *testing.T) {
	h := newHarness(t, func(c *structures.Config) { c.Submission.RejectDuplicateStart = true })
	ctx := context.Background()
	_, _ = h.submissions.Handle(ctx, event(models.EventStart, "u1"))
	ev := event(models.EventText, "u1")
	ev.Text = "Widget"
	_, _ = h.submissions.Handle(ctx, ev)

	reply, err := h.submissions.Handle(ctx, event(models.EventStart, "u1"))
	assert.True(t, errors.Is(err, models.ErrDuplicateSubmission))
	assert.Equal(t, MsgAlreadyStarted, reply.Text)
	assert.Equal(t, models.ConversationAwaitingImage, h.submissions.State("u1"))
}

func TestSubmission_WatermarkFailureEnqueuesNothing(t *testing.T) {
	h := newHarness(t, nil)
	h.watermarker.Err = &models.FetchError{URL: "https://cdn.example/a.png", Status: 404}
	ctx := context.Background()
	_, _ = h.submissions.Handle(ctx, event(models.EventStart, "u1"))
	ev := event(models.EventText, "u1")
	ev.Text = "Widget"
	_, _ = h.submissions.Handle(ctx, ev)

	img := event(models.EventImage, "u1")
	img.ImageURL = "https://cdn.example/a.png"
	reply, err := h.submissions.Handle(ctx, img)
	assert.True(t, errors.Is(err, models.ErrFetch))
	assert.Equal(t, MsgImageFailed, reply.Text)
	assert.Equal(t, models.ConversationCancelled, reply.State)
	assert.Equal(t, models.ConversationIdle, h.submissions.State("u1"))
	assert.Equal(t, 0, h.queue.Len())
	assert.Equal(t, 1, h.metrics.Submissions["failed"])
}

func TestSubmission_PendingLimitReported(t *testing.T) {
	h := newHarness(t, func(c *structures.Config) { c.Submission.MaxPendingPerUser = 1 })
	h.submit(t, "u1", "Alice", "Widget")

	ctx := context.Background()
	_, _ = h.submissions.Handle(ctx, event(models.EventStart, "u1"))
	ev := event(models.EventText, "u1")
	ev.Text = "Gadget"
	_, _ = h.submissions.Handle(ctx, ev)
	img := event(models.EventImage, "u1")
	img.ImageURL = "https://cdn.example/b.png"
	reply, err := h.submissions.Handle(ctx, img)
	assert.True(t, errors.Is(err, models.ErrDuplicateSubmission))
	assert.Equal(t, MsgTooManyPending, reply.Text)
	assert.Equal(t, 1, h.queue.Len())
}

func TestSubmission_UsersAreIndependent(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()
	_, _ = h.submissions.Handle(ctx, event(models.EventStart, "u1"))
	_, _ = h.submissions.Handle(ctx, event(models.EventStart, "u2"))

	ev := event(models.EventText, "u1")
	ev.Text = "Widget"
	_, _ = h.submissions.Handle(ctx, ev)

	assert.Equal(t, models.ConversationAwaitingImage, h.submissions.State("u1"))
	assert.Equal(t, models.ConversationAwaitingProduct, h.submissions.State("u2"))
}
