package services

import (
	"context"
	"io"
	"time"

	"github.com/Duffman2k/duffvouchbot/internal/models"
)

// Watermarker turns a submitted image URL into the composited JPEG.
type Watermarker interface {
	Watermark(ctx context.Context, imageURL string) ([]byte, error)
}

// Broadcaster publishes an approved vouch to the public channel.
type Broadcaster interface {
	Broadcast(ctx context.Context, caption string, image io.Reader) error
}

// MembershipGranter adds a user to the privileged cohort.
type MembershipGranter interface {
	GrantMembership(ctx context.Context, userID string) error
}

// PendingNotifier tells moderators a new submission is waiting.
type PendingNotifier interface {
	NotifyPending(ctx context.Context, sub *models.Submission) error
}

type Clock func() time.Time

type noopNotifier struct{}

func (noopNotifier) NotifyPending(context.Context, *models.Submission) error { return nil }
