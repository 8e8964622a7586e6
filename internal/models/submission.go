package models

import (
	"bytes"
	"io"
	"time"
)

type SubmissionState int

const (
	StateAwaitingProduct SubmissionState = iota + 1
	StateAwaitingImage
	StatePending
	StateApproved
	StateDenied
	StateCancelled
)

func (s SubmissionState) String() string {
	switch s {
	case StateAwaitingProduct:
		return "awaiting_product"
	case StateAwaitingImage:
		return "awaiting_image"
	case StatePending:
		return "pending"
	case StateApproved:
		return "approved"
	case StateDenied:
		return "denied"
	case StateCancelled:
		return "cancelled"
	}
	return "unknown"
}

// ImagePayload owns composited JPEG bytes. Every consumer gets its own reader,
// so the moderator preview and the public broadcast never share a cursor.
type ImagePayload struct {
	data []byte
}

func NewImagePayload(data []byte) ImagePayload {
	own := make([]byte, len(data))
	copy(own, data)
	return ImagePayload{data: own}
}

func (p ImagePayload) NewReader() io.ReadSeeker {
	return bytes.NewReader(p.data)
}

func (p ImagePayload) Len() int {
	return len(p.data)
}

type Submission struct {
	ID                   string
	SubmitterID          string
	SubmitterDisplayName string
	ProductName          string
	Image                ImagePayload
	CreatedAt            time.Time
	State                SubmissionState
}

// Terminal reports whether the submission has been resolved.
func (s SubmissionState) Terminal() bool {
	return s == StateApproved || s == StateDenied || s == StateCancelled
}

// Advance moves the submission forward. Going back, standing still or leaving
// a resolved state is refused.
func (s *Submission) Advance(next SubmissionState) bool {
	if s.State.Terminal() || next <= s.State {
		return false
	}
	s.State = next
	return true
}

// SubmissionView is the image-less projection shown to operators.
type SubmissionView struct {
	ID          string    `json:"id"`
	SubmitterID string    `json:"submitter_id"`
	DisplayName string    `json:"display_name"`
	ProductName string    `json:"product_name"`
	ImageBytes  int       `json:"image_bytes"`
	CreatedAt   time.Time `json:"created_at"`
	State       string    `json:"state"`
}

func (s *Submission) View() SubmissionView {
	return SubmissionView{
		ID:          s.ID,
		SubmitterID: s.SubmitterID,
		DisplayName: s.SubmitterDisplayName,
		ProductName: s.ProductName,
		ImageBytes:  s.Image.Len(),
		CreatedAt:   s.CreatedAt,
		State:       s.State.String(),
	}
}
