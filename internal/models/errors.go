package models

import (
	"errors"
	"fmt"
)

var (
	ErrFetch               = errors.New("fetch failed")
	ErrDecode              = errors.New("decode failed")
	ErrPersistence         = errors.New("persistence failed")
	ErrNotFound            = errors.New("not found")
	ErrDuplicateSubmission = errors.New("duplicate submission")
)

// FetchError is returned when a base image or the watermark asset cannot be retrieved.
type FetchError struct {
	URL    string
	Status int
	Err    error
}

func (e *FetchError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("fetch %s: unexpected status %d", e.URL, e.Status)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

func (e *FetchError) Is(target error) bool { return target == ErrFetch }

// DecodeError is returned for corrupt or unsupported image data.
type DecodeError struct {
	What string
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s: %v", e.What, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

func (e *DecodeError) Is(target error) bool { return target == ErrDecode }

// PersistenceError wraps failures of the record store.
type PersistenceError struct {
	Op     string
	UserID string
	Err    error
}

func (e *PersistenceError) Error() string {
	if e.UserID == "" {
		return fmt.Sprintf("store %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("store %s %s: %v", e.Op, e.UserID, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

func (e *PersistenceError) Is(target error) bool { return target == ErrPersistence }

// NotFoundError reports a decision or lookup that references nothing pending.
type NotFoundError struct {
	Kind string
	Key  string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Kind, e.Key)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// DuplicateSubmissionError is returned when strict single-in-flight rules reject a submission.
type DuplicateSubmissionError struct {
	UserID string
	Reason string
}

func (e *DuplicateSubmissionError) Error() string {
	return fmt.Sprintf("duplicate submission for %s: %s", e.UserID, e.Reason)
}

func (e *DuplicateSubmissionError) Is(target error) bool { return target == ErrDuplicateSubmission }
