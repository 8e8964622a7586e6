package models

import "sync"

// PendingQueue holds submissions waiting for a moderator, oldest first.
type PendingQueue struct {
	mu    sync.RWMutex
	items []*Submission
}

func NewPendingQueue() *PendingQueue {
	return &PendingQueue{}
}

func (q *PendingQueue) Enqueue(sub *Submission) {
	if sub == nil {
		return
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	q.items = append(q.items, sub)
}

// RemoveFirst detaches the earliest submission of submitterID.
func (q *PendingQueue) RemoveFirst(submitterID string) (*Submission, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for i, sub := range q.items {
		if sub.SubmitterID != submitterID {
			continue
		}
		q.items = append(q.items[:i:i], q.items[i+1:]...)
		return sub, true
	}
	return nil, false
}

func (q *PendingQueue) List() []*Submission {
	q.mu.RLock()
	defer q.mu.RUnlock()
	out := make([]*Submission, len(q.items))
	copy(out, q.items)
	return out
}

func (q *PendingQueue) CountFor(submitterID string) int {
	q.mu.RLock()
	defer q.mu.RUnlock()
	n := 0
	for _, sub := range q.items {
		if sub.SubmitterID == submitterID {
			n++
		}
	}
	return n
}

func (q *PendingQueue) Len() int {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return len(q.items)
}
