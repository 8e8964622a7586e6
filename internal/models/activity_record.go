package models

import "time"

// ActivityRecord is the per-user approval ledger entry.
type ActivityRecord struct {
	UserID             string
	DisplayName        string
	ApprovalTimestamps []time.Time
	TotalApprovalsEver int
	IsPromoted         bool
}

func NewActivityRecord(userID, displayName string) *ActivityRecord {
	return &ActivityRecord{UserID: userID, DisplayName: displayName}
}

// Prune drops approvals older than window relative to now and reports how many
// were removed. An approval exactly window old is kept.
func (r *ActivityRecord) Prune(now time.Time, window time.Duration) int {
	cutoff := now.Add(-window)
	kept := r.ApprovalTimestamps[:0]
	for _, ts := range r.ApprovalTimestamps {
		if !ts.Before(cutoff) {
			kept = append(kept, ts)
		}
	}
	removed := len(r.ApprovalTimestamps) - len(kept)
	clear(r.ApprovalTimestamps[len(kept):])
	r.ApprovalTimestamps = kept
	return removed
}

func (r *ActivityRecord) WindowCount() int {
	return len(r.ApprovalTimestamps)
}

func (r *ActivityRecord) LastApproval() (time.Time, bool) {
	if len(r.ApprovalTimestamps) == 0 {
		return time.Time{}, false
	}
	return r.ApprovalTimestamps[len(r.ApprovalTimestamps)-1], true
}

func (r *ActivityRecord) Clone() *ActivityRecord {
	if r == nil {
		return nil
	}
	c := *r
	c.ApprovalTimestamps = append([]time.Time(nil), r.ApprovalTimestamps...)
	return &c
}
