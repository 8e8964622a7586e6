package models

import (
	"fmt"
	"math"
	"time"

	json "github.com/goccy/go-json"
)

const RecordSchemaVersion = 2

// RecordV2 is the persisted form of an ActivityRecord. Approvals are unix
// nanoseconds in insertion order.
type RecordV2 struct {
	Version        int     `json:"version"`
	UserID         string  `json:"user_id"`
	DisplayName    string  `json:"display_name"`
	Approvals      []int64 `json:"approvals"`
	TotalApprovals int     `json:"total_approvals"`
	IsPromoted     bool    `json:"is_promoted"`
}

// recordV1 is the schema-less layout written before versioning: float unix
// seconds and the old counter name.
type recordV1 struct {
	Username     string    `json:"username"`
	Timestamps   []float64 `json:"timestamps"`
	TotalVouches int       `json:"total_vouches"`
	IsPromoted   bool      `json:"is_promoted"`
}

func ToRecordV2(r *ActivityRecord) RecordV2 {
	approvals := make([]int64, len(r.ApprovalTimestamps))
	for i, ts := range r.ApprovalTimestamps {
		approvals[i] = ts.UnixNano()
	}
	return RecordV2{
		Version:        RecordSchemaVersion,
		UserID:         r.UserID,
		DisplayName:    r.DisplayName,
		Approvals:      approvals,
		TotalApprovals: r.TotalApprovalsEver,
		IsPromoted:     r.IsPromoted,
	}
}

func (v RecordV2) Record() *ActivityRecord {
	rec := &ActivityRecord{
		UserID:             v.UserID,
		DisplayName:        v.DisplayName,
		TotalApprovalsEver: v.TotalApprovals,
		IsPromoted:         v.IsPromoted,
	}
	if len(v.Approvals) > 0 {
		rec.ApprovalTimestamps = make([]time.Time, len(v.Approvals))
		for i, ns := range v.Approvals {
			rec.ApprovalTimestamps[i] = time.Unix(0, ns).UTC()
		}
	}
	return rec
}

func EncodeRecord(r *ActivityRecord) ([]byte, error) {
	return json.Marshal(ToRecordV2(r))
}

// DecodeRecord reads any known schema version and returns the current model.
// Blobs without a version field are treated as v1 and migrated.
func DecodeRecord(userID string, data []byte) (*ActivityRecord, error) {
	var probe struct {
		Version int `json:"version"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, err
	}

	switch probe.Version {
	case 0, 1:
		var old recordV1
		if err := json.Unmarshal(data, &old); err != nil {
			return nil, err
		}
		return migrateV1(userID, old), nil
	case RecordSchemaVersion:
		var cur RecordV2
		if err := json.Unmarshal(data, &cur); err != nil {
			return nil, err
		}
		if cur.UserID == "" {
			cur.UserID = userID
		}
		return cur.Record(), nil
	default:
		return nil, fmt.Errorf("unsupported record schema version %d", probe.Version)
	}
}

func migrateV1(userID string, old recordV1) *ActivityRecord {
	rec := &ActivityRecord{
		UserID:             userID,
		DisplayName:        old.Username,
		TotalApprovalsEver: old.TotalVouches,
		IsPromoted:         old.IsPromoted,
	}
	for _, secs := range old.Timestamps {
		whole, frac := math.Modf(secs)
		rec.ApprovalTimestamps = append(rec.ApprovalTimestamps, time.Unix(int64(whole), int64(frac*1e9)).UTC())
	}
	if rec.TotalApprovalsEver < len(rec.ApprovalTimestamps) {
		rec.TotalApprovalsEver = len(rec.ApprovalTimestamps)
	}
	return rec
}
