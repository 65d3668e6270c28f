package attribution

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/taxpilot/backend/internal/domain/attribution"
)

// ResolveInput carries the signals available when a subject first
// touches the platform. SubjectID is the lead or user the attribution
// attaches to.
type ResolveInput struct {
	SubjectID    uuid.UUID
	TrackingCode string // from the referral cookie, if present
	Email        string
	Phone        string
}

// RecordInfo is the outward representation of a locked attribution
type RecordInfo struct {
	ID             uuid.UUID
	SubjectID      uuid.UUID
	ReferrerID     *uuid.UUID
	TrackingCode   string
	Method         attribution.Method
	CommissionRate decimal.Decimal
	LockedAt       time.Time
	// AlreadyLocked is true when resolution found an existing record
	// instead of writing a new one.
	AlreadyLocked bool
}

func newRecordInfo(r *attribution.Record, alreadyLocked bool) *RecordInfo {
	return &RecordInfo{
		ID:             r.ID,
		SubjectID:      r.ClientID,
		ReferrerID:     r.ReferrerID,
		TrackingCode:   r.TrackingCode,
		Method:         r.Method,
		CommissionRate: r.CommissionRate,
		LockedAt:       r.LockedAt,
		AlreadyLocked:  alreadyLocked,
	}
}

// ReferrerStats summarizes a referrer's attribution performance
type ReferrerStats struct {
	ReferrerID      uuid.UUID
	TotalAttributed int64
}
