package lead

import (
	"time"

	"github.com/google/uuid"

	"github.com/taxpilot/backend/internal/domain/lead"
)

// CaptureInput is the payload of the public lead capture form
type CaptureInput struct {
	FirstName    string
	LastName     string
	Email        string
	Phone        string
	Source       lead.LeadSource // empty defaults to web_form
	Message      string
	TrackingCode string // referral cookie, if the visitor carried one
}

// LeadInfo is the outward representation of a lead
type LeadInfo struct {
	ID              uuid.UUID
	FirstName       string
	LastName        string
	Email           string
	Phone           string
	Source          lead.LeadSource
	Status          lead.LeadStatus
	Message         string
	AssignedTo      *uuid.UUID
	ConvertedUserID *uuid.UUID
	ContactedAt     *time.Time
	ConvertedAt     *time.Time
	LostReason      string
	CreatedAt       time.Time
	UpdatedAt       time.Time
	// Merged is true when a repeat inquiry updated an open lead
	// instead of creating a new row.
	Merged bool
}

func newLeadInfo(l *lead.Lead, merged bool) *LeadInfo {
	return &LeadInfo{
		ID:              l.ID,
		FirstName:       l.FirstName,
		LastName:        l.LastName,
		Email:           l.Email,
		Phone:           l.Phone,
		Source:          l.Source,
		Status:          l.Status,
		Message:         l.Message,
		AssignedTo:      l.AssignedTo,
		ConvertedUserID: l.ConvertedUserID,
		ContactedAt:     l.ContactedAt,
		ConvertedAt:     l.ConvertedAt,
		LostReason:      l.LostReason,
		CreatedAt:       l.CreatedAt,
		UpdatedAt:       l.UpdatedAt,
		Merged:          merged,
	}
}

// ListInput contains filter parameters for lead listing
type ListInput struct {
	Status     lead.LeadStatus // empty = all
	AssignedTo *uuid.UUID
	Search     string
	Page       int
	PageSize   int
}

// AssignInput assigns a lead to a preparer
type AssignInput struct {
	LeadID     uuid.UUID
	PreparerID uuid.UUID
}

// MarkLostInput closes a lead without conversion
type MarkLostInput struct {
	LeadID uuid.UUID
	Reason string
}

// ConvertInput converts a qualified lead into a client account
type ConvertInput struct {
	LeadID   uuid.UUID
	Password string // empty generates a random one-time password
}

// ConvertResult reports the conversion outcome
type ConvertResult struct {
	Lead   LeadInfo
	UserID uuid.UUID
	// AlreadyConverted is true for idempotent retries
	AlreadyConverted bool
}

// FunnelCounts is the lead pipeline broken out by status
type FunnelCounts struct {
	New       int64
	Contacted int64
	Qualified int64
	Converted int64
	Lost      int64
}
