package attribution

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/taxpilot/backend/internal/domain/shared"
)

// Method describes how a client was matched to a referrer, in
// descending order of confidence.
type Method string

const (
	MethodCookie Method = "cookie"
	MethodEmail  Method = "email"
	MethodPhone  Method = "phone"
	MethodDirect Method = "direct"
)

// methodPriority orders methods from strongest to weakest signal.
var methodPriority = map[Method]int{
	MethodCookie: 0,
	MethodEmail:  1,
	MethodPhone:  2,
	MethodDirect: 3,
}

// StrongerThan reports whether m is a higher-confidence signal than other.
func (m Method) StrongerThan(other Method) bool {
	return methodPriority[m] < methodPriority[other]
}

// Record is the aggregate root tying a client to the referrer who gets
// credit for them. First touch wins: once a record exists for a client
// it is never reassigned, and the commission rate is frozen at the rate
// the referrer carried when the lock happened.
type Record struct {
	shared.BaseAggregateRoot
	ClientID       uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex"`
	ReferrerID     *uuid.UUID      `gorm:"type:uuid;index"`
	TrackingCode   string          `gorm:"type:varchar(16);index"`
	Method         Method          `gorm:"type:varchar(10);not null"`
	CommissionRate decimal.Decimal `gorm:"type:decimal(5,4);not null;default:0"`
	LockedAt       time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (Record) TableName() string {
	return "attribution_records"
}

// NewRecord locks an attribution for a client. A nil referrer with
// MethodDirect records an unattributed signup so later touches cannot
// claim it either.
func NewRecord(clientID uuid.UUID, referrerID *uuid.UUID, trackingCode string, method Method, commissionRate decimal.Decimal) (*Record, error) {
	if clientID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CLIENT", "Client ID is required")
	}
	if _, ok := methodPriority[method]; !ok {
		return nil, shared.NewDomainError("INVALID_METHOD", "Invalid attribution method")
	}
	if method != MethodDirect && referrerID == nil {
		return nil, shared.NewDomainError("INVALID_REFERRER", "Referrer is required for attributed signups")
	}
	if method == MethodDirect && referrerID != nil {
		return nil, shared.NewDomainError("INVALID_METHOD", "Direct signups cannot carry a referrer")
	}
	if commissionRate.IsNegative() || commissionRate.GreaterThan(decimal.NewFromInt(1)) {
		return nil, shared.NewDomainError("INVALID_COMMISSION_RATE", "Commission rate must be between 0 and 1")
	}

	rec := &Record{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		ClientID:          clientID,
		ReferrerID:        referrerID,
		TrackingCode:      trackingCode,
		Method:            method,
		CommissionRate:    commissionRate,
		LockedAt:          time.Now(),
	}

	rec.AddDomainEvent(NewAttributionLockedEvent(rec))

	return rec, nil
}

// IsAttributed returns true when a referrer got credit
func (r *Record) IsAttributed() bool {
	return r.ReferrerID != nil
}
