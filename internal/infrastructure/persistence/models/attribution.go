package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/taxpilot/backend/internal/domain/attribution"
	"github.com/taxpilot/backend/internal/domain/shared"
)

// AttributionRecordModel is the persistence model for attribution records.
// The unique index on ClientID is what makes the first-touch lock hold
// under concurrent signups.
type AttributionRecordModel struct {
	AggregateModel
	ClientID       uuid.UUID          `gorm:"type:uuid;not null;uniqueIndex"`
	ReferrerID     *uuid.UUID         `gorm:"type:uuid;index"`
	TrackingCode   string             `gorm:"type:varchar(16);index"`
	Method         attribution.Method `gorm:"type:varchar(10);not null"`
	CommissionRate decimal.Decimal    `gorm:"type:decimal(5,4);not null;default:0"`
	LockedAt       time.Time          `gorm:"not null"`
}

// TableName returns the table name for GORM
func (AttributionRecordModel) TableName() string {
	return "attribution_records"
}

// ToDomain converts the persistence model to a domain Record entity.
func (m *AttributionRecordModel) ToDomain() *attribution.Record {
	return &attribution.Record{
		BaseAggregateRoot: shared.BaseAggregateRoot{
			BaseEntity: shared.BaseEntity{
				ID:        m.ID,
				CreatedAt: m.CreatedAt,
				UpdatedAt: m.UpdatedAt,
			},
			Version: m.Version,
		},
		ClientID:       m.ClientID,
		ReferrerID:     m.ReferrerID,
		TrackingCode:   m.TrackingCode,
		Method:         m.Method,
		CommissionRate: m.CommissionRate,
		LockedAt:       m.LockedAt,
	}
}

// FromDomain populates the persistence model from a domain Record entity.
func (m *AttributionRecordModel) FromDomain(r *attribution.Record) {
	m.FromDomainAggregateRoot(r.BaseAggregateRoot)
	m.ClientID = r.ClientID
	m.ReferrerID = r.ReferrerID
	m.TrackingCode = r.TrackingCode
	m.Method = r.Method
	m.CommissionRate = r.CommissionRate
	m.LockedAt = r.LockedAt
}

// AttributionRecordModelFromDomain creates a new persistence model from a domain Record.
func AttributionRecordModelFromDomain(r *attribution.Record) *AttributionRecordModel {
	m := &AttributionRecordModel{}
	m.FromDomain(r)
	return m
}
