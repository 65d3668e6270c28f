package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/taxpilot/backend/internal/domain/identity"
	"github.com/taxpilot/backend/internal/domain/shared"
)

// UserModel is the persistence model for the User domain entity.
type UserModel struct {
	AggregateModel
	Email          string              `gorm:"type:varchar(200);not null;uniqueIndex"`
	PasswordHash   string              `gorm:"type:varchar(200);not null"`
	FirstName      string              `gorm:"type:varchar(100);not null"`
	LastName       string              `gorm:"type:varchar(100);not null"`
	Phone          string              `gorm:"type:varchar(50);index"`
	Role           identity.UserRole   `gorm:"type:varchar(20);not null;default:'client'"`
	Status         identity.UserStatus `gorm:"type:varchar(20);not null;default:'active'"`
	TrackingCode   *string             `gorm:"type:varchar(16);uniqueIndex"`
	CommissionRate decimal.Decimal     `gorm:"type:decimal(5,4);not null;default:0"`
	LastLoginAt    *time.Time
}

// TableName returns the table name for GORM
func (UserModel) TableName() string {
	return "users"
}

// ToDomain converts the persistence model to a domain User entity.
func (m *UserModel) ToDomain() *identity.User {
	trackingCode := ""
	if m.TrackingCode != nil {
		trackingCode = *m.TrackingCode
	}
	return &identity.User{
		BaseAggregateRoot: shared.BaseAggregateRoot{
			BaseEntity: shared.BaseEntity{
				ID:        m.ID,
				CreatedAt: m.CreatedAt,
				UpdatedAt: m.UpdatedAt,
			},
			Version: m.Version,
		},
		Email:          m.Email,
		PasswordHash:   m.PasswordHash,
		FirstName:      m.FirstName,
		LastName:       m.LastName,
		Phone:          m.Phone,
		Role:           m.Role,
		Status:         m.Status,
		TrackingCode:   trackingCode,
		CommissionRate: m.CommissionRate,
		LastLoginAt:    m.LastLoginAt,
	}
}

// FromDomain populates the persistence model from a domain User entity.
func (m *UserModel) FromDomain(u *identity.User) {
	m.FromDomainAggregateRoot(u.BaseAggregateRoot)
	m.Email = u.Email
	m.PasswordHash = u.PasswordHash
	m.FirstName = u.FirstName
	m.LastName = u.LastName
	m.Phone = u.Phone
	m.Role = u.Role
	m.Status = u.Status
	// Empty tracking codes persist as NULL so the unique index only
	// applies to assigned codes.
	if u.TrackingCode != "" {
		code := u.TrackingCode
		m.TrackingCode = &code
	} else {
		m.TrackingCode = nil
	}
	m.CommissionRate = u.CommissionRate
	m.LastLoginAt = u.LastLoginAt
}

// UserModelFromDomain creates a new persistence model from a domain User entity.
func UserModelFromDomain(u *identity.User) *UserModel {
	m := &UserModel{}
	m.FromDomain(u)
	return m
}
