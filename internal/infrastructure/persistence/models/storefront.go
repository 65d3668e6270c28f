package models

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/taxpilot/backend/internal/domain/shared"
	"github.com/taxpilot/backend/internal/domain/storefront"
)

// PrintProductModel is the persistence model for the PrintProduct aggregate.
type PrintProductModel struct {
	AggregateModel
	Name        string                  `gorm:"type:varchar(200);not null"`
	Slug        string                  `gorm:"type:varchar(100);not null;uniqueIndex"`
	Description string                  `gorm:"type:text"`
	Active      bool                    `gorm:"not null;default:true"`
	Tiers       []QuantityTierModel     `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	Papers      []PaperStockModel       `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	Turnarounds []TurnaroundOptionModel `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	AddOns      []AddOnModel            `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
}

// TableName returns the table name for GORM
func (PrintProductModel) TableName() string {
	return "print_products"
}

// QuantityTierModel is the persistence model for quantity tiers.
type QuantityTierModel struct {
	BaseModel
	ProductID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	MinQuantity int             `gorm:"not null"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(12,4);not null"`
}

// TableName returns the table name for GORM
func (QuantityTierModel) TableName() string {
	return "quantity_tiers"
}

// PaperStockModel is the persistence model for paper stocks.
type PaperStockModel struct {
	BaseModel
	ProductID  uuid.UUID       `gorm:"type:uuid;not null;index"`
	Code       string          `gorm:"type:varchar(50);not null"`
	Name       string          `gorm:"type:varchar(100);not null"`
	Multiplier decimal.Decimal `gorm:"type:decimal(6,4);not null;default:1"`
}

// TableName returns the table name for GORM
func (PaperStockModel) TableName() string {
	return "paper_stocks"
}

// TurnaroundOptionModel is the persistence model for turnaround options.
type TurnaroundOptionModel struct {
	BaseModel
	ProductID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	Code         string          `gorm:"type:varchar(50);not null"`
	Name         string          `gorm:"type:varchar(100);not null"`
	BusinessDays int             `gorm:"not null"`
	Multiplier   decimal.Decimal `gorm:"type:decimal(6,4);not null;default:1"`
}

// TableName returns the table name for GORM
func (TurnaroundOptionModel) TableName() string {
	return "turnaround_options"
}

// AddOnModel is the persistence model for add-ons.
type AddOnModel struct {
	BaseModel
	ProductID uuid.UUID `gorm:"type:uuid;not null;index"`
	Code      string    `gorm:"type:varchar(50);not null"`
	Name      string    `gorm:"type:varchar(100);not null"`
	Formula   string    `gorm:"type:varchar(500);not null"`
}

// TableName returns the table name for GORM
func (AddOnModel) TableName() string {
	return "add_ons"
}

// ToDomain converts the persistence model to a domain PrintProduct aggregate.
func (m *PrintProductModel) ToDomain() *storefront.PrintProduct {
	p := &storefront.PrintProduct{
		BaseAggregateRoot: shared.BaseAggregateRoot{
			BaseEntity: shared.BaseEntity{
				ID:        m.ID,
				CreatedAt: m.CreatedAt,
				UpdatedAt: m.UpdatedAt,
			},
			Version: m.Version,
		},
		Name:        m.Name,
		Slug:        m.Slug,
		Description: m.Description,
		Active:      m.Active,
	}

	for _, t := range m.Tiers {
		p.Tiers = append(p.Tiers, storefront.QuantityTier{
			BaseEntity:  t.BaseModel.ToDomain(),
			ProductID:   t.ProductID,
			MinQuantity: t.MinQuantity,
			UnitPrice:   t.UnitPrice,
		})
	}
	for _, ps := range m.Papers {
		p.Papers = append(p.Papers, storefront.PaperStock{
			BaseEntity: ps.BaseModel.ToDomain(),
			ProductID:  ps.ProductID,
			Code:       ps.Code,
			Name:       ps.Name,
			Multiplier: ps.Multiplier,
		})
	}
	for _, to := range m.Turnarounds {
		p.Turnarounds = append(p.Turnarounds, storefront.TurnaroundOption{
			BaseEntity:   to.BaseModel.ToDomain(),
			ProductID:    to.ProductID,
			Code:         to.Code,
			Name:         to.Name,
			BusinessDays: to.BusinessDays,
			Multiplier:   to.Multiplier,
		})
	}
	for _, a := range m.AddOns {
		p.AddOns = append(p.AddOns, storefront.AddOn{
			BaseEntity: a.BaseModel.ToDomain(),
			ProductID:  a.ProductID,
			Code:       a.Code,
			Name:       a.Name,
			Formula:    a.Formula,
		})
	}

	return p
}

// FromDomain populates the persistence model from a domain PrintProduct aggregate.
func (m *PrintProductModel) FromDomain(p *storefront.PrintProduct) {
	m.FromDomainAggregateRoot(p.BaseAggregateRoot)
	m.Name = p.Name
	m.Slug = p.Slug
	m.Description = p.Description
	m.Active = p.Active

	m.Tiers = m.Tiers[:0]
	for _, t := range p.Tiers {
		tm := QuantityTierModel{
			ProductID:   t.ProductID,
			MinQuantity: t.MinQuantity,
			UnitPrice:   t.UnitPrice,
		}
		tm.FromDomainBaseEntity(t.BaseEntity)
		m.Tiers = append(m.Tiers, tm)
	}
	m.Papers = m.Papers[:0]
	for _, ps := range p.Papers {
		pm := PaperStockModel{
			ProductID:  ps.ProductID,
			Code:       ps.Code,
			Name:       ps.Name,
			Multiplier: ps.Multiplier,
		}
		pm.FromDomainBaseEntity(ps.BaseEntity)
		m.Papers = append(m.Papers, pm)
	}
	m.Turnarounds = m.Turnarounds[:0]
	for _, to := range p.Turnarounds {
		tm := TurnaroundOptionModel{
			ProductID:    to.ProductID,
			Code:         to.Code,
			Name:         to.Name,
			BusinessDays: to.BusinessDays,
			Multiplier:   to.Multiplier,
		}
		tm.FromDomainBaseEntity(to.BaseEntity)
		m.Turnarounds = append(m.Turnarounds, tm)
	}
	m.AddOns = m.AddOns[:0]
	for _, a := range p.AddOns {
		am := AddOnModel{
			ProductID: a.ProductID,
			Code:      a.Code,
			Name:      a.Name,
			Formula:   a.Formula,
		}
		am.FromDomainBaseEntity(a.BaseEntity)
		m.AddOns = append(m.AddOns, am)
	}
}

// PrintProductModelFromDomain creates a new persistence model from a domain PrintProduct.
func PrintProductModelFromDomain(p *storefront.PrintProduct) *PrintProductModel {
	m := &PrintProductModel{}
	m.FromDomain(p)
	return m
}
