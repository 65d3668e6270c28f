package storefront

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/taxpilot/backend/internal/domain/storefront"
)

// CreateProductInput creates a product with its pricing axes in one shot
type CreateProductInput struct {
	Name        string            `json:"name" binding:"required"`
	Slug        string            `json:"slug" binding:"required"`
	Description string            `json:"description"`
	Tiers       []TierInput       `json:"tiers" binding:"required,min=1"`
	Papers      []PaperInput      `json:"papers" binding:"required,min=1"`
	Turnarounds []TurnaroundInput `json:"turnarounds" binding:"required,min=1"`
	AddOns      []AddOnInput      `json:"add_ons"`
}

// TierInput is one quantity tier
type TierInput struct {
	MinQuantity int             `json:"min_quantity" binding:"required"`
	UnitPrice   decimal.Decimal `json:"unit_price" binding:"required"`
}

// PaperInput is one paper stock
type PaperInput struct {
	Code       string          `json:"code" binding:"required"`
	Name       string          `json:"name" binding:"required"`
	Multiplier decimal.Decimal `json:"multiplier" binding:"required"`
}

// TurnaroundInput is one turnaround option
type TurnaroundInput struct {
	Code         string          `json:"code" binding:"required"`
	Name         string          `json:"name" binding:"required"`
	BusinessDays int             `json:"business_days"`
	Multiplier   decimal.Decimal `json:"multiplier" binding:"required"`
}

// AddOnInput is one formula-priced extra
type AddOnInput struct {
	Code    string `json:"code" binding:"required"`
	Name    string `json:"name" binding:"required"`
	Formula string `json:"formula" binding:"required"`
}

// ProductInfo is the read model for a product
type ProductInfo struct {
	ID          uuid.UUID        `json:"id"`
	Name        string           `json:"name"`
	Slug        string           `json:"slug"`
	Description string           `json:"description,omitempty"`
	Active      bool             `json:"active"`
	Tiers       []TierInfo       `json:"tiers"`
	Papers      []PaperInfo      `json:"papers"`
	Turnarounds []TurnaroundInfo `json:"turnarounds"`
	AddOns      []AddOnInfo      `json:"add_ons"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

// TierInfo is one quantity tier on the read model
type TierInfo struct {
	MinQuantity int             `json:"min_quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
}

// PaperInfo is one paper stock on the read model
type PaperInfo struct {
	Code       string          `json:"code"`
	Name       string          `json:"name"`
	Multiplier decimal.Decimal `json:"multiplier"`
}

// TurnaroundInfo is one turnaround option on the read model
type TurnaroundInfo struct {
	Code         string          `json:"code"`
	Name         string          `json:"name"`
	BusinessDays int             `json:"business_days"`
	Multiplier   decimal.Decimal `json:"multiplier"`
}

// AddOnInfo is one add-on on the read model
type AddOnInfo struct {
	Code    string `json:"code"`
	Name    string `json:"name"`
	Formula string `json:"formula"`
}

func newProductInfo(p *storefront.PrintProduct) *ProductInfo {
	info := &ProductInfo{
		ID:          p.ID,
		Name:        p.Name,
		Slug:        p.Slug,
		Description: p.Description,
		Active:      p.Active,
		Tiers:       make([]TierInfo, 0, len(p.Tiers)),
		Papers:      make([]PaperInfo, 0, len(p.Papers)),
		Turnarounds: make([]TurnaroundInfo, 0, len(p.Turnarounds)),
		AddOns:      make([]AddOnInfo, 0, len(p.AddOns)),
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
	for _, t := range p.Tiers {
		info.Tiers = append(info.Tiers, TierInfo{MinQuantity: t.MinQuantity, UnitPrice: t.UnitPrice})
	}
	for _, ps := range p.Papers {
		info.Papers = append(info.Papers, PaperInfo{Code: ps.Code, Name: ps.Name, Multiplier: ps.Multiplier})
	}
	for _, tu := range p.Turnarounds {
		info.Turnarounds = append(info.Turnarounds, TurnaroundInfo{
			Code: tu.Code, Name: tu.Name, BusinessDays: tu.BusinessDays, Multiplier: tu.Multiplier,
		})
	}
	for _, a := range p.AddOns {
		info.AddOns = append(info.AddOns, AddOnInfo{Code: a.Code, Name: a.Name, Formula: a.Formula})
	}
	return info
}

// ListProductsInput filters the catalog listing
type ListProductsInput struct {
	ActiveOnly bool `form:"active_only"`
	Page       int  `form:"page"`
	PageSize   int  `form:"page_size"`
}

// QuoteInput is the API shape of a quote request
type QuoteInput struct {
	ProductSlug    string          `json:"product_slug" binding:"required"`
	Quantity       int             `json:"quantity" binding:"required"`
	PaperCode      string          `json:"paper_code" binding:"required"`
	TurnaroundCode string          `json:"turnaround_code" binding:"required"`
	AddOnCodes     []string        `json:"add_on_codes"`
	BrokerDiscount decimal.Decimal `json:"broker_discount"`
}
