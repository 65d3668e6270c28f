package storefront

import (
	"regexp"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/taxpilot/backend/internal/domain/shared"
)

var slugRegex = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// PrintProduct is the aggregate root for a configurable print item in
// the storefront. Its children define the pricing axes: quantity tiers
// set the base unit price, paper stocks and turnaround options apply
// multipliers, and add-ons contribute formula-priced extras.
type PrintProduct struct {
	shared.BaseAggregateRoot
	Name        string             `gorm:"type:varchar(200);not null"`
	Slug        string             `gorm:"type:varchar(100);not null;uniqueIndex"`
	Description string             `gorm:"type:text"`
	Active      bool               `gorm:"not null;default:true"`
	Tiers       []QuantityTier     `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	Papers      []PaperStock       `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	Turnarounds []TurnaroundOption `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	AddOns      []AddOn            `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
}

// TableName returns the table name for GORM
func (PrintProduct) TableName() string {
	return "print_products"
}

// QuantityTier maps an order quantity range to a unit price. A tier
// applies to quantities >= MinQuantity up to the next tier's minimum.
type QuantityTier struct {
	shared.BaseEntity
	ProductID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	MinQuantity int             `gorm:"not null"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(12,4);not null"`
}

// TableName returns the table name for GORM
func (QuantityTier) TableName() string {
	return "quantity_tiers"
}

// PaperStock is a paper choice with a price multiplier
type PaperStock struct {
	shared.BaseEntity
	ProductID  uuid.UUID       `gorm:"type:uuid;not null;index"`
	Code       string          `gorm:"type:varchar(50);not null"`
	Name       string          `gorm:"type:varchar(100);not null"`
	Multiplier decimal.Decimal `gorm:"type:decimal(6,4);not null;default:1"`
}

// TableName returns the table name for GORM
func (PaperStock) TableName() string {
	return "paper_stocks"
}

// TurnaroundOption is a production-speed choice with a price multiplier
type TurnaroundOption struct {
	shared.BaseEntity
	ProductID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	Code         string          `gorm:"type:varchar(50);not null"`
	Name         string          `gorm:"type:varchar(100);not null"`
	BusinessDays int             `gorm:"not null"`
	Multiplier   decimal.Decimal `gorm:"type:decimal(6,4);not null;default:1"`
}

// TableName returns the table name for GORM
func (TurnaroundOption) TableName() string {
	return "turnaround_options"
}

// AddOn is an optional extra priced by an expression evaluated against
// the quote. The formula sees quantity, unit_price and subtotal and
// must yield a non-negative number.
type AddOn struct {
	shared.BaseEntity
	ProductID uuid.UUID `gorm:"type:uuid;not null;index"`
	Code      string    `gorm:"type:varchar(50);not null"`
	Name      string    `gorm:"type:varchar(100);not null"`
	Formula   string    `gorm:"type:varchar(500);not null"`
}

// TableName returns the table name for GORM
func (AddOn) TableName() string {
	return "add_ons"
}

// NewPrintProduct creates an empty active product
func NewPrintProduct(name, slug, description string) (*PrintProduct, error) {
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Product name is required")
	}
	if !slugRegex.MatchString(slug) {
		return nil, shared.NewDomainError("INVALID_SLUG", "Slug must be lowercase letters, digits and hyphens")
	}

	return &PrintProduct{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
		Slug:              slug,
		Description:       description,
		Active:            true,
	}, nil
}

// AddTier appends a quantity tier. Minimum quantities must be unique
// within a product.
func (p *PrintProduct) AddTier(minQuantity int, unitPrice decimal.Decimal) error {
	if minQuantity < 1 {
		return shared.NewDomainError("INVALID_TIER", "Tier minimum quantity must be at least 1")
	}
	if unitPrice.IsNegative() || unitPrice.IsZero() {
		return shared.NewDomainError("INVALID_TIER", "Tier unit price must be positive")
	}
	for _, t := range p.Tiers {
		if t.MinQuantity == minQuantity {
			return shared.NewDomainError("DUPLICATE_TIER", "A tier with this minimum quantity already exists")
		}
	}

	p.Tiers = append(p.Tiers, QuantityTier{
		BaseEntity:  shared.NewBaseEntity(),
		ProductID:   p.ID,
		MinQuantity: minQuantity,
		UnitPrice:   unitPrice,
	})
	p.touch()
	return nil
}

// AddPaper appends a paper stock option
func (p *PrintProduct) AddPaper(code, name string, multiplier decimal.Decimal) error {
	if code == "" || name == "" {
		return shared.NewDomainError("INVALID_PAPER", "Paper code and name are required")
	}
	if multiplier.IsNegative() || multiplier.IsZero() {
		return shared.NewDomainError("INVALID_PAPER", "Paper multiplier must be positive")
	}
	for _, ps := range p.Papers {
		if ps.Code == code {
			return shared.NewDomainError("DUPLICATE_PAPER", "A paper with this code already exists")
		}
	}

	p.Papers = append(p.Papers, PaperStock{
		BaseEntity: shared.NewBaseEntity(),
		ProductID:  p.ID,
		Code:       code,
		Name:       name,
		Multiplier: multiplier,
	})
	p.touch()
	return nil
}

// AddTurnaround appends a turnaround option
func (p *PrintProduct) AddTurnaround(code, name string, businessDays int, multiplier decimal.Decimal) error {
	if code == "" || name == "" {
		return shared.NewDomainError("INVALID_TURNAROUND", "Turnaround code and name are required")
	}
	if businessDays < 0 {
		return shared.NewDomainError("INVALID_TURNAROUND", "Business days cannot be negative")
	}
	if multiplier.IsNegative() || multiplier.IsZero() {
		return shared.NewDomainError("INVALID_TURNAROUND", "Turnaround multiplier must be positive")
	}
	for _, t := range p.Turnarounds {
		if t.Code == code {
			return shared.NewDomainError("DUPLICATE_TURNAROUND", "A turnaround with this code already exists")
		}
	}

	p.Turnarounds = append(p.Turnarounds, TurnaroundOption{
		BaseEntity:   shared.NewBaseEntity(),
		ProductID:    p.ID,
		Code:         code,
		Name:         name,
		BusinessDays: businessDays,
		Multiplier:   multiplier,
	})
	p.touch()
	return nil
}

// AddAddOn appends a formula-priced extra
func (p *PrintProduct) AddAddOn(code, name, formula string) error {
	if code == "" || name == "" {
		return shared.NewDomainError("INVALID_ADDON", "Add-on code and name are required")
	}
	if formula == "" {
		return shared.NewDomainError("INVALID_ADDON", "Add-on formula is required")
	}
	for _, a := range p.AddOns {
		if a.Code == code {
			return shared.NewDomainError("DUPLICATE_ADDON", "An add-on with this code already exists")
		}
	}

	p.AddOns = append(p.AddOns, AddOn{
		BaseEntity: shared.NewBaseEntity(),
		ProductID:  p.ID,
		Code:       code,
		Name:       name,
		Formula:    formula,
	})
	p.touch()
	return nil
}

// TierFor selects the tier whose range covers the given quantity
func (p *PrintProduct) TierFor(quantity int) (*QuantityTier, error) {
	var best *QuantityTier
	for i := range p.Tiers {
		t := &p.Tiers[i]
		if quantity >= t.MinQuantity && (best == nil || t.MinQuantity > best.MinQuantity) {
			best = t
		}
	}
	if best == nil {
		return nil, shared.NewDomainError("NO_TIER", "No price tier covers this quantity")
	}
	return best, nil
}

// PaperByCode finds a paper stock option
func (p *PrintProduct) PaperByCode(code string) (*PaperStock, error) {
	for i := range p.Papers {
		if p.Papers[i].Code == code {
			return &p.Papers[i], nil
		}
	}
	return nil, shared.NewDomainError("UNKNOWN_PAPER", "Unknown paper stock")
}

// TurnaroundByCode finds a turnaround option
func (p *PrintProduct) TurnaroundByCode(code string) (*TurnaroundOption, error) {
	for i := range p.Turnarounds {
		if p.Turnarounds[i].Code == code {
			return &p.Turnarounds[i], nil
		}
	}
	return nil, shared.NewDomainError("UNKNOWN_TURNAROUND", "Unknown turnaround option")
}

// AddOnByCode finds an add-on
func (p *PrintProduct) AddOnByCode(code string) (*AddOn, error) {
	for i := range p.AddOns {
		if p.AddOns[i].Code == code {
			return &p.AddOns[i], nil
		}
	}
	return nil, shared.NewDomainError("UNKNOWN_ADDON", "Unknown add-on")
}

// Activate puts the product back on sale
func (p *PrintProduct) Activate() {
	p.Active = true
	p.touch()
}

// Deactivate takes the product off sale without deleting its pricing
func (p *PrintProduct) Deactivate() {
	p.Active = false
	p.touch()
}

func (p *PrintProduct) touch() {
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
}
