package storefront

import (
	"context"
	"sync"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/taxpilot/backend/internal/domain/shared"
	"github.com/taxpilot/backend/internal/domain/storefront"
	"github.com/taxpilot/backend/internal/infrastructure/telemetry"
)

// moneyScale is the working precision for intermediate amounts. Totals
// are rounded to cents only at the very end.
const moneyScale = 4

// PricingService prices quote requests against the product catalog.
// Unit price is the tier price times the paper and turnaround
// multipliers; add-ons are priced by their formulas; the broker
// discount comes off last.
type PricingService struct {
	productRepo storefront.PrintProductRepository
	metrics     *telemetry.BusinessMetrics
	logger      *zap.Logger

	// compiled add-on formulas keyed by formula text
	programs sync.Map
}

// NewPricingService creates a new pricing service
func NewPricingService(
	productRepo storefront.PrintProductRepository,
	metrics *telemetry.BusinessMetrics,
	logger *zap.Logger,
) *PricingService {
	return &PricingService{
		productRepo: productRepo,
		metrics:     metrics,
		logger:      logger,
	}
}

// Quote prices a request and returns the itemized breakdown
func (s *PricingService) Quote(ctx context.Context, input QuoteInput) (*storefront.Quote, error) {
	req := storefront.QuoteRequest{
		ProductSlug:    input.ProductSlug,
		Quantity:       input.Quantity,
		PaperCode:      input.PaperCode,
		TurnaroundCode: input.TurnaroundCode,
		AddOnCodes:     input.AddOnCodes,
		BrokerDiscount: input.BrokerDiscount,
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	product, err := s.productRepo.FindBySlug(ctx, req.ProductSlug)
	if err != nil {
		if err == shared.ErrNotFound {
			return nil, shared.NewDomainError("PRODUCT_NOT_FOUND", "Product not found")
		}
		s.logger.Error("Failed to load product", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to price quote")
	}
	if !product.Active {
		return nil, shared.NewDomainError("PRODUCT_INACTIVE", "Product is not available")
	}

	tier, err := product.TierFor(req.Quantity)
	if err != nil {
		return nil, err
	}
	paper, err := product.PaperByCode(req.PaperCode)
	if err != nil {
		return nil, err
	}
	turnaround, err := product.TurnaroundByCode(req.TurnaroundCode)
	if err != nil {
		return nil, err
	}

	unit := tier.UnitPrice.
		Mul(paper.Multiplier).
		Mul(turnaround.Multiplier).
		Round(moneyScale)
	subtotal := unit.Mul(decimal.NewFromInt(int64(req.Quantity))).Round(moneyScale)

	charges := make([]storefront.AddOnCharge, 0, len(req.AddOnCodes))
	addOnTotal := decimal.Zero
	for _, code := range req.AddOnCodes {
		addOn, err := product.AddOnByCode(code)
		if err != nil {
			return nil, err
		}
		amount, err := s.evalFormula(addOn.Formula, req.Quantity, unit, subtotal)
		if err != nil {
			s.logger.Warn("Add-on formula failed",
				zap.String("product_slug", product.Slug),
				zap.String("add_on", addOn.Code),
				zap.Error(err))
			return nil, shared.NewDomainError("INVALID_FORMULA", "Add-on pricing formula is invalid")
		}
		charges = append(charges, storefront.AddOnCharge{
			Code:   addOn.Code,
			Name:   addOn.Name,
			Amount: amount,
		})
		addOnTotal = addOnTotal.Add(amount)
	}

	preDiscount := subtotal.Add(addOnTotal)
	discountAmount := preDiscount.Mul(req.BrokerDiscount).Round(moneyScale)
	total := preDiscount.Sub(discountAmount).Round(2)

	quote := &storefront.Quote{
		ProductSlug:    product.Slug,
		Quantity:       req.Quantity,
		UnitPrice:      unit,
		Subtotal:       subtotal,
		AddOns:         charges,
		AddOnTotal:     addOnTotal,
		DiscountRate:   req.BrokerDiscount,
		DiscountAmount: discountAmount,
		Total:          total,
		BusinessDays:   turnaround.BusinessDays,
	}

	s.metrics.RecordQuotePriced(ctx, product.Slug)
	s.logger.Info("Quote priced",
		zap.String("product_slug", product.Slug),
		zap.Int("quantity", req.Quantity),
		zap.String("total", total.String()))

	return quote, nil
}

// evalFormula runs an add-on formula against the quote environment. A
// formula that fails to compile, run, or yield a non-negative number
// is an error, never a silent zero.
func (s *PricingService) evalFormula(formula string, quantity int, unit, subtotal decimal.Decimal) (decimal.Decimal, error) {
	program, err := s.compile(formula)
	if err != nil {
		return decimal.Zero, err
	}

	env := map[string]interface{}{
		"quantity":   quantity,
		"unit_price": unit.InexactFloat64(),
		"subtotal":   subtotal.InexactFloat64(),
	}
	out, err := expr.Run(program, env)
	if err != nil {
		return decimal.Zero, err
	}

	result, ok := out.(float64)
	if !ok {
		return decimal.Zero, shared.NewDomainError("INVALID_FORMULA", "Formula must yield a number")
	}
	amount := decimal.NewFromFloat(result).Round(moneyScale)
	if amount.IsNegative() {
		return decimal.Zero, shared.NewDomainError("INVALID_FORMULA", "Formula must yield a non-negative amount")
	}
	return amount, nil
}

func (s *PricingService) compile(formula string) (*vm.Program, error) {
	if cached, ok := s.programs.Load(formula); ok {
		return cached.(*vm.Program), nil
	}
	program, err := expr.Compile(formula,
		expr.Env(map[string]interface{}{
			"quantity":   0,
			"unit_price": 0.0,
			"subtotal":   0.0,
		}),
		expr.AsFloat64(),
	)
	if err != nil {
		return nil, err
	}
	s.programs.Store(formula, program)
	return program, nil
}
