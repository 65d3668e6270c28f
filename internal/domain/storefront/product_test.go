package storefront

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestProduct(t *testing.T) *PrintProduct {
	t.Helper()
	p, err := NewPrintProduct("Business Cards", "business-cards", "")
	require.NoError(t, err)
	return p
}

func TestNewPrintProduct(t *testing.T) {
	p := newTestProduct(t)
	assert.True(t, p.Active)

	_, err := NewPrintProduct("", "slug", "")
	assert.Error(t, err)

	_, err = NewPrintProduct("Flyers", "Not A Slug!", "")
	assert.Error(t, err)
}

func TestPrintProduct_TierFor(t *testing.T) {
	p := newTestProduct(t)
	require.NoError(t, p.AddTier(1, decimal.NewFromFloat(0.50)))
	require.NoError(t, p.AddTier(250, decimal.NewFromFloat(0.20)))
	require.NoError(t, p.AddTier(1000, decimal.NewFromFloat(0.10)))

	tier, err := p.TierFor(100)
	require.NoError(t, err)
	assert.Equal(t, 1, tier.MinQuantity)

	tier, err = p.TierFor(250)
	require.NoError(t, err)
	assert.Equal(t, 250, tier.MinQuantity)

	tier, err = p.TierFor(5000)
	require.NoError(t, err)
	assert.Equal(t, 1000, tier.MinQuantity)
}

func TestPrintProduct_TierFor_NoCoverage(t *testing.T) {
	p := newTestProduct(t)
	require.NoError(t, p.AddTier(100, decimal.NewFromFloat(0.25)))

	_, err := p.TierFor(50)
	assert.Error(t, err)
}

func TestPrintProduct_DuplicateOptions(t *testing.T) {
	p := newTestProduct(t)

	require.NoError(t, p.AddTier(1, decimal.NewFromFloat(0.50)))
	assert.Error(t, p.AddTier(1, decimal.NewFromFloat(0.60)))

	require.NoError(t, p.AddPaper("gloss", "Gloss 100lb", decimal.NewFromFloat(1.2)))
	assert.Error(t, p.AddPaper("gloss", "Gloss again", decimal.NewFromInt(1)))

	require.NoError(t, p.AddTurnaround("rush", "Next Day", 1, decimal.NewFromFloat(1.5)))
	assert.Error(t, p.AddTurnaround("rush", "Rush again", 1, decimal.NewFromInt(1)))

	require.NoError(t, p.AddAddOn("rounded", "Rounded Corners", "quantity * 0.01"))
	assert.Error(t, p.AddAddOn("rounded", "Rounded again", "5.0"))
}

func TestPrintProduct_InvalidOptions(t *testing.T) {
	p := newTestProduct(t)

	assert.Error(t, p.AddTier(0, decimal.NewFromFloat(0.50)))
	assert.Error(t, p.AddTier(1, decimal.Zero))
	assert.Error(t, p.AddPaper("matte", "Matte", decimal.Zero))
	assert.Error(t, p.AddTurnaround("std", "Standard", -1, decimal.NewFromInt(1)))
	assert.Error(t, p.AddAddOn("x", "X", ""))
}

func TestQuoteRequest_Validate(t *testing.T) {
	req := QuoteRequest{
		ProductSlug:    "business-cards",
		Quantity:       500,
		PaperCode:      "gloss",
		TurnaroundCode: "std",
	}
	assert.NoError(t, req.Validate())

	bad := req
	bad.Quantity = 0
	assert.Error(t, bad.Validate())

	bad = req
	bad.BrokerDiscount = decimal.NewFromFloat(0.6)
	assert.Error(t, bad.Validate())

	bad = req
	bad.PaperCode = ""
	assert.Error(t, bad.Validate())
}
