package product

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/technexus/storefront-backend/internal/pkg/apperror"
)

func TestEffectivePrice(t *testing.T) {
	p := Product{Price: decimal.NewFromInt(1000)}
	assert.True(t, p.EffectivePrice().Equal(decimal.NewFromInt(1000)))

	p.DiscountPrice = decimal.NewNullDecimal(decimal.NewFromInt(800))
	assert.True(t, p.EffectivePrice().Equal(decimal.NewFromInt(800)))

	// A discount price is used even when it is not lower.
	p.DiscountPrice = decimal.NewNullDecimal(decimal.NewFromInt(1200))
	assert.True(t, p.EffectivePrice().Equal(decimal.NewFromInt(1200)))
}

func TestHasStock(t *testing.T) {
	p := Product{Stock: 2}
	assert.True(t, p.HasStock(2))
	assert.False(t, p.HasStock(3))
	assert.False(t, p.HasStock(0))
	assert.True(t, p.IsInStock())
}

func TestOrderClause(t *testing.T) {
	assert.Equal(t, "price ASC", OrderClause("price_asc"))
	assert.Equal(t, "price DESC", OrderClause("price_desc"))
	assert.Equal(t, "name ASC", OrderClause("name"))
	assert.Equal(t, "created_at DESC", OrderClause("price; DROP TABLE products"))
}

func TestProductRequestApply(t *testing.T) {
	price := decimal.RequireFromString("1999.999")
	discount := decimal.RequireFromString("1500")
	stock := 7
	req := ProductRequest{
		Name:           "  Laptop  ",
		Price:          &price,
		DiscountPrice:  &discount,
		Stock:          &stock,
		Images:         []string{"/uploads/products/a.png"},
		Specifications: json.RawMessage(`{"ram":"16GB"}`),
		IsFeatured:     true,
	}

	var p Product
	require.NoError(t, req.apply(&p))
	assert.Equal(t, "Laptop", p.Name)
	assert.Equal(t, "2000", p.Price.String())
	assert.True(t, p.DiscountPrice.Valid)
	assert.Equal(t, 7, p.Stock)
	assert.JSONEq(t, `{"ram":"16GB"}`, string(p.Specifications))
	assert.True(t, p.IsFeatured)
}

func TestProductRequestApplyRejectsNegativePrice(t *testing.T) {
	price := decimal.NewFromInt(-1)
	err := (&ProductRequest{Name: "x", Price: &price}).apply(&Product{})
	assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))

	err = (&ProductRequest{Name: "x"}).apply(&Product{})
	assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))
}

func TestProductRequestApplyRejectsBadSpecifications(t *testing.T) {
	price := decimal.NewFromInt(1)
	err := (&ProductRequest{Name: "x", Price: &price, Specifications: json.RawMessage(`{bad`)}).apply(&Product{})
	assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))
}
