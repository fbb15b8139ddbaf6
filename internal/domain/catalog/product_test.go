package catalog

import (
	"testing"

	"github.com/bizhub/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newProduct(t *testing.T, qty, threshold int64) *Product {
	t.Helper()
	p, err := NewProduct(uuid.New(), ProductDetails{
		Name:              "Palm Oil 5L",
		SKU:               "po-5l",
		Price:             decimal.RequireFromString("12.499"),
		Cost:              decimal.NewFromInt(9),
		LowStockThreshold: &threshold,
	}, qty)
	require.NoError(t, err)
	return p
}

func TestNewProduct(t *testing.T) {
	p := newProduct(t, 20, 3)
	assert.Equal(t, "PO-5L", p.SKU)
	assert.Equal(t, "12.5", p.Price.String())
	assert.Equal(t, "3.5", p.Margin().String())
	assert.False(t, p.IsLowStock())

	_, err := NewProduct(uuid.New(), ProductDetails{Name: "X"}, -1)
	assert.Error(t, err)

	_, err = NewProduct(uuid.New(), ProductDetails{Name: "X", Price: decimal.NewFromInt(-1)}, 0)
	assert.Error(t, err)

	d, err := NewProduct(uuid.New(), ProductDetails{Name: "Default threshold"}, 10)
	require.NoError(t, err)
	assert.Equal(t, DefaultLowStockThreshold, d.LowStockThreshold)
}

func TestProduct_AdjustStock(t *testing.T) {
	t.Run("removal above threshold records nothing", func(t *testing.T) {
		p := newProduct(t, 10, 3)
		require.NoError(t, p.AdjustStock(-2))
		assert.Equal(t, int64(8), p.Quantity)
		assert.Empty(t, p.GetDomainEvents())
	})

	t.Run("removal into low stock records event", func(t *testing.T) {
		p := newProduct(t, 5, 3)
		require.NoError(t, p.AdjustStock(-2))
		require.Len(t, p.GetDomainEvents(), 1)
		ev := p.GetDomainEvents()[0].(*ProductLowStockEvent)
		assert.Equal(t, int64(3), ev.Quantity)
		assert.Equal(t, p.UserID, ev.OwnerID())
	})

	t.Run("restock never records low stock", func(t *testing.T) {
		p := newProduct(t, 1, 3)
		require.NoError(t, p.AdjustStock(1))
		assert.Empty(t, p.GetDomainEvents())
	})

	t.Run("insufficient stock", func(t *testing.T) {
		p := newProduct(t, 2, 0)
		err := p.AdjustStock(-3)
		assert.ErrorIs(t, err, shared.ErrInsufficientStock)
		assert.Equal(t, int64(2), p.Quantity)
	})
}

func TestProduct_UpdateWithStock(t *testing.T) {
	p := newProduct(t, 10, 3)
	threshold := int64(3)
	d := ProductDetails{Name: "Palm Oil 5L", Price: decimal.NewFromInt(13), LowStockThreshold: &threshold}

	require.NoError(t, p.UpdateWithStock(d, 2))
	assert.Equal(t, int64(2), p.Quantity)
	assert.Equal(t, 2, p.Version, "details and stock move the version once")
	require.Len(t, p.GetDomainEvents(), 1)
	assert.Equal(t, EventTypeProductLowStock, p.GetDomainEvents()[0].EventType())

	err := p.UpdateWithStock(d, -1)
	assert.Error(t, err)
	assert.Equal(t, int64(2), p.Quantity)
}
