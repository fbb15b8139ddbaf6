package trade

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSale(t *testing.T) {
	productID := uuid.New()
	s, err := NewSale(uuid.New(), SaleDetails{
		ProductID: productID,
		Quantity:  3,
		UnitPrice: decimal.RequireFromString("1500.25"),
	})
	require.NoError(t, err)
	assert.Equal(t, "4500.75", s.Total.String())
	assert.Equal(t, PaymentMethodCash, s.PaymentMethod)
	assert.False(t, s.SoldAt.IsZero())

	require.Len(t, s.GetDomainEvents(), 1)
	ev := s.GetDomainEvents()[0].(*SaleRecordedEvent)
	assert.Equal(t, productID, ev.ProductID)
	assert.Equal(t, EventTypeSaleRecorded, ev.EventType())
}

func TestNewSale_Invalid(t *testing.T) {
	tests := []struct {
		name string
		d    SaleDetails
	}{
		{"missing product", SaleDetails{Quantity: 1}},
		{"zero quantity", SaleDetails{ProductID: uuid.New()}},
		{"negative price", SaleDetails{ProductID: uuid.New(), Quantity: 1, UnitPrice: decimal.NewFromInt(-1)}},
		{"bad method", SaleDetails{ProductID: uuid.New(), Quantity: 1, PaymentMethod: "barter"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewSale(uuid.New(), tt.d)
			assert.Error(t, err)
		})
	}
}

func TestSale_UpdateReturnsDelta(t *testing.T) {
	productID := uuid.New()
	s, err := NewSale(uuid.New(), SaleDetails{ProductID: productID, Quantity: 5, UnitPrice: decimal.NewFromInt(10)})
	require.NoError(t, err)

	delta, err := s.Update(SaleDetails{ProductID: productID, Quantity: 2, UnitPrice: decimal.NewFromInt(10)})
	require.NoError(t, err)
	assert.Equal(t, int64(-3), delta)
	assert.Equal(t, "20", s.Total.String())

	_, err = s.Update(SaleDetails{ProductID: uuid.New(), Quantity: 2})
	assert.Error(t, err)
}

func TestParsePaymentMethod(t *testing.T) {
	m, err := ParsePaymentMethod(" Transfer ")
	require.NoError(t, err)
	assert.Equal(t, PaymentMethodTransfer, m)

	m, err = ParsePaymentMethod("")
	require.NoError(t, err)
	assert.Equal(t, PaymentMethodCash, m)

	_, err = ParsePaymentMethod("iou")
	assert.Error(t, err)
}
