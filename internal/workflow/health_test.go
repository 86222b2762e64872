package workflow

import (
	"testing"
	"time"

	"github.com/dotuanbn/ANHUYHOADON-sub000/internal/model"

	"github.com/stretchr/testify/assert"
)

func TestCalculateHealthWorstCase(t *testing.T) {
	// no contact (-20), no effective items (-30), non-positive price (-10)
	o := &model.Order{
		Status: model.StatusNew,
		Items:  []model.OrderItem{{Quantity: 0, UnitPrice: -5}},
	}
	report := CalculateHealth(o)
	assert.Equal(t, 40, report.Score)
	assert.Len(t, report.Issues, 3)
}

func TestCalculateHealthNeverNegative(t *testing.T) {
	o := &model.Order{
		Status:  model.StatusDelivered,
		Items:   []model.OrderItem{{Quantity: 0, UnitPrice: 0}},
		Payment: model.PaymentInfo{FinalAmount: 100, Remaining: 100},
	}
	report := CalculateHealth(o)
	assert.GreaterOrEqual(t, report.Score, 0)
	assert.Contains(t, report.Suggestions, "collect remaining balance")
}

func TestCalculateHealthPerfectOrder(t *testing.T) {
	eta := time.Now().Add(24 * time.Hour)
	o := &model.Order{
		Status: model.StatusDelivered,
		Items:  []model.OrderItem{{Quantity: 2, UnitPrice: 250, Total: 500}},
		Payment: model.PaymentInfo{
			FinalAmount: 500, Paid: 500, Remaining: 0,
		},
		Shipping: model.ShippingInfo{
			RecipientName:         "Nguyen Van A",
			RecipientPhone:        "0901234567",
			EstimatedDeliveryDate: &eta,
		},
	}
	report := CalculateHealth(o)
	assert.Equal(t, 100, report.Score)
	assert.Empty(t, report.Issues)
}

func TestHealthSuggestions(t *testing.T) {
	o := &model.Order{
		Status:   model.StatusProcessing,
		Items:    []model.OrderItem{{Quantity: 1, UnitPrice: 100}},
		Shipping: model.ShippingInfo{RecipientName: "A", RecipientPhone: "1", Province: "Ha Noi"},
	}
	report := CalculateHealth(o)
	assert.Contains(t, report.Suggestions, "enter tracking number before shipping")

	o.Status = model.StatusShipping
	report = CalculateHealth(o)
	assert.Contains(t, report.Suggestions, "set expected delivery date")

	o.Status = model.StatusNew
	report = CalculateHealth(o)
	assert.Contains(t, report.Suggestions, "confirm the order or collect a deposit")
}

func TestSuggestNextAction(t *testing.T) {
	tests := []struct {
		name  string
		order model.Order
		want  string
	}{
		{
			name:  "new with deposit",
			order: model.Order{Status: model.StatusNew, Payment: model.PaymentInfo{Paid: 50}},
			want:  "confirm the order",
		},
		{
			name:  "new without payment",
			order: model.Order{Status: model.StatusNew},
			want:  "",
		},
		{
			name: "confirmed with items",
			order: model.Order{Status: model.StatusConfirmed,
				Items: []model.OrderItem{{Quantity: 1}}},
			want: "start processing",
		},
		{
			name: "processing all quantities positive",
			order: model.Order{Status: model.StatusProcessing,
				Items: []model.OrderItem{{Quantity: 2}, {Quantity: 1}}},
			want: "move to shipping",
		},
		{
			name: "processing with a zero quantity",
			order: model.Order{Status: model.StatusProcessing,
				Items: []model.OrderItem{{Quantity: 0}}},
			want: "",
		},
		{
			name: "shipping with tracking",
			order: model.Order{Status: model.StatusShipping,
				Shipping: model.ShippingInfo{TrackingNumber: "VN123"}},
			want: "mark delivered",
		},
		{
			name: "delivered with balance",
			order: model.Order{Status: model.StatusDelivered,
				Payment: model.PaymentInfo{Remaining: 10}},
			want: "update payment info",
		},
		{
			name:  "cancelled",
			order: model.Order{Status: model.StatusCancelled},
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SuggestNextAction(&tt.order))
		})
	}
}

func TestCanCancel(t *testing.T) {
	assert.True(t, CanCancel(&model.Order{Status: model.StatusNew}))
	assert.False(t, CanCancel(&model.Order{Status: model.StatusShipping}))
	assert.False(t, CanCancel(&model.Order{Status: model.StatusDelivered}))
	assert.False(t, CanCancel(&model.Order{Status: model.StatusCancelled}))

	halfPaid := &model.Order{
		Status:  model.StatusConfirmed,
		Payment: model.PaymentInfo{FinalAmount: 100, Paid: 50},
	}
	assert.False(t, CanCancel(halfPaid))

	halfPaid.Payment.Paid = 49
	assert.True(t, CanCancel(halfPaid))
}

func TestShouldAutoConfirm(t *testing.T) {
	now := time.Now()
	o := &model.Order{
		Status:    model.StatusNew,
		CreatedAt: now.Add(-25 * time.Hour),
		Payment:   model.PaymentInfo{FinalAmount: 100, Paid: 30},
	}
	assert.True(t, ShouldAutoConfirm(o, now))

	o.Payment.Paid = 29
	assert.False(t, ShouldAutoConfirm(o, now))

	o.Payment.Paid = 30
	o.CreatedAt = now.Add(-1 * time.Hour)
	assert.False(t, ShouldAutoConfirm(o, now))

	o.CreatedAt = now.Add(-25 * time.Hour)
	o.Status = model.StatusConfirmed
	assert.False(t, ShouldAutoConfirm(o, now))
}
