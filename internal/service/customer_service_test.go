package service

import (
	"context"
	"testing"
	"time"

	"github.com/dotuanbn/ANHUYHOADON-sub000/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestComputeCustomerStats(t *testing.T) {
	base := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	orders := []model.Order{
		{
			Status:    model.StatusDelivered,
			Payment:   model.PaymentInfo{FinalAmount: 500},
			CreatedAt: base,
		},
		{
			Status:    model.StatusDelivered,
			Payment:   model.PaymentInfo{FinalAmount: 300},
			CreatedAt: base.Add(48 * time.Hour),
		},
		{
			Status:    model.StatusCancelled,
			Payment:   model.PaymentInfo{FinalAmount: 999},
			CreatedAt: base.Add(24 * time.Hour),
		},
		{
			Status:    model.StatusNew,
			Payment:   model.PaymentInfo{FinalAmount: 120},
			CreatedAt: base.Add(72 * time.Hour),
		},
	}

	stats := ComputeCustomerStats(orders)

	assert.Equal(t, 4, stats.TotalOrders)
	assert.Equal(t, 2, stats.SuccessfulOrders)
	assert.InDelta(t, 800, stats.TotalSpent, 0.001)
	require.NotNil(t, stats.LastOrderDate)
	// The newest order counts toward LastOrderDate even though it is not
	// delivered yet
	assert.True(t, stats.LastOrderDate.Equal(base.Add(72*time.Hour)))
}

func TestComputeCustomerStatsNoOrders(t *testing.T) {
	stats := ComputeCustomerStats(nil)

	assert.Equal(t, 0, stats.TotalOrders)
	assert.Equal(t, 0, stats.SuccessfulOrders)
	assert.Zero(t, stats.TotalSpent)
	assert.Nil(t, stats.LastOrderDate)
}

func TestRecomputeStatsIsIdempotent(t *testing.T) {
	customerID := uuid.New()
	orders := []model.Order{
		{Status: model.StatusDelivered, Payment: model.PaymentInfo{FinalAmount: 250}, CreatedAt: time.Now()},
	}

	orderRepo := new(mockOrderRepo)
	customerRepo := new(mockCustomerRepo)
	orderRepo.On("ListByCustomer", mock.Anything, customerID).Return(orders, nil).Twice()

	var written []model.Customer
	customerRepo.On("UpdateStats", mock.Anything, customerID, mock.Anything).
		Run(func(args mock.Arguments) {
			written = append(written, args.Get(2).(model.Customer))
		}).
		Return(nil).Twice()

	svc := NewCustomerService(customerRepo, orderRepo, passthroughTx{})

	require.NoError(t, svc.RecomputeStats(context.Background(), customerID))
	require.NoError(t, svc.RecomputeStats(context.Background(), customerID))

	require.Len(t, written, 2)
	assert.Equal(t, written[0].TotalOrders, written[1].TotalOrders)
	assert.Equal(t, written[0].SuccessfulOrders, written[1].SuccessfulOrders)
	assert.Equal(t, written[0].TotalSpent, written[1].TotalSpent)
	orderRepo.AssertExpectations(t)
	customerRepo.AssertExpectations(t)
}

func TestNormalizeAddressesPromotesFirstDefault(t *testing.T) {
	customerID := uuid.New()

	addresses := normalizeAddresses(customerID, []AddressPayload{
		{Street: "a", IsDefault: false},
		{Street: "b", IsDefault: true},
		{Street: "c", IsDefault: true},
	})

	require.Len(t, addresses, 3)
	assert.False(t, addresses[0].IsDefault)
	assert.True(t, addresses[1].IsDefault)
	assert.False(t, addresses[2].IsDefault, "only one default survives")
}

func TestNormalizeAddressesDefaultsFirstWhenNoneMarked(t *testing.T) {
	addresses := normalizeAddresses(uuid.New(), []AddressPayload{
		{Street: "a"},
		{Street: "b"},
	})

	require.Len(t, addresses, 2)
	assert.True(t, addresses[0].IsDefault)
	assert.False(t, addresses[1].IsDefault)
}
