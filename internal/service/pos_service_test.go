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
	"gorm.io/gorm"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    float64
		wantErr bool
	}{
		{name: "plain", raw: "150000", want: 150000},
		{name: "decimal places", raw: "99.99", want: 99.99},
		{name: "empty means zero", raw: "", want: 0},
		{name: "rounded", raw: "10.005", want: 10.01},
		{name: "garbage", raw: "ten", wantErr: true},
		{name: "negative", raw: "-5", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseAmount(tt.raw)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 0.001)
		})
	}
}

func newPosFixture(t *testing.T) (*posService, *mockOrderRepo, *mockCustomerRepo, *mockAuditRepo) {
	t.Helper()
	orderRepo := new(mockOrderRepo)
	customerRepo := new(mockCustomerRepo)
	auditRepo := new(mockAuditRepo)
	customerSvc := NewCustomerService(customerRepo, orderRepo, passthroughTx{})

	svc := NewPosService(
		orderRepo, new(mockProductRepo), customerRepo, auditRepo,
		fixedSequenceService(t, 100, time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)),
		customerSvc, passthroughTx{}, nil,
	).(*posService)

	return svc, orderRepo, customerRepo, auditRepo
}

func TestSyncOrdersCreatesUnknownCode(t *testing.T) {
	svc, orderRepo, _, auditRepo := newPosFixture(t)

	orderRepo.On("FindByPosCode", mock.Anything, "POS-1").Return(nil, gorm.ErrRecordNotFound)

	var created *model.Order
	orderRepo.On("Create", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			created = args.Get(1).(*model.Order)
		}).
		Return(nil)
	auditRepo.On("Log", mock.Anything, mock.MatchedBy(func(e *model.AuditLog) bool {
		return e.Action == model.ActionPosSync
	})).Return(nil)

	summary, err := svc.SyncOrders(context.Background(), PosSyncRequest{
		Orders: []PosOrderRecord{{
			PosCode: "POS-1",
			Paid:    "50000",
			Items: []PosOrderItem{
				{ProductName: "Imported mug", Quantity: 2, UnitPrice: "60000"},
			},
		}},
	}, "system")

	require.NoError(t, err)
	assert.Equal(t, 1, summary.Created)
	assert.Zero(t, summary.Updated)
	assert.Zero(t, summary.Skipped)
	require.NotNil(t, created)
	assert.Equal(t, "POS-1", created.PosCode)
	assert.Equal(t, model.StatusNew, created.Status)
	assert.InDelta(t, 120000, created.Payment.TotalAmount, 0.001)
	assert.InDelta(t, 70000, created.Payment.Remaining, 0.001)
	auditRepo.AssertExpectations(t)
}

func TestSyncOrdersSkipsOrderPastNew(t *testing.T) {
	svc, orderRepo, _, auditRepo := newPosFixture(t)

	existing := &model.Order{ID: uuid.New(), PosCode: "POS-2", Status: model.StatusShipping}
	orderRepo.On("FindByPosCode", mock.Anything, "POS-2").Return(existing, nil)
	auditRepo.On("Log", mock.Anything, mock.Anything).Return(nil)

	summary, err := svc.SyncOrders(context.Background(), PosSyncRequest{
		Orders: []PosOrderRecord{{PosCode: "POS-2", Paid: "10000"}},
	}, "system")

	require.NoError(t, err)
	assert.Zero(t, summary.Created)
	assert.Zero(t, summary.Updated)
	assert.Equal(t, 1, summary.Skipped)
	orderRepo.AssertNotCalled(t, "UpdateOrder", mock.Anything, mock.Anything, mock.Anything)
}

func TestSyncOrdersUpdatesNewOrder(t *testing.T) {
	svc, orderRepo, _, auditRepo := newPosFixture(t)

	existing := &model.Order{ID: uuid.New(), PosCode: "POS-3", Status: model.StatusNew}
	orderRepo.On("FindByPosCode", mock.Anything, "POS-3").Return(existing, nil)
	orderRepo.On("UpdateOrder", mock.Anything, existing.ID, mock.MatchedBy(func(p model.OrderPatch) bool {
		return p.Paid != nil && *p.Paid == 25000
	})).Return(existing, nil)
	auditRepo.On("Log", mock.Anything, mock.Anything).Return(nil)

	summary, err := svc.SyncOrders(context.Background(), PosSyncRequest{
		Orders: []PosOrderRecord{{PosCode: "POS-3", Paid: "25000"}},
	}, "system")

	require.NoError(t, err)
	assert.Equal(t, 1, summary.Updated)
	orderRepo.AssertExpectations(t)
}

func TestSyncOrdersBadAmountDoesNotFailBatch(t *testing.T) {
	svc, orderRepo, _, auditRepo := newPosFixture(t)

	orderRepo.On("FindByPosCode", mock.Anything, "POS-BAD").Return(nil, gorm.ErrRecordNotFound)
	orderRepo.On("FindByPosCode", mock.Anything, "POS-OK").Return(nil, gorm.ErrRecordNotFound)
	orderRepo.On("Create", mock.Anything, mock.MatchedBy(func(o *model.Order) bool {
		return o.PosCode == "POS-OK"
	})).Return(nil)
	auditRepo.On("Log", mock.Anything, mock.Anything).Return(nil)

	summary, err := svc.SyncOrders(context.Background(), PosSyncRequest{
		Orders: []PosOrderRecord{
			{PosCode: "POS-BAD", Paid: "not-a-number"},
			{PosCode: "POS-OK", Paid: "1000"},
		},
	}, "system")

	require.NoError(t, err)
	assert.Equal(t, 1, summary.Created)
	assert.Equal(t, 1, summary.Skipped)
	require.Len(t, summary.Errors, 1)
	assert.Contains(t, summary.Errors[0], "POS-BAD")
}
