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

func fixedSequenceService(t *testing.T, value int64, now time.Time) SequenceService {
	t.Helper()
	seqRepo := new(mockSequenceRepo)
	seqRepo.On("Next", mock.Anything, model.SequenceOrderNumber).Return(value, nil)
	return &sequenceService{seqRepo: seqRepo, now: func() time.Time { return now }}
}

func TestNextOrderNumberFormat(t *testing.T) {
	now := time.Date(2025, 1, 15, 9, 30, 0, 0, time.UTC)
	svc := fixedSequenceService(t, 42, now)

	number, err := svc.NextOrderNumber(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "DH-20250115-00042", number)
}

func TestApplyTotals(t *testing.T) {
	order := &model.Order{
		Items: []model.OrderItem{
			{Total: 200},
			{Total: 150.50},
		},
		Payment: model.PaymentInfo{
			DiscountAmount: 50,
			ShippingFee:    30,
			TaxAmount:      10,
			AdditionalFee:  5,
			Paid:           100,
			Method:         model.PaymentMethodCOD,
		},
	}

	applyTotals(order)

	assert.InDelta(t, 350.50, order.Payment.TotalAmount, 0.001)
	assert.InDelta(t, 345.50, order.Payment.FinalAmount, 0.001)
	assert.InDelta(t, 245.50, order.Payment.Remaining, 0.001)
	assert.InDelta(t, 245.50, order.Payment.COD, 0.001, "cod mirrors remaining")
}

func TestApplyTotalsClampsToZero(t *testing.T) {
	order := &model.Order{
		Items:   []model.OrderItem{{Total: 100}},
		Payment: model.PaymentInfo{DiscountAmount: 500, Paid: 50},
	}

	applyTotals(order)

	assert.Zero(t, order.Payment.FinalAmount)
	assert.Zero(t, order.Payment.Remaining)
}

func TestBuildItemsSnapshotsCatalogProduct(t *testing.T) {
	product := &model.Product{
		ID:    uuid.New(),
		Code:  "SP-001",
		Name:  "Ceramic Vase",
		Price: 120,
	}

	productRepo := new(mockProductRepo)
	productRepo.On("FindByCode", mock.Anything, "SP-001").Return(product, nil)

	svc := &orderService{productRepo: productRepo}

	items, err := svc.buildItems(context.Background(), []OrderItemPayload{
		{ProductCode: "SP-001", Quantity: 3, Discount: 10},
	})

	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, &product.ID, items[0].ProductID)
	assert.Equal(t, "Ceramic Vase", items[0].ProductName)
	assert.InDelta(t, 120, items[0].UnitPrice, 0.001)
	assert.InDelta(t, 350, items[0].Total, 0.001) // 3*120 - 10
}

func TestBuildItemsPriceOverride(t *testing.T) {
	product := &model.Product{ID: uuid.New(), Code: "SP-002", Name: "Teapot", Price: 80}
	productRepo := new(mockProductRepo)
	productRepo.On("FindByCode", mock.Anything, "SP-002").Return(product, nil)

	svc := &orderService{productRepo: productRepo}

	override := 65.0
	items, err := svc.buildItems(context.Background(), []OrderItemPayload{
		{ProductCode: "SP-002", Quantity: 2, UnitPrice: &override},
	})

	require.NoError(t, err)
	assert.InDelta(t, 65, items[0].UnitPrice, 0.001)
	assert.InDelta(t, 130, items[0].Total, 0.001)
}

func TestBuildItemsFreeFormLine(t *testing.T) {
	svc := &orderService{productRepo: new(mockProductRepo)}

	price := 45.0
	items, err := svc.buildItems(context.Background(), []OrderItemPayload{
		{ProductName: "Gift wrap", Quantity: 1, UnitPrice: &price},
	})

	require.NoError(t, err)
	assert.Nil(t, items[0].ProductID)
	assert.Equal(t, "Gift wrap", items[0].ProductName)
	assert.InDelta(t, 45, items[0].Total, 0.001)
}

func TestCreateOrderComputesTotalsAndAudits(t *testing.T) {
	now := time.Date(2025, 2, 1, 8, 0, 0, 0, time.UTC)

	orderRepo := new(mockOrderRepo)
	auditRepo := new(mockAuditRepo)

	var created *model.Order
	orderRepo.On("Create", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			created = args.Get(1).(*model.Order)
			created.ID = uuid.New()
		}).
		Return(nil)
	orderRepo.On("FindByID", mock.Anything, mock.Anything).
		Return(&model.Order{}, nil)
	auditRepo.On("Log", mock.Anything, mock.MatchedBy(func(e *model.AuditLog) bool {
		return e.Action == model.ActionCreateOrder
	})).Return(nil)

	price := 100.0
	svc := NewOrderService(
		orderRepo, new(mockProductRepo), new(mockCustomerRepo), auditRepo,
		fixedSequenceService(t, 7, now), nil, passthroughTx{}, nil, nil,
	)

	_, err := svc.CreateOrder(context.Background(), CreateOrderRequest{
		Items: []OrderItemPayload{
			{ProductName: "Plate set", Quantity: 2, UnitPrice: &price},
		},
		ShippingFee: 25,
		Paid:        50,
	}, "system")

	require.NoError(t, err)
	require.NotNil(t, created)
	assert.Equal(t, "DH-20250201-00007", created.OrderNumber)
	assert.Equal(t, model.StatusNew, created.Status)
	assert.InDelta(t, 200, created.Payment.TotalAmount, 0.001)
	assert.InDelta(t, 225, created.Payment.FinalAmount, 0.001)
	assert.InDelta(t, 175, created.Payment.Remaining, 0.001)
	auditRepo.AssertExpectations(t)
}

func TestCreateOrderResolvesCustomerByPhone(t *testing.T) {
	now := time.Date(2025, 2, 1, 8, 0, 0, 0, time.UTC)
	existing := &model.Customer{ID: uuid.New(), Name: "Lan", Phone: "0901234567"}

	orderRepo := new(mockOrderRepo)
	customerRepo := new(mockCustomerRepo)
	auditRepo := new(mockAuditRepo)
	customerSvc := NewCustomerService(customerRepo, orderRepo, passthroughTx{})

	customerRepo.On("FindByPhone", mock.Anything, "0901234567").Return(existing, nil)
	customerRepo.On("UpdateStats", mock.Anything, existing.ID, mock.Anything).Return(nil)

	var created *model.Order
	orderRepo.On("Create", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			created = args.Get(1).(*model.Order)
			created.ID = uuid.New()
		}).
		Return(nil)
	orderRepo.On("FindByID", mock.Anything, mock.Anything).Return(&model.Order{}, nil)
	orderRepo.On("ListByCustomer", mock.Anything, existing.ID).Return([]model.Order{}, nil)
	auditRepo.On("Log", mock.Anything, mock.Anything).Return(nil)

	svc := NewOrderService(
		orderRepo, new(mockProductRepo), customerRepo, auditRepo,
		fixedSequenceService(t, 8, now), customerSvc, passthroughTx{}, nil, nil,
	)

	_, err := svc.CreateOrder(context.Background(), CreateOrderRequest{
		CustomerPhone: "0901234567",
	}, "system")

	require.NoError(t, err)
	require.NotNil(t, created.CustomerID)
	assert.Equal(t, existing.ID, *created.CustomerID)
	customerRepo.AssertExpectations(t)
}

func TestPrintOrderIncrementsCounter(t *testing.T) {
	orderID := uuid.New()
	order := &model.Order{ID: orderID, OrderNumber: "DH-20250201-00001"}

	orderRepo := new(mockOrderRepo)
	auditRepo := new(mockAuditRepo)
	orderRepo.On("FindByID", mock.Anything, orderID).Return(order, nil)
	orderRepo.On("IncrementPrintCount", mock.Anything, orderID).Return(3, nil)
	auditRepo.On("Log", mock.Anything, mock.MatchedBy(func(e *model.AuditLog) bool {
		return e.Action == model.ActionPrintOrder
	})).Return(nil)

	svc := NewOrderService(
		orderRepo, new(mockProductRepo), new(mockCustomerRepo), auditRepo,
		nil, nil, passthroughTx{}, nil, nil,
	)

	count, err := svc.PrintOrder(context.Background(), orderID.String(), "system")

	require.NoError(t, err)
	assert.Equal(t, 3, count)
	auditRepo.AssertExpectations(t)
}
