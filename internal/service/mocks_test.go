package service

import (
	"context"

	"github.com/dotuanbn/ANHUYHOADON-sub000/internal/model"
	"github.com/dotuanbn/ANHUYHOADON-sub000/internal/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// passthroughTx runs the unit of work without a database.
type passthroughTx struct{}

func (passthroughTx) RunInTx(ctx context.Context, fn func(txCtx context.Context) error) error {
	return fn(ctx)
}

type mockOrderRepo struct {
	mock.Mock
}

func (m *mockOrderRepo) Create(ctx context.Context, order *model.Order) error {
	return m.Called(ctx, order).Error(0)
}

func (m *mockOrderRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Order), args.Error(1)
}

func (m *mockOrderRepo) FindByPosCode(ctx context.Context, code string) (*model.Order, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Order), args.Error(1)
}

func (m *mockOrderRepo) UpdateOrder(ctx context.Context, id uuid.UUID, patch model.OrderPatch) (*model.Order, error) {
	args := m.Called(ctx, id, patch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Order), args.Error(1)
}

func (m *mockOrderRepo) ReplaceItems(ctx context.Context, orderID uuid.UUID, items []model.OrderItem) error {
	return m.Called(ctx, orderID, items).Error(0)
}

func (m *mockOrderRepo) SaveTotals(ctx context.Context, order *model.Order) error {
	return m.Called(ctx, order).Error(0)
}

func (m *mockOrderRepo) SetCustomer(ctx context.Context, orderID uuid.UUID, customerID *uuid.UUID) error {
	return m.Called(ctx, orderID, customerID).Error(0)
}

func (m *mockOrderRepo) IncrementPrintCount(ctx context.Context, id uuid.UUID) (int, error) {
	args := m.Called(ctx, id)
	return args.Int(0), args.Error(1)
}

func (m *mockOrderRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockOrderRepo) List(ctx context.Context, filter repository.OrderFilter) ([]model.Order, int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]model.Order), args.Get(1).(int64), args.Error(2)
}

func (m *mockOrderRepo) ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]model.Order, error) {
	args := m.Called(ctx, customerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Order), args.Error(1)
}

type mockProductRepo struct {
	mock.Mock
}

func (m *mockProductRepo) Create(ctx context.Context, product *model.Product) error {
	return m.Called(ctx, product).Error(0)
}

func (m *mockProductRepo) Update(ctx context.Context, product *model.Product) error {
	return m.Called(ctx, product).Error(0)
}

func (m *mockProductRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockProductRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Product), args.Error(1)
}

func (m *mockProductRepo) FindByCode(ctx context.Context, code string) (*model.Product, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Product), args.Error(1)
}

func (m *mockProductRepo) List(ctx context.Context, search string, page, limit int) ([]model.Product, int64, error) {
	args := m.Called(ctx, search, page, limit)
	return args.Get(0).([]model.Product), args.Get(1).(int64), args.Error(2)
}

type mockCustomerRepo struct {
	mock.Mock
}

func (m *mockCustomerRepo) Create(ctx context.Context, customer *model.Customer) error {
	return m.Called(ctx, customer).Error(0)
}

func (m *mockCustomerRepo) Update(ctx context.Context, customer *model.Customer) error {
	return m.Called(ctx, customer).Error(0)
}

func (m *mockCustomerRepo) UpdateStats(ctx context.Context, id uuid.UUID, stats model.Customer) error {
	return m.Called(ctx, id, stats).Error(0)
}

func (m *mockCustomerRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockCustomerRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Customer, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Customer), args.Error(1)
}

func (m *mockCustomerRepo) FindByPhone(ctx context.Context, phone string) (*model.Customer, error) {
	args := m.Called(ctx, phone)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Customer), args.Error(1)
}

func (m *mockCustomerRepo) List(ctx context.Context, search string, page, limit int) ([]model.Customer, int64, error) {
	args := m.Called(ctx, search, page, limit)
	return args.Get(0).([]model.Customer), args.Get(1).(int64), args.Error(2)
}

func (m *mockCustomerRepo) DeleteAddressesByCustomerID(ctx context.Context, customerID uuid.UUID) error {
	return m.Called(ctx, customerID).Error(0)
}

func (m *mockCustomerRepo) CreateAddresses(ctx context.Context, addresses []model.CustomerAddress) error {
	return m.Called(ctx, addresses).Error(0)
}

type mockAuditRepo struct {
	mock.Mock
}

func (m *mockAuditRepo) Log(ctx context.Context, entry *model.AuditLog) error {
	return m.Called(ctx, entry).Error(0)
}

func (m *mockAuditRepo) List(ctx context.Context, action string, page, limit int) ([]model.AuditLog, int64, error) {
	args := m.Called(ctx, action, page, limit)
	return args.Get(0).([]model.AuditLog), args.Get(1).(int64), args.Error(2)
}

type mockSequenceRepo struct {
	mock.Mock
}

func (m *mockSequenceRepo) Next(ctx context.Context, name string) (int64, error) {
	args := m.Called(ctx, name)
	return args.Get(0).(int64), args.Error(1)
}
