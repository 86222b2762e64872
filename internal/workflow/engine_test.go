package workflow

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

// memStore applies patches through the same normalization path the real
// record store uses, so engine tests exercise the store semantics without a
// database.
type memStore struct {
	orders map[uuid.UUID]*model.Order
}

func newMemStore(orders ...*model.Order) *memStore {
	s := &memStore{orders: make(map[uuid.UUID]*model.Order)}
	for _, o := range orders {
		if o.ID == uuid.Nil {
			o.ID = uuid.New()
		}
		s.orders[o.ID] = o
	}
	return s
}

func (s *memStore) FindByID(_ context.Context, id uuid.UUID) (*model.Order, error) {
	o, ok := s.orders[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *o
	return &cp, nil
}

func (s *memStore) UpdateOrder(_ context.Context, id uuid.UUID, patch model.OrderPatch) (*model.Order, error) {
	o, ok := s.orders[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	patch.Apply(o, time.Now())
	cp := *o
	return &cp, nil
}

type statsSpy struct {
	calls []uuid.UUID
}

func (s *statsSpy) RecomputeStats(_ context.Context, customerID uuid.UUID) error {
	s.calls = append(s.calls, customerID)
	return nil
}

type auditSpy struct {
	entries []model.AuditLog
}

func (a *auditSpy) Log(_ context.Context, entry *model.AuditLog) error {
	a.entries = append(a.entries, *entry)
	return nil
}

type passthroughTx struct{}

func (passthroughTx) RunInTx(ctx context.Context, fn func(context.Context) error) error {
	return fn(ctx)
}

type mockBroadcaster struct {
	mock.Mock
}

func (m *mockBroadcaster) BroadcastEvent(event string, data interface{}) {
	m.Called(event, data)
}

func newTestEngine(store Store) (*Engine, *statsSpy, *auditSpy) {
	stats := &statsSpy{}
	audit := &auditSpy{}
	return NewEngine(store, stats, audit, passthroughTx{}, nil, nil), stats, audit
}

func TestTransitionStatusNotFound(t *testing.T) {
	engine, _, _ := newTestEngine(newMemStore())

	res, err := engine.TransitionStatus(context.Background(), uuid.New(), model.StatusConfirmed, nil, "")
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, CodeNotFound, res.Code)
}

func TestTransitionStatusIllegalEdge(t *testing.T) {
	o := &model.Order{Status: model.StatusConfirmed}
	store := newMemStore(o)
	engine, _, _ := newTestEngine(store)

	res, err := engine.TransitionStatus(context.Background(), o.ID, model.StatusShipping, nil, "")
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, CodeIllegalTransition, res.Code)
	assert.Equal(t, model.StatusConfirmed, store.orders[o.ID].Status, "no mutation on rejection")
}

func TestTransitionStatusCancellationGuard(t *testing.T) {
	paid := &model.Order{Status: model.StatusNew, Payment: model.PaymentInfo{Paid: 100, FinalAmount: 500}}
	store := newMemStore(paid)
	engine, stats, _ := newTestEngine(store)

	res, err := engine.TransitionStatus(context.Background(), paid.ID, model.StatusCancelled, nil, "")
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, CodePreconditionNotMet, res.Code)
	assert.Empty(t, stats.calls)

	unpaid := &model.Order{Status: model.StatusNew, Payment: model.PaymentInfo{FinalAmount: 500}}
	store = newMemStore(unpaid)
	engine, _, _ = newTestEngine(store)

	res, err = engine.TransitionStatus(context.Background(), unpaid.ID, model.StatusCancelled, nil, "")
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, model.StatusCancelled, res.Order.Status)
}

func TestTransitionAppendsNoteAndAudits(t *testing.T) {
	customerID := uuid.New()
	o := &model.Order{
		Status:      model.StatusNew,
		OrderNumber: "DH-20260901-00001",
		CustomerID:  &customerID,
	}
	store := newMemStore(o)
	engine, stats, audit := newTestEngine(store)

	res, err := engine.TransitionStatus(context.Background(), o.ID, model.StatusConfirmed, nil, "")
	require.NoError(t, err)
	require.True(t, res.Success)

	require.Len(t, res.Order.Notes, 1)
	assert.Equal(t, model.NoteTypeInternal, res.Order.Notes[0].Type)
	assert.Contains(t, res.Order.Notes[0].Content, "confirmed")

	require.Len(t, audit.entries, 1)
	assert.Equal(t, model.ActionOrderStatusChange, audit.entries[0].Action)
	assert.Equal(t, "DH-20260901-00001", audit.entries[0].EntityName)

	require.Len(t, stats.calls, 1)
	assert.Equal(t, customerID, stats.calls[0])
}

func TestDeliveredZeroesRemainingWhenPaidInFull(t *testing.T) {
	o := &model.Order{
		Status: model.StatusShipping,
		Items:  []model.OrderItem{{Quantity: 1, UnitPrice: 500, Total: 500}},
		Payment: model.PaymentInfo{
			FinalAmount: 500,
			Paid:        500,
			Remaining:   120, // deliberately stale
		},
	}
	store := newMemStore(o)
	engine, _, _ := newTestEngine(store)

	res, err := engine.TransitionStatus(context.Background(), o.ID, model.StatusDelivered, nil, "")
	require.NoError(t, err)
	require.True(t, res.Success)
	assert.Zero(t, res.Order.Payment.Remaining)
}

func TestShippingDefaultsEstimatedDeliveryDate(t *testing.T) {
	o := &model.Order{
		Status: model.StatusProcessing,
		Items:  []model.OrderItem{{Quantity: 1, UnitPrice: 100, Total: 100}},
	}
	store := newMemStore(o)
	engine, _, _ := newTestEngine(store)

	res, err := engine.TransitionStatus(context.Background(), o.ID, model.StatusShipping, nil, "")
	require.NoError(t, err)
	require.True(t, res.Success)
	require.NotNil(t, res.Order.Shipping.EstimatedDeliveryDate)

	expected := time.Now().Add(72 * time.Hour)
	assert.WithinDuration(t, expected, *res.Order.Shipping.EstimatedDeliveryDate, time.Minute)
}

func TestShippingKeepsExistingEstimatedDeliveryDate(t *testing.T) {
	eta := time.Now().Add(10 * 24 * time.Hour).Truncate(time.Second)
	o := &model.Order{
		Status:   model.StatusProcessing,
		Items:    []model.OrderItem{{Quantity: 1, UnitPrice: 100, Total: 100}},
		Shipping: model.ShippingInfo{EstimatedDeliveryDate: &eta},
	}
	store := newMemStore(o)
	engine, _, _ := newTestEngine(store)

	res, err := engine.TransitionStatus(context.Background(), o.ID, model.StatusShipping, nil, "")
	require.NoError(t, err)
	require.True(t, res.Success)
	assert.True(t, eta.Equal(*res.Order.Shipping.EstimatedDeliveryDate))
}

func TestCallerPatchWinsOverEffect(t *testing.T) {
	o := &model.Order{Status: model.StatusShipping, Items: []model.OrderItem{{Quantity: 1, UnitPrice: 100}}}
	store := newMemStore(o)
	engine, _, _ := newTestEngine(store)

	tracking := "VN-998877"
	extra := &model.OrderPatch{
		TrackingNumber: &tracking,
		AppendNotes:    []model.OrderNote{{Type: model.NoteTypeDiscussion, Content: "customer asked for evening delivery"}},
	}
	res, err := engine.TransitionStatus(context.Background(), o.ID, model.StatusDelivered, extra, "")
	require.NoError(t, err)
	require.True(t, res.Success)

	assert.Equal(t, "VN-998877", res.Order.Shipping.TrackingNumber)
	// effect note first, caller note appended after
	require.Len(t, res.Order.Notes, 2)
	assert.Equal(t, model.NoteTypeInternal, res.Order.Notes[0].Type)
	assert.Equal(t, model.NoteTypeDiscussion, res.Order.Notes[1].Type)
}

func TestBroadcastOnSuccess(t *testing.T) {
	o := &model.Order{Status: model.StatusNew}
	store := newMemStore(o)

	hub := &mockBroadcaster{}
	hub.On("BroadcastEvent", "order.status_changed", mock.Anything).Once()

	engine := NewEngine(store, &statsSpy{}, &auditSpy{}, passthroughTx{}, hub, nil)
	res, err := engine.TransitionStatus(context.Background(), o.ID, model.StatusConfirmed, nil, "")
	require.NoError(t, err)
	require.True(t, res.Success)

	hub.AssertExpectations(t)
}

func TestLifecycleEndToEnd(t *testing.T) {
	ctx := context.Background()
	o := &model.Order{
		Status:  model.StatusNew,
		Payment: model.PaymentInfo{FinalAmount: 500000},
	}
	store := newMemStore(o)
	engine, _, _ := newTestEngine(store)

	res, err := engine.TransitionStatus(ctx, o.ID, model.StatusConfirmed, nil, "")
	require.NoError(t, err)
	require.True(t, res.Success)
	assert.Equal(t, model.StatusConfirmed, res.Order.Status)
	assert.Len(t, res.Order.Notes, 1)

	// no confirmed -> shipping edge
	res, err = engine.TransitionStatus(ctx, o.ID, model.StatusShipping, nil, "")
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, CodeIllegalTransition, res.Code)

	res, err = engine.TransitionStatus(ctx, o.ID, model.StatusProcessing, nil, "")
	require.NoError(t, err)
	require.True(t, res.Success)

	// empty items block the shipping guard
	res, err = engine.TransitionStatus(ctx, o.ID, model.StatusShipping, nil, "")
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, CodePreconditionNotMet, res.Code)

	store.orders[o.ID].Items = []model.OrderItem{{Quantity: 1, UnitPrice: 500000, Total: 500000}}

	res, err = engine.TransitionStatus(ctx, o.ID, model.StatusShipping, nil, "")
	require.NoError(t, err)
	require.True(t, res.Success)
	assert.NotNil(t, res.Order.Shipping.EstimatedDeliveryDate)
}
