package workflow

import (
	"testing"
	"time"

	"github.com/dotuanbn/ANHUYHOADON-sub000/internal/model"

	"github.com/stretchr/testify/assert"
)

func orderWith(status model.OrderStatus) *model.Order {
	return &model.Order{
		Status:    status,
		CreatedAt: time.Now().Add(-time.Hour),
		UpdatedAt: time.Now().Add(-time.Hour),
	}
}

func TestGraphClosure(t *testing.T) {
	now := time.Now()
	for _, status := range model.AllStatuses {
		o := orderWith(status)
		// guards wide open: paid=0, one valid item
		o.Items = []model.OrderItem{{Quantity: 1, UnitPrice: 100, Total: 100}}

		for _, tr := range AvailableTransitionsAt(o, now) {
			assert.Equal(t, status, tr.From, "edge from %s declares wrong origin", status)
			assert.True(t, tr.To.Valid())
		}
	}
}

func TestTerminalStatusesHaveNoTransitions(t *testing.T) {
	now := time.Now()
	for _, status := range []model.OrderStatus{model.StatusCancelled, model.StatusReturned} {
		assert.True(t, IsTerminal(status))
		assert.Empty(t, AvailableTransitionsAt(orderWith(status), now))
	}
}

func TestCancelEdgeRequiresZeroPaid(t *testing.T) {
	now := time.Now()
	for _, status := range []model.OrderStatus{model.StatusNew, model.StatusConfirmed} {
		o := orderWith(status)
		o.Payment.Paid = 100
		for _, tr := range AvailableTransitionsAt(o, now) {
			assert.NotEqual(t, model.StatusCancelled, tr.To,
				"%s with paid>0 must not offer cancellation", status)
		}

		o.Payment.Paid = 0
		targets := transitionTargets(AvailableTransitionsAt(o, now))
		assert.Contains(t, targets, model.StatusCancelled)
	}
}

func TestProcessingCancelUsesHalfPaidThreshold(t *testing.T) {
	now := time.Now()
	o := orderWith(model.StatusProcessing)
	o.Payment.FinalAmount = 1000

	o.Payment.Paid = 499
	assert.Contains(t, transitionTargets(AvailableTransitionsAt(o, now)), model.StatusCancelled)

	o.Payment.Paid = 500
	assert.NotContains(t, transitionTargets(AvailableTransitionsAt(o, now)), model.StatusCancelled)
}

func TestShippingRequiresItems(t *testing.T) {
	now := time.Now()
	o := orderWith(model.StatusProcessing)
	assert.NotContains(t, transitionTargets(AvailableTransitionsAt(o, now)), model.StatusShipping)

	o.Items = []model.OrderItem{{Quantity: 1, UnitPrice: 50, Total: 50}}
	assert.Contains(t, transitionTargets(AvailableTransitionsAt(o, now)), model.StatusShipping)
}

func TestDeliveredReturnWindow(t *testing.T) {
	now := time.Now()

	o := orderWith(model.StatusDelivered)
	o.UpdatedAt = now.Add(-6 * 24 * time.Hour)
	assert.Contains(t, transitionTargets(AvailableTransitionsAt(o, now)), model.StatusReturned)

	o.UpdatedAt = now.Add(-8 * 24 * time.Hour)
	assert.Empty(t, AvailableTransitionsAt(o, now))
}

func TestEffectsAppendInternalNotes(t *testing.T) {
	now := time.Now()
	o := orderWith(model.StatusNew)

	edge, ok := findEdge(model.StatusNew, model.StatusConfirmed)
	assert.True(t, ok)

	patch := edge.Effect(o, now)
	assert.Len(t, patch.AppendNotes, 1)
	assert.Equal(t, model.NoteTypeInternal, patch.AppendNotes[0].Type)
	assert.Contains(t, patch.AppendNotes[0].Content, "confirmed")
	// effect must not touch the snapshot
	assert.Empty(t, o.Notes)
}

func TestStatusHelpers(t *testing.T) {
	assert.Equal(t, "Delivered", Label(model.StatusDelivered))
	assert.Equal(t, "badge-green", ColorClass(model.StatusDelivered))
	assert.Equal(t, "badge-gray", ColorClass(model.OrderStatus("bogus")))
}

func transitionTargets(edges []Transition) []model.OrderStatus {
	out := make([]model.OrderStatus, 0, len(edges))
	for _, t := range edges {
		out = append(out, t.To)
	}
	return out
}
