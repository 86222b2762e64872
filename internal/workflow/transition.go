// Package workflow owns the order status graph. It is the only code path
// allowed to change an order's status: the transition table below is the
// authoritative edge set, guards decide eligibility against a snapshot, and
// side effects produce patches that the record store persists in one place.
package workflow

import (
	"fmt"
	"time"

	"github.com/dotuanbn/ANHUYHOADON-sub000/internal/model"
)

// Guard decides whether a transition is eligible for the order snapshot.
// Guards are pure: no I/O, no mutation.
type Guard func(o *model.Order, now time.Time) bool

// Effect produces the partial patch a transition applies on top of the
// status change itself. Effects are pure; persistence happens in the engine.
type Effect func(o *model.Order, now time.Time) model.OrderPatch

// Transition is a directed edge in the status graph.
type Transition struct {
	From   model.OrderStatus
	To     model.OrderStatus
	Label  string
	Guard  Guard  // nil means always eligible
	Effect Effect // nil means no side effect beyond the status change
}

const returnWindow = 7 * 24 * time.Hour

func internalNote(content string) model.OrderNote {
	return model.OrderNote{
		Type:      model.NoteTypeInternal,
		Content:   content,
		CreatedBy: "system",
	}
}

func noteEffect(format string, withTimestamp bool) Effect {
	return func(_ *model.Order, now time.Time) model.OrderPatch {
		content := format
		if withTimestamp {
			content = fmt.Sprintf("%s at %s", format, now.Format("2006-01-02 15:04:05"))
		}
		return model.OrderPatch{AppendNotes: []model.OrderNote{internalNote(content)}}
	}
}

func notPaid(o *model.Order, _ time.Time) bool {
	return o.Payment.Paid == 0
}

func hasItems(o *model.Order, _ time.Time) bool {
	return len(o.Items) > 0
}

func paidUnderHalf(o *model.Order, _ time.Time) bool {
	return o.Payment.Paid < 0.5*o.Payment.FinalAmount
}

func withinReturnWindow(o *model.Order, now time.Time) bool {
	return now.Sub(o.UpdatedAt) <= returnWindow
}

// transitions is the static state graph. cancelled and returned are terminal
// and deliberately absent as keys.
var transitions = map[model.OrderStatus][]Transition{
	model.StatusNew: {
		{From: model.StatusNew, To: model.StatusConfirmed, Label: "Confirm order",
			Effect: noteEffect("Order confirmed", true)},
		{From: model.StatusNew, To: model.StatusProcessing, Label: "Start processing",
			Effect: noteEffect("Processing started", false)},
		{From: model.StatusNew, To: model.StatusCancelled, Label: "Cancel order",
			Guard: notPaid, Effect: noteEffect("Order cancelled", true)},
	},
	model.StatusConfirmed: {
		{From: model.StatusConfirmed, To: model.StatusProcessing, Label: "Start processing",
			Effect: noteEffect("Processing started", false)},
		{From: model.StatusConfirmed, To: model.StatusCancelled, Label: "Cancel order",
			Guard: notPaid, Effect: noteEffect("Order cancelled", true)},
	},
	model.StatusProcessing: {
		{From: model.StatusProcessing, To: model.StatusShipping, Label: "Hand to carrier",
			Guard: hasItems, Effect: noteEffect("Handed to carrier", false)},
		{From: model.StatusProcessing, To: model.StatusCancelled, Label: "Cancel order",
			Guard: paidUnderHalf, Effect: noteEffect("Order cancelled", true)},
	},
	model.StatusShipping: {
		{From: model.StatusShipping, To: model.StatusDelivered, Label: "Mark delivered",
			Effect: noteEffect("Delivered successfully", false)},
		{From: model.StatusShipping, To: model.StatusReturned, Label: "Mark returned",
			Effect: noteEffect("Order returned", false)},
	},
	model.StatusDelivered: {
		{From: model.StatusDelivered, To: model.StatusReturned, Label: "Mark returned",
			Guard: withinReturnWindow, Effect: noteEffect("Order returned", false)},
	},
}

// IsTerminal reports whether the status has no outgoing transitions.
func IsTerminal(s model.OrderStatus) bool {
	return len(transitions[s]) == 0
}

// AvailableTransitionsAt returns the subset of edges from the order's current
// status whose guards hold at the given time. Pure, no side effects.
func AvailableTransitionsAt(o *model.Order, now time.Time) []Transition {
	edges := transitions[o.Status]
	out := make([]Transition, 0, len(edges))
	for _, t := range edges {
		if t.Guard == nil || t.Guard(o, now) {
			out = append(out, t)
		}
	}
	return out
}

// AvailableTransitions evaluates guards against the current wall clock.
func AvailableTransitions(o *model.Order) []Transition {
	return AvailableTransitionsAt(o, time.Now())
}

func findEdge(from, to model.OrderStatus) (Transition, bool) {
	for _, t := range transitions[from] {
		if t.To == to {
			return t, true
		}
	}
	return Transition{}, false
}
