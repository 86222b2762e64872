package workflow

import (
	"time"

	"github.com/dotuanbn/ANHUYHOADON-sub000/internal/model"
)

// HealthReport is a heuristic 0-100 quality rating of an order snapshot,
// used to surface data-quality warnings in the UI. Read-only.
type HealthReport struct {
	Score       int      `json:"score"`
	Issues      []string `json:"issues"`
	Suggestions []string `json:"suggestions"`
}

const autoConfirmAge = 24 * time.Hour

func contactName(o *model.Order) string {
	if o.Shipping.RecipientName != "" {
		return o.Shipping.RecipientName
	}
	if o.Customer != nil {
		return o.Customer.Name
	}
	return ""
}

func contactPhone(o *model.Order) string {
	if o.Shipping.RecipientPhone != "" {
		return o.Shipping.RecipientPhone
	}
	if o.Customer != nil {
		return o.Customer.Phone
	}
	return ""
}

// CalculateHealth scores the order starting from 100 and subtracting a fixed
// penalty per detected issue. The score never goes below zero. Suggestions
// do not affect the score.
func CalculateHealth(o *model.Order) HealthReport {
	report := HealthReport{
		Score:       100,
		Issues:      []string{},
		Suggestions: []string{},
	}

	if contactName(o) == "" || contactPhone(o) == "" {
		report.Score -= 20
		report.Issues = append(report.Issues, "missing customer name or phone")
	}
	if totalQuantity(o.Items) == 0 {
		report.Score -= 30
		report.Issues = append(report.Issues, "order has no items")
	}
	if o.Status == model.StatusDelivered && o.Payment.Remaining > 0 {
		report.Score -= 15
		report.Issues = append(report.Issues, "delivered with outstanding balance")
		report.Suggestions = append(report.Suggestions, "collect remaining balance")
	}
	for _, item := range o.Items {
		if item.UnitPrice <= 0 {
			report.Score -= 10
			report.Issues = append(report.Issues, "line item with non-positive price")
			break
		}
	}
	if report.Score < 0 {
		report.Score = 0
	}

	if o.Status == model.StatusNew && o.Payment.Paid == 0 {
		report.Suggestions = append(report.Suggestions, "confirm the order or collect a deposit")
	}
	if o.Status == model.StatusProcessing && o.Shipping.TrackingNumber == "" && o.Shipping.Province != "" {
		report.Suggestions = append(report.Suggestions, "enter tracking number before shipping")
	}
	if o.Status == model.StatusShipping && o.Shipping.EstimatedDeliveryDate == nil {
		report.Suggestions = append(report.Suggestions, "set expected delivery date")
	}

	return report
}

// SuggestNextAction returns a single best-next-step hint for the order, or
// an empty string when no hint applies. The UI renders it as a one-line
// nudge when no transition button is otherwise eligible.
func SuggestNextAction(o *model.Order) string {
	switch o.Status {
	case model.StatusNew:
		if o.Payment.Paid > 0 {
			return "confirm the order"
		}
	case model.StatusConfirmed:
		if len(o.Items) > 0 {
			return "start processing"
		}
	case model.StatusProcessing:
		if len(o.Items) > 0 && allQuantitiesPositive(o.Items) {
			return "move to shipping"
		}
	case model.StatusShipping:
		if o.Shipping.TrackingNumber != "" {
			return "mark delivered"
		}
	case model.StatusDelivered:
		if o.Payment.Remaining > 0 {
			return "update payment info"
		}
	}
	return ""
}

func totalQuantity(items []model.OrderItem) int {
	sum := 0
	for _, it := range items {
		sum += it.Quantity
	}
	return sum
}

func allQuantitiesPositive(items []model.OrderItem) bool {
	for _, it := range items {
		if it.Quantity <= 0 {
			return false
		}
	}
	return true
}

// CanCancel is a fast UI-facing check for disabling a cancel button before a
// transition is even attempted. It is deliberately independent of the
// cancelled-edge guards: those stay the single authority for mutation, and
// this check may be stricter (shipping is reported non-cancellable even
// though no shipping->cancelled edge exists to guard).
func CanCancel(o *model.Order) bool {
	switch o.Status {
	case model.StatusCancelled, model.StatusDelivered, model.StatusShipping:
		return false
	}
	if o.Payment.FinalAmount > 0 && o.Payment.Paid/o.Payment.FinalAmount >= 0.5 {
		return false
	}
	return true
}

// ShouldAutoConfirm reports whether a new order is old and paid enough to be
// confirmed automatically. Nothing in this process polls it; it is exposed
// for an external scheduler.
func ShouldAutoConfirm(o *model.Order, now time.Time) bool {
	return o.Status == model.StatusNew &&
		now.Sub(o.CreatedAt) >= autoConfirmAge &&
		o.Payment.Paid >= 0.3*o.Payment.FinalAmount
}
