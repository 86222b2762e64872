package model

import (
	"time"
)

// OrderPatch is a partial order update. Nil fields are left untouched;
// AppendNotes only ever grows the note list. Workflow side effects produce
// patches, the store's update primitive applies them — nothing else writes
// order state.
type OrderPatch struct {
	Status *OrderStatus

	Paid           *float64
	DiscountAmount *float64
	ShippingFee    *float64
	TaxAmount      *float64
	AdditionalFee  *float64
	BankTransfer   *float64
	PaymentMethod  *string

	RecipientName         *string
	RecipientPhone        *string
	EstimatedDeliveryDate *time.Time
	TrackingNumber        *string

	AssignedTo *string
	Marketer   *string
	Tags       *[]string

	AppendNotes []OrderNote
}

// Merge combines p with an override patch. Set fields of the override win on
// conflict; appended notes are concatenated in order (base first).
func (p OrderPatch) Merge(override OrderPatch) OrderPatch {
	out := p
	if override.Status != nil {
		out.Status = override.Status
	}
	if override.Paid != nil {
		out.Paid = override.Paid
	}
	if override.DiscountAmount != nil {
		out.DiscountAmount = override.DiscountAmount
	}
	if override.ShippingFee != nil {
		out.ShippingFee = override.ShippingFee
	}
	if override.TaxAmount != nil {
		out.TaxAmount = override.TaxAmount
	}
	if override.AdditionalFee != nil {
		out.AdditionalFee = override.AdditionalFee
	}
	if override.BankTransfer != nil {
		out.BankTransfer = override.BankTransfer
	}
	if override.PaymentMethod != nil {
		out.PaymentMethod = override.PaymentMethod
	}
	if override.RecipientName != nil {
		out.RecipientName = override.RecipientName
	}
	if override.RecipientPhone != nil {
		out.RecipientPhone = override.RecipientPhone
	}
	if override.EstimatedDeliveryDate != nil {
		out.EstimatedDeliveryDate = override.EstimatedDeliveryDate
	}
	if override.TrackingNumber != nil {
		out.TrackingNumber = override.TrackingNumber
	}
	if override.AssignedTo != nil {
		out.AssignedTo = override.AssignedTo
	}
	if override.Marketer != nil {
		out.Marketer = override.Marketer
	}
	if override.Tags != nil {
		out.Tags = override.Tags
	}
	if len(override.AppendNotes) > 0 {
		notes := make([]OrderNote, 0, len(p.AppendNotes)+len(override.AppendNotes))
		notes = append(notes, p.AppendNotes...)
		notes = append(notes, override.AppendNotes...)
		out.AppendNotes = notes
	}
	return out
}

// Apply merges the patch into the order in memory and re-derives dependent
// fields. These are the store's update-time normalization rules and run on
// every update path, not only workflow transitions:
//
//   - Remaining = max(0, FinalAmount - Paid), recomputed every time
//   - delivered with Paid >= FinalAmount forces Remaining to 0
//   - shipping without an EstimatedDeliveryDate defaults it to now + 3 days
//   - COD mirrors Remaining when the collection method is cod
//   - UpdatedAt strictly increases across consecutive updates
func (p OrderPatch) Apply(o *Order, now time.Time) {
	if p.Status != nil {
		o.Status = *p.Status
	}
	if p.Paid != nil {
		o.Payment.Paid = *p.Paid
	}
	if p.DiscountAmount != nil {
		o.Payment.DiscountAmount = *p.DiscountAmount
	}
	if p.ShippingFee != nil {
		o.Payment.ShippingFee = *p.ShippingFee
	}
	if p.TaxAmount != nil {
		o.Payment.TaxAmount = *p.TaxAmount
	}
	if p.AdditionalFee != nil {
		o.Payment.AdditionalFee = *p.AdditionalFee
	}
	if p.BankTransfer != nil {
		o.Payment.BankTransfer = *p.BankTransfer
	}
	if p.PaymentMethod != nil {
		o.Payment.Method = *p.PaymentMethod
	}
	if p.RecipientName != nil {
		o.Shipping.RecipientName = *p.RecipientName
	}
	if p.RecipientPhone != nil {
		o.Shipping.RecipientPhone = *p.RecipientPhone
	}
	if p.EstimatedDeliveryDate != nil {
		o.Shipping.EstimatedDeliveryDate = p.EstimatedDeliveryDate
	}
	if p.TrackingNumber != nil {
		o.Shipping.TrackingNumber = *p.TrackingNumber
	}
	if p.AssignedTo != nil {
		o.AssignedTo = *p.AssignedTo
	}
	if p.Marketer != nil {
		o.Marketer = *p.Marketer
	}
	if p.Tags != nil {
		o.Tags = *p.Tags
	}

	for _, n := range p.AppendNotes {
		note := n
		note.OrderID = o.ID
		if note.Type == "" {
			note.Type = NoteTypeInternal
		}
		if note.CreatedAt.IsZero() {
			note.CreatedAt = now
		}
		o.Notes = append(o.Notes, note)
	}

	o.Payment.Remaining = o.Payment.FinalAmount - o.Payment.Paid
	if o.Payment.Remaining < 0 {
		o.Payment.Remaining = 0
	}
	if o.Status == StatusDelivered && o.Payment.Paid >= o.Payment.FinalAmount {
		o.Payment.Remaining = 0
	}
	if o.Status == StatusShipping && o.Shipping.EstimatedDeliveryDate == nil {
		eta := now.Add(72 * time.Hour)
		o.Shipping.EstimatedDeliveryDate = &eta
	}
	if o.Payment.Method == PaymentMethodCOD {
		o.Payment.COD = o.Payment.Remaining
	}

	if !now.After(o.UpdatedAt) {
		now = o.UpdatedAt.Add(time.Millisecond)
	}
	o.UpdatedAt = now
}
