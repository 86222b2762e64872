package workflow

import (
	"github.com/dotuanbn/ANHUYHOADON-sub000/internal/model"
)

// Label returns the human-facing display name of a status.
func Label(s model.OrderStatus) string {
	switch s {
	case model.StatusNew:
		return "New"
	case model.StatusConfirmed:
		return "Confirmed"
	case model.StatusProcessing:
		return "Processing"
	case model.StatusShipping:
		return "Shipping"
	case model.StatusDelivered:
		return "Delivered"
	case model.StatusCancelled:
		return "Cancelled"
	case model.StatusReturned:
		return "Returned"
	default:
		return string(s)
	}
}

// ColorClass returns the UI badge class for a status. Presentation only.
func ColorClass(s model.OrderStatus) string {
	switch s {
	case model.StatusNew:
		return "badge-blue"
	case model.StatusConfirmed:
		return "badge-cyan"
	case model.StatusProcessing:
		return "badge-yellow"
	case model.StatusShipping:
		return "badge-orange"
	case model.StatusDelivered:
		return "badge-green"
	case model.StatusCancelled:
		return "badge-red"
	case model.StatusReturned:
		return "badge-gray"
	default:
		return "badge-gray"
	}
}
