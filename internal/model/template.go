package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TemplateKind enum constants
const (
	TemplateKindInvoice       = "INVOICE"
	TemplateKindShippingLabel = "SHIPPING_LABEL"
	TemplateKindReceipt       = "RECEIPT"
)

// PrintTemplate stores a printable document layout (invoice, shipping label,
// receipt). At most one template per kind is the default.
type PrintTemplate struct {
	ID        uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name      string         `gorm:"type:varchar(255);not null" json:"name"`
	Kind      string         `gorm:"type:varchar(30);not null;index" json:"kind"` // INVOICE, SHIPPING_LABEL, RECEIPT
	PaperSize string         `gorm:"type:varchar(20);default:'A4'" json:"paper_size"`
	Content   string         `gorm:"type:text;not null" json:"content"` // layout markup rendered by the print client
	IsDefault bool           `gorm:"default:false" json:"is_default"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
