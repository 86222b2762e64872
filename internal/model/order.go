package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// OrderStatus is the single active lifecycle state of an order. Transitions
// between statuses go through the workflow engine only.
type OrderStatus string

const (
	StatusNew        OrderStatus = "new"
	StatusConfirmed  OrderStatus = "confirmed"
	StatusProcessing OrderStatus = "processing"
	StatusShipping   OrderStatus = "shipping"
	StatusDelivered  OrderStatus = "delivered"
	StatusCancelled  OrderStatus = "cancelled"
	StatusReturned   OrderStatus = "returned"
)

// AllStatuses lists every valid order status.
var AllStatuses = []OrderStatus{
	StatusNew, StatusConfirmed, StatusProcessing, StatusShipping,
	StatusDelivered, StatusCancelled, StatusReturned,
}

// Valid reports whether s is a known order status.
func (s OrderStatus) Valid() bool {
	for _, known := range AllStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// NoteType enum constants
const (
	NoteTypeInternal   = "internal"
	NoteTypeEasyPrint  = "easy_print"
	NoteTypeDiscussion = "discussion"
)

// PaymentMethod enum constants
const (
	PaymentMethodCOD          = "cod"
	PaymentMethodBankTransfer = "bank_transfer"
	PaymentMethodCash         = "cash"
)

// Order is the central entity of the system.
type Order struct {
	ID          uuid.UUID   `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	OrderNumber string      `gorm:"type:varchar(50);uniqueIndex;not null" json:"order_number"`
	Status      OrderStatus `gorm:"type:varchar(20);default:'new';not null;index" json:"status"`

	CustomerID *uuid.UUID `gorm:"type:uuid;index" json:"customer_id"`
	Customer   *Customer  `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`

	Items []OrderItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items"`
	Notes []OrderNote `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"notes"`

	Payment  PaymentInfo  `gorm:"embedded;embeddedPrefix:payment_" json:"payment"`
	Shipping ShippingInfo `gorm:"embedded;embeddedPrefix:shipping_" json:"shipping"`

	Tags       []string `gorm:"serializer:json" json:"tags"`
	AssignedTo string   `gorm:"type:varchar(255)" json:"assigned_to"`
	Marketer   string   `gorm:"type:varchar(255)" json:"marketer"`
	PrintCount int      `gorm:"type:int;default:0;not null" json:"print_count"`

	// PosCode links an order ingested from the POS channel back to its
	// external record; empty for orders created in this system.
	PosCode string `gorm:"type:varchar(100);index" json:"pos_code,omitempty"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// OrderItem is a line item with the product snapshot denormalized at
// order-creation time. Later product edits never change historical items.
type OrderItem struct {
	ID          uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	OrderID     uuid.UUID  `gorm:"type:uuid;not null;index" json:"order_id"`
	ProductID   *uuid.UUID `gorm:"type:uuid;index" json:"product_id"`
	ProductCode string     `gorm:"type:varchar(100)" json:"product_code"`
	ProductName string     `gorm:"type:varchar(255)" json:"product_name"`
	Quantity    int        `gorm:"type:int;not null" json:"quantity"`
	UnitPrice   float64    `gorm:"type:decimal(18,2);not null" json:"unit_price"`
	Discount    float64    `gorm:"type:decimal(18,2);default:0;not null" json:"discount"`
	Total       float64    `gorm:"type:decimal(18,2);not null" json:"total"` // quantity*unit_price - discount
}

// OrderNote is an append-only annotation on an order. Workflow side effects
// write internal notes; notes are never removed or reordered.
type OrderNote struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	OrderID   uuid.UUID `gorm:"type:uuid;not null;index" json:"order_id"`
	Type      string    `gorm:"type:varchar(20);default:'internal';not null" json:"type"` // internal, easy_print, discussion
	Content   string    `gorm:"type:text;not null" json:"content"`
	CreatedBy string    `gorm:"type:varchar(255)" json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
}

// PaymentInfo is the totals block of an order. Remaining is always derived
// as max(0, FinalAmount - Paid) by the store's update primitive, never
// written independently.
type PaymentInfo struct {
	TotalAmount    float64 `gorm:"type:decimal(18,2);default:0;not null" json:"total_amount"`
	DiscountAmount float64 `gorm:"type:decimal(18,2);default:0;not null" json:"discount_amount"`
	ShippingFee    float64 `gorm:"type:decimal(18,2);default:0;not null" json:"shipping_fee"`
	TaxAmount      float64 `gorm:"type:decimal(18,2);default:0;not null" json:"tax_amount"`
	AdditionalFee  float64 `gorm:"type:decimal(18,2);default:0;not null" json:"additional_fee"`
	BankTransfer   float64 `gorm:"type:decimal(18,2);default:0;not null" json:"bank_transfer"`
	FinalAmount    float64 `gorm:"type:decimal(18,2);default:0;not null" json:"final_amount"`
	Paid           float64 `gorm:"type:decimal(18,2);default:0;not null" json:"paid"`
	Remaining      float64 `gorm:"type:decimal(18,2);default:0;not null" json:"remaining"`
	COD            float64 `gorm:"type:decimal(18,2);default:0;not null" json:"cod"`
	Method         string  `gorm:"type:varchar(20);default:'cod'" json:"method"` // cod, bank_transfer, cash
}

// ShippingInfo carries recipient and delivery details.
type ShippingInfo struct {
	RecipientName         string     `gorm:"type:varchar(255)" json:"recipient_name"`
	RecipientPhone        string     `gorm:"type:varchar(50)" json:"recipient_phone"`
	Street                string     `gorm:"type:varchar(255)" json:"street"`
	Ward                  string     `gorm:"type:varchar(100)" json:"ward"`
	District              string     `gorm:"type:varchar(100)" json:"district"`
	Province              string     `gorm:"type:varchar(100)" json:"province"`
	EstimatedDeliveryDate *time.Time `json:"estimated_delivery_date"`
	TrackingNumber        string     `gorm:"type:varchar(100)" json:"tracking_number"`
	WeightGram            int        `gorm:"type:int;default:0" json:"weight_gram"`
	LengthCm              int        `gorm:"type:int;default:0" json:"length_cm"`
	WidthCm               int        `gorm:"type:int;default:0" json:"width_cm"`
	HeightCm              int        `gorm:"type:int;default:0" json:"height_cm"`
	FreeShipping          bool       `gorm:"default:false" json:"free_shipping"`
}
