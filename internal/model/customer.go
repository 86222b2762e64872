package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Customer represents a buyer. The statistics block (TotalOrders,
// SuccessfulOrders, TotalSpent, LastOrderDate) is derived wholesale from the
// order set by the stats aggregator and is never hand-edited.
type Customer struct {
	ID    uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name  string    `gorm:"type:varchar(255);not null" json:"name"`
	Phone string    `gorm:"type:varchar(50);index" json:"phone"`
	Email string    `gorm:"type:varchar(255)" json:"email"`

	Addresses []CustomerAddress `gorm:"foreignKey:CustomerID;constraint:OnDelete:CASCADE" json:"addresses"`

	TotalOrders      int        `gorm:"type:int;default:0;not null" json:"total_orders"`
	SuccessfulOrders int        `gorm:"type:int;default:0;not null" json:"successful_orders"`
	TotalSpent       float64    `gorm:"type:decimal(18,2);default:0;not null" json:"total_spent"`
	LastOrderDate    *time.Time `json:"last_order_date"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// CustomerAddress is a saved delivery address; at most one is the default.
type CustomerAddress struct {
	ID         uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	CustomerID uuid.UUID `gorm:"type:uuid;not null;index" json:"customer_id"`
	Street     string    `gorm:"type:varchar(255)" json:"street"`
	Ward       string    `gorm:"type:varchar(100)" json:"ward"`
	District   string    `gorm:"type:varchar(100)" json:"district"`
	Province   string    `gorm:"type:varchar(100)" json:"province"`
	IsDefault  bool      `gorm:"default:false" json:"is_default"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
