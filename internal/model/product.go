package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Product is an item in the catalog. Orders copy its code/name/price into
// their line items at creation time.
type Product struct {
	ID          uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Code        string         `gorm:"type:varchar(100);uniqueIndex;not null" json:"code"`
	Name        string         `gorm:"type:varchar(255);not null" json:"name"`
	Price       float64        `gorm:"type:decimal(18,2);not null" json:"price"`
	Stock       int            `gorm:"type:int;default:0;not null" json:"stock"`
	Category    string         `gorm:"type:varchar(100)" json:"category,omitempty"`
	Description string         `gorm:"type:text" json:"description,omitempty"`
	ImageURL    string         `gorm:"type:varchar(500)" json:"image_url,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}
