package database

import (
	"log"

	"github.com/dotuanbn/ANHUYHOADON-sub000/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// NewConnection initializes a new connection pool using GORM
func NewConnection(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	// Auto-migrate core models
	err = db.AutoMigrate(
		&model.User{},
		&model.Product{},
		&model.Customer{},
		&model.CustomerAddress{},
		&model.Order{},
		&model.OrderItem{},
		&model.OrderNote{},
		&model.PrintTemplate{},
		&model.AuditLog{},
		&model.Sequence{},
	)
	if err != nil {
		log.Println("WARNING: Failed to auto-migrate models:", err)
	}

	return db, nil
}
