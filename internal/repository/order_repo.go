package repository

import (
	"context"
	"time"

	"github.com/dotuanbn/ANHUYHOADON-sub000/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// OrderFilter narrows order listings.
type OrderFilter struct {
	Status     string
	CustomerID string
	Search     string // matches order number, recipient name or phone
	Page       int
	Limit      int
}

// OrderRepository is the record store for orders. UpdateOrder is the one
// primitive that mutates a stored order: it merges a patch, applies the
// update-time normalization rules and stamps UpdatedAt. Concurrent updates
// from separate clients are last-write-wins; the workflow engine wraps its
// read-modify-write in a transaction, plain field updates are not otherwise
// serialized.
type OrderRepository interface {
	Create(ctx context.Context, order *model.Order) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Order, error)
	FindByPosCode(ctx context.Context, code string) (*model.Order, error)
	UpdateOrder(ctx context.Context, id uuid.UUID, patch model.OrderPatch) (*model.Order, error)
	ReplaceItems(ctx context.Context, orderID uuid.UUID, items []model.OrderItem) error
	SaveTotals(ctx context.Context, order *model.Order) error
	SetCustomer(ctx context.Context, orderID uuid.UUID, customerID *uuid.UUID) error
	IncrementPrintCount(ctx context.Context, id uuid.UUID) (int, error)
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, filter OrderFilter) ([]model.Order, int64, error)
	ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]model.Order, error)
}

type orderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepository{db: db}
}

func (r *orderRepository) Create(ctx context.Context, order *model.Order) error {
	return GetDB(ctx, r.db).Create(order).Error
}

func (r *orderRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	var order model.Order
	if err := GetDB(ctx, r.db).
		Preload("Items").
		Preload("Notes", func(db *gorm.DB) *gorm.DB {
			return db.Order("order_notes.created_at ASC")
		}).
		Preload("Customer").
		First(&order, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *orderRepository) FindByPosCode(ctx context.Context, code string) (*model.Order, error) {
	var order model.Order
	if err := GetDB(ctx, r.db).
		Preload("Items").
		Preload("Notes").
		First(&order, "pos_code = ?", code).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

// UpdateOrder loads the order, applies the patch in memory (normalization
// included) and persists field changes plus appended notes. Returns the
// refreshed order.
func (r *orderRepository) UpdateOrder(ctx context.Context, id uuid.UUID, patch model.OrderPatch) (*model.Order, error) {
	order, err := r.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	noteCount := len(order.Notes)
	patch.Apply(order, time.Now())

	db := GetDB(ctx, r.db)
	if err := db.Omit("Items", "Notes", "Customer").Save(order).Error; err != nil {
		return nil, err
	}

	// Notes are append-only: only rows the patch added are inserted
	newNotes := order.Notes[noteCount:]
	for i := range newNotes {
		if err := db.Create(&newNotes[i]).Error; err != nil {
			return nil, err
		}
	}

	return r.FindByID(ctx, id)
}

func (r *orderRepository) ReplaceItems(ctx context.Context, orderID uuid.UUID, items []model.OrderItem) error {
	db := GetDB(ctx, r.db)
	if err := db.Where("order_id = ?", orderID).Delete(&model.OrderItem{}).Error; err != nil {
		return err
	}
	if len(items) == 0 {
		return nil
	}
	for i := range items {
		items[i].OrderID = orderID
	}
	return db.Create(&items).Error
}

// SaveTotals persists the payment block after the service recomputed item
// totals, without touching associations.
func (r *orderRepository) SaveTotals(ctx context.Context, order *model.Order) error {
	return GetDB(ctx, r.db).Omit("Items", "Notes", "Customer").Save(order).Error
}

func (r *orderRepository) SetCustomer(ctx context.Context, orderID uuid.UUID, customerID *uuid.UUID) error {
	return GetDB(ctx, r.db).Model(&model.Order{}).
		Where("id = ?", orderID).
		Update("customer_id", customerID).Error
}

func (r *orderRepository) IncrementPrintCount(ctx context.Context, id uuid.UUID) (int, error) {
	db := GetDB(ctx, r.db)
	if err := db.Model(&model.Order{}).
		Where("id = ?", id).
		Update("print_count", gorm.Expr("print_count + 1")).Error; err != nil {
		return 0, err
	}
	var order model.Order
	if err := db.Select("print_count").First(&order, "id = ?", id).Error; err != nil {
		return 0, err
	}
	return order.PrintCount, nil
}

func (r *orderRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return GetDB(ctx, r.db).Where("id = ?", id).Delete(&model.Order{}).Error
}

func (r *orderRepository) List(ctx context.Context, filter OrderFilter) ([]model.Order, int64, error) {
	var orders []model.Order
	var total int64

	db := GetDB(ctx, r.db)
	apply := func(q *gorm.DB) *gorm.DB {
		if filter.Status != "" {
			q = q.Where("status = ?", filter.Status)
		}
		if filter.CustomerID != "" {
			q = q.Where("customer_id = ?", filter.CustomerID)
		}
		if filter.Search != "" {
			like := "%" + filter.Search + "%"
			q = q.Where("order_number ILIKE ? OR shipping_recipient_name ILIKE ? OR shipping_recipient_phone ILIKE ?",
				like, like, like)
		}
		return q
	}

	if err := apply(db.Model(&model.Order{})).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.Limit <= 0 {
		filter.Limit = 20
	}
	offset := (filter.Page - 1) * filter.Limit

	if err := apply(db.Model(&model.Order{})).
		Preload("Items").
		Preload("Customer").
		Order("created_at DESC").
		Offset(offset).Limit(filter.Limit).
		Find(&orders).Error; err != nil {
		return nil, 0, err
	}

	return orders, total, nil
}

func (r *orderRepository) ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]model.Order, error) {
	var orders []model.Order
	if err := GetDB(ctx, r.db).
		Where("customer_id = ?", customerID).
		Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}
