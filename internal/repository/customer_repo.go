package repository

import (
	"context"

	"github.com/dotuanbn/ANHUYHOADON-sub000/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CustomerRepository interface {
	Create(ctx context.Context, customer *model.Customer) error
	Update(ctx context.Context, customer *model.Customer) error
	UpdateStats(ctx context.Context, id uuid.UUID, stats model.Customer) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Customer, error)
	FindByPhone(ctx context.Context, phone string) (*model.Customer, error)
	List(ctx context.Context, search string, page, limit int) ([]model.Customer, int64, error)
	DeleteAddressesByCustomerID(ctx context.Context, customerID uuid.UUID) error
	CreateAddresses(ctx context.Context, addresses []model.CustomerAddress) error
}

type customerRepository struct {
	db *gorm.DB
}

func NewCustomerRepository(db *gorm.DB) CustomerRepository {
	return &customerRepository{db: db}
}

func (r *customerRepository) Create(ctx context.Context, customer *model.Customer) error {
	return GetDB(ctx, r.db).Create(customer).Error
}

func (r *customerRepository) Update(ctx context.Context, customer *model.Customer) error {
	return GetDB(ctx, r.db).Omit("Addresses").Save(customer).Error
}

// UpdateStats overwrites the four derived fields wholesale. Identity fields
// are never touched on this path.
func (r *customerRepository) UpdateStats(ctx context.Context, id uuid.UUID, stats model.Customer) error {
	return GetDB(ctx, r.db).Model(&model.Customer{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"total_orders":      stats.TotalOrders,
			"successful_orders": stats.SuccessfulOrders,
			"total_spent":       stats.TotalSpent,
			"last_order_date":   stats.LastOrderDate,
		}).Error
}

func (r *customerRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return GetDB(ctx, r.db).Where("id = ?", id).Delete(&model.Customer{}).Error
}

func (r *customerRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Customer, error) {
	var customer model.Customer
	if err := GetDB(ctx, r.db).Preload("Addresses").First(&customer, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &customer, nil
}

func (r *customerRepository) FindByPhone(ctx context.Context, phone string) (*model.Customer, error) {
	var customer model.Customer
	if err := GetDB(ctx, r.db).Preload("Addresses").First(&customer, "phone = ?", phone).Error; err != nil {
		return nil, err
	}
	return &customer, nil
}

func (r *customerRepository) List(ctx context.Context, search string, page, limit int) ([]model.Customer, int64, error) {
	var customers []model.Customer
	var total int64

	db := GetDB(ctx, r.db)
	apply := func(q *gorm.DB) *gorm.DB {
		if search != "" {
			like := "%" + search + "%"
			q = q.Where("name ILIKE ? OR phone ILIKE ? OR email ILIKE ?", like, like, like)
		}
		return q
	}

	if err := apply(db.Model(&model.Customer{})).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := apply(db.Model(&model.Customer{})).
		Preload("Addresses").
		Order("created_at DESC").
		Offset(offset).Limit(limit).
		Find(&customers).Error; err != nil {
		return nil, 0, err
	}

	return customers, total, nil
}

func (r *customerRepository) DeleteAddressesByCustomerID(ctx context.Context, customerID uuid.UUID) error {
	return GetDB(ctx, r.db).Where("customer_id = ?", customerID).Delete(&model.CustomerAddress{}).Error
}

func (r *customerRepository) CreateAddresses(ctx context.Context, addresses []model.CustomerAddress) error {
	if len(addresses) == 0 {
		return nil
	}
	return GetDB(ctx, r.db).Create(&addresses).Error
}
