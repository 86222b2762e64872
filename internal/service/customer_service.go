package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dotuanbn/ANHUYHOADON-sub000/internal/model"
	"github.com/dotuanbn/ANHUYHOADON-sub000/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// --- Address DTO ---

type AddressPayload struct {
	Street    string `json:"street"`
	Ward      string `json:"ward"`
	District  string `json:"district"`
	Province  string `json:"province"`
	IsDefault bool   `json:"is_default"`
}

// --- Customer DTOs ---

type CreateCustomerRequest struct {
	Name      string           `json:"name" binding:"required"`
	Phone     string           `json:"phone"`
	Email     string           `json:"email" binding:"omitempty,email"`
	Addresses []AddressPayload `json:"addresses"`
}

type UpdateCustomerRequest struct {
	Name      *string           `json:"name"`
	Phone     *string           `json:"phone"`
	Email     *string           `json:"email"`
	Addresses *[]AddressPayload `json:"addresses"` // pointer so nil = not sent, [] = clear all
}

// --- Interface ---

// CustomerService owns customer CRUD and the statistics aggregator. The
// derived fields (TotalOrders, SuccessfulOrders, TotalSpent, LastOrderDate)
// are only ever written by RecomputeStats — a full recompute from the
// current order set, never an incremental adjustment.
type CustomerService interface {
	CreateCustomer(ctx context.Context, req CreateCustomerRequest) (*model.Customer, error)
	UpdateCustomer(ctx context.Context, id string, req UpdateCustomerRequest) (*model.Customer, error)
	DeleteCustomer(ctx context.Context, id string) error
	GetCustomerByID(ctx context.Context, id string) (*model.Customer, error)
	GetCustomers(ctx context.Context, search string, page, limit int) ([]model.Customer, int64, error)
	RecomputeStats(ctx context.Context, customerID uuid.UUID) error
}

type customerService struct {
	customerRepo repository.CustomerRepository
	orderRepo    repository.OrderRepository
	txManager    repository.TransactionManager
}

func NewCustomerService(
	customerRepo repository.CustomerRepository,
	orderRepo repository.OrderRepository,
	txManager repository.TransactionManager,
) CustomerService {
	return &customerService{
		customerRepo: customerRepo,
		orderRepo:    orderRepo,
		txManager:    txManager,
	}
}

// normalizeAddresses guarantees at most one default; the first entry becomes
// the default when none is marked.
func normalizeAddresses(customerID uuid.UUID, payloads []AddressPayload) []model.CustomerAddress {
	addresses := make([]model.CustomerAddress, 0, len(payloads))
	defaultSeen := false
	for _, p := range payloads {
		isDefault := p.IsDefault && !defaultSeen
		if isDefault {
			defaultSeen = true
		}
		addresses = append(addresses, model.CustomerAddress{
			CustomerID: customerID,
			Street:     p.Street,
			Ward:       p.Ward,
			District:   p.District,
			Province:   p.Province,
			IsDefault:  isDefault,
		})
	}
	if len(addresses) > 0 && !defaultSeen {
		addresses[0].IsDefault = true
	}
	return addresses
}

func (s *customerService) CreateCustomer(ctx context.Context, req CreateCustomerRequest) (*model.Customer, error) {
	customer := &model.Customer{
		Name:  req.Name,
		Phone: req.Phone,
		Email: req.Email,
	}

	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.customerRepo.Create(txCtx, customer); err != nil {
			return fmt.Errorf("failed to create customer: %w", err)
		}
		if len(req.Addresses) > 0 {
			addresses := normalizeAddresses(customer.ID, req.Addresses)
			if err := s.customerRepo.CreateAddresses(txCtx, addresses); err != nil {
				return fmt.Errorf("failed to create customer addresses: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.customerRepo.FindByID(ctx, customer.ID)
}

func (s *customerService) UpdateCustomer(ctx context.Context, id string, req UpdateCustomerRequest) (*model.Customer, error) {
	customerID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid customer id: %w", err)
	}

	customer, err := s.customerRepo.FindByID(ctx, customerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("customer not found")
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if req.Name != nil {
		customer.Name = *req.Name
	}
	if req.Phone != nil {
		customer.Phone = *req.Phone
	}
	if req.Email != nil {
		customer.Email = *req.Email
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.customerRepo.Update(txCtx, customer); err != nil {
			return fmt.Errorf("failed to update customer: %w", err)
		}
		if req.Addresses != nil {
			if err := s.customerRepo.DeleteAddressesByCustomerID(txCtx, customerID); err != nil {
				return fmt.Errorf("failed to clear customer addresses: %w", err)
			}
			addresses := normalizeAddresses(customerID, *req.Addresses)
			if err := s.customerRepo.CreateAddresses(txCtx, addresses); err != nil {
				return fmt.Errorf("failed to replace customer addresses: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.customerRepo.FindByID(ctx, customerID)
}

func (s *customerService) DeleteCustomer(ctx context.Context, id string) error {
	customerID, err := uuid.Parse(id)
	if err != nil {
		return fmt.Errorf("invalid customer id: %w", err)
	}
	if _, err := s.customerRepo.FindByID(ctx, customerID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errors.New("customer not found")
		}
		return fmt.Errorf("database error: %w", err)
	}
	return s.customerRepo.Delete(ctx, customerID)
}

func (s *customerService) GetCustomerByID(ctx context.Context, id string) (*model.Customer, error) {
	customerID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid customer id: %w", err)
	}
	customer, err := s.customerRepo.FindByID(ctx, customerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("customer not found")
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return customer, nil
}

func (s *customerService) GetCustomers(ctx context.Context, search string, page, limit int) ([]model.Customer, int64, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}
	return s.customerRepo.List(ctx, search, page, limit)
}

// RecomputeStats derives the customer statistics wholesale from the order
// set and overwrites the stored fields. Idempotent: with no intervening
// order mutation a second call writes the same values.
func (s *customerService) RecomputeStats(ctx context.Context, customerID uuid.UUID) error {
	orders, err := s.orderRepo.ListByCustomer(ctx, customerID)
	if err != nil {
		return fmt.Errorf("failed to list customer orders: %w", err)
	}

	stats := ComputeCustomerStats(orders)
	if err := s.customerRepo.UpdateStats(ctx, customerID, stats); err != nil {
		return fmt.Errorf("failed to persist customer stats: %w", err)
	}
	return nil
}

// ComputeCustomerStats folds an order set into the four derived fields.
// Delivered orders alone count toward success and lifetime spend.
func ComputeCustomerStats(orders []model.Order) model.Customer {
	var stats model.Customer
	var last *time.Time

	stats.TotalOrders = len(orders)
	for _, o := range orders {
		if o.Status == model.StatusDelivered {
			stats.SuccessfulOrders++
			stats.TotalSpent += o.Payment.FinalAmount
		}
		created := o.CreatedAt
		if last == nil || created.After(*last) {
			last = &created
		}
	}
	stats.LastOrderDate = last
	return stats
}
