package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/dotuanbn/ANHUYHOADON-sub000/internal/model"
	"github.com/dotuanbn/ANHUYHOADON-sub000/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CreateProductRequest struct {
	Code        string  `json:"code" binding:"required"`
	Name        string  `json:"name" binding:"required"`
	Price       float64 `json:"price" binding:"gte=0"`
	Stock       int     `json:"stock" binding:"gte=0"`
	Category    string  `json:"category"`
	Description string  `json:"description"`
	ImageURL    string  `json:"image_url"`
}

type UpdateProductRequest struct {
	Name        *string  `json:"name"`
	Price       *float64 `json:"price" binding:"omitempty,gte=0"`
	Stock       *int     `json:"stock" binding:"omitempty,gte=0"`
	Category    *string  `json:"category"`
	Description *string  `json:"description"`
	ImageURL    *string  `json:"image_url"`
}

// ProductService owns the catalog. Product edits never rewrite historical
// order items: those carry their own snapshot.
type ProductService interface {
	CreateProduct(ctx context.Context, req CreateProductRequest, actor string) (*model.Product, error)
	UpdateProduct(ctx context.Context, id string, req UpdateProductRequest, actor string) (*model.Product, error)
	DeleteProduct(ctx context.Context, id string, actor string) error
	GetProductByID(ctx context.Context, id string) (*model.Product, error)
	GetProducts(ctx context.Context, search string, page, limit int) ([]model.Product, int64, error)
}

type productService struct {
	productRepo repository.ProductRepository
	auditRepo   repository.AuditRepository
	txManager   repository.TransactionManager
}

func NewProductService(
	productRepo repository.ProductRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
) ProductService {
	return &productService{
		productRepo: productRepo,
		auditRepo:   auditRepo,
		txManager:   txManager,
	}
}

func auditEntry(actor, action string, entityID, entityName string) *model.AuditLog {
	var uid *uuid.UUID
	if parsed, err := uuid.Parse(actor); err == nil {
		uid = &parsed
	}
	return &model.AuditLog{
		UserID:     uid,
		Action:     action,
		EntityID:   entityID,
		EntityName: entityName,
	}
}

func (s *productService) CreateProduct(ctx context.Context, req CreateProductRequest, actor string) (*model.Product, error) {
	if _, err := s.productRepo.FindByCode(ctx, req.Code); err == nil {
		return nil, errors.New("product code already exists")
	}

	product := &model.Product{
		Code:        req.Code,
		Name:        req.Name,
		Price:       req.Price,
		Stock:       req.Stock,
		Category:    req.Category,
		Description: req.Description,
		ImageURL:    req.ImageURL,
	}

	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.productRepo.Create(txCtx, product); err != nil {
			return fmt.Errorf("failed to create product: %w", err)
		}
		return s.auditRepo.Log(txCtx, auditEntry(actor, model.ActionCreateProduct, product.ID.String(), product.Name))
	})
	if err != nil {
		return nil, err
	}
	return product, nil
}

func (s *productService) UpdateProduct(ctx context.Context, id string, req UpdateProductRequest, actor string) (*model.Product, error) {
	productID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid product id: %w", err)
	}

	product, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("product not found")
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if req.Name != nil {
		product.Name = *req.Name
	}
	if req.Price != nil {
		product.Price = *req.Price
	}
	if req.Stock != nil {
		product.Stock = *req.Stock
	}
	if req.Category != nil {
		product.Category = *req.Category
	}
	if req.Description != nil {
		product.Description = *req.Description
	}
	if req.ImageURL != nil {
		product.ImageURL = *req.ImageURL
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.productRepo.Update(txCtx, product); err != nil {
			return fmt.Errorf("failed to update product: %w", err)
		}
		return s.auditRepo.Log(txCtx, auditEntry(actor, model.ActionUpdateProduct, product.ID.String(), product.Name))
	})
	if err != nil {
		return nil, err
	}
	return product, nil
}

func (s *productService) DeleteProduct(ctx context.Context, id string, actor string) error {
	productID, err := uuid.Parse(id)
	if err != nil {
		return fmt.Errorf("invalid product id: %w", err)
	}

	product, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errors.New("product not found")
		}
		return fmt.Errorf("database error: %w", err)
	}

	return s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.productRepo.Delete(txCtx, productID); err != nil {
			return fmt.Errorf("failed to delete product: %w", err)
		}
		return s.auditRepo.Log(txCtx, auditEntry(actor, model.ActionDeleteProduct, product.ID.String(), product.Name))
	})
}

func (s *productService) GetProductByID(ctx context.Context, id string) (*model.Product, error) {
	productID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid product id: %w", err)
	}
	product, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("product not found")
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return product, nil
}

func (s *productService) GetProducts(ctx context.Context, search string, page, limit int) ([]model.Product, int64, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}
	return s.productRepo.List(ctx, search, page, limit)
}
