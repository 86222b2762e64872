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

type CreateTemplateRequest struct {
	Name      string `json:"name" binding:"required"`
	Kind      string `json:"kind" binding:"required,oneof=INVOICE SHIPPING_LABEL RECEIPT"`
	PaperSize string `json:"paper_size"`
	Content   string `json:"content" binding:"required"`
	IsDefault bool   `json:"is_default"`
}

type UpdateTemplateRequest struct {
	Name      *string `json:"name"`
	PaperSize *string `json:"paper_size"`
	Content   *string `json:"content"`
	IsDefault *bool   `json:"is_default"`
}

// TemplateService manages print templates. Promoting a default demotes the
// previous default of the same kind inside one transaction, so at most one
// default per kind ever exists.
type TemplateService interface {
	CreateTemplate(ctx context.Context, req CreateTemplateRequest, actor string) (*model.PrintTemplate, error)
	UpdateTemplate(ctx context.Context, id string, req UpdateTemplateRequest, actor string) (*model.PrintTemplate, error)
	DeleteTemplate(ctx context.Context, id string, actor string) error
	GetTemplateByID(ctx context.Context, id string) (*model.PrintTemplate, error)
	GetDefaultTemplate(ctx context.Context, kind string) (*model.PrintTemplate, error)
	GetTemplates(ctx context.Context, kind string, page, limit int) ([]model.PrintTemplate, int64, error)
}

type templateService struct {
	templateRepo repository.TemplateRepository
	auditRepo    repository.AuditRepository
	txManager    repository.TransactionManager
}

func NewTemplateService(
	templateRepo repository.TemplateRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
) TemplateService {
	return &templateService{
		templateRepo: templateRepo,
		auditRepo:    auditRepo,
		txManager:    txManager,
	}
}

func (s *templateService) CreateTemplate(ctx context.Context, req CreateTemplateRequest, actor string) (*model.PrintTemplate, error) {
	paperSize := req.PaperSize
	if paperSize == "" {
		paperSize = "A4"
	}
	template := &model.PrintTemplate{
		Name:      req.Name,
		Kind:      req.Kind,
		PaperSize: paperSize,
		Content:   req.Content,
		IsDefault: req.IsDefault,
	}

	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if template.IsDefault {
			if err := s.templateRepo.ClearDefault(txCtx, template.Kind); err != nil {
				return fmt.Errorf("failed to demote previous default: %w", err)
			}
		}
		if err := s.templateRepo.Create(txCtx, template); err != nil {
			return fmt.Errorf("failed to create template: %w", err)
		}
		return s.auditRepo.Log(txCtx, auditEntry(actor, model.ActionCreateTemplate, template.ID.String(), template.Name))
	})
	if err != nil {
		return nil, err
	}
	return template, nil
}

func (s *templateService) UpdateTemplate(ctx context.Context, id string, req UpdateTemplateRequest, actor string) (*model.PrintTemplate, error) {
	templateID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid template id: %w", err)
	}

	template, err := s.templateRepo.FindByID(ctx, templateID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("template not found")
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if req.Name != nil {
		template.Name = *req.Name
	}
	if req.PaperSize != nil {
		template.PaperSize = *req.PaperSize
	}
	if req.Content != nil {
		template.Content = *req.Content
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if req.IsDefault != nil && *req.IsDefault && !template.IsDefault {
			if err := s.templateRepo.ClearDefault(txCtx, template.Kind); err != nil {
				return fmt.Errorf("failed to demote previous default: %w", err)
			}
			template.IsDefault = true
		}
		if req.IsDefault != nil && !*req.IsDefault {
			template.IsDefault = false
		}
		if err := s.templateRepo.Update(txCtx, template); err != nil {
			return fmt.Errorf("failed to update template: %w", err)
		}
		return s.auditRepo.Log(txCtx, auditEntry(actor, model.ActionUpdateTemplate, template.ID.String(), template.Name))
	})
	if err != nil {
		return nil, err
	}
	return template, nil
}

func (s *templateService) DeleteTemplate(ctx context.Context, id string, actor string) error {
	templateID, err := uuid.Parse(id)
	if err != nil {
		return fmt.Errorf("invalid template id: %w", err)
	}

	template, err := s.templateRepo.FindByID(ctx, templateID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errors.New("template not found")
		}
		return fmt.Errorf("database error: %w", err)
	}

	return s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.templateRepo.Delete(txCtx, templateID); err != nil {
			return fmt.Errorf("failed to delete template: %w", err)
		}
		return s.auditRepo.Log(txCtx, auditEntry(actor, model.ActionDeleteTemplate, template.ID.String(), template.Name))
	})
}

func (s *templateService) GetTemplateByID(ctx context.Context, id string) (*model.PrintTemplate, error) {
	templateID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid template id: %w", err)
	}
	template, err := s.templateRepo.FindByID(ctx, templateID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("template not found")
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return template, nil
}

func (s *templateService) GetDefaultTemplate(ctx context.Context, kind string) (*model.PrintTemplate, error) {
	template, err := s.templateRepo.FindDefault(ctx, kind)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("no default template for kind " + kind)
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return template, nil
}

func (s *templateService) GetTemplates(ctx context.Context, kind string, page, limit int) ([]model.PrintTemplate, int64, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}
	return s.templateRepo.List(ctx, kind, page, limit)
}
