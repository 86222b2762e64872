package repository

import (
	"context"

	"github.com/dotuanbn/ANHUYHOADON-sub000/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TemplateRepository interface {
	Create(ctx context.Context, template *model.PrintTemplate) error
	Update(ctx context.Context, template *model.PrintTemplate) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.PrintTemplate, error)
	FindDefault(ctx context.Context, kind string) (*model.PrintTemplate, error)
	ClearDefault(ctx context.Context, kind string) error
	List(ctx context.Context, kind string, page, limit int) ([]model.PrintTemplate, int64, error)
}

type templateRepository struct {
	db *gorm.DB
}

func NewTemplateRepository(db *gorm.DB) TemplateRepository {
	return &templateRepository{db: db}
}

func (r *templateRepository) Create(ctx context.Context, template *model.PrintTemplate) error {
	return GetDB(ctx, r.db).Create(template).Error
}

func (r *templateRepository) Update(ctx context.Context, template *model.PrintTemplate) error {
	return GetDB(ctx, r.db).Save(template).Error
}

func (r *templateRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return GetDB(ctx, r.db).Where("id = ?", id).Delete(&model.PrintTemplate{}).Error
}

func (r *templateRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.PrintTemplate, error) {
	var template model.PrintTemplate
	if err := GetDB(ctx, r.db).First(&template, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &template, nil
}

func (r *templateRepository) FindDefault(ctx context.Context, kind string) (*model.PrintTemplate, error) {
	var template model.PrintTemplate
	if err := GetDB(ctx, r.db).
		First(&template, "kind = ? AND is_default = true", kind).Error; err != nil {
		return nil, err
	}
	return &template, nil
}

// ClearDefault unsets the default flag for every template of the kind so a
// new default can be promoted inside the same transaction.
func (r *templateRepository) ClearDefault(ctx context.Context, kind string) error {
	return GetDB(ctx, r.db).Model(&model.PrintTemplate{}).
		Where("kind = ?", kind).
		Update("is_default", false).Error
}

func (r *templateRepository) List(ctx context.Context, kind string, page, limit int) ([]model.PrintTemplate, int64, error) {
	var templates []model.PrintTemplate
	var total int64

	db := GetDB(ctx, r.db)
	query := db.Model(&model.PrintTemplate{})
	if kind != "" {
		query = query.Where("kind = ?", kind)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	fetch := db.Model(&model.PrintTemplate{})
	if kind != "" {
		fetch = fetch.Where("kind = ?", kind)
	}
	if err := fetch.Order("created_at DESC").Offset(offset).Limit(limit).Find(&templates).Error; err != nil {
		return nil, 0, err
	}

	return templates, total, nil
}
