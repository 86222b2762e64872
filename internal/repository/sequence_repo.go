package repository

import (
	"context"
	"errors"

	"github.com/dotuanbn/ANHUYHOADON-sub000/internal/model"

	"gorm.io/gorm"
)

// SequenceRepository owns the persisted business-number counters.
type SequenceRepository interface {
	Next(ctx context.Context, name string) (int64, error)
}

type sequenceRepository struct {
	db *gorm.DB
}

func NewSequenceRepository(db *gorm.DB) SequenceRepository {
	return &sequenceRepository{db: db}
}

// Next increments and returns the counter. An advisory lock keyed on the
// sequence name keeps concurrent generators from handing out duplicates.
func (r *sequenceRepository) Next(ctx context.Context, name string) (int64, error) {
	db := GetDB(ctx, r.db)
	db.Exec("SELECT pg_advisory_xact_lock(hashtext(?))", "sequence:"+name)

	var seq model.Sequence
	err := db.First(&seq, "name = ?", name).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		seq = model.Sequence{Name: name, Value: 0}
		if createErr := db.Create(&seq).Error; createErr != nil {
			return 0, createErr
		}
	} else if err != nil {
		return 0, err
	}

	seq.Value++
	if err := db.Model(&model.Sequence{}).Where("name = ?", name).Update("value", seq.Value).Error; err != nil {
		return 0, err
	}

	return seq.Value, nil
}
