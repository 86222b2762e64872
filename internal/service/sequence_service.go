package service

import (
	"context"
	"fmt"
	"time"

	"github.com/dotuanbn/ANHUYHOADON-sub000/internal/model"
	"github.com/dotuanbn/ANHUYHOADON-sub000/internal/repository"
)

// SequenceService hands out human-facing business numbers. It is an explicit
// injected dependency of whatever creates orders; the persisted counter
// lives in the sequences table, not in package state.
type SequenceService interface {
	NextOrderNumber(ctx context.Context) (string, error)
}

type sequenceService struct {
	seqRepo repository.SequenceRepository
	now     func() time.Time
}

func NewSequenceService(seqRepo repository.SequenceRepository) SequenceService {
	return &sequenceService{seqRepo: seqRepo, now: time.Now}
}

// NextOrderNumber formats the next counter value as DH-YYYYMMDD-NNNNN.
func (s *sequenceService) NextOrderNumber(ctx context.Context) (string, error) {
	value, err := s.seqRepo.Next(ctx, model.SequenceOrderNumber)
	if err != nil {
		return "", fmt.Errorf("failed to advance order number sequence: %w", err)
	}
	return fmt.Sprintf("DH-%s-%05d", s.now().Format("20060102"), value), nil
}
