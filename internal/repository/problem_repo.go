package repository

import (
	"context"

	"github.com/campushack/portal/internal/model"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ProblemRepository is read-only: problem content is owned by the admin
// tooling, this service only validates references against it.
type ProblemRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*model.Problem, error)
}

type problemRepository struct {
	db *gorm.DB
}

func NewProblemRepository(db *gorm.DB) ProblemRepository {
	return &problemRepository{db: db}
}

func (r *problemRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Problem, error) {
	var problem model.Problem
	if err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&problem).Error; err != nil {
		return nil, err
	}

	return &problem, nil
}
