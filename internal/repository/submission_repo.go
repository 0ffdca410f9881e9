package repository

import (
	"context"

	"github.com/campushack/portal/internal/model"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SubmissionRepository interface {
	// Create is guarded by the (team_id, problem_id) unique index.
	Create(ctx context.Context, submission *model.Submission) error
	FindByTeam(ctx context.Context, teamID uuid.UUID) (*model.Submission, error)
	FindByTeamAndProblem(ctx context.Context, teamID, problemID uuid.UUID) (*model.Submission, error)
	Update(ctx context.Context, submission *model.Submission) error
	FindByProblem(ctx context.Context, problemID uuid.UUID) ([]*model.Submission, error)
}

type submissionRepository struct {
	db *gorm.DB
}

func NewSubmissionRepository(db *gorm.DB) SubmissionRepository {
	return &submissionRepository{db: db}
}

func (r *submissionRepository) Create(ctx context.Context, submission *model.Submission) error {
	return r.db.WithContext(ctx).Create(submission).Error
}

func (r *submissionRepository) FindByTeam(ctx context.Context, teamID uuid.UUID) (*model.Submission, error) {
	var submission model.Submission
	if err := r.db.WithContext(ctx).
		Where("team_id = ?", teamID).
		First(&submission).Error; err != nil {
		return nil, err
	}

	return &submission, nil
}

func (r *submissionRepository) FindByTeamAndProblem(ctx context.Context, teamID, problemID uuid.UUID) (*model.Submission, error) {
	var submission model.Submission
	if err := r.db.WithContext(ctx).
		Where("team_id = ? AND problem_id = ?", teamID, problemID).
		First(&submission).Error; err != nil {
		return nil, err
	}

	return &submission, nil
}

func (r *submissionRepository) Update(ctx context.Context, submission *model.Submission) error {
	return r.db.WithContext(ctx).Save(submission).Error
}

func (r *submissionRepository) FindByProblem(ctx context.Context, problemID uuid.UUID) ([]*model.Submission, error) {
	var submissions []*model.Submission
	if err := r.db.WithContext(ctx).
		Preload("Team").
		Preload("Team.Leader").
		Preload("Team.Members").
		Preload("Team.Members.Account").
		Where("problem_id = ?", problemID).
		Find(&submissions).Error; err != nil {
		return nil, err
	}

	return submissions, nil
}
