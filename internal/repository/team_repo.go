package repository

import (
	"context"

	"github.com/campushack/portal/internal/model"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TeamRepository interface {
	// Create inserts the team together with its member rows. The unique
	// index on name is the authoritative guard against double creation.
	Create(ctx context.Context, team *model.Team) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Team, error)
	FindByName(ctx context.Context, name string) (*model.Team, error)
	FindByLeader(ctx context.Context, leaderID uuid.UUID) (*model.Team, error)

	// FindByParticipant locates a team the account appears in as leader or
	// member, matching by account id or by the denormalized member email.
	FindByParticipant(ctx context.Context, accountID uuid.UUID, email string) (*model.Team, error)
}

type teamRepository struct {
	db *gorm.DB
}

func NewTeamRepository(db *gorm.DB) TeamRepository {
	return &teamRepository{db: db}
}

func (r *teamRepository) Create(ctx context.Context, team *model.Team) error {
	return r.db.WithContext(ctx).Create(team).Error
}

func (r *teamRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Team, error) {
	var team model.Team
	if err := r.db.WithContext(ctx).
		Preload("Leader").
		Preload("Members").
		Preload("Members.Account").
		Where("id = ?", id).
		First(&team).Error; err != nil {
		return nil, err
	}

	return &team, nil
}

func (r *teamRepository) FindByName(ctx context.Context, name string) (*model.Team, error) {
	var team model.Team
	if err := r.db.WithContext(ctx).
		Where("name = ?", name).
		First(&team).Error; err != nil {
		return nil, err
	}

	return &team, nil
}

func (r *teamRepository) FindByLeader(ctx context.Context, leaderID uuid.UUID) (*model.Team, error) {
	var team model.Team
	if err := r.db.WithContext(ctx).
		Preload("Members").
		Where("leader_id = ?", leaderID).
		First(&team).Error; err != nil {
		return nil, err
	}

	return &team, nil
}

func (r *teamRepository) FindByParticipant(ctx context.Context, accountID uuid.UUID, email string) (*model.Team, error) {
	var team model.Team
	if err := r.db.WithContext(ctx).
		Joins("LEFT JOIN team_members ON team_members.team_id = teams.id").
		Where("teams.leader_id = ? OR team_members.account_id = ? OR team_members.email = ?",
			accountID, accountID, model.NormalizeEmail(email)).
		First(&team).Error; err != nil {
		return nil, err
	}

	return &team, nil
}
