package repository

import (
	"context"
	"time"

	"github.com/campushack/portal/internal/model"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AccountRepository interface {
	Create(ctx context.Context, account *model.Account) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Account, error)
	FindByEmail(ctx context.Context, email string) (*model.Account, error)
	Update(ctx context.Context, account *model.Account) error

	// SetTeam writes the denormalized team back-reference. Only the team
	// service calls this.
	SetTeam(ctx context.Context, accountID, teamID uuid.UUID) error

	// Reset ticket lifecycle. ConsumeResetTicket is guarded so that two
	// concurrent consumers of the same ticket cannot both succeed.
	SetResetTicket(ctx context.Context, accountID uuid.UUID, tokenHash string, expiresAt time.Time) error
	ClearResetTicket(ctx context.Context, accountID uuid.UUID) error
	FindByResetTicket(ctx context.Context, tokenHash string, now time.Time) (*model.Account, error)
	ConsumeResetTicket(ctx context.Context, accountID uuid.UUID, tokenHash, newPasswordHash string) error

	CreateIdentity(ctx context.Context, identity *model.ExternalIdentity) error
	FindIdentity(ctx context.Context, provider, subjectID string) (*model.ExternalIdentity, error)
}

type accountRepository struct {
	db *gorm.DB
}

func NewAccountRepository(db *gorm.DB) AccountRepository {
	return &accountRepository{db: db}
}

func (r *accountRepository) Create(ctx context.Context, account *model.Account) error {
	return r.db.WithContext(ctx).Create(account).Error
}

func (r *accountRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Account, error) {
	var account model.Account
	if err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&account).Error; err != nil {
		return nil, err
	}

	return &account, nil
}

func (r *accountRepository) FindByEmail(ctx context.Context, email string) (*model.Account, error) {
	var account model.Account
	if err := r.db.WithContext(ctx).
		Where("email = ?", model.NormalizeEmail(email)).
		First(&account).Error; err != nil {
		return nil, err
	}

	return &account, nil
}

func (r *accountRepository) Update(ctx context.Context, account *model.Account) error {
	return r.db.WithContext(ctx).Save(account).Error
}

func (r *accountRepository) SetTeam(ctx context.Context, accountID, teamID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&model.Account{}).
		Where("id = ?", accountID).
		Update("team_id", teamID).Error
}

func (r *accountRepository) SetResetTicket(ctx context.Context, accountID uuid.UUID, tokenHash string, expiresAt time.Time) error {
	return r.db.WithContext(ctx).
		Model(&model.Account{}).
		Where("id = ?", accountID).
		Updates(map[string]any{
			"reset_token_hash":       tokenHash,
			"reset_token_expires_at": expiresAt,
		}).Error
}

func (r *accountRepository) ClearResetTicket(ctx context.Context, accountID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&model.Account{}).
		Where("id = ?", accountID).
		Updates(map[string]any{
			"reset_token_hash":       nil,
			"reset_token_expires_at": nil,
		}).Error
}

func (r *accountRepository) FindByResetTicket(ctx context.Context, tokenHash string, now time.Time) (*model.Account, error) {
	var account model.Account
	if err := r.db.WithContext(ctx).
		Where("reset_token_hash = ? AND reset_token_expires_at > ?", tokenHash, now).
		First(&account).Error; err != nil {
		return nil, err
	}

	return &account, nil
}

// ConsumeResetTicket sets the new password and clears the ticket in one
// write. The WHERE clause re-checks the hash so a replayed or raced consume
// matches zero rows instead of overwriting the password twice.
func (r *accountRepository) ConsumeResetTicket(ctx context.Context, accountID uuid.UUID, tokenHash, newPasswordHash string) error {
	res := r.db.WithContext(ctx).
		Model(&model.Account{}).
		Where("id = ? AND reset_token_hash = ?", accountID, tokenHash).
		Updates(map[string]any{
			"password_hash":          newPasswordHash,
			"reset_token_hash":       nil,
			"reset_token_expires_at": nil,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

func (r *accountRepository) CreateIdentity(ctx context.Context, identity *model.ExternalIdentity) error {
	return r.db.WithContext(ctx).Create(identity).Error
}

func (r *accountRepository) FindIdentity(ctx context.Context, provider, subjectID string) (*model.ExternalIdentity, error) {
	var identity model.ExternalIdentity
	if err := r.db.WithContext(ctx).
		Where("provider = ? AND subject_id = ?", provider, subjectID).
		First(&identity).Error; err != nil {
		return nil, err
	}

	return &identity, nil
}
