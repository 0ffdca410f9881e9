package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	RoleParticipant   = "participant"
	RoleJudge         = "judge"
	RoleAdministrator = "administrator"
)

// Account is the canonical identity a normalized email converges to,
// regardless of how many authentication methods are linked to it.
type Account struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Name       string     `gorm:"size:100;not null" json:"name"`
	Email      string     `gorm:"size:100;uniqueIndex;not null" json:"email"`
	Role       string     `gorm:"size:20;not null;default:participant" json:"role"`
	PictureURL *string    `gorm:"type:text" json:"picture_url,omitempty"`
	TeamID     *uuid.UUID `gorm:"type:uuid" json:"team_id,omitempty"`

	PasswordHash string `gorm:"size:255;not null" json:"-"`

	// Single-use password reset ticket. Only the sha256 of the token is
	// stored; both fields are cleared when the ticket is consumed.
	ResetTokenHash      *string    `gorm:"size:64;index" json:"-"`
	ResetTokenExpiresAt *time.Time `json:"-"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`

	Identities []ExternalIdentity `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}

func (a *Account) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	a.Email = NormalizeEmail(a.Email)
	return nil
}

// ExternalIdentity links one OAuth provider subject to an Account.
// A (provider, subject_id) pair resolves to at most one Account.
type ExternalIdentity struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	AccountID uuid.UUID `gorm:"type:uuid;not null;index" json:"account_id"`
	Provider  string    `gorm:"size:30;not null;uniqueIndex:idx_provider_subject" json:"provider"`
	SubjectID string    `gorm:"size:191;not null;uniqueIndex:idx_provider_subject" json:"subject_id"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (e *ExternalIdentity) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}

// NormalizeEmail is the single place email case-folding happens. Every
// lookup and every stored email goes through it.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
