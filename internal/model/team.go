package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Team groups a leader and up to three members competing together.
// The Team row is the source of truth for membership; Account.TeamID is a
// denormalized back-reference maintained by the team service alone.
type Team struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name      string    `gorm:"size:100;uniqueIndex;not null" json:"name"`
	Institute string    `gorm:"size:150;not null" json:"institute"`
	LeaderID  uuid.UUID `gorm:"type:uuid;not null;index" json:"leader_id"`
	Leader    *Account  `gorm:"foreignKey:LeaderID" json:"leader,omitempty"`

	Members []TeamMember `gorm:"constraint:OnDelete:CASCADE" json:"members"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (t *Team) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

// TeamMember keeps a denormalized copy of the member's email so the roster
// stays displayable even if the account link is ever broken.
type TeamMember struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	TeamID    uuid.UUID `gorm:"type:uuid;not null;index" json:"team_id"`
	AccountID uuid.UUID `gorm:"type:uuid;not null;index" json:"account_id"`
	Email     string    `gorm:"size:100;not null" json:"email"`
	Account   *Account  `gorm:"foreignKey:AccountID" json:"account,omitempty"`
}

func (m *TeamMember) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}
