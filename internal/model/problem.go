package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Problem is managed by the content admin tooling; this service only reads
// it to validate submission registrations and to label organizer listings.
type Problem struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Title       string    `gorm:"size:200;not null" json:"title"`
	Domain      string    `gorm:"size:100;not null" json:"domain"`
	Difficulty  string    `gorm:"size:20;not null" json:"difficulty"`
	IsActive    bool      `gorm:"not null;default:true" json:"is_active"`
	HackathonID uuid.UUID `gorm:"type:uuid;not null;index" json:"hackathon_id"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (p *Problem) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// Hackathon is the event a problem belongs to. Read-only here.
type Hackathon struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Name      string     `gorm:"size:150;not null" json:"name"`
	Theme     string     `gorm:"size:150" json:"theme"`
	StartDate *time.Time `json:"start_date,omitempty"`
	EndDate   *time.Time `json:"end_date,omitempty"`
	CreatedAt time.Time  `gorm:"autoCreateTime" json:"created_at"`
}

func (h *Hackathon) BeforeCreate(tx *gorm.DB) error {
	if h.ID == uuid.Nil {
		h.ID = uuid.New()
	}
	return nil
}
