package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Submission is a team's registration and deliverable for one problem.
// Uniqueness is per (team, problem): registering twice for the same problem
// is rejected, both at the application layer and by the composite index.
type Submission struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	TeamID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_team_problem" json:"team_id"`
	ProblemID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_team_problem" json:"problem_id"`
	Team      *Team     `gorm:"foreignKey:TeamID" json:"team,omitempty"`

	IdeaSummary *string `gorm:"type:text" json:"idea_summary,omitempty"`
	GithubLink  *string `gorm:"type:text" json:"github_link,omitempty"`
	PPTLink     *string `gorm:"type:text" json:"ppt_link,omitempty"`
	VideoLink   *string `gorm:"type:text" json:"video_link,omitempty"`

	Submitted   bool       `gorm:"not null;default:false" json:"submitted"`
	SubmittedAt *time.Time `json:"submitted_at,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (s *Submission) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}
