package service

import (
	"context"
	"errors"
	"time"

	"github.com/campushack/portal/internal/model"
	"github.com/campushack/portal/internal/repository"
	"github.com/campushack/portal/pkg/apperror"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type RegisterSubmissionInput struct {
	ProblemID string `json:"problem_id" binding:"required,uuid"`
}

type SubmitSolutionInput struct {
	IdeaSummary *string `json:"idea_summary"`
	GithubLink  *string `json:"github_link"`
	PPTLink     *string `json:"ppt_link"`
	VideoLink   *string `json:"video_link"`
}

type SubmissionDetails struct {
	IdeaSummary *string    `json:"idea_summary,omitempty"`
	GithubLink  *string    `json:"github_link,omitempty"`
	PPTLink     *string    `json:"ppt_link,omitempty"`
	VideoLink   *string    `json:"video_link,omitempty"`
	Submitted   bool       `json:"submitted"`
	SubmittedAt *time.Time `json:"submitted_at,omitempty"`
}

// TeamSubmissionView denormalizes a team and its submission for organizer
// review of one problem.
type TeamSubmissionView struct {
	TeamID            uuid.UUID          `json:"team_id"`
	TeamName          string             `json:"team_name"`
	Institute         string             `json:"institute"`
	Leader            *model.Account     `json:"leader,omitempty"`
	Members           []model.TeamMember `json:"members"`
	SubmissionDetails SubmissionDetails  `json:"submission_details"`
}

type SubmissionService interface {
	RegisterForProblem(ctx context.Context, leaderID, problemID uuid.UUID) (*model.Submission, error)
	SubmitSolution(ctx context.Context, leaderID uuid.UUID, input SubmitSolutionInput) (*model.Submission, error)
	ListTeamsForProblem(ctx context.Context, problemID uuid.UUID) ([]*TeamSubmissionView, error)
}

type submissionService struct {
	teams       repository.TeamRepository
	submissions repository.SubmissionRepository
	problems    repository.ProblemRepository
}

func NewSubmissionService(
	teams repository.TeamRepository,
	submissions repository.SubmissionRepository,
	problems repository.ProblemRepository,
) SubmissionService {
	return &submissionService{
		teams:       teams,
		submissions: submissions,
		problems:    problems,
	}
}

// RegisterForProblem declares a team's intent to attempt a problem. At most
// one registration exists per (team, problem); repeated calls fail with the
// same conflict instead of creating a second row.
func (s *submissionService) RegisterForProblem(ctx context.Context, leaderID, problemID uuid.UUID) (*model.Submission, error) {
	team, err := s.teams.FindByLeader(ctx, leaderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("team not found")
		}
		return nil, err
	}

	problem, err := s.problems.FindByID(ctx, problemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("problem not found")
		}
		return nil, err
	}
	if !problem.IsActive {
		return nil, apperror.Conflict("problem is not open for registration")
	}

	if _, err := s.submissions.FindByTeamAndProblem(ctx, team.ID, problemID); err == nil {
		return nil, apperror.Conflict("team already registered for this problem")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	submission := &model.Submission{
		TeamID:    team.ID,
		ProblemID: problemID,
	}
	if err := s.submissions.Create(ctx, submission); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperror.Conflict("team already registered for this problem")
		}
		return nil, err
	}

	return submission, nil
}

// SubmitSolution fills in the deliverable on the team's registration and
// marks it submitted. Re-submission overwrites the fields; the submission
// timestamp is stamped once, on the first submit.
func (s *submissionService) SubmitSolution(ctx context.Context, leaderID uuid.UUID, input SubmitSolutionInput) (*model.Submission, error) {
	team, err := s.teams.FindByLeader(ctx, leaderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("team not found")
		}
		return nil, err
	}

	submission, err := s.submissions.FindByTeam(ctx, team.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("no problem registered for this team")
		}
		return nil, err
	}

	submission.IdeaSummary = input.IdeaSummary
	submission.GithubLink = input.GithubLink
	submission.PPTLink = input.PPTLink
	submission.VideoLink = input.VideoLink
	if !submission.Submitted {
		now := time.Now()
		submission.Submitted = true
		submission.SubmittedAt = &now
	}

	if err := s.submissions.Update(ctx, submission); err != nil {
		return nil, err
	}

	return submission, nil
}

// ListTeamsForProblem is a pure read for organizers: every registered team
// with its roster and submission details. The Team rows are the source of
// truth for membership, so inconsistent back-references still list
// correctly here.
func (s *submissionService) ListTeamsForProblem(ctx context.Context, problemID uuid.UUID) ([]*TeamSubmissionView, error) {
	if _, err := s.problems.FindByID(ctx, problemID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("problem not found")
		}
		return nil, err
	}

	submissions, err := s.submissions.FindByProblem(ctx, problemID)
	if err != nil {
		return nil, err
	}

	views := make([]*TeamSubmissionView, 0, len(submissions))
	for _, submission := range submissions {
		if submission.Team == nil {
			continue
		}
		views = append(views, &TeamSubmissionView{
			TeamID:    submission.Team.ID,
			TeamName:  submission.Team.Name,
			Institute: submission.Team.Institute,
			Leader:    submission.Team.Leader,
			Members:   submission.Team.Members,
			SubmissionDetails: SubmissionDetails{
				IdeaSummary: submission.IdeaSummary,
				GithubLink:  submission.GithubLink,
				PPTLink:     submission.PPTLink,
				VideoLink:   submission.VideoLink,
				Submitted:   submission.Submitted,
				SubmittedAt: submission.SubmittedAt,
			},
		})
	}

	return views, nil
}
