package service

import (
	"context"
	"errors"
	"log"
	"net/http"

	"github.com/campushack/portal/internal/model"
	"github.com/campushack/portal/internal/repository"
	"github.com/campushack/portal/pkg/apperror"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MaxTeamMembers is the number of members besides the leader.
const MaxTeamMembers = 3

// ErrIsSelf is distinct from the generic affiliation conflict so clients
// can render a clearer message.
var ErrIsSelf = apperror.New(http.StatusConflict, "you cannot add yourself as a team member", apperror.ErrConflict)

type CreateTeamInput struct {
	TeamName     string   `json:"team_name" binding:"required,min=3,max=100"`
	Institute    string   `json:"institute" binding:"required,max=150"`
	MemberEmails []string `json:"member_emails" binding:"max=3,dive,email"`
}

// MemberCandidate is what the pre-creation lookup returns for a valid,
// unaffiliated account.
type MemberCandidate struct {
	ID     uuid.UUID  `json:"id"`
	Name   string     `json:"name"`
	Email  string     `json:"email"`
	Role   string     `json:"role"`
	TeamID *uuid.UUID `json:"team_id,omitempty"`
}

type TeamService interface {
	CreateTeam(ctx context.Context, leaderID uuid.UUID, input CreateTeamInput) (*model.Team, error)
	FindMemberCandidate(ctx context.Context, requesterID uuid.UUID, email string, problemID *uuid.UUID) (*MemberCandidate, error)
}

type teamService struct {
	accounts    repository.AccountRepository
	teams       repository.TeamRepository
	submissions repository.SubmissionRepository
}

func NewTeamService(
	accounts repository.AccountRepository,
	teams repository.TeamRepository,
	submissions repository.SubmissionRepository,
) TeamService {
	return &teamService{
		accounts:    accounts,
		teams:       teams,
		submissions: submissions,
	}
}

// CreateTeam creates the team row with its member rows, then writes the
// denormalized team reference onto the leader and each member. The Team row
// is the source of truth; a failed back-reference write is logged as a
// recoverable inconsistency, never rolled back.
func (s *teamService) CreateTeam(ctx context.Context, leaderID uuid.UUID, input CreateTeamInput) (*model.Team, error) {
	leader, err := s.accounts.FindByID(ctx, leaderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("user not found")
		}
		return nil, err
	}
	if leader.TeamID != nil {
		return nil, apperror.Conflict("you are already part of a team")
	}

	// Fast user-facing pre-check; the unique index on name is the guard
	// that actually closes the double-create race.
	if _, err := s.teams.FindByName(ctx, input.TeamName); err == nil {
		return nil, apperror.Conflict("team name already exists")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	members, err := s.resolveMembers(ctx, leader, input.MemberEmails)
	if err != nil {
		return nil, err
	}

	team := &model.Team{
		Name:      input.TeamName,
		Institute: input.Institute,
		LeaderID:  leader.ID,
		Members:   members,
	}

	if err := s.teams.Create(ctx, team); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperror.Conflict("team name already exists")
		}
		return nil, err
	}

	// Independent follow-up writes; each is individually retryable.
	if err := s.accounts.SetTeam(ctx, leader.ID, team.ID); err != nil {
		log.Printf("inconsistent team linkage: leader %s not linked to team %s: %v", leader.ID, team.ID, err)
	}
	for _, member := range team.Members {
		if err := s.accounts.SetTeam(ctx, member.AccountID, team.ID); err != nil {
			log.Printf("inconsistent team linkage: member %s not linked to team %s: %v", member.AccountID, team.ID, err)
		}
	}

	created, err := s.teams.FindByID(ctx, team.ID)
	if err != nil {
		return team, nil
	}
	return created, nil
}

// resolveMembers maps every email to an existing, unaffiliated account.
// Any failure rejects the whole operation; partial teams are never created.
func (s *teamService) resolveMembers(ctx context.Context, leader *model.Account, emails []string) ([]model.TeamMember, error) {
	if len(emails) > MaxTeamMembers {
		return nil, apperror.New(http.StatusBadRequest, "a team can have at most 3 members besides the leader", apperror.ErrBadRequest)
	}

	seen := make(map[string]bool, len(emails))
	members := make([]model.TeamMember, 0, len(emails))

	for _, raw := range emails {
		email := model.NormalizeEmail(raw)
		if email == leader.Email {
			return nil, ErrIsSelf
		}
		if seen[email] {
			return nil, apperror.New(http.StatusBadRequest, "duplicate member email: "+email, apperror.ErrBadRequest)
		}
		seen[email] = true

		account, err := s.accounts.FindByEmail(ctx, email)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, apperror.NotFound("no user found for " + email)
			}
			return nil, err
		}
		if account.TeamID != nil {
			return nil, apperror.Conflict(email + " is already part of a team")
		}

		members = append(members, model.TeamMember{
			AccountID: account.ID,
			Email:     account.Email,
		})
	}

	return members, nil
}

// FindMemberCandidate validates a prospective member before team creation:
// the account must exist, must not be the requester, and must not already
// appear in any team (by back-reference or by roster search, so stale
// linkage still conflicts).
func (s *teamService) FindMemberCandidate(ctx context.Context, requesterID uuid.UUID, email string, problemID *uuid.UUID) (*MemberCandidate, error) {
	account, err := s.accounts.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("user not found")
		}
		return nil, err
	}

	if account.ID == requesterID {
		return nil, ErrIsSelf
	}

	team, err := s.teams.FindByParticipant(ctx, account.ID, account.Email)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if team == nil && account.TeamID != nil {
		team, err = s.teams.FindByID(ctx, *account.TeamID)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}

	if team != nil {
		if problemID != nil {
			if _, err := s.submissions.FindByTeamAndProblem(ctx, team.ID, *problemID); err == nil {
				return nil, apperror.Conflict("user already part of a team for this problem")
			} else if !errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, err
			}
		}
		return nil, apperror.Conflict("user is already part of a team")
	}

	return &MemberCandidate{
		ID:     account.ID,
		Name:   account.Name,
		Email:  account.Email,
		Role:   account.Role,
		TeamID: account.TeamID,
	}, nil
}
