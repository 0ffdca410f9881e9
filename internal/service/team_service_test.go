package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/campushack/portal/internal/model"
	"github.com/campushack/portal/internal/repository"
	"github.com/campushack/portal/internal/service"
	"github.com/campushack/portal/pkg/apperror"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type teamFixture struct {
	db       *gorm.DB
	accounts repository.AccountRepository
	teams    service.TeamService
}

func newTeamFixture(t *testing.T) *teamFixture {
	t.Helper()

	db := newTestDB(t)
	accounts := repository.NewAccountRepository(db)
	teams := service.NewTeamService(
		accounts,
		repository.NewTeamRepository(db),
		repository.NewSubmissionRepository(db),
	)

	return &teamFixture{db: db, accounts: accounts, teams: teams}
}

func (fx *teamFixture) createAccount(t *testing.T, name, email string) *model.Account {
	t.Helper()

	account := &model.Account{
		Name:         name,
		Email:        email,
		Role:         model.RoleParticipant,
		PasswordHash: "x",
	}
	require.NoError(t, fx.accounts.Create(context.Background(), account))
	return account
}

func TestTeamService_CreateTeam(t *testing.T) {
	fx := newTeamFixture(t)
	ctx := context.Background()

	leader := fx.createAccount(t, "Alice", "alice@example.com")
	fx.createAccount(t, "Bob", "bob@example.com")
	fx.createAccount(t, "Carol", "carol@example.com")

	team, err := fx.teams.CreateTeam(ctx, leader.ID, service.CreateTeamInput{
		TeamName:     "The Compilers",
		Institute:    "State University",
		MemberEmails: []string{"bob@example.com", "carol@example.com"},
	})
	require.NoError(t, err)

	assert.Equal(t, "The Compilers", team.Name)
	assert.Equal(t, leader.ID, team.LeaderID)
	require.Len(t, team.Members, 2)

	// Leader and members carry the denormalized back-reference.
	for _, email := range []string{"alice@example.com", "bob@example.com", "carol@example.com"} {
		account, err := fx.accounts.FindByEmail(ctx, email)
		require.NoError(t, err)
		require.NotNil(t, account.TeamID, email)
		assert.Equal(t, team.ID, *account.TeamID, email)
	}
}

func TestTeamService_LeaderAlreadyAffiliated(t *testing.T) {
	fx := newTeamFixture(t)
	ctx := context.Background()

	leader := fx.createAccount(t, "Alice", "alice@example.com")

	_, err := fx.teams.CreateTeam(ctx, leader.ID, service.CreateTeamInput{
		TeamName: "First Team", Institute: "State University",
	})
	require.NoError(t, err)

	_, err = fx.teams.CreateTeam(ctx, leader.ID, service.CreateTeamInput{
		TeamName: "Second Team", Institute: "State University",
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperror.ErrConflict))
}

func TestTeamService_NameTaken(t *testing.T) {
	fx := newTeamFixture(t)
	ctx := context.Background()

	first := fx.createAccount(t, "Alice", "alice@example.com")
	second := fx.createAccount(t, "Bob", "bob@example.com")

	_, err := fx.teams.CreateTeam(ctx, first.ID, service.CreateTeamInput{
		TeamName: "The Compilers", Institute: "State University",
	})
	require.NoError(t, err)

	_, err = fx.teams.CreateTeam(ctx, second.ID, service.CreateTeamInput{
		TeamName: "The Compilers", Institute: "Tech Institute",
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperror.ErrConflict))
	assert.Contains(t, err.Error(), "team name already exists")
}

// racingTeamRepo inserts a competing team with the same name before
// delegating Create, so the name pre-check passes but the delegated insert
// hits the unique index.
type racingTeamRepo struct {
	repository.TeamRepository
	db            *gorm.DB
	rivalLeaderID uuid.UUID
}

func (r *racingTeamRepo) Create(ctx context.Context, team *model.Team) error {
	rival := &model.Team{
		Name:      team.Name,
		Institute: "Rival Institute",
		LeaderID:  r.rivalLeaderID,
	}
	if err := r.db.WithContext(ctx).Create(rival).Error; err != nil {
		return err
	}
	return r.TeamRepository.Create(ctx, team)
}

func TestTeamService_ConcurrentCreateLosesOnName(t *testing.T) {
	fx := newTeamFixture(t)
	ctx := context.Background()

	leader := fx.createAccount(t, "Alice", "alice@example.com")
	rivalLeader := fx.createAccount(t, "Bob", "bob@example.com")

	teams := service.NewTeamService(
		fx.accounts,
		&racingTeamRepo{
			TeamRepository: repository.NewTeamRepository(fx.db),
			db:             fx.db,
			rivalLeaderID:  rivalLeader.ID,
		},
		repository.NewSubmissionRepository(fx.db),
	)

	_, err := teams.CreateTeam(ctx, leader.ID, service.CreateTeamInput{
		TeamName:  "The Compilers",
		Institute: "State University",
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperror.ErrConflict))
	assert.Contains(t, err.Error(), "team name already exists")

	// Only the winner's team exists; the loser was not linked to anything.
	var teamCount int64
	require.NoError(t, fx.db.Model(&model.Team{}).Count(&teamCount).Error)
	assert.EqualValues(t, 1, teamCount)

	account, err := fx.accounts.FindByID(ctx, leader.ID)
	require.NoError(t, err)
	assert.Nil(t, account.TeamID)
}

func TestTeamService_UnknownMemberCreatesNoTeam(t *testing.T) {
	fx := newTeamFixture(t)
	ctx := context.Background()

	leader := fx.createAccount(t, "Alice", "alice@example.com")

	_, err := fx.teams.CreateTeam(ctx, leader.ID, service.CreateTeamInput{
		TeamName:     "The Compilers",
		Institute:    "State University",
		MemberEmails: []string{"ghost@example.com"},
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperror.ErrNotFound))

	// The failed create left nothing behind.
	var teamCount int64
	require.NoError(t, fx.db.Model(&model.Team{}).Count(&teamCount).Error)
	assert.EqualValues(t, 0, teamCount)

	account, err := fx.accounts.FindByID(ctx, leader.ID)
	require.NoError(t, err)
	assert.Nil(t, account.TeamID)
}

func TestTeamService_LeaderCannotBeMember(t *testing.T) {
	fx := newTeamFixture(t)

	leader := fx.createAccount(t, "Alice", "alice@example.com")

	_, err := fx.teams.CreateTeam(context.Background(), leader.ID, service.CreateTeamInput{
		TeamName:     "The Compilers",
		Institute:    "State University",
		MemberEmails: []string{"Alice@Example.com"},
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, service.ErrIsSelf))
}

func TestTeamService_DuplicateMemberEmails(t *testing.T) {
	fx := newTeamFixture(t)

	leader := fx.createAccount(t, "Alice", "alice@example.com")
	fx.createAccount(t, "Bob", "bob@example.com")

	_, err := fx.teams.CreateTeam(context.Background(), leader.ID, service.CreateTeamInput{
		TeamName:     "The Compilers",
		Institute:    "State University",
		MemberEmails: []string{"bob@example.com", "Bob@Example.com"},
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperror.ErrBadRequest))
}

func TestTeamService_AffiliatedMemberRejected(t *testing.T) {
	fx := newTeamFixture(t)
	ctx := context.Background()

	first := fx.createAccount(t, "Alice", "alice@example.com")
	second := fx.createAccount(t, "Bob", "bob@example.com")
	fx.createAccount(t, "Carol", "carol@example.com")

	_, err := fx.teams.CreateTeam(ctx, first.ID, service.CreateTeamInput{
		TeamName:     "First Team",
		Institute:    "State University",
		MemberEmails: []string{"carol@example.com"},
	})
	require.NoError(t, err)

	_, err = fx.teams.CreateTeam(ctx, second.ID, service.CreateTeamInput{
		TeamName:     "Second Team",
		Institute:    "Tech Institute",
		MemberEmails: []string{"carol@example.com"},
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperror.ErrConflict))
}

func TestTeamService_FindMemberCandidate(t *testing.T) {
	fx := newTeamFixture(t)
	ctx := context.Background()

	requester := fx.createAccount(t, "Alice", "alice@example.com")
	bob := fx.createAccount(t, "Bob", "bob@example.com")

	candidate, err := fx.teams.FindMemberCandidate(ctx, requester.ID, "bob@example.com", nil)
	require.NoError(t, err)
	assert.Equal(t, bob.ID, candidate.ID)
	assert.Equal(t, "bob@example.com", candidate.Email)
	assert.Nil(t, candidate.TeamID)
}

func TestTeamService_FindMemberCandidateRejections(t *testing.T) {
	fx := newTeamFixture(t)
	ctx := context.Background()

	requester := fx.createAccount(t, "Alice", "alice@example.com")
	fx.createAccount(t, "Bob", "bob@example.com")
	carolLeader := fx.createAccount(t, "Carol", "carol@example.com")

	_, err := fx.teams.CreateTeam(ctx, carolLeader.ID, service.CreateTeamInput{
		TeamName:     "Taken Team",
		Institute:    "State University",
		MemberEmails: []string{"bob@example.com"},
	})
	require.NoError(t, err)

	t.Run("unknown user", func(t *testing.T) {
		_, err := fx.teams.FindMemberCandidate(ctx, requester.ID, "ghost@example.com", nil)
		require.Error(t, err)
		assert.True(t, errors.Is(err, apperror.ErrNotFound))
	})

	t.Run("self", func(t *testing.T) {
		_, err := fx.teams.FindMemberCandidate(ctx, requester.ID, "alice@example.com", nil)
		require.Error(t, err)
		assert.True(t, errors.Is(err, service.ErrIsSelf))
	})

	t.Run("already on a team", func(t *testing.T) {
		_, err := fx.teams.FindMemberCandidate(ctx, requester.ID, "bob@example.com", nil)
		require.Error(t, err)
		assert.True(t, errors.Is(err, apperror.ErrConflict))
	})

	t.Run("already on a team for this problem", func(t *testing.T) {
		problemID := seedProblemForTeam(t, fx.db, carolLeader.ID)

		_, err := fx.teams.FindMemberCandidate(ctx, requester.ID, "bob@example.com", &problemID)
		require.Error(t, err)
		assert.True(t, errors.Is(err, apperror.ErrConflict))
		assert.Contains(t, err.Error(), "for this problem")
	})
}

// seedProblemForTeam creates an active problem and registers the leader's
// team for it, returning the problem id.
func seedProblemForTeam(t *testing.T, db *gorm.DB, leaderID uuid.UUID) uuid.UUID {
	t.Helper()
	ctx := context.Background()

	hackathon := model.Hackathon{Name: "Test Hack", Theme: "Testing"}
	require.NoError(t, db.Create(&hackathon).Error)

	problem := model.Problem{
		Title:       "Test Problem",
		Domain:      "Web",
		Difficulty:  "Easy",
		IsActive:    true,
		HackathonID: hackathon.ID,
	}
	require.NoError(t, db.Create(&problem).Error)

	svc := service.NewSubmissionService(
		repository.NewTeamRepository(db),
		repository.NewSubmissionRepository(db),
		repository.NewProblemRepository(db),
	)
	_, err := svc.RegisterForProblem(ctx, leaderID, problem.ID)
	require.NoError(t, err)

	return problem.ID
}
