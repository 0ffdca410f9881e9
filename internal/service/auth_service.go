package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/campushack/portal/internal/config"
	"github.com/campushack/portal/internal/mailer"
	"github.com/campushack/portal/internal/model"
	"github.com/campushack/portal/internal/repository"
	"github.com/campushack/portal/pkg/apperror"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const resetTicketTTL = time.Hour

type RegisterInput struct {
	Name     string `json:"name" binding:"required,min=2,max=100"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

type LoginInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type ForgotPasswordInput struct {
	Email string `json:"email" binding:"required,email"`
}

type ResetPasswordInput struct {
	Password string `json:"password" binding:"required,min=8"`
}

type UserPayload struct {
	ID    uuid.UUID `json:"id"`
	Email string    `json:"email"`
	Role  string    `json:"role"`
}

type AuthResponse struct {
	User  UserPayload `json:"user"`
	Token string      `json:"token"`
}

type AuthService interface {
	Register(ctx context.Context, input RegisterInput) (*AuthResponse, error)
	Login(ctx context.Context, input LoginInput) (*AuthResponse, error)
	Verify(ctx context.Context, accountID uuid.UUID) (*model.Account, error)
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, rawToken, newPassword string) (*AuthResponse, error)
}

type authService struct {
	accounts repository.AccountRepository
	identity IdentityService
	tokens   TokenService
	mail     mailer.Sender
	baseURL  string
}

func NewAuthService(
	accounts repository.AccountRepository,
	identity IdentityService,
	tokens TokenService,
	mail mailer.Sender,
	cfg *config.Config,
) AuthService {
	return &authService{
		accounts: accounts,
		identity: identity,
		tokens:   tokens,
		mail:     mail,
		baseURL:  cfg.BaseURL,
	}
}

func (s *authService) Register(ctx context.Context, input RegisterInput) (*AuthResponse, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	account, err := s.identity.Resolve(ctx, AuthEvent{
		Provider:     ProviderLocal,
		Email:        input.Email,
		Name:         input.Name,
		PasswordHash: string(hash),
	})
	if err != nil {
		return nil, err
	}

	return s.buildAuthResponse(account)
}

func (s *authService) Login(ctx context.Context, input LoginInput) (*AuthResponse, error) {
	account, err := s.accounts.FindByEmail(ctx, input.Email)
	if err != nil {
		// Unknown email and wrong password look identical to the caller.
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, invalidCredentials()
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(input.Password)); err != nil {
		return nil, invalidCredentials()
	}

	return s.buildAuthResponse(account)
}

func (s *authService) Verify(ctx context.Context, accountID uuid.UUID) (*model.Account, error) {
	account, err := s.accounts.FindByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("user not found")
		}
		return nil, err
	}

	return account, nil
}

// ForgotPassword issues a single-use reset ticket and mails the reset link.
// An unknown email is reported as success so the endpoint cannot be used to
// enumerate accounts.
func (s *authService) ForgotPassword(ctx context.Context, email string) error {
	account, err := s.accounts.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}

	rawToken, err := generateResetToken()
	if err != nil {
		return err
	}

	expiresAt := time.Now().Add(resetTicketTTL)
	if err := s.accounts.SetResetTicket(ctx, account.ID, hashResetToken(rawToken), expiresAt); err != nil {
		return err
	}

	resetURL := fmt.Sprintf("%s/api/auth/resetpassword/%s", s.baseURL, rawToken)
	body := fmt.Sprintf(
		"You are receiving this email because you (or someone else) has requested a password reset.\n\nPlease make a PUT request to:\n\n%s",
		resetURL,
	)

	if err := s.mail.Send(account.Email, "Password Reset Token", body); err != nil {
		// A ticket nobody can receive must not stay live.
		if clearErr := s.accounts.ClearResetTicket(ctx, account.ID); clearErr != nil {
			return clearErr
		}
		return apperror.New(502, "email could not be sent", errors.Join(apperror.ErrUpstream, err))
	}

	return nil
}

// ResetPassword consumes a reset ticket: the new password is set and the
// ticket cleared in the same guarded write, so a ticket can never be
// replayed. Invalid and expired tickets are indistinguishable to the caller.
func (s *authService) ResetPassword(ctx context.Context, rawToken, newPassword string) (*AuthResponse, error) {
	tokenHash := hashResetToken(rawToken)

	account, err := s.accounts.FindByResetTicket(ctx, tokenHash, time.Now())
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, invalidResetToken()
		}
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.accounts.ConsumeResetTicket(ctx, account.ID, tokenHash, string(hash)); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, invalidResetToken()
		}
		return nil, err
	}

	return s.buildAuthResponse(account)
}

func (s *authService) buildAuthResponse(account *model.Account) (*AuthResponse, error) {
	token, _, err := s.tokens.Issue(account)
	if err != nil {
		return nil, err
	}

	return &AuthResponse{
		User: UserPayload{
			ID:    account.ID,
			Email: account.Email,
			Role:  account.Role,
		},
		Token: token,
	}, nil
}

func invalidCredentials() error {
	return apperror.New(401, "invalid credentials", apperror.ErrInvalidCredential)
}

func invalidResetToken() error {
	return apperror.New(401, "invalid or expired token", apperror.ErrInvalidCredential)
}

func generateResetToken() (string, error) {
	buf := make([]byte, 20)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

func hashResetToken(rawToken string) string {
	sum := sha256.Sum256([]byte(rawToken))
	return hex.EncodeToString(sum[:])
}
