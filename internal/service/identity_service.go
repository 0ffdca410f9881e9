package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log"

	"github.com/campushack/portal/internal/mailer"
	"github.com/campushack/portal/internal/model"
	"github.com/campushack/portal/internal/repository"
	"github.com/campushack/portal/pkg/apperror"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// ProviderLocal marks password-based authentication events. Anything else
// is the name of an external OAuth provider.
const ProviderLocal = "local"

// AuthEvent is a normalized authentication event: either a local
// registration (PasswordHash set, SubjectID empty) or an external provider
// callback profile.
type AuthEvent struct {
	Provider     string
	SubjectID    string
	Email        string
	Name         string
	PictureURL   string
	PasswordHash string
}

// IdentityService collapses authentication events into one canonical
// Account per normalized email, creating or linking as needed.
type IdentityService interface {
	Resolve(ctx context.Context, event AuthEvent) (*model.Account, error)
}

type identityService struct {
	accounts repository.AccountRepository
	mail     mailer.Sender
}

func NewIdentityService(accounts repository.AccountRepository, mail mailer.Sender) IdentityService {
	return &identityService{
		accounts: accounts,
		mail:     mail,
	}
}

func (s *identityService) Resolve(ctx context.Context, event AuthEvent) (*model.Account, error) {
	email := model.NormalizeEmail(event.Email)
	if email == "" {
		return nil, apperror.New(400, fmt.Sprintf("%s profile has no email", event.Provider), apperror.ErrBadRequest)
	}

	external := event.Provider != ProviderLocal

	// Fast path: this provider subject has logged in before.
	if external {
		identity, err := s.accounts.FindIdentity(ctx, event.Provider, event.SubjectID)
		if err == nil {
			return s.accounts.FindByID(ctx, identity.AccountID)
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}

	account, err := s.accounts.FindByEmail(ctx, email)
	if err == nil {
		if !external {
			return nil, apperror.Conflict("user already exists")
		}
		// Same email via a new provider: link instead of creating a
		// second account.
		return s.attachIdentity(ctx, account, event)
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	return s.provision(ctx, email, event)
}

func (s *identityService) provision(ctx context.Context, email string, event AuthEvent) (*model.Account, error) {
	external := event.Provider != ProviderLocal

	account := &model.Account{
		Name:  displayName(event, email),
		Email: email,
		Role:  model.RoleParticipant,
	}
	if event.PictureURL != "" {
		account.PictureURL = &event.PictureURL
	}

	// External accounts still need a password hash; the generated secret is
	// mailed to the user so they can use local login after changing it.
	var generated string
	if external {
		var err error
		generated, err = generatePassword()
		if err != nil {
			return nil, err
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(generated), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		account.PasswordHash = string(hash)
	} else {
		account.PasswordHash = event.PasswordHash
	}

	if err := s.accounts.Create(ctx, account); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// Lost a first-login race for this email; converge on the
			// account the winner created.
			if !external {
				return nil, apperror.Conflict("user already exists")
			}
			winner, ferr := s.accounts.FindByEmail(ctx, email)
			if ferr != nil {
				return nil, ferr
			}
			return s.attachIdentity(ctx, winner, event)
		}
		return nil, err
	}

	if external {
		attached, err := s.attachIdentity(ctx, account, event)
		if err != nil {
			return nil, err
		}
		if attached.ID != account.ID {
			// A concurrent callback attached this subject to another
			// account; that one is canonical, not the row just created.
			return attached, nil
		}
		s.sendWelcome(account, generated)
	}

	return account, nil
}

func (s *identityService) attachIdentity(ctx context.Context, account *model.Account, event AuthEvent) (*model.Account, error) {
	identity := &model.ExternalIdentity{
		AccountID: account.ID,
		Provider:  event.Provider,
		SubjectID: event.SubjectID,
	}

	if err := s.accounts.CreateIdentity(ctx, identity); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// A concurrent callback attached this subject first. The pair
			// resolves to exactly one account; return that one.
			existing, ferr := s.accounts.FindIdentity(ctx, event.Provider, event.SubjectID)
			if ferr != nil {
				return nil, ferr
			}
			return s.accounts.FindByID(ctx, existing.AccountID)
		}
		return nil, err
	}

	return account, nil
}

// sendWelcome mails the generated password after OAuth provisioning.
// Delivery is best-effort: a lost welcome mail must never fail the login.
func (s *identityService) sendWelcome(account *model.Account, password string) {
	to := account.Email
	name := account.Name
	go func() {
		body := fmt.Sprintf(
			"Hello %s,\n\nYour account has been created successfully!\n\nYour password is: %s\n\nPlease change it after your first login.\n\nBest,\nThe Hackathon Portal Team",
			name, password,
		)
		if err := s.mail.Send(to, "Welcome to the Hackathon Portal!", body); err != nil {
			log.Printf("failed to send welcome email to %s: %v", to, err)
		}
	}()
}

func displayName(event AuthEvent, email string) string {
	if event.Name != "" {
		return event.Name
	}
	return email
}

func generatePassword() (string, error) {
	buf := make([]byte, 9)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
