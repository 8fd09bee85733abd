// Package service implements the business logic of the application:
// account registration and authentication, link shortening, ownership
// scoping and visit recording.
package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/Puzzlebottom/tinyapp/internal/auth"
	"github.com/Puzzlebottom/tinyapp/internal/models"
	"github.com/Puzzlebottom/tinyapp/internal/storage"
)

// AccountRepository defines the account storage operations the service needs.
type AccountRepository interface {
	// Create stores a new account record.
	// Returns storage.ErrAccountExists if the email is already registered.
	Create(ctx context.Context, id, email, passwordHash string) (*models.Account, error)

	// GetByID retrieves an account by its ID.
	// Returns storage.ErrAccountNotFound if no such account exists.
	GetByID(ctx context.Context, id string) (*models.Account, error)

	// GetByEmail retrieves an account by exact, case-sensitive email match.
	// Returns storage.ErrAccountNotFound if no such account exists.
	GetByEmail(ctx context.Context, email string) (*models.Account, error)
}

// AccountService provides registration, credential verification and
// account lookup.
type AccountService struct {
	repo       AccountRepository
	bcryptCost int
	validate   *validator.Validate
}

// NewAccountService creates a new AccountService with the provided
// repository and bcrypt cost factor.
func NewAccountService(repo AccountRepository, bcryptCost int) *AccountService {
	return &AccountService{
		repo:       repo,
		bcryptCost: bcryptCost,
		validate:   validator.New(),
	}
}

// Register creates a new account with a freshly hashed password and
// returns it. The account ID is assigned here and never changes.
func (s *AccountService) Register(ctx context.Context, email, password string) (*models.Account, error) {
	const op = "service.AccountService.Register"

	if email == "" || password == "" {
		return nil, fmt.Errorf("%s: email and password cannot be blank: %w", op, ErrInvalidArgument)
	}

	if err := s.validate.Var(email, "email"); err != nil {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidEmail)
	}

	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	account, err := s.repo.Create(ctx, uuid.NewString(), email, hash)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to register account: %w", op, err)
	}

	return account, nil
}

// Authenticate verifies the email/password pair and returns the matching
// account. An unknown email and a wrong password both come back as
// ErrInvalidCredentials; hashing failures pass through untouched.
func (s *AccountService) Authenticate(ctx context.Context, email, password string) (*models.Account, error) {
	const op = "service.AccountService.Authenticate"

	account, err := s.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, storage.ErrAccountNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	ok, err := auth.VerifyPassword(password, account.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if !ok {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}

	return account, nil
}

// FindByEmail looks up an account by exact email match. The email shape
// is validated first; a malformed query fails with ErrInvalidEmail and
// absence is reported as storage.ErrAccountNotFound.
func (s *AccountService) FindByEmail(ctx context.Context, email string) (*models.Account, error) {
	const op = "service.AccountService.FindByEmail"

	if err := s.validate.Var(email, "email"); err != nil {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidEmail)
	}

	account, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to find account: %w", op, err)
	}

	return account, nil
}

// GetByID retrieves an account by its ID.
func (s *AccountService) GetByID(ctx context.Context, id string) (*models.Account, error) {
	const op = "service.AccountService.GetByID"

	account, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to get account: %w", op, err)
	}

	return account, nil
}
