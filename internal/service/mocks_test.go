package service

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/Puzzlebottom/tinyapp/internal/models"
)

type MockAccountRepository struct {
	mock.Mock
}

func (r *MockAccountRepository) Create(ctx context.Context, id, email, passwordHash string) (*models.Account, error) {
	args := r.Called(ctx, id, email, passwordHash)
	account, _ := args.Get(0).(*models.Account)
	return account, args.Error(1)
}

func (r *MockAccountRepository) GetByID(ctx context.Context, id string) (*models.Account, error) {
	args := r.Called(ctx, id)
	account, _ := args.Get(0).(*models.Account)
	return account, args.Error(1)
}

func (r *MockAccountRepository) GetByEmail(ctx context.Context, email string) (*models.Account, error) {
	args := r.Called(ctx, email)
	account, _ := args.Get(0).(*models.Account)
	return account, args.Error(1)
}

type MockURLRepository struct {
	mock.Mock
}

func (r *MockURLRepository) Create(ctx context.Context, shortCode, targetURL, ownerID string) (*models.URL, error) {
	args := r.Called(ctx, shortCode, targetURL, ownerID)
	url, _ := args.Get(0).(*models.URL)
	return url, args.Error(1)
}

func (r *MockURLRepository) GetByShortCode(ctx context.Context, shortCode string) (*models.URL, error) {
	args := r.Called(ctx, shortCode)
	url, _ := args.Get(0).(*models.URL)
	return url, args.Error(1)
}

func (r *MockURLRepository) GetByOwner(ctx context.Context, ownerID string) (map[string]*models.URL, error) {
	args := r.Called(ctx, ownerID)
	urls, _ := args.Get(0).(map[string]*models.URL)
	return urls, args.Error(1)
}

func (r *MockURLRepository) ShortCodes(ctx context.Context) (map[string]struct{}, error) {
	args := r.Called(ctx)
	codes, _ := args.Get(0).(map[string]struct{})
	return codes, args.Error(1)
}

func (r *MockURLRepository) Update(ctx context.Context, shortCode, targetURL string) (*models.URL, error) {
	args := r.Called(ctx, shortCode, targetURL)
	url, _ := args.Get(0).(*models.URL)
	return url, args.Error(1)
}

func (r *MockURLRepository) Delete(ctx context.Context, shortCode string) error {
	args := r.Called(ctx, shortCode)
	return args.Error(0)
}

func (r *MockURLRepository) RecordVisit(ctx context.Context, shortCode, visitorID string, at time.Time) (*models.URL, error) {
	args := r.Called(ctx, shortCode, visitorID, at)
	url, _ := args.Get(0).(*models.URL)
	return url, args.Error(1)
}
