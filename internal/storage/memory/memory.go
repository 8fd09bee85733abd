// Package memory implements the storage repositories on top of in-process
// maps. State lives for the lifetime of the process; each collection is
// guarded by its own mutex because request handlers run concurrently.
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Puzzlebottom/tinyapp/internal/models"
	"github.com/Puzzlebottom/tinyapp/internal/storage"
)

// AccountRepository stores accounts keyed by account ID.
type AccountRepository struct {
	mu       sync.RWMutex
	accounts map[string]*models.Account
}

// NewAccountRepository creates an empty in-memory account repository.
func NewAccountRepository() *AccountRepository {
	return &AccountRepository{
		accounts: make(map[string]*models.Account),
	}
}

// Create stores a new account. The email must not be taken.
func (r *AccountRepository) Create(ctx context.Context, id, email, passwordHash string) (*models.Account, error) {
	const op = "storage.memory.AccountRepository.Create"

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.accounts[id]; exists {
		return nil, fmt.Errorf("%s: %w", op, storage.ErrAccountExists)
	}

	for _, account := range r.accounts {
		if account.Email == email {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrAccountExists)
		}
	}

	account := &models.Account{
		ID:           id,
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now().UTC(),
	}
	r.accounts[id] = account

	accountCopy := *account
	return &accountCopy, nil
}

// GetByID retrieves an account by its ID.
func (r *AccountRepository) GetByID(ctx context.Context, id string) (*models.Account, error) {
	const op = "storage.memory.AccountRepository.GetByID"

	r.mu.RLock()
	defer r.mu.RUnlock()

	account, exists := r.accounts[id]
	if !exists {
		return nil, fmt.Errorf("%s: %w", op, storage.ErrAccountNotFound)
	}

	accountCopy := *account
	return &accountCopy, nil
}

// GetByEmail retrieves the first account whose email exactly equals the
// query. The comparison is case-sensitive.
func (r *AccountRepository) GetByEmail(ctx context.Context, email string) (*models.Account, error) {
	const op = "storage.memory.AccountRepository.GetByEmail"

	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, account := range r.accounts {
		if account.Email == email {
			accountCopy := *account
			return &accountCopy, nil
		}
	}

	return nil, fmt.Errorf("%s: %w", op, storage.ErrAccountNotFound)
}

// URLRepository stores shortened URLs keyed by short code.
type URLRepository struct {
	mu   sync.RWMutex
	urls map[string]*models.URL
}

// NewURLRepository creates an empty in-memory URL repository.
func NewURLRepository() *URLRepository {
	return &URLRepository{
		urls: make(map[string]*models.URL),
	}
}

// Create stores a new shortened URL. The short code must be unused.
func (r *URLRepository) Create(ctx context.Context, shortCode, targetURL, ownerID string) (*models.URL, error) {
	const op = "storage.memory.URLRepository.Create"

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.urls[shortCode]; exists {
		return nil, fmt.Errorf("%s: %w", op, storage.ErrShortCodeExists)
	}

	now := time.Now().UTC()
	url := &models.URL{
		ShortCode: shortCode,
		TargetURL: targetURL,
		OwnerID:   ownerID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	r.urls[shortCode] = url

	return url.Clone(), nil
}

// GetByShortCode retrieves a URL by its short code.
func (r *URLRepository) GetByShortCode(ctx context.Context, shortCode string) (*models.URL, error) {
	const op = "storage.memory.URLRepository.GetByShortCode"

	r.mu.RLock()
	defer r.mu.RUnlock()

	url, exists := r.urls[shortCode]
	if !exists {
		return nil, fmt.Errorf("%s: %w", op, storage.ErrURLNotFound)
	}

	return url.Clone(), nil
}

// GetByOwner returns every URL owned by the given account, keyed by
// short code. Owning nothing yields an empty map, not an error.
func (r *URLRepository) GetByOwner(ctx context.Context, ownerID string) (map[string]*models.URL, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	urls := make(map[string]*models.URL)
	for shortCode, url := range r.urls {
		if url.IsOwnedBy(ownerID) {
			urls[shortCode] = url.Clone()
		}
	}

	return urls, nil
}

// ShortCodes returns the set of short codes currently in use.
func (r *URLRepository) ShortCodes(ctx context.Context) (map[string]struct{}, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	codes := make(map[string]struct{}, len(r.urls))
	for shortCode := range r.urls {
		codes[shortCode] = struct{}{}
	}

	return codes, nil
}

// Update replaces the target address of an existing URL.
func (r *URLRepository) Update(ctx context.Context, shortCode, targetURL string) (*models.URL, error) {
	const op = "storage.memory.URLRepository.Update"

	r.mu.Lock()
	defer r.mu.Unlock()

	url, exists := r.urls[shortCode]
	if !exists {
		return nil, fmt.Errorf("%s: %w", op, storage.ErrURLNotFound)
	}

	url.TargetURL = targetURL
	url.UpdatedAt = time.Now().UTC()

	return url.Clone(), nil
}

// Delete removes a URL by its short code.
func (r *URLRepository) Delete(ctx context.Context, shortCode string) error {
	const op = "storage.memory.URLRepository.Delete"

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.urls[shortCode]; !exists {
		return fmt.Errorf("%s: %w", op, storage.ErrURLNotFound)
	}

	delete(r.urls, shortCode)
	return nil
}

// RecordVisit appends a visit by the given visitor to the URL's stats
// and returns the updated URL.
func (r *URLRepository) RecordVisit(ctx context.Context, shortCode, visitorID string, at time.Time) (*models.URL, error) {
	const op = "storage.memory.URLRepository.RecordVisit"

	r.mu.Lock()
	defer r.mu.Unlock()

	url, exists := r.urls[shortCode]
	if !exists {
		return nil, fmt.Errorf("%s: %w", op, storage.ErrURLNotFound)
	}

	url.RecordVisit(visitorID, at)

	return url.Clone(), nil
}
