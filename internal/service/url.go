package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Puzzlebottom/tinyapp/internal/auth"
	"github.com/Puzzlebottom/tinyapp/internal/models"
	"github.com/Puzzlebottom/tinyapp/internal/random"
	"github.com/Puzzlebottom/tinyapp/internal/storage"
)

// URLRepository defines the link storage operations the service needs.
type URLRepository interface {
	// Create stores a new shortened URL.
	// Returns storage.ErrShortCodeExists if the short code is taken.
	Create(ctx context.Context, shortCode, targetURL, ownerID string) (*models.URL, error)

	// GetByShortCode retrieves a URL by its short code.
	// Returns storage.ErrURLNotFound if no such URL exists.
	GetByShortCode(ctx context.Context, shortCode string) (*models.URL, error)

	// GetByOwner returns every URL owned by the account, keyed by short code.
	GetByOwner(ctx context.Context, ownerID string) (map[string]*models.URL, error)

	// ShortCodes returns the set of short codes currently in use.
	ShortCodes(ctx context.Context) (map[string]struct{}, error)

	// Update replaces the target address of an existing URL.
	Update(ctx context.Context, shortCode, targetURL string) (*models.URL, error)

	// Delete removes a URL by its short code.
	Delete(ctx context.Context, shortCode string) error

	// RecordVisit appends a visit to the URL's stats and returns the
	// updated URL.
	RecordVisit(ctx context.Context, shortCode, visitorID string, at time.Time) (*models.URL, error)
}

// URLService provides shortening, ownership-scoped retrieval, mutation
// and visit recording for links.
type URLService struct {
	urlRepo         URLRepository
	accountRepo     AccountRepository
	shortCodeLength int
}

// NewURLService creates a new URLService with the provided repositories
// and short code length.
func NewURLService(urlRepo URLRepository, accountRepo AccountRepository, shortCodeLength int) *URLService {
	return &URLService{
		urlRepo:         urlRepo,
		accountRepo:     accountRepo,
		shortCodeLength: shortCodeLength,
	}
}

// Shorten generates an unused short code for targetURL and stores the
// mapping owned by the session account. The generator avoids known codes
// up front; a concurrent insert of the same code is retried a bounded
// number of times.
func (s *URLService) Shorten(ctx context.Context, sess auth.Session, targetURL string) (*models.URL, error) {
	const op = "service.URLService.Shorten"
	const maxRetries = 5

	if err := Authorize(sess, nil); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if targetURL == "" {
		return nil, fmt.Errorf("%s: target url cannot be blank: %w", op, ErrInvalidArgument)
	}

	for i := 0; i < maxRetries; i++ {
		existing, err := s.urlRepo.ShortCodes(ctx)
		if err != nil {
			return nil, fmt.Errorf("%s: failed to list short codes: %w", op, err)
		}

		shortCode, err := random.Generate(existing, s.shortCodeLength)
		if err != nil {
			return nil, fmt.Errorf("%s: failed to generate short code: %w", op, err)
		}

		url, err := s.urlRepo.Create(ctx, shortCode, targetURL, sess.AccountID)
		if err != nil {
			if errors.Is(err, storage.ErrShortCodeExists) {
				continue
			}

			return nil, fmt.Errorf("%s: failed to shorten url: %w", op, err)
		}

		return url, nil
	}

	return nil, fmt.Errorf("%s: %w", op, ErrMaxRetriesExceeded)
}

// URLsForAccount returns every link owned by the account, keyed by short
// code. An unknown account fails with storage.ErrAccountNotFound; an
// account that owns nothing gets an empty map.
func (s *URLService) URLsForAccount(ctx context.Context, accountID string) (map[string]*models.URL, error) {
	const op = "service.URLService.URLsForAccount"

	if _, err := s.accountRepo.GetByID(ctx, accountID); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	urls, err := s.urlRepo.GetByOwner(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to list urls: %w", op, err)
	}

	return urls, nil
}

// GetURL retrieves a single link with its visit statistics. The caller
// must be logged in and own the link.
func (s *URLService) GetURL(ctx context.Context, sess auth.Session, shortCode string) (*models.URL, error) {
	const op = "service.URLService.GetURL"

	if err := Authorize(sess, nil); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	url, err := s.urlRepo.GetByShortCode(ctx, shortCode)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to get url: %w", op, err)
	}

	if err := Authorize(sess, url); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return url, nil
}

// ModifyURL replaces the target address of a link. The caller must be
// logged in and own the link.
func (s *URLService) ModifyURL(ctx context.Context, sess auth.Session, shortCode, targetURL string) (*models.URL, error) {
	const op = "service.URLService.ModifyURL"

	if err := Authorize(sess, nil); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if targetURL == "" {
		return nil, fmt.Errorf("%s: target url cannot be blank: %w", op, ErrInvalidArgument)
	}

	url, err := s.urlRepo.GetByShortCode(ctx, shortCode)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to get url: %w", op, err)
	}

	if err := Authorize(sess, url); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	url, err = s.urlRepo.Update(ctx, shortCode, targetURL)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to modify url: %w", op, err)
	}

	return url, nil
}

// RemoveURL deletes a link. The caller must be logged in and own the link.
func (s *URLService) RemoveURL(ctx context.Context, sess auth.Session, shortCode string) error {
	const op = "service.URLService.RemoveURL"

	if err := Authorize(sess, nil); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	url, err := s.urlRepo.GetByShortCode(ctx, shortCode)
	if err != nil {
		return fmt.Errorf("%s: failed to get url: %w", op, err)
	}

	if err := Authorize(sess, url); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := s.urlRepo.Delete(ctx, shortCode); err != nil {
		return fmt.Errorf("%s: failed to remove url: %w", op, err)
	}

	return nil
}

// FollowShortCode resolves a short code for an anonymous traversal,
// recording the visit under the given visitor token. This is the only
// link operation that requires no authentication.
func (s *URLService) FollowShortCode(ctx context.Context, shortCode, visitorID string) (*models.URL, error) {
	const op = "service.URLService.FollowShortCode"

	if visitorID == "" {
		return nil, fmt.Errorf("%s: visitor id cannot be blank: %w", op, ErrInvalidArgument)
	}

	url, err := s.urlRepo.RecordVisit(ctx, shortCode, visitorID, time.Now().UTC())
	if err != nil {
		return nil, fmt.Errorf("%s: failed to follow short code: %w", op, err)
	}

	return url, nil
}
