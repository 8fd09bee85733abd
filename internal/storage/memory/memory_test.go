package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Puzzlebottom/tinyapp/internal/storage"
)

func TestAccountRepository(t *testing.T) {
	ctx := context.Background()

	t.Run("create and get", func(t *testing.T) {
		repo := NewAccountRepository()

		account, err := repo.Create(ctx, "account1", "a@example.com", "hash1")

		require.NoError(t, err)
		assert.Equal(t, "account1", account.ID)
		assert.Equal(t, "a@example.com", account.Email)

		got, err := repo.GetByID(ctx, "account1")

		assert.NoError(t, err)
		assert.Equal(t, account.Email, got.Email)
	})

	t.Run("duplicate email", func(t *testing.T) {
		repo := NewAccountRepository()

		_, err := repo.Create(ctx, "account1", "a@example.com", "hash1")
		require.NoError(t, err)

		account, err := repo.Create(ctx, "account2", "a@example.com", "hash2")

		assert.Error(t, err)
		assert.ErrorIs(t, err, storage.ErrAccountExists)
		assert.Nil(t, account)
	})

	t.Run("unknown id", func(t *testing.T) {
		repo := NewAccountRepository()

		account, err := repo.GetByID(ctx, "missing")

		assert.Error(t, err)
		assert.ErrorIs(t, err, storage.ErrAccountNotFound)
		assert.Nil(t, account)
	})

	t.Run("get by email is case-sensitive", func(t *testing.T) {
		repo := NewAccountRepository()

		_, err := repo.Create(ctx, "account1", "a@example.com", "hash1")
		require.NoError(t, err)

		got, err := repo.GetByEmail(ctx, "a@example.com")

		require.NoError(t, err)
		assert.Equal(t, "account1", got.ID)

		got, err = repo.GetByEmail(ctx, "A@example.com")

		assert.Error(t, err)
		assert.ErrorIs(t, err, storage.ErrAccountNotFound)
		assert.Nil(t, got)
	})
}

func TestURLRepository(t *testing.T) {
	ctx := context.Background()

	t.Run("create and get", func(t *testing.T) {
		repo := NewURLRepository()

		url, err := repo.Create(ctx, "abc123", "https://example.org", "account1")

		require.NoError(t, err)
		assert.Equal(t, "abc123", url.ShortCode)
		assert.Equal(t, "https://example.org", url.TargetURL)
		assert.Equal(t, "account1", url.OwnerID)
		assert.Zero(t, url.TotalVisits)

		got, err := repo.GetByShortCode(ctx, "abc123")

		assert.NoError(t, err)
		assert.Equal(t, url.TargetURL, got.TargetURL)
	})

	t.Run("short code exists", func(t *testing.T) {
		repo := NewURLRepository()

		_, err := repo.Create(ctx, "abc123", "https://example.org", "account1")
		require.NoError(t, err)

		url, err := repo.Create(ctx, "abc123", "https://other.example.org", "account2")

		assert.Error(t, err)
		assert.ErrorIs(t, err, storage.ErrShortCodeExists)
		assert.Nil(t, url)
	})

	t.Run("get by owner scopes to owner", func(t *testing.T) {
		repo := NewURLRepository()

		_, err := repo.Create(ctx, "abc123", "https://example.org", "account1")
		require.NoError(t, err)
		_, err = repo.Create(ctx, "def456", "https://example.net", "account1")
		require.NoError(t, err)
		_, err = repo.Create(ctx, "ghi789", "https://example.com", "account2")
		require.NoError(t, err)

		urls, err := repo.GetByOwner(ctx, "account1")

		require.NoError(t, err)
		assert.Len(t, urls, 2)
		for shortCode, url := range urls {
			assert.Equal(t, shortCode, url.ShortCode)
			assert.Equal(t, "account1", url.OwnerID)
		}
	})

	t.Run("get by owner with no urls", func(t *testing.T) {
		repo := NewURLRepository()

		urls, err := repo.GetByOwner(ctx, "account1")

		assert.NoError(t, err)
		assert.Empty(t, urls)
		assert.NotNil(t, urls)
	})

	t.Run("short codes", func(t *testing.T) {
		repo := NewURLRepository()

		_, err := repo.Create(ctx, "abc123", "https://example.org", "account1")
		require.NoError(t, err)
		_, err = repo.Create(ctx, "def456", "https://example.net", "account1")
		require.NoError(t, err)

		codes, err := repo.ShortCodes(ctx)

		require.NoError(t, err)
		assert.Equal(t, map[string]struct{}{
			"abc123": {},
			"def456": {},
		}, codes)
	})

	t.Run("update", func(t *testing.T) {
		repo := NewURLRepository()

		_, err := repo.Create(ctx, "abc123", "https://example.org", "account1")
		require.NoError(t, err)

		url, err := repo.Update(ctx, "abc123", "https://changed.example.org")

		require.NoError(t, err)
		assert.Equal(t, "https://changed.example.org", url.TargetURL)

		url, err = repo.Update(ctx, "missing", "https://example.org")

		assert.Error(t, err)
		assert.ErrorIs(t, err, storage.ErrURLNotFound)
		assert.Nil(t, url)
	})

	t.Run("delete", func(t *testing.T) {
		repo := NewURLRepository()

		_, err := repo.Create(ctx, "abc123", "https://example.org", "account1")
		require.NoError(t, err)

		err = repo.Delete(ctx, "abc123")

		require.NoError(t, err)

		_, err = repo.GetByShortCode(ctx, "abc123")

		assert.ErrorIs(t, err, storage.ErrURLNotFound)

		err = repo.Delete(ctx, "abc123")

		assert.ErrorIs(t, err, storage.ErrURLNotFound)
	})

	t.Run("record visit", func(t *testing.T) {
		repo := NewURLRepository()

		_, err := repo.Create(ctx, "abc123", "https://example.org", "account1")
		require.NoError(t, err)

		first := time.Date(2024, time.March, 1, 12, 0, 0, 0, time.UTC)

		url, err := repo.RecordVisit(ctx, "abc123", "visitor1", first)

		require.NoError(t, err)
		assert.Equal(t, int64(1), url.TotalVisits)
		assert.Equal(t, int64(1), url.UniqueVisitors)

		url, err = repo.RecordVisit(ctx, "abc123", "visitor1", first.Add(time.Minute))

		require.NoError(t, err)
		assert.Equal(t, int64(2), url.TotalVisits)
		assert.Equal(t, int64(1), url.UniqueVisitors)
		require.Len(t, url.VisitLog, 2)
		assert.Equal(t, first.Add(time.Minute), url.VisitLog[0].VisitedAt)

		_, err = repo.RecordVisit(ctx, "missing", "visitor1", first)

		assert.ErrorIs(t, err, storage.ErrURLNotFound)
	})
}
