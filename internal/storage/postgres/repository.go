// Package postgres implements the storage repositories on top of
// PostgreSQL. The entity relationships mirror the in-memory backend:
// accounts own urls, and every traversal of a url is a row in visits.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"

	"github.com/Puzzlebottom/tinyapp/internal/models"
	"github.com/Puzzlebottom/tinyapp/internal/storage"
)

const (
	uniqueViolationErrCode     = "23505"
	foreignKeyViolationErrCode = "23503"
)

func isUniqueViolationError(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.SQLState() == uniqueViolationErrCode
}

func isForeignKeyViolationError(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.SQLState() == foreignKeyViolationErrCode
}

type accountDB struct {
	ID           string    `db:"id"`
	Email        string    `db:"email"`
	PasswordHash string    `db:"password_hash"`
	CreatedAt    time.Time `db:"created_at"`
}

func (a *accountDB) toModel() *models.Account {
	return &models.Account{
		ID:           a.ID,
		Email:        a.Email,
		PasswordHash: a.PasswordHash,
		CreatedAt:    a.CreatedAt,
	}
}

// AccountRepository persists accounts in the accounts table.
type AccountRepository struct {
	db *sqlx.DB
}

// NewAccountRepository creates an AccountRepository backed by db.
func NewAccountRepository(db *sqlx.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

// Create inserts a new account row.
func (r *AccountRepository) Create(ctx context.Context, id, email, passwordHash string) (*models.Account, error) {
	const op = "storage.postgres.AccountRepository.Create"
	const query = `INSERT INTO accounts(id, email, password_hash) VALUES ($1, $2, $3) RETURNING *`

	var account accountDB

	if err := r.db.GetContext(ctx, &account, query, id, email, passwordHash); err != nil {
		if isUniqueViolationError(err) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrAccountExists)
		}

		return nil, fmt.Errorf("%s: failed to insert into accounts table: %w", op, err)
	}

	return account.toModel(), nil
}

// GetByID retrieves an account by its ID.
func (r *AccountRepository) GetByID(ctx context.Context, id string) (*models.Account, error) {
	const op = "storage.postgres.AccountRepository.GetByID"
	const query = `SELECT * FROM accounts WHERE id = $1`

	var account accountDB

	if err := r.db.GetContext(ctx, &account, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrAccountNotFound)
		}

		return nil, fmt.Errorf("%s: failed to get row from accounts table: %w", op, err)
	}

	return account.toModel(), nil
}

// GetByEmail retrieves an account by exact, case-sensitive email match.
func (r *AccountRepository) GetByEmail(ctx context.Context, email string) (*models.Account, error) {
	const op = "storage.postgres.AccountRepository.GetByEmail"
	const query = `SELECT * FROM accounts WHERE email = $1`

	var account accountDB

	if err := r.db.GetContext(ctx, &account, query, email); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrAccountNotFound)
		}

		return nil, fmt.Errorf("%s: failed to get row from accounts table: %w", op, err)
	}

	return account.toModel(), nil
}

type urlDB struct {
	ShortCode string    `db:"short_code"`
	TargetURL string    `db:"target_url"`
	OwnerID   string    `db:"owner_id"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

func (u *urlDB) toModel() *models.URL {
	return &models.URL{
		ShortCode: u.ShortCode,
		TargetURL: u.TargetURL,
		OwnerID:   u.OwnerID,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

type visitDB struct {
	VisitorID string    `db:"visitor_id"`
	VisitedAt time.Time `db:"visited_at"`
}

// URLRepository persists shortened URLs and their visit log.
type URLRepository struct {
	db *sqlx.DB
}

// NewURLRepository creates a URLRepository backed by db.
func NewURLRepository(db *sqlx.DB) *URLRepository {
	return &URLRepository{db: db}
}

// loadStats reads the visit log of a url, most recent first, and derives
// the visit counters from it.
func (r *URLRepository) loadStats(ctx context.Context, url *models.URL) error {
	const op = "storage.postgres.URLRepository.loadStats"
	const query = `SELECT visitor_id, visited_at FROM visits WHERE short_code = $1 ORDER BY visited_at DESC, id DESC`

	var visits []visitDB

	if err := r.db.SelectContext(ctx, &visits, query, url.ShortCode); err != nil {
		return fmt.Errorf("%s: failed to select from visits table: %w", op, err)
	}

	stats := models.VisitStats{
		TotalVisits: int64(len(visits)),
		Visitors:    make(map[string]struct{}),
		VisitLog:    make([]models.Visit, 0, len(visits)),
	}

	for _, v := range visits {
		stats.VisitLog = append(stats.VisitLog, models.Visit{VisitorID: v.VisitorID, VisitedAt: v.VisitedAt})
		stats.Visitors[v.VisitorID] = struct{}{}
	}
	stats.UniqueVisitors = int64(len(stats.Visitors))

	url.VisitStats = stats
	return nil
}

// Create inserts a new url row.
func (r *URLRepository) Create(ctx context.Context, shortCode, targetURL, ownerID string) (*models.URL, error) {
	const op = "storage.postgres.URLRepository.Create"
	const query = `INSERT INTO urls(short_code, target_url, owner_id) VALUES ($1, $2, $3) RETURNING *`

	var url urlDB

	if err := r.db.GetContext(ctx, &url, query, shortCode, targetURL, ownerID); err != nil {
		if isUniqueViolationError(err) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrShortCodeExists)
		}

		return nil, fmt.Errorf("%s: failed to insert into urls table: %w", op, err)
	}

	return url.toModel(), nil
}

// GetByShortCode retrieves a url with its visit statistics.
func (r *URLRepository) GetByShortCode(ctx context.Context, shortCode string) (*models.URL, error) {
	const op = "storage.postgres.URLRepository.GetByShortCode"
	const query = `SELECT * FROM urls WHERE short_code = $1`

	var url urlDB

	if err := r.db.GetContext(ctx, &url, query, shortCode); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrURLNotFound)
		}

		return nil, fmt.Errorf("%s: failed to get row from urls table: %w", op, err)
	}

	m := url.toModel()
	if err := r.loadStats(ctx, m); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return m, nil
}

// GetByOwner returns every url owned by the account, keyed by short code.
func (r *URLRepository) GetByOwner(ctx context.Context, ownerID string) (map[string]*models.URL, error) {
	const op = "storage.postgres.URLRepository.GetByOwner"
	const query = `SELECT * FROM urls WHERE owner_id = $1`

	var urls []urlDB

	if err := r.db.SelectContext(ctx, &urls, query, ownerID); err != nil {
		return nil, fmt.Errorf("%s: failed to select from urls table: %w", op, err)
	}

	owned := make(map[string]*models.URL, len(urls))
	for _, url := range urls {
		m := url.toModel()
		if err := r.loadStats(ctx, m); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		owned[m.ShortCode] = m
	}

	return owned, nil
}

// ShortCodes returns the set of short codes currently in use.
func (r *URLRepository) ShortCodes(ctx context.Context) (map[string]struct{}, error) {
	const op = "storage.postgres.URLRepository.ShortCodes"
	const query = `SELECT short_code FROM urls`

	var shortCodes []string

	if err := r.db.SelectContext(ctx, &shortCodes, query); err != nil {
		return nil, fmt.Errorf("%s: failed to select from urls table: %w", op, err)
	}

	codes := make(map[string]struct{}, len(shortCodes))
	for _, code := range shortCodes {
		codes[code] = struct{}{}
	}

	return codes, nil
}

// Update replaces the target address of an existing url.
func (r *URLRepository) Update(ctx context.Context, shortCode, targetURL string) (*models.URL, error) {
	const op = "storage.postgres.URLRepository.Update"
	const query = `UPDATE urls SET target_url = $1, updated_at = now() WHERE short_code = $2 RETURNING *`

	var url urlDB

	if err := r.db.GetContext(ctx, &url, query, targetURL, shortCode); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrURLNotFound)
		}

		return nil, fmt.Errorf("%s: failed to update urls table row: %w", op, err)
	}

	m := url.toModel()
	if err := r.loadStats(ctx, m); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return m, nil
}

// Delete removes a url by its short code. The visit log goes with it.
func (r *URLRepository) Delete(ctx context.Context, shortCode string) error {
	const op = "storage.postgres.URLRepository.Delete"
	const query = `DELETE FROM urls WHERE short_code = $1`

	res, err := r.db.ExecContext(ctx, query, shortCode)
	if err != nil {
		return fmt.Errorf("%s: failed to delete from urls table: %w", op, err)
	}

	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: failed to get number of affected rows: %w", op, err)
	}

	if rowsAffected != 1 {
		return fmt.Errorf("%s: %w", op, storage.ErrURLNotFound)
	}

	return nil
}

// RecordVisit inserts a visit row and returns the url with refreshed stats.
func (r *URLRepository) RecordVisit(ctx context.Context, shortCode, visitorID string, at time.Time) (*models.URL, error) {
	const op = "storage.postgres.URLRepository.RecordVisit"
	const query = `INSERT INTO visits(short_code, visitor_id, visited_at) VALUES ($1, $2, $3)`

	if _, err := r.db.ExecContext(ctx, query, shortCode, visitorID, at); err != nil {
		if isForeignKeyViolationError(err) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrURLNotFound)
		}

		return nil, fmt.Errorf("%s: failed to insert into visits table: %w", op, err)
	}

	url, err := r.GetByShortCode(ctx, shortCode)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return url, nil
}
