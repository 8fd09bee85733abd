package service

import (
	"fmt"

	"github.com/Puzzlebottom/tinyapp/internal/auth"
	"github.com/Puzzlebottom/tinyapp/internal/models"
)

// Authorize decides whether the session may operate on the given link.
// A nil url authorizes operations that only need an authenticated caller,
// such as listing the caller's own links.
func Authorize(sess auth.Session, url *models.URL) error {
	const op = "service.Authorize"

	if !sess.IsAuthenticated() {
		return fmt.Errorf("%s: %w", op, ErrNotLoggedIn)
	}

	if url != nil && !url.IsOwnedBy(sess.AccountID) {
		return fmt.Errorf("%s: %w", op, ErrNotOwned)
	}

	return nil
}
