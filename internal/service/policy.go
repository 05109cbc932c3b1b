package service

import "github.com/Skotchmaster/store_api/internal/models"

// CanView decides whether viewer may see p. viewer is nil for anonymous callers.
// Active admins see every product; everyone else only active ones.
func CanView(p *models.Product, viewer *models.User) error {
	if p.IsActive || isAdmin(viewer) {
		return nil
	}
	return fail(ErrLocked, "product is inactive")
}

// isAdmin is true only for active administrators.
func isAdmin(u *models.User) bool {
	return u != nil && u.IsAdmin && u.IsActive
}
