package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/store_api/internal/logging"
	"github.com/Skotchmaster/store_api/internal/models"
	"github.com/Skotchmaster/store_api/internal/service"
)

const userKey = "user"

type UserResolver interface {
	CurrentUser(ctx context.Context, token string) (*models.User, error)
}

type BearerAuth struct {
	Users UserResolver
}

func NewBearerAuth(users UserResolver) *BearerAuth {
	return &BearerAuth{Users: users}
}

type ValidatorFunc func(user *models.User) error

func (m *BearerAuth) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return m.requireAuthWithValidator(next, nil)
}

func (m *BearerAuth) RequireActive(next echo.HandlerFunc) echo.HandlerFunc {
	return m.requireAuthWithValidator(next, activeOnly)
}

func (m *BearerAuth) RequireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return m.requireAuthWithValidator(next, func(user *models.User) error {
		if err := activeOnly(user); err != nil {
			return err
		}
		if !user.IsAdmin {
			return echo.NewHTTPError(http.StatusForbidden, "access forbidden")
		}
		return nil
	})
}

// OptionalAuth attaches the caller when a valid token is sent and lets
// everyone else through as anonymous.
func (m *BearerAuth) OptionalAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		token, ok := bearerToken(c.Request())
		if !ok {
			return next(c)
		}
		user, err := m.Users.CurrentUser(c.Request().Context(), token)
		if err != nil {
			logging.FromContext(c.Request().Context()).Debug("optional_auth_ignored", "error", err)
			return next(c)
		}
		c.Set(userKey, user)
		return next(c)
	}
}

func (m *BearerAuth) requireAuthWithValidator(next echo.HandlerFunc, validator ValidatorFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		token, ok := bearerToken(c.Request())
		if !ok {
			return unauthorized(c, "not authenticated")
		}

		user, err := m.Users.CurrentUser(c.Request().Context(), token)
		if err != nil {
			if errors.Is(err, service.ErrUnauthorized) {
				return unauthorized(c, service.Message(err, "could not validate credentials"))
			}
			return err
		}

		if validator != nil {
			if err := validator(user); err != nil {
				return err
			}
		}

		c.Set(userKey, user)
		return next(c)
	}
}

// UserFrom returns the caller attached by the middleware, or nil for anonymous requests.
func UserFrom(c echo.Context) *models.User {
	u, _ := c.Get(userKey).(*models.User)
	return u
}

func activeOnly(user *models.User) error {
	if !user.IsActive {
		return echo.NewHTTPError(http.StatusForbidden, "inactive user")
	}
	return nil
}

func bearerToken(r *http.Request) (string, bool) {
	scheme, token, found := strings.Cut(r.Header.Get(echo.HeaderAuthorization), " ")
	if !found || !strings.EqualFold(scheme, "bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func unauthorized(c echo.Context, msg string) error {
	c.Response().Header().Set(echo.HeaderWWWAuthenticate, "Bearer")
	return echo.NewHTTPError(http.StatusUnauthorized, msg)
}
