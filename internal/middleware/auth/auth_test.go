package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/store_api/internal/models"
	"github.com/Skotchmaster/store_api/internal/service"
)

type fakeResolver map[string]*models.User

func (f fakeResolver) CurrentUser(_ context.Context, token string) (*models.User, error) {
	if token == "broken" {
		return nil, errors.New("db down")
	}
	u, ok := f[token]
	if !ok {
		return nil, &service.Error{Kind: service.ErrUnauthorized, Msg: "could not validate credentials"}
	}
	return u, nil
}

var users = fakeResolver{
	"user":     {ID: 1, Email: "user1@user.ru", IsActive: true},
	"inactive": {ID: 2, Email: "sleepy@user.ru", IsActive: false},
	"admin":    {ID: 3, Email: "admin@admin.ru", IsActive: true, IsAdmin: true},
}

func run(t *testing.T, mw echo.MiddlewareFunc, authHeader string) (*models.User, *httptest.ResponseRecorder, error) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if authHeader != "" {
		req.Header.Set(echo.HeaderAuthorization, authHeader)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var seen *models.User
	err := mw(func(c echo.Context) error {
		seen = UserFrom(c)
		return c.NoContent(http.StatusOK)
	})(c)
	return seen, rec, err
}

func statusOf(t *testing.T, err error) int {
	t.Helper()
	var he *echo.HTTPError
	require.ErrorAs(t, err, &he)
	return he.Code
}

func TestRequireAuth(t *testing.T) {
	m := NewBearerAuth(users)

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{name: "no header", header: "", want: http.StatusUnauthorized},
		{name: "basic scheme", header: "Basic dXNlcjpwdw==", want: http.StatusUnauthorized},
		{name: "empty bearer", header: "Bearer ", want: http.StatusUnauthorized},
		{name: "unknown token", header: "Bearer nope", want: http.StatusUnauthorized},
		{name: "valid", header: "Bearer user", want: http.StatusOK},
		{name: "lowercase scheme", header: "bearer user", want: http.StatusOK},
		{name: "inactive allowed", header: "Bearer inactive", want: http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u, rec, err := run(t, m.RequireAuth, tt.header)
			if tt.want != http.StatusOK {
				assert.Equal(t, tt.want, statusOf(t, err))
				assert.Equal(t, "Bearer", rec.Header().Get(echo.HeaderWWWAuthenticate))
				assert.Nil(t, u)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, u)
		})
	}
}

func TestRequireAuth_ResolverFailure(t *testing.T) {
	_, _, err := run(t, NewBearerAuth(users).RequireAuth, "Bearer broken")
	require.Error(t, err)
	var he *echo.HTTPError
	assert.False(t, errors.As(err, &he))
}

func TestRequireActive(t *testing.T) {
	m := NewBearerAuth(users)

	u, _, err := run(t, m.RequireActive, "Bearer user")
	require.NoError(t, err)
	assert.Equal(t, uint(1), u.ID)

	_, _, err = run(t, m.RequireActive, "Bearer inactive")
	assert.Equal(t, http.StatusForbidden, statusOf(t, err))
}

func TestRequireAdmin(t *testing.T) {
	m := NewBearerAuth(users)

	_, _, err := run(t, m.RequireAdmin, "Bearer user")
	assert.Equal(t, http.StatusForbidden, statusOf(t, err))

	_, _, err = run(t, m.RequireAdmin, "")
	assert.Equal(t, http.StatusUnauthorized, statusOf(t, err))

	u, _, err := run(t, m.RequireAdmin, "Bearer admin")
	require.NoError(t, err)
	assert.True(t, u.IsAdmin)
}

func TestOptionalAuth(t *testing.T) {
	m := NewBearerAuth(users)

	for _, header := range []string{"", "Bearer nope", "Token user", "Bearer broken"} {
		u, _, err := run(t, m.OptionalAuth, header)
		require.NoError(t, err, header)
		assert.Nil(t, u, header)
	}

	u, _, err := run(t, m.OptionalAuth, "Bearer admin")
	require.NoError(t, err)
	assert.Equal(t, uint(3), u.ID)
}
