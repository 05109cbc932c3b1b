package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/store_api/internal/mykafka"
	"github.com/Skotchmaster/store_api/internal/tokens"
	"github.com/Skotchmaster/store_api/internal/transport"
)

func TestRegister_CreatesActiveUserWithCart(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	u, err := env.Users.Register(ctx, registerRequest(" user1@user.ru ", "+77777777777"))
	require.NoError(t, err)
	assert.NotZero(t, u.ID)
	assert.Equal(t, "user1@user.ru", u.Email)
	assert.True(t, u.IsActive)
	assert.False(t, u.IsAdmin)
	assert.NotEqual(t, testPassword, u.PasswordHash)

	cart, err := env.Repo.GetCartByUser(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, u.ID, cart.UserID)

	assert.Equal(t, []string{"user_registered"}, env.Events.types(mykafka.TopicUserEvents))
}

func TestRegister_Conflict(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.user(t)

	_, err := env.Users.Register(ctx, registerRequest("user1@user.ru", "+71111111111"))
	require.ErrorIs(t, err, ErrConflict)
	assert.Equal(t, "user with this email or phone already exists", Message(err, ""))

	_, err = env.Users.Register(ctx, registerRequest("other@user.ru", "+77777777777"))
	require.ErrorIs(t, err, ErrConflict)
}

func TestRegister_Validation(t *testing.T) {
	env := newTestEnv(t)

	req := registerRequest("user1@user.ru", "+77777777777")
	req.Password2 = "Qwerty12345:"

	_, err := env.Users.Register(context.Background(), req)
	require.ErrorIs(t, err, ErrValidation)

	var count int64
	require.NoError(t, env.Repo.DB.Table("users").Count(&count).Error)
	assert.Zero(t, count)
}

func TestCreateAdmin(t *testing.T) {
	env := newTestEnv(t)
	admin := env.admin(t)
	assert.True(t, admin.IsAdmin)
	assert.True(t, admin.IsActive)
}

func TestLogin(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	u := env.user(t)

	tests := []struct {
		name     string
		username string
		password string
		ok       bool
	}{
		{name: "by email", username: "user1@user.ru", password: testPassword, ok: true},
		{name: "by phone", username: "+77777777777", password: testPassword, ok: true},
		{name: "wrong password", username: "user1@user.ru", password: "Wrong12345!", ok: false},
		{name: "unknown user", username: "nobody@user.ru", password: testPassword, ok: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := env.Users.Login(ctx, transport.LoginRequest{Username: tt.username, Password: tt.password})
			if !tt.ok {
				require.ErrorIs(t, err, ErrUnauthorized)
				assert.Equal(t, "incorrect email (phone) or password", Message(err, ""))
				return
			}
			require.NoError(t, err)

			claims, err := tokens.AccessClaimsFromToken(res.AccessToken, env.Users.JWTSecret)
			require.NoError(t, err)
			assert.Equal(t, u.Email, claims.Subject)
		})
	}
}

func TestLogin_MissingFields(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.Users.Login(context.Background(), transport.LoginRequest{Username: "user1@user.ru"})
	require.ErrorIs(t, err, ErrValidation)
}

func TestCurrentUser(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	u := env.user(t)

	res, err := env.Users.Login(ctx, transport.LoginRequest{Username: u.Email, Password: testPassword})
	require.NoError(t, err)

	got, err := env.Users.CurrentUser(ctx, res.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	_, err = env.Users.CurrentUser(ctx, "garbage")
	require.ErrorIs(t, err, ErrUnauthorized)
	assert.Equal(t, "could not validate credentials", Message(err, ""))

	foreign, _, err := tokens.Issue([]byte("other-secret"), u.Email, env.Users.AccessTTL)
	require.NoError(t, err)
	_, err = env.Users.CurrentUser(ctx, foreign)
	require.ErrorIs(t, err, ErrUnauthorized)

	orphan, _, err := tokens.Issue(env.Users.JWTSecret, "ghost@user.ru", env.Users.AccessTTL)
	require.NoError(t, err)
	_, err = env.Users.CurrentUser(ctx, orphan)
	require.ErrorIs(t, err, ErrUnauthorized)
}
