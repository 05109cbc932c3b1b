package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/Skotchmaster/store_api/internal/hash"
	"github.com/Skotchmaster/store_api/internal/logging"
	"github.com/Skotchmaster/store_api/internal/models"
	"github.com/Skotchmaster/store_api/internal/mykafka"
	"github.com/Skotchmaster/store_api/internal/repo"
	"github.com/Skotchmaster/store_api/internal/tokens"
	"github.com/Skotchmaster/store_api/internal/transport"
)

type UserService struct {
	Repo      *repo.GormRepo
	JWTSecret []byte
	AccessTTL time.Duration
	Events    EventPublisher
}

type LoginResult struct {
	AccessToken string
	ExpiresAt   time.Time
}

func (s *UserService) Register(ctx context.Context, req transport.RegisterRequest) (*models.User, error) {
	return s.create(ctx, req, false)
}

// CreateAdmin registers a user with administrator rights.
func (s *UserService) CreateAdmin(ctx context.Context, req transport.RegisterRequest) (*models.User, error) {
	return s.create(ctx, req, true)
}

func (s *UserService) create(ctx context.Context, req transport.RegisterRequest, isAdmin bool) (*models.User, error) {
	l := logging.FromContext(ctx).With("svc", "users.register")

	req.Email = strings.TrimSpace(req.Email)
	req.Phone = strings.TrimSpace(req.Phone)
	if err := validateStruct(req); err != nil {
		return nil, err
	}

	pwHash, err := hash.HashPassword(req.Password1)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &models.User{
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Email:        req.Email,
		Phone:        req.Phone,
		PasswordHash: pwHash,
		IsActive:     true,
		IsAdmin:      isAdmin,
	}
	if err := s.Repo.CreateUserWithCart(ctx, user); err != nil {
		if errors.Is(err, repo.ErrUserAlreadyExist) {
			return nil, fail(ErrConflict, "user with this email or phone already exists")
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	l.Info("user_registered", "user_id", user.ID, "is_admin", isAdmin)
	publish(ctx, s.Events, mykafka.TopicUserEvents, strconv.FormatUint(uint64(user.ID), 10), map[string]any{
		"type":   "user_registered",
		"userID": user.ID,
		"email":  user.Email,
	})
	return user, nil
}

// Login accepts an email or a phone as username.
func (s *UserService) Login(ctx context.Context, req transport.LoginRequest) (*LoginResult, error) {
	if err := validateStruct(req); err != nil {
		return nil, err
	}

	badCredentials := fail(ErrUnauthorized, "incorrect email (phone) or password")

	user, err := s.Repo.GetUserByLogin(ctx, strings.TrimSpace(req.Username))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, badCredentials
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	if !hash.CheckPassword(user.PasswordHash, req.Password) {
		return nil, badCredentials
	}

	token, exp, err := tokens.Issue(s.JWTSecret, user.Email, s.AccessTTL)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	return &LoginResult{AccessToken: token, ExpiresAt: exp}, nil
}

// CurrentUser resolves the owner of a bearer token.
func (s *UserService) CurrentUser(ctx context.Context, token string) (*models.User, error) {
	couldNotValidate := fail(ErrUnauthorized, "could not validate credentials")

	claims, err := tokens.AccessClaimsFromToken(token, s.JWTSecret)
	if err != nil {
		return nil, couldNotValidate
	}

	user, err := s.Repo.GetUserByEmail(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, couldNotValidate
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}
