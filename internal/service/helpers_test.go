package service

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/store_api/internal/cache"
	"github.com/Skotchmaster/store_api/internal/models"
	"github.com/Skotchmaster/store_api/internal/repo"
	"github.com/Skotchmaster/store_api/internal/storetest"
	"github.com/Skotchmaster/store_api/internal/transport"
)

const testPassword = "Qwerty12345!"

type published struct {
	topic string
	key   string
	event map[string]any
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []published
}

func (p *recordingPublisher) PublishEvent(_ context.Context, topic, key string, event any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, published{topic: topic, key: key, event: event.(map[string]any)})
	return nil
}

func (p *recordingPublisher) types(topic string) []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []string
	for _, e := range p.events {
		if e.topic == topic {
			out = append(out, e.event["type"].(string))
		}
	}
	return out
}

type testEnv struct {
	Repo     *repo.GormRepo
	Users    *UserService
	Products *ProductService
	Carts    *CartService
	Events   *recordingPublisher
	Redis    *miniredis.Miniredis
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	r := &repo.GormRepo{DB: storetest.InitTestDB(t)}
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	c := cache.NewRedisCache(client)
	events := &recordingPublisher{}

	return &testEnv{
		Repo:     r,
		Users:    &UserService{Repo: r, JWTSecret: []byte("test-jwt-secret"), AccessTTL: 30 * time.Minute, Events: events},
		Products: &ProductService{Repo: r, Cache: c, Events: events},
		Carts:    &CartService{Repo: r, Cache: c, Events: events},
		Events:   events,
		Redis:    mr,
	}
}

func registerRequest(email, phone string) transport.RegisterRequest {
	return transport.RegisterRequest{
		FirstName: "user1",
		LastName:  "user1",
		Email:     email,
		Phone:     phone,
		Password1: testPassword,
		Password2: testPassword,
	}
}

func (env *testEnv) user(t *testing.T) *models.User {
	t.Helper()
	u, err := env.Users.Register(context.Background(), registerRequest("user1@user.ru", "+77777777777"))
	require.NoError(t, err)
	return u
}

func (env *testEnv) admin(t *testing.T) *models.User {
	t.Helper()
	u, err := env.Users.CreateAdmin(context.Background(), registerRequest("admin@admin.ru", "+79999999999"))
	require.NoError(t, err)
	return u
}

// product inserts a product with a fixed id, bypassing the service.
func (env *testEnv) product(t *testing.T, id uint, name string, price int64, active bool) *models.Product {
	t.Helper()
	p := &models.Product{ID: id, Name: name, Price: price, IsActive: active}
	require.NoError(t, env.Repo.DB.Create(p).Error)
	return p
}

func ptr[T any](v T) *T { return &v }

func cacheKeyFor(userID uint) string {
	return fmt.Sprintf("cart:%d", userID)
}
