// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// handler_test.go provides shared test infrastructure for handler integration
// tests. Tests are skipped when PostgreSQL or Valkey are unavailable.
package handlers

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/redis/go-redis/v9"

	"shopadmin/internal/cache"
	"shopadmin/internal/database"
	"shopadmin/internal/middleware"
	"shopadmin/internal/models"
	"shopadmin/internal/session"
	"shopadmin/internal/store"
)

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// testDB opens a connection to the test PostgreSQL and runs migrations.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	host := envOr("POSTGRES_HOST", "localhost")
	port := envOr("POSTGRES_PORT", "5432")
	user := envOr("POSTGRES_USER", "shopadmin")
	pass := envOr("POSTGRES_PASSWORD", "changeme")
	name := envOr("POSTGRES_DB", "shopadmin")
	dsn := "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=disable"

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		t.Skipf("skipping: cannot open DB: %v", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		t.Skipf("skipping: DB not reachable: %v", err)
	}

	if err := database.Migrate(db); err != nil {
		db.Close()
		t.Fatalf("migrate: %v", err)
	}
	goose.SetBaseFS(nil)

	t.Cleanup(func() { db.Close() })
	return db
}

// testValkeyClient returns a Redis client for handler tests on DB 15.
func testValkeyClient(t *testing.T) *redis.Client {
	t.Helper()

	host := envOr("VALKEY_HOST", "localhost")
	port := envOr("VALKEY_PORT", "6379")
	password := os.Getenv("VALKEY_PASSWORD")

	client := redis.NewClient(&redis.Options{
		Addr:     host + ":" + port,
		Password: password,
		DB:       15,
	})

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		t.Skipf("skipping: Valkey not reachable: %v", err)
	}

	t.Cleanup(func() {
		// Clean up test session and cache keys.
		for _, pattern := range []string{"session:*", "servicetree:*"} {
			keys, _ := client.Keys(ctx, pattern).Result()
			if len(keys) > 0 {
				client.Del(ctx, keys...)
			}
		}
		client.Close()
	})

	return client
}

// testEnv holds all dependencies for handler integration tests.
type testEnv struct {
	DB              *sql.DB
	Valkey          *redis.Client
	Sessions        *session.Store
	TreeCache       *cache.TreeCache
	UserStore       *store.UserStore
	InvitationStore *store.InvitationStore
	ServiceStore    *store.ServiceStore
	ProductStore    *store.ProductStore
	PostStore       *store.PostStore
	DiscountStore   *store.DiscountStore
	MediaStore      *store.MediaStore
	Auth            *Auth
	Services        *Services
	Products        *Products
	Posts           *Posts
	Discounts       *Discounts
	Invitations     *Invitations
	Users           *Users
}

// newTestEnv creates a complete test environment with all handler dependencies.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := testDB(t)
	vk := testValkeyClient(t)

	sessions := session.NewStore(vk, false)
	treeCache := cache.NewTreeCache(vk, 1*time.Minute)
	userStore := store.NewUserStore(db)
	invitationStore := store.NewInvitationStore(db)
	serviceStore := store.NewServiceStore(db)
	productStore := store.NewProductStore(db)
	postStore := store.NewPostStore(db)
	discountStore := store.NewDiscountStore(db)
	mediaStore := store.NewMediaStore(db)

	return &testEnv{
		DB:              db,
		Valkey:          vk,
		Sessions:        sessions,
		TreeCache:       treeCache,
		UserStore:       userStore,
		InvitationStore: invitationStore,
		ServiceStore:    serviceStore,
		ProductStore:    productStore,
		PostStore:       postStore,
		DiscountStore:   discountStore,
		MediaStore:      mediaStore,
		Auth:            NewAuth(sessions, userStore),
		Services:        NewServices(serviceStore, treeCache),
		Products:        NewProducts(productStore),
		Posts:           NewPosts(postStore),
		Discounts:       NewDiscounts(discountStore),
		Invitations:     NewInvitations(invitationStore),
		Users:           NewUsers(userStore),
	}
}

// createTestUser inserts a user and registers cleanup.
func createTestUser(t *testing.T, env *testEnv, email, password string, role models.Role) *models.User {
	t.Helper()

	env.DB.Exec("DELETE FROM users WHERE email = $1", email)
	u, err := env.UserStore.Create(email, password, "Test User", role)
	if err != nil {
		t.Fatalf("create test user: %v", err)
	}
	t.Cleanup(func() {
		env.DB.Exec("DELETE FROM users WHERE email = $1", email)
	})
	return u
}

// ctxWithSession adds session data to a context using the middleware key.
func ctxWithSession(ctx context.Context, data *session.Data) context.Context {
	return context.WithValue(ctx, middleware.SessionKey, data)
}

// testSession creates a session.Data for testing.
func testSession(userID uuid.UUID, email, role string, twoFADone bool) *session.Data {
	return &session.Data{
		UserID:      userID,
		Email:       email,
		DisplayName: "Test User",
		Role:        role,
		TwoFADone:   twoFADone,
	}
}

// withChiURLParam adds a chi URL parameter to a request.
func withChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// withChiURLParamAndSession adds both chi URL param and session to a request.
func withChiURLParamAndSession(r *http.Request, key, value string, sess *session.Data) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	ctx := context.WithValue(r.Context(), chi.RouteCtxKey, rctx)
	ctx = context.WithValue(ctx, middleware.SessionKey, sess)
	return r.WithContext(ctx)
}

// cleanServices removes test services by slug, children first.
func cleanServices(t *testing.T, db *sql.DB, slugs ...string) {
	t.Helper()
	for i := len(slugs) - 1; i >= 0; i-- {
		db.Exec("DELETE FROM services WHERE slug = $1", slugs[i])
	}
}
