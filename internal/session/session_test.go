package session

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// testValkeyClient connects to the test Valkey (DB 15) or skips.
func testValkeyClient(t *testing.T) *redis.Client {
	t.Helper()

	host := envOr("VALKEY_HOST", "localhost")
	port := envOr("VALKEY_PORT", "6379")

	client := redis.NewClient(&redis.Options{
		Addr:     host + ":" + port,
		Password: os.Getenv("VALKEY_PASSWORD"),
		DB:       15,
	})

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		t.Skipf("skipping integration test: Valkey not reachable: %v", err)
	}

	t.Cleanup(func() {
		keys, _ := client.Keys(ctx, "session:*").Result()
		if len(keys) > 0 {
			client.Del(ctx, keys...)
		}
		client.Close()
	})

	return client
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// login creates a session for data and returns the cookie the browser
// would carry on the next request.
func login(t *testing.T, store *Store, data *Data) *http.Cookie {
	t.Helper()

	w := httptest.NewRecorder()
	id, err := store.Create(context.Background(), w, data)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if id == "" {
		t.Fatal("expected non-empty session ID")
	}

	for _, c := range w.Result().Cookies() {
		if c.Name == CookieName {
			return c
		}
	}
	t.Fatal("session cookie not set")
	return nil
}

func requestWith(cookie *http.Cookie) *http.Request {
	req := httptest.NewRequest("GET", "/", nil)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	return req
}

func TestSessionRoundTrip(t *testing.T) {
	store := NewStore(testValkeyClient(t), false)
	ctx := context.Background()

	data := &Data{
		UserID:      uuid.New(),
		Email:       "owner@shop.test",
		DisplayName: "Shop Owner",
		Role:        "admin",
	}
	cookie := login(t, store, data)

	if !cookie.HttpOnly {
		t.Error("expected HttpOnly cookie")
	}
	if cookie.Secure {
		t.Error("expected Secure=false for non-secure store")
	}

	got, err := store.Get(ctx, requestWith(cookie))
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got == nil {
		t.Fatal("expected session data, got nil")
	}
	if got.UserID != data.UserID || got.Email != data.Email || got.Role != "admin" {
		t.Errorf("round trip mismatch: got %+v", got)
	}
	if got.CreatedAt.IsZero() {
		t.Error("expected CreatedAt to be stamped on create")
	}
}

func TestSessionGetMisses(t *testing.T) {
	store := NewStore(testValkeyClient(t), false)
	ctx := context.Background()

	// No cookie at all, then a cookie naming a session that never
	// existed (or expired). Both are a clean miss, not an error.
	for name, cookie := range map[string]*http.Cookie{
		"no cookie":   nil,
		"unknown key": {Name: CookieName, Value: "deadbeef"},
	} {
		data, err := store.Get(ctx, requestWith(cookie))
		if err != nil {
			t.Errorf("%s: unexpected error: %v", name, err)
		}
		if data != nil {
			t.Errorf("%s: expected nil session", name)
		}
	}
}

func TestSessionUpdateMarks2FA(t *testing.T) {
	store := NewStore(testValkeyClient(t), false)
	ctx := context.Background()

	data := &Data{
		UserID:      uuid.New(),
		Email:       "editor@shop.test",
		DisplayName: "Content Editor",
		Role:        "editor",
	}
	cookie := login(t, store, data)
	req := requestWith(cookie)

	data.TwoFADone = true
	if err := store.Update(ctx, req, data); err != nil {
		t.Fatalf("Update: %v", err)
	}

	got, _ := store.Get(ctx, req)
	if got == nil {
		t.Fatal("expected session after update")
	}
	if !got.TwoFADone {
		t.Error("expected TwoFADone=true after update")
	}
}

func TestSessionUpdateNoCookie(t *testing.T) {
	store := NewStore(testValkeyClient(t), false)

	if err := store.Update(context.Background(), requestWith(nil), &Data{}); err == nil {
		t.Error("expected error when updating without cookie")
	}
}

func TestSessionDestroy(t *testing.T) {
	store := NewStore(testValkeyClient(t), false)
	ctx := context.Background()

	cookie := login(t, store, &Data{
		UserID: uuid.New(), Email: "gone@shop.test",
		DisplayName: "Leaving", Role: "admin",
	})
	req := requestWith(cookie)

	w := httptest.NewRecorder()
	if err := store.Destroy(ctx, w, req); err != nil {
		t.Fatalf("Destroy: %v", err)
	}

	for _, c := range w.Result().Cookies() {
		if c.Name == CookieName && c.MaxAge != -1 {
			t.Error("expected MaxAge=-1 on cleared cookie")
		}
	}

	if got, _ := store.Get(ctx, req); got != nil {
		t.Error("expected nil after destroy")
	}

	// Destroying again, or with no cookie at all, is a no-op.
	if err := store.Destroy(ctx, httptest.NewRecorder(), req); err != nil {
		t.Errorf("second Destroy: %v", err)
	}
	if err := store.Destroy(ctx, httptest.NewRecorder(), requestWith(nil)); err != nil {
		t.Errorf("Destroy without cookie: %v", err)
	}
}

func TestSessionSecureCookie(t *testing.T) {
	store := NewStore(testValkeyClient(t), true)

	cookie := login(t, store, &Data{
		UserID: uuid.New(), Email: "tls@shop.test",
		DisplayName: "TLS", Role: "admin",
	})
	if !cookie.Secure {
		t.Error("expected Secure=true for secure store")
	}
}
