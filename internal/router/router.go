// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package router sets up all HTTP routes and middleware chains for the
// shop admin API. Everything lives under /api; mutating requests carry
// the CSRF double-submit header and most routes require a session with
// completed 2FA.
package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"shopadmin/internal/handlers"
	"shopadmin/internal/middleware"
	"shopadmin/internal/session"
)

// Handlers bundles every handler group the router wires up.
type Handlers struct {
	Auth        *handlers.Auth
	Services    *handlers.Services
	Products    *handlers.Products
	Posts       *handlers.Posts
	Discounts   *handlers.Discounts
	Invitations *handlers.Invitations
	Users       *handlers.Users
	Media       *handlers.Media
}

// New creates and returns the configured Chi router with all middleware
// and route groups wired up.
func New(sessionStore *session.Store, secure bool, h Handlers) chi.Router {
	r := chi.NewRouter()

	// Global middleware, applied to every request.
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(middleware.SecureHeaders)
	r.Use(middleware.LoadSession(sessionStore))

	// Health check, no auth, no CSRF.
	r.Get("/health", healthHandler)

	// Login attempts are rate limited per IP.
	loginLimiter := middleware.NewRateLimiter(10, time.Minute)

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.NewCSRF(secure))

		r.Route("/auth", func(r chi.Router) {
			r.With(loginLimiter.Middleware).Post("/login", h.Auth.Login)
			r.Post("/logout", h.Auth.Logout)
			r.Get("/me", h.Auth.Me)

			// 2FA enrollment requires a session but not completed 2FA.
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireAuth)
				r.Post("/2fa/setup", h.Auth.TwoFASetup)
				r.With(loginLimiter.Middleware).Post("/2fa/verify", h.Auth.TwoFAVerify)
			})
		})

		// Invitation acceptance is the one unauthenticated write: the
		// token is the credential. Same limiter as login.
		r.With(loginLimiter.Middleware).Post("/invitations/accept", h.Invitations.Accept)

		// Authenticated, 2FA-verified API.
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth)
			r.Use(middleware.Require2FA)

			r.Route("/services", func(r chi.Router) {
				r.Get("/", h.Services.List)
				r.Post("/", h.Services.Create)
				r.Get("/{id}", h.Services.Get)
				r.Patch("/{id}", h.Services.Update)
				r.Delete("/{id}", h.Services.Delete)
				r.Patch("/{id}/components", h.Services.ReplaceComponents)
			})

			r.Route("/products", func(r chi.Router) {
				r.Get("/", h.Products.List)
				r.Post("/", h.Products.Create)
				r.Get("/{id}", h.Products.Get)
				r.Patch("/{id}", h.Products.Update)
				r.Delete("/{id}", h.Products.Delete)
			})

			r.Route("/posts", func(r chi.Router) {
				r.Get("/", h.Posts.List)
				r.Post("/", h.Posts.Create)
				r.Post("/preview", h.Posts.Preview)
				r.Get("/{id}", h.Posts.Get)
				r.Patch("/{id}", h.Posts.Update)
				r.Delete("/{id}", h.Posts.Delete)
				r.Patch("/{id}/autosave", h.Posts.Autosave)
			})

			r.Route("/discounts", func(r chi.Router) {
				r.Get("/", h.Discounts.List)
				r.Post("/", h.Discounts.Create)
				r.Get("/{id}", h.Discounts.Get)
				r.Patch("/{id}", h.Discounts.Update)
				r.Delete("/{id}", h.Discounts.Delete)
			})

			r.Route("/media", func(r chi.Router) {
				r.Get("/", h.Media.List)
				r.Post("/", h.Media.Upload)
				r.Delete("/{id}", h.Media.Delete)
			})

			// User and invitation management, admin only.
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireAdmin)

				r.Route("/users", func(r chi.Router) {
					r.Get("/", h.Users.List)
					r.Patch("/{id}", h.Users.Update)
					r.Post("/{id}/reset-2fa", h.Users.Reset2FA)
					r.Delete("/{id}", h.Users.Delete)
				})

				r.Route("/invitations", func(r chi.Router) {
					r.Get("/", h.Invitations.List)
					r.Post("/", h.Invitations.Create)
					r.Delete("/{id}", h.Invitations.Delete)
				})
			})
		})
	})

	return r
}

// healthHandler returns a simple JSON health check response.
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}
