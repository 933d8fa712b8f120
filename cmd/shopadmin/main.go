// Package main is the entry point for the shop admin API server.
// It loads configuration, connects to services, sets up routing, and starts
// the HTTP server with graceful shutdown support.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"shopadmin/internal/cache"
	"shopadmin/internal/config"
	"shopadmin/internal/database"
	"shopadmin/internal/handlers"
	"shopadmin/internal/imaging"
	"shopadmin/internal/router"
	"shopadmin/internal/session"
	"shopadmin/internal/storage"
	"shopadmin/internal/store"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
	slog.SetDefault(logger)

	// Load configuration from environment variables.
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	slog.Info("configuration loaded",
		"env", cfg.Env,
		"addr", cfg.Addr(),
	)

	// Connect to PostgreSQL.
	db, err := database.Connect(cfg.DSN())
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	// Run pending migrations.
	if err := database.Migrate(db); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	// Seed development data (no-op if data already exists).
	if cfg.IsDev() {
		if err := database.Seed(db); err != nil {
			slog.Error("failed to seed database", "error", err)
			os.Exit(1)
		}
	}

	// Connect to Valkey (Redis-compatible cache + session store).
	valkeyClient, err := cache.ConnectValkey(cfg.ValkeyHost, cfg.ValkeyPort, cfg.ValkeyPassword)
	if err != nil {
		slog.Error("failed to connect to valkey", "error", err)
		os.Exit(1)
	}
	defer valkeyClient.Close()

	// In non-development environments, mark cookies as Secure (HTTPS-only).
	secureCookies := !cfg.IsDev()
	sessionStore := session.NewStore(valkeyClient, secureCookies)

	// The assembled service tree is cached in Valkey between mutations.
	treeCache := cache.NewTreeCache(valkeyClient, cache.DefaultTreeTTL)

	// Initialize data stores.
	userStore := store.NewUserStore(db)
	invitationStore := store.NewInvitationStore(db)
	serviceStore := store.NewServiceStore(db)
	productStore := store.NewProductStore(db)
	postStore := store.NewPostStore(db)
	discountStore := store.NewDiscountStore(db)
	mediaStore := store.NewMediaStore(db)

	// Connect to S3-compatible object storage (optional; the app works
	// without it, with media uploads disabled).
	storageClient, err := storage.New(
		cfg.S3Endpoint, cfg.S3Region, cfg.S3AccessKey, cfg.S3SecretKey,
		cfg.S3Bucket, cfg.S3PublicURL,
	)
	if err != nil {
		slog.Error("failed to initialize S3 storage", "error", err)
		os.Exit(1)
	}
	if storageClient != nil {
		slog.Info("s3 storage connected", "endpoint", cfg.S3Endpoint, "bucket", cfg.S3Bucket)
		// libvips powers responsive image variants on upload.
		imaging.Startup(0)
		defer imaging.Shutdown()
	} else {
		slog.Warn("s3 storage not configured, media uploads disabled")
	}

	// Set up the Chi router with all middleware and routes.
	r := router.New(sessionStore, secureCookies, router.Handlers{
		Auth:        handlers.NewAuth(sessionStore, userStore),
		Services:    handlers.NewServices(serviceStore, treeCache),
		Products:    handlers.NewProducts(productStore),
		Posts:       handlers.NewPosts(postStore),
		Discounts:   handlers.NewDiscounts(discountStore),
		Invitations: handlers.NewInvitations(invitationStore),
		Users:       handlers.NewUsers(userStore),
		Media:       handlers.NewMedia(mediaStore, storageClient, cfg.MaxUploadBytes),
	})

	// Create the HTTP server with sensible timeouts. WriteTimeout covers
	// media uploads, which can take a while on slow links.
	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Start the server in a goroutine so we can listen for shutdown signals.
	go func() {
		slog.Info("server starting", "addr", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown: wait for SIGINT or SIGTERM, then drain connections.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	slog.Info("shutdown signal received", "signal", sig)

	// Give active requests up to 30 seconds to complete.
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped gracefully")
}
