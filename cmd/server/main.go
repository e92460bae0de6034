package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/bananalabs-oss/lobby/internal/database"
	"github.com/bananalabs-oss/lobby/internal/feed"
	"github.com/bananalabs-oss/lobby/internal/friends"
	"github.com/bananalabs-oss/lobby/internal/notifications"
	"github.com/bananalabs-oss/lobby/internal/parties"
	"github.com/bananalabs-oss/lobby/internal/presence"
	"github.com/bananalabs-oss/lobby/internal/router"
	"github.com/bananalabs-oss/lobby/internal/store"
	"github.com/bananalabs-oss/lobby/internal/users"
	"github.com/bananalabs-oss/potassium/config"
	"golang.org/x/sync/errgroup"
)

func mustDuration(name, fallback string) time.Duration {
	raw := config.EnvOrDefault(name, fallback)
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		log.Fatalf("Invalid %s %q: must be a positive duration", name, raw)
	}
	return d
}

func main() {
	log.Printf("Starting Lobby")

	jwtSecret := config.RequireEnv("JWT_SECRET")
	serviceToken := config.RequireEnv("SERVICE_TOKEN")
	databaseURL := config.EnvOrDefault("DATABASE_URL", "sqlite://lobby.db")
	redisURL := config.EnvOrDefault("REDIS_URL", "")
	host := config.EnvOrDefault("HOST", "0.0.0.0")
	port := config.EnvOrDefault("PORT", "8004")
	cleanupInterval := mustDuration("CLEANUP_INTERVAL", "1h")
	retention := mustDuration("RETENTION", "168h")

	feedName := "memory"
	if redisURL != "" {
		feedName = "redis"
	}

	log.Printf("Lobby Configuration:")
	log.Printf("  Host:      %s", host)
	log.Printf("  Port:      %s", port)
	log.Printf("  Database:  %s", databaseURL)
	log.Printf("  Feed:      %s", feedName)
	log.Printf("  Cleanup:   every %s, retention %s", cleanupInterval, retention)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.Connect(databaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := database.Migrate(ctx, db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	var bus feed.Bus = feed.NewMemoryBus()
	if redisURL != "" {
		redisBus, err := feed.NewRedisBus(redisURL)
		if err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		defer redisBus.Close()
		bus = redisBus
		log.Printf("Connected to Redis feed")
	}

	st := store.New(db, bus)
	partySvc := parties.NewService(st)
	notificationSvc := notifications.NewService(st, partySvc, retention)
	friendSvc := friends.NewService(st, retention)

	r := router.Setup(router.Services{
		Parties:       partySvc,
		Presence:      presence.NewProjector(st, bus),
		Notifications: notificationSvc,
		Friends:       friendSvc,
		Users:         users.NewService(st),
	}, jwtSecret, serviceToken)

	addr := fmt.Sprintf("%s:%s", host, port)
	srv := &http.Server{
		Addr:    addr,
		Handler: r,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Printf("Lobby listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		runJanitor(gctx, cleanupInterval, notificationSvc, friendSvc)
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Printf("Shutting down Lobby...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server forced to shutdown: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		log.Fatalf("Lobby stopped: %v", err)
	}

	log.Printf("Lobby stopped")
}

// runJanitor garbage-collects read notifications and answered friend
// requests until ctx is done.
func runJanitor(ctx context.Context, interval time.Duration, ns *notifications.Service, fs *friends.Service) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		now := time.Now().UTC()
		if n, err := ns.CleanupRead(ctx, now); err != nil {
			log.Printf("Failed to clean up notifications: %v", err)
		} else if n > 0 {
			log.Printf("Removed %d read notifications", n)
		}
		if n, err := fs.CleanupResolved(ctx, now); err != nil {
			log.Printf("Failed to clean up friend requests: %v", err)
		} else if n > 0 {
			log.Printf("Removed %d answered friend requests", n)
		}
	}
}
