package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/crypto/bcrypt"

	"github.com/Maleek6526/TaskManagerApplication/internal/api"
	"github.com/Maleek6526/TaskManagerApplication/internal/auth"
	"github.com/Maleek6526/TaskManagerApplication/internal/config"
	"github.com/Maleek6526/TaskManagerApplication/internal/domain"
	"github.com/Maleek6526/TaskManagerApplication/internal/persistence/memory"
	persistence "github.com/Maleek6526/TaskManagerApplication/internal/persistence/postgres"
	httptransport "github.com/Maleek6526/TaskManagerApplication/internal/transport/http"
)

func main() {
	cfg := config.Load()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tasks, activity, users, cleanup := buildRepositories(ctx, cfg)
	defer cleanup()

	service := domain.NewService(tasks, activity, users)

	authCfg := auth.Config{Secret: cfg.JWTSecret, Issuer: cfg.JWTIssuer}
	handler := api.NewHandler(service, authCfg, cfg.TokenTTL)
	mux := http.NewServeMux()
	handler.RegisterRoutes(mux)
	mux.Handle("/metrics", promhttp.Handler())

	// Simple CORS middleware for the local front-end
	cors := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", cfg.CORSOrigin)
			w.Header().Set("Access-Control-Allow-Credentials", "true")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			w.Header().Set("Access-Control-Allow-Methods", "GET,POST,PUT,DELETE,OPTIONS")
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}

	// Request logger with a correlation id per request
	logger := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := uuid.NewString()
			start := time.Now()
			next.ServeHTTP(w, r)
			log.Printf("%s %s %s %s", requestID, r.Method, r.URL.Path, time.Since(start))
		})
	}

	authMiddleware := auth.NewMiddleware(authCfg, func(r *http.Request) bool {
		switch r.URL.Path {
		case "/healthz", "/metrics", "/auth/login":
			return true
		}
		return false
	})

	server := httptransport.NewServer(httptransport.ServerConfig{
		Address:      cfg.HTTPAddress,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}, authMiddleware.Wrap(logger(cors(mux))))

	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Printf("taskboard api listening on %s", cfg.HTTPAddress)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	<-shutdownCh
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}
}

// buildRepositories connects to Postgres, falling back to the seeded
// in-memory store when the database is unreachable so the service can run
// in degraded mode.
func buildRepositories(ctx context.Context, cfg config.Config) (domain.TaskRepository, domain.ActivityRepository, domain.UserRepository, func()) {
	pingCtx, pingCancel := context.WithTimeout(ctx, 5*time.Second)
	defer pingCancel()

	pool, err := pgxpool.New(ctx, cfg.PostgresURL)
	if err == nil {
		err = pool.Ping(pingCtx)
	}
	if err == nil {
		repo := persistence.NewRepository(pool)
		return repo, repo, repo, pool.Close
	}
	if pool != nil {
		pool.Close()
	}

	log.Printf("postgres unavailable (%v); running on the in-memory store", err)
	store := seedMemoryStore(cfg)
	return store, store, store, func() {}
}

func seedMemoryStore(cfg config.Config) *memory.Store {
	store := memory.NewStore()

	seed := func(username, password string, role domain.Role) {
		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			log.Fatalf("failed to hash seed password: %v", err)
		}
		store.SeedUser(domain.User{Username: username, PasswordHash: string(hash), Role: role})
	}

	seed(cfg.AdminUsername, cfg.AdminPassword, domain.RoleAdmin)
	seed(cfg.UserUsername, cfg.UserPassword, domain.RoleUser)

	admin, err := store.FindByUsername(context.Background(), cfg.AdminUsername)
	if err != nil || admin == nil {
		log.Fatalf("seed admin missing")
	}
	if _, err := store.Create(context.Background(), domain.TaskDraft{
		Title:       "Welcome Task",
		Description: "This is your first task.",
		CreatedByID: admin.ID,
	}); err != nil {
		log.Fatalf("failed to seed welcome task: %v", err)
	}
	return store
}
