package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"

	"github.com/tradedesk/tradelog/auth"
	"github.com/tradedesk/tradelog/controllers"
	"github.com/tradedesk/tradelog/database"
	authmiddleware "github.com/tradedesk/tradelog/middleware"
	"github.com/tradedesk/tradelog/repositories"
	"github.com/tradedesk/tradelog/services"
)

// config collects the environment-driven settings.
type config struct {
	Port          string
	DBPath        string
	AdminUsername string
	AdminPassword string
	// SessionMaxAge only matters for the operator-triggered sweep.
	// Sessions do NOT expire automatically.
	SessionMaxAge time.Duration
}

func loadConfig() config {
	// A missing .env file is fine; plain environment variables work too.
	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file found, using environment variables")
	}

	cfg := config{
		Port:          os.Getenv("PORT"),
		DBPath:        os.Getenv("DB_PATH"),
		AdminUsername: os.Getenv("ADMIN_USERNAME"),
		AdminPassword: os.Getenv("ADMIN_PASSWORD"),
		SessionMaxAge: 24 * time.Hour,
	}
	if cfg.Port == "" {
		cfg.Port = "8080"
	}
	if cfg.DBPath == "" {
		cfg.DBPath = "tradelog.db"
	}
	if hours := os.Getenv("SESSION_MAX_AGE_HOURS"); hours != "" {
		if h, err := strconv.Atoi(hours); err == nil && h > 0 {
			cfg.SessionMaxAge = time.Duration(h) * time.Hour
		}
	}
	return cfg
}

func main() {
	cfg := loadConfig()

	// Initialize database
	if err := database.InitializeDatabase(cfg.DBPath); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer database.CloseDB()

	db := database.GetDB()

	// Session table lives in memory only: every restart logs everyone out.
	sessions := auth.NewManager(auth.NewMemoryStore())

	// Initialize repositories, services and controllers
	repos := repositories.NewRepositories(db)
	srvs := services.NewServices(db, repos, sessions)
	ctrl := controllers.NewControllers(srvs, sessions, cfg.SessionMaxAge)

	// Seed the first admin account on an empty database
	if err := srvs.Users.Bootstrap(context.Background(), cfg.AdminUsername, cfg.AdminPassword); err != nil {
		log.Fatalf("Failed to bootstrap admin account: %v", err)
	}

	r := setupRouter(ctrl, sessions)

	log.Printf("tradelog listening on port %s (database: %s)", cfg.Port, cfg.DBPath)
	log.Fatal(http.ListenAndServe(":"+cfg.Port, r))
}

// setupRouter configures all routes
func setupRouter(ctrl *controllers.Controllers, sessions *auth.Manager) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(60 * time.Second))
	r.Use(chimiddleware.Compress(5))

	// PUBLIC ROUTES (no authentication required)
	r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status": "healthy", "service": "tradelog"}`))
	})
	r.Post("/api/auth/login", ctrl.Auth.Login)
	r.Post("/api/auth/logout", ctrl.Auth.Logout)
	r.Get("/api/auth/session", ctrl.Auth.Session)

	// PROTECTED ROUTES (any authenticated session)
	r.Group(func(r chi.Router) {
		r.Use(authmiddleware.RequireAuth(sessions))

		r.Route("/api/trade-entries", func(r chi.Router) {
			r.Get("/", ctrl.Trades.GetAll)
			r.Post("/", ctrl.Trades.Create)
			r.Get("/date/{date}", ctrl.Trades.GetByDate)
			r.Get("/{id}", ctrl.Trades.GetByID)
			r.Put("/{id}", ctrl.Trades.Update)
			r.Delete("/{id}", ctrl.Trades.Delete)
		})

		r.Route("/api/manual-trade-entries", func(r chi.Router) {
			r.Get("/", ctrl.ManualEntries.GetAll)
			r.Post("/", ctrl.ManualEntries.Create)
			r.Post("/bulk", ctrl.ManualEntries.BulkCreate)
			r.Get("/date/{date}", ctrl.ManualEntries.GetByDate)
			r.Get("/{id}", ctrl.ManualEntries.GetByID)
			r.Put("/{id}", ctrl.ManualEntries.Update)
			r.Delete("/{id}", ctrl.ManualEntries.Delete)
		})

		r.Route("/api/masters", func(r chi.Router) {
			r.Get("/", ctrl.Masters.GetAll)
			r.Get("/{category}", ctrl.Masters.GetCategory)
			r.Post("/{category}", ctrl.Masters.CreateValue)
			r.Delete("/{category}/{id}", ctrl.Masters.DeleteValue)
		})

		r.Route("/api/trade-logs", func(r chi.Router) {
			r.Get("/", ctrl.Audit.GetInRange)
			r.Get("/count", ctrl.Audit.Count)
			r.Get("/download", ctrl.Audit.Download)
			r.Get("/entry/{entryId}", ctrl.Audit.GetForEntry)
		})
	})

	// ADMIN ROUTES (admin role required)
	r.Group(func(r chi.Router) {
		r.Use(authmiddleware.RequireAdmin(sessions))

		r.Route("/api/users", func(r chi.Router) {
			r.Get("/", ctrl.Users.GetAll)
			r.Post("/", ctrl.Users.Create)
			r.Delete("/{username}", ctrl.Users.Delete)
		})

		r.Post("/api/admin/sessions/sweep", ctrl.Auth.SweepSessions)
	})

	return r
}
