package main

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/crucial707/it-inventory/internal/config"
	"github.com/crucial707/it-inventory/internal/handlers"
	"github.com/crucial707/it-inventory/internal/inventory"
	"github.com/crucial707/it-inventory/internal/middleware"
	"github.com/crucial707/it-inventory/internal/repo"
)

// newRouter wires every route over database. It opens no connections of its own.
func newRouter(database *sql.DB, cfg config.Config) http.Handler {
	service := inventory.NewService(database, cfg.SystemActor)
	userRepo := repo.NewUserRepo(database)

	secret := []byte(cfg.JWTSecret)
	ttl := time.Duration(cfg.JWTExpireHours) * time.Hour
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	sessionSecret := cfg.SessionSecret
	if sessionSecret == "" {
		sessionSecret = cfg.JWTSecret
	}
	sessions := middleware.NewSessions([]byte(sessionSecret), ttl, cfg.TLSEnabled())

	authHandler := &handlers.AuthHandler{UserRepo: userRepo, Sessions: sessions, Secret: secret, TokenTTL: ttl}
	assetHandler := &handlers.AssetHandler{
		Service:        service,
		UploadDir:      cfg.UploadDir,
		MaxUploadBytes: cfg.MaxUploadBytes,
	}
	historyHandler := &handlers.HistoryHandler{Service: service}
	exportHandler := &handlers.ExportHandler{Service: service, LogoPath: cfg.LogoPath}
	tagHandler := &handlers.AssetTagHandler{Counters: repo.NewCounterRepo(database)}
	kdsHandler := &handlers.KDSHandler{Repo: repo.NewKDSRepo(database)}
	userHandler := &handlers.UserHandler{Repo: userRepo}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestLog)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Prometheus)
	r.Use(middleware.SecurityHeaders(cfg.TLSEnabled()))
	r.Use(middleware.CORS(cfg.CORSAllowedOrigins))

	// ==========================
	// Probes
	// ==========================
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	r.Get("/ready", func(w http.ResponseWriter, r *http.Request) {
		if err := database.PingContext(r.Context()); err != nil {
			handlers.JSONError(w, "database unavailable", http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())

	// ==========================
	// Session
	// ==========================
	r.With(middleware.LoginRateLimiter().Middleware, middleware.MaxBytes(middleware.DefaultMaxBodyBytes)).
		Post("/login", authHandler.Login)
	r.Get("/check-auth", authHandler.CheckAuth)
	r.Post("/logout", authHandler.Logout)

	// ==========================
	// Authenticated API
	// ==========================
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth(secret, sessions))

		r.Get("/fetchColumns/{tableType}", assetHandler.FetchColumns)
		r.Get("/fetchData/{tableType}", assetHandler.FetchData)
		r.Get("/export/{tableType}", exportHandler.ExportTable)
		r.Get("/kdsFetch/{code}", kdsHandler.Fetch)

		r.With(middleware.MaxBytes(cfg.MaxUploadBytes)).Post("/assets", assetHandler.CreateAsset)

		r.Group(func(r chi.Router) {
			r.Use(middleware.MaxBytes(middleware.DefaultMaxBodyBytes))
			r.Post("/assets/get", assetHandler.GetAsset)
			r.Post("/assets/updateByKey", assetHandler.UpdateByKey)
			r.Post("/assetHistory", historyHandler.History)
			r.Post("/fetchLastCounter", tagHandler.FetchLastCounter)
			r.Post("/assetTag/next", tagHandler.NextTag)
		})
		r.With(middleware.MaxBytes(cfg.MaxUploadBytes)).Post("/export-excel", exportHandler.ExportRows)

		r.Handle("/uploads/*", http.StripPrefix("/uploads/", http.FileServer(http.Dir(cfg.UploadDir))))

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAdmin)
			r.Get("/users", userHandler.ListUsers)
			r.With(middleware.MaxBytes(middleware.DefaultMaxBodyBytes)).Post("/users", userHandler.CreateUser)
		})
	})

	return r
}
