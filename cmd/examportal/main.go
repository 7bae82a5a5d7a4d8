package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/phuslu/log"

	api "github.com/mind-engage/examportal/internal/api/http"
	auth "github.com/mind-engage/examportal/internal/auth/middleware"
	"github.com/mind-engage/examportal/internal/config"
	"github.com/mind-engage/examportal/internal/db"
	"github.com/mind-engage/examportal/internal/exam"
	"github.com/mind-engage/examportal/internal/grading"
	"github.com/mind-engage/examportal/internal/logging"
	"github.com/mind-engage/examportal/internal/storage"
	syncx "github.com/mind-engage/examportal/internal/sync"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config")
	}
	logging.Setup(cfg.LogLevel, cfg.Mode)

	// --- DB ---
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	grader := grading.NewDefaultGrader()
	deps := api.Deps{Config: cfg, Auth: auth.NewAuthService(cfg.AuthHMACSecret)}
	var dbh *sql.DB
	if cfg.DBDriver == "memory" {
		deps.Store = exam.NewInMemoryStore(grader)
	} else {
		dbh, err = db.Open(ctx, db.Driver(cfg.DBDriver), cfg.DBDSN)
		if err != nil {
			log.Fatal().Err(err).Str("driver", cfg.DBDriver).Msg("db open failed")
		}
		defer dbh.Close()
		deps.Store = exam.NewSQLStore(dbh, cfg.DBDriver, grader)
		deps.Events = syncx.NewEventRepo(dbh)
	}

	bs, err := storage.NewFSStore(cfg.BlobBasePath, storage.WithPublicURL("/assets"))
	if err != nil {
		log.Fatal().Err(err).Msg("blob store")
	}
	deps.Blobs = bs

	// --- Router ---
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	api.Mount(r, deps)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if dbh != nil {
			if err := dbh.PingContext(r.Context()); err != nil {
				http.Error(w, "db unavailable", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(200)
	})

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: r, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
		<-sig
		sctx, scancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer scancel()
		_ = srv.Shutdown(sctx)
	}()

	log.Info().Str("addr", cfg.HTTPAddr).Str("mode", string(cfg.Mode)).Str("db", cfg.DBDriver).Msg("listening")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("server")
	}
}
