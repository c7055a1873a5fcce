package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/officialcoder01/boilerplate-project-expensetracker/internal/config"
	"github.com/officialcoder01/boilerplate-project-expensetracker/internal/handlers"
	"github.com/officialcoder01/boilerplate-project-expensetracker/internal/metrics"
	"github.com/officialcoder01/boilerplate-project-expensetracker/internal/storage"
	"github.com/officialcoder01/boilerplate-project-expensetracker/internal/tracker"
)

func setupRouter(h *handlers.Handlers, staticDir string) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", h.Home)
	mux.HandleFunc("POST /api/users", h.CreateUser)
	mux.HandleFunc("GET /api/users/{userId}/expenses", h.ExpenseForm)
	mux.HandleFunc("POST /api/users/{userId}/expenses", h.CreateExpense)
	mux.HandleFunc("GET /api/users/{userId}/expenses/history", h.History)

	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.Dir(staticDir))))
	mux.HandleFunc("GET /healthz", h.Health)
	mux.Handle("GET /metrics", metrics.Handler())

	return mux
}

func main() {
	cfg, err := config.Load(".env")
	if err != nil {
		logrus.WithError(err).Fatal("failed to load configuration")
	}
	log, err := cfg.Logger()
	if err != nil {
		logrus.WithError(err).Fatal("invalid logging configuration")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := storage.Open(ctx, cfg.StoreOptions())
	if err != nil {
		log.WithError(err).WithField("driver", cfg.StoreDriver).Fatal("failed to open store")
	}
	defer store.Close()

	svc := tracker.NewService(store, store, log, cfg.DateLayout)
	h := handlers.NewHandlers(svc, store, cfg.TemplateDir, log)

	var limiter *rate.Limiter
	if cfg.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.RateBurst)
	}

	handler := handlers.Chain(setupRouter(h, cfg.StaticDir),
		handlers.RequestLogger(log),
		handlers.CORS(cfg.CORSOrigin),
		handlers.RateLimit(limiter),
		metrics.InstrumentHandler,
	)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.WithFields(logrus.Fields{
			"port":   cfg.Port,
			"driver": cfg.StoreDriver,
		}).Info("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			log.WithError(err).Error("server failed")
			return
		}
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("graceful shutdown failed")
	}
}
