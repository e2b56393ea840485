package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"opsboard/internal/config"
	"opsboard/internal/server"
	"opsboard/internal/services"
	"opsboard/internal/store"
)

func main() {
	// Load environment variables from .env file
	_ = godotenv.Load()

	cfg := config.Load()
	log := config.NewLogger(cfg)

	st, err := openStore(cfg, log)
	if err != nil {
		log.Fatalf("open store: %v", err)
	}

	tracker, err := services.New(st, log)
	if err != nil {
		log.Fatalf("load records: %v", err)
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      server.New(tracker, st, log),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.WithFields(logrus.Fields{"port": cfg.Port, "backend": cfg.Backend}).Info("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutdown signal received")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Errorf("error during shutdown: %v", err)
	}
	log.Info("server stopped gracefully")
}

// openStore picks the persistence backend. A missing workbook is created
// empty so a fresh install starts without any manual setup.
func openStore(cfg config.Config, log *logrus.Logger) (store.Store, error) {
	switch cfg.Backend {
	case config.BackendPostgres:
		return store.OpenPostgres(cfg.DatabaseDSN, log)
	default:
		ws := store.NewWorkbookStore(cfg.WorkbookPath, log)
		if _, err := os.Stat(cfg.WorkbookPath); os.IsNotExist(err) {
			log.WithFields(logrus.Fields{"path": cfg.WorkbookPath}).Info("workbook not found, creating empty one")
			if err := ws.Save(&store.Snapshot{}); err != nil {
				return nil, err
			}
		}
		return ws, nil
	}
}
