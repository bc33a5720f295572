package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/pmitra96/castleverde/config"
	"github.com/pmitra96/castleverde/controllers"
	"github.com/pmitra96/castleverde/database"
	"github.com/pmitra96/castleverde/extractor"
	"github.com/pmitra96/castleverde/llm"
	"github.com/pmitra96/castleverde/logger"
	"github.com/pmitra96/castleverde/models"
	"github.com/pmitra96/castleverde/routes"
	"github.com/pmitra96/castleverde/services"
)

func newServeCmd() *cobra.Command {
	var configPath string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			if err := logger.Init(cfg.Env); err != nil {
				return err
			}
			defer logger.Sync()

			h, cleanup, err := buildHandler(cfg)
			if err != nil {
				return err
			}
			defer cleanup()

			if configPath != "" {
				w, err := config.NewWatcher(configPath, func(next *config.Config) {
					h.Index.UpdateSettings(next.Index)
				})
				if err != nil {
					logger.Warn("Config hot reload disabled", "error", err)
				} else {
					defer w.Close()
					go w.Watch()
				}
			}

			srv := &http.Server{
				Addr:              ":" + cfg.Port,
				Handler:           routes.SetupRouter(h, routes.Options{AllowedOrigins: cfg.AllowedOrigins, APIKey: cfg.APIKey}),
				ReadHeaderTimeout: 10 * time.Second,
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			go func() {
				<-ctx.Done()
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				_ = srv.Shutdown(shutdownCtx)
			}()

			logger.Info("Server starting", "port", cfg.Port)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("Server failed to start", "error", err)
				return err
			}
			logger.Info("Server stopped")
			return nil
		},
	}
	cmd.Flags().StringVar(&configPath, "config", "", "Path to a YAML config file (watched for index settings changes)")
	return cmd
}

// buildHandler wires the collaborators named in cfg. Missing optional
// collaborators leave their routes answering 503.
func buildHandler(cfg *config.Config) (*controllers.Handler, func(), error) {
	anchor, err := models.ParseAnchor(cfg.DefaultAnchor)
	if err != nil {
		return nil, nil, err
	}
	index := services.NewIndexService(services.WithSettings(cfg.Index))

	var db *gorm.DB
	cleanup := func() {}
	db, err = database.Open(cfg.Database)
	switch {
	case errors.Is(err, database.ErrDisabled):
		logger.Info("Lookup cache disabled")
	case err != nil:
		return nil, nil, err
	default:
		cleanup = func() { _ = database.Close(db) }
	}

	var estimator services.MacroEstimator
	client, err := llm.New(cfg.LLM.APIKey, cfg.LLM.BaseURL, cfg.LLM.Model)
	switch {
	case errors.Is(err, llm.ErrNotConfigured):
		logger.Info("LLM food lookup disabled")
	case err != nil:
		cleanup()
		return nil, nil, err
	default:
		estimator = client
	}

	var ocr services.LabelOCR
	if cfg.OCRServiceURL != "" {
		ocr = extractor.NewOCRClient(cfg.OCRServiceURL)
	}

	h := &controllers.Handler{
		Index:     index,
		Carts:     services.NewCartRegistry(index, anchor),
		Nutrition: services.NewNutritionService(db, cfg.OpenFoodFacts, estimator),
		Labels:    services.NewLabelService(ocr),
		DB:        db,
	}
	return h, cleanup, nil
}
