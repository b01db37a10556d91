package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/decoambiente/decoambiente-backend/internal/adapters/repository"
	"github.com/decoambiente/decoambiente-backend/internal/auth"
	"github.com/decoambiente/decoambiente-backend/internal/config"
	"github.com/decoambiente/decoambiente-backend/internal/handlers"
	"github.com/decoambiente/decoambiente-backend/internal/metrics"
	"github.com/decoambiente/decoambiente-backend/internal/seed"
	"github.com/decoambiente/decoambiente-backend/internal/services/assistant"
	"github.com/decoambiente/decoambiente-backend/internal/services/catalog"
	"github.com/decoambiente/decoambiente-backend/internal/services/importer"
	"github.com/decoambiente/decoambiente-backend/utils"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

func serveCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the web server",
		Long: `Serve the public site, the JSON API and the admin area.

The server keeps running without a database: the catalog falls back to the
bundled product list and the data routes answer 503 until it is restarted
with a reachable MongoDB.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.serve(cmd.Context())
		},
	}
}

func (a *app) serve(parent context.Context) error {
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := a.cfg
	data, err := seed.Load()
	if err != nil {
		return err
	}
	m := metrics.New()
	validate := utils.NewValidator()

	deps := handlers.Dependencies{
		Config:  cfg,
		Metrics: m,
		Seed:    data,
	}

	client, db, err := repository.Connect(ctx, a.mongoConfig())
	if err != nil {
		logrus.WithError(err).Warn("Database not connected - serving the bundled catalog")
	} else {
		defer disconnect(client)
		if err := repository.EnsureIndexes(ctx, db); err != nil {
			logrus.WithError(err).Warn("Some indexes could not be created")
		}
		deps.Products = repository.NewProductRepository(db)
		deps.Categories = repository.NewCategoryRepository(db)
		deps.Collections = repository.NewCollectionRepository(db)
		deps.Ping = func(ctx context.Context) error {
			return client.Ping(ctx, readpref.Primary())
		}
	}

	var source catalog.ProductLister
	if deps.Products != nil {
		source = deps.Products
	}
	deps.Catalog = catalog.NewService(source, catalog.Options{
		TTL:         cfg.Catalog.CacheTTL,
		UseFallback: cfg.Catalog.Fallback,
		Fallback:    data.Products,
		Metrics:     m,
	})
	if deps.Products != nil {
		deps.Importer = importer.New(deps.Products, validate,
			importer.WithMetrics(m),
			importer.WithOnCreated(deps.Catalog.Invalidate),
		)
	}

	uploader, err := utils.NewCloudinaryUploader(cfg.Cloudinary.CloudName, cfg.Cloudinary.APIKey, cfg.Cloudinary.APISecret, cfg.Cloudinary.Folder)
	switch {
	case err == nil:
		deps.Uploader = uploader
	case errors.Is(err, utils.ErrUploaderDisabled):
		logrus.Info("Cloudinary not configured - image uploads disabled")
	default:
		logrus.WithError(err).Warn("Cloudinary setup failed - image uploads disabled")
	}

	gen, err := assistant.NewGeminiGenerator(ctx, cfg.GenAI.APIKey, cfg.GenAI.Model)
	switch {
	case err == nil:
		defer gen.Close()
		deps.Writer = assistant.NewDescriptionWriter(gen)
	case errors.Is(err, assistant.ErrDisabled):
		logrus.Info("Gemini not configured - description assistant disabled")
	default:
		logrus.WithError(err).Warn("Gemini setup failed - description assistant disabled")
	}

	deps.Tokens = utils.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	if !deps.Tokens.Ready() {
		logrus.Warn("auth.jwt_secret is empty - admin sign-in disabled")
	}
	allow := auth.NewAllowList(cfg.Auth.AdminEmails)
	if allow.Len() == 0 {
		logrus.Warn("auth.admin_emails is empty - nobody can enter the admin area")
	}
	deps.Guard = auth.NewGuard(allow, deps.Tokens.Ready)
	deps.Google = auth.NewGoogleVerifier(cfg.Auth.GoogleClientID)
	deps.Passwords = auth.NewPasswordVerifier(cfg.Auth.AdminPasswords)

	config.Watch(a.v, func(next config.Config) {
		allow.Replace(next.Auth.AdminEmails)
		logrus.WithField("admins", allow.Len()).Info("Admin allow-list reloaded")
	})

	router, err := handlers.SetupRouter(deps)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		defer close(errCh)
		logrus.WithField("addr", cfg.Server.Addr).Info("Server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logrus.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}
	logrus.Info("Server stopped")
	return nil
}
