package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"

	"github.com/Dosada05/swiss-tournament/brackets"
	"github.com/Dosada05/swiss-tournament/config"
	"github.com/Dosada05/swiss-tournament/db"
	"github.com/Dosada05/swiss-tournament/handlers"
	"github.com/Dosada05/swiss-tournament/repositories"
	"github.com/Dosada05/swiss-tournament/routes"
	"github.com/Dosada05/swiss-tournament/scheduler"
	"github.com/Dosada05/swiss-tournament/services"
	"github.com/Dosada05/swiss-tournament/storage"
)

const (
	shutdownTimeout = 15 * time.Second
	requestTimeout  = 10 * time.Second
)

type storageBackend struct {
	players   repositories.PlayerRepository
	matches   repositories.MatchRepository
	snapshots repositories.SnapshotReader
	ping      handlers.Pinger
	close     func() error
}

func main() {
	if err := run(); err != nil {
		slog.Error("application exited with error", slog.Any("error", err))
		os.Exit(1)
	}
	slog.Info("application exited")
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	slog.SetDefault(logger)
	logger.Info("configuration loaded",
		slog.Int("port", cfg.ServerPort),
		slog.String("storage", cfg.StorageDriver),
		slog.String("bye_policy", string(cfg.ByePolicy)),
	)

	backend, err := openStorage(cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := backend.close(); err != nil {
			logger.Error("failed to close storage", slog.Any("error", err))
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var uploader storage.FileUploader
	if cfg.R2.Enabled() {
		uploader, err = storage.NewCloudflareR2Uploader(ctx, storage.CloudflareR2UploaderConfig{
			AccountID:       cfg.R2.AccountID,
			AccessKeyID:     cfg.R2.AccessKeyID,
			SecretAccessKey: cfg.R2.SecretAccessKey,
			BucketName:      cfg.R2.BucketName,
			PublicBaseURL:   cfg.R2.PublicBaseURL,
		})
		if err != nil {
			return fmt.Errorf("failed to initialize Cloudflare R2 uploader: %w", err)
		}
		logger.Info("Cloudflare R2 uploader initialized")
	}

	wsHub := brackets.NewHub(logger)

	tournamentService := services.NewTournamentService(
		backend.players,
		backend.matches,
		backend.snapshots,
		brackets.NewSwissGenerator(cfg.ByePolicy),
		wsHub,
		logger,
	)
	authService := services.NewAuthService(cfg.AdminPasswordHash, cfg.JWTSecretKey, cfg.TokenTTL, logger)

	var exportService services.ExportService
	if uploader != nil {
		exportService = services.NewExportService(tournamentService, uploader, cfg.TournamentName, logger)
	}

	router := chi.NewRouter()
	routes.SetupRoutes(router, routes.Handlers{
		Auth:       handlers.NewAuthHandler(authService),
		Player:     handlers.NewPlayerHandler(tournamentService),
		Tournament: handlers.NewTournamentHandler(tournamentService, exportService),
		WebSocket:  handlers.NewWebSocketHandler(wsHub, tournamentService, cfg.CORSOrigins),
		Health:     handlers.NewHealthHandler(backend.ping),
	}, routes.Options{
		JWTSecret:      []byte(cfg.JWTSecretKey),
		AllowedOrigins: cfg.CORSOrigins,
		RequestTimeout: requestTimeout,
	})

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		wsHub.Run()
		return nil
	})

	if exportService != nil && cfg.ExportInterval > 0 {
		exportScheduler, err := scheduler.NewExportScheduler(exportService, cfg.ExportInterval, logger)
		if err != nil {
			return err
		}
		exportScheduler.Start()
		g.Go(func() error {
			<-gCtx.Done()
			return exportScheduler.Shutdown()
		})
	}

	g.Go(func() error {
		logger.Info("starting server", slog.String("address", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gCtx.Done()
		logger.Info("shutting down server", slog.Duration("timeout", shutdownTimeout))
		defer wsHub.Stop()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return errors.Join(fmt.Errorf("graceful shutdown failed: %w", err), server.Close())
		}
		logger.Info("server shutdown complete")
		return nil
	})

	return g.Wait()
}

func openStorage(cfg *config.Config, logger *slog.Logger) (*storageBackend, error) {
	if cfg.StorageDriver == config.StorageDriverMemory {
		logger.Warn("using in-memory storage, data is lost on restart")
		store := repositories.NewMemoryStore()
		return &storageBackend{
			players:   store.Players(),
			matches:   store.Matches(),
			snapshots: store,
			close:     func() error { return nil },
		}, nil
	}

	dbConn, err := db.Connect(cfg.DatabaseURL, cfg.DBConnectTimeout)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	logger.Info("database connection established")

	if err := db.RunMigrations(dbConn); err != nil {
		return nil, errors.Join(fmt.Errorf("failed to run migrations: %w", err), dbConn.Close())
	}
	logger.Info("migrations applied")

	return &storageBackend{
		players:   repositories.NewPostgresPlayerRepository(dbConn),
		matches:   repositories.NewPostgresMatchRepository(dbConn),
		snapshots: repositories.NewPostgresSnapshotReader(dbConn),
		ping: func(ctx context.Context) error {
			return db.Ping(ctx, dbConn, cfg.DBConnectTimeout)
		},
		close: dbConn.Close,
	}, nil
}
