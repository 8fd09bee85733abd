package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/httplog/v2"
	"golang.org/x/sync/errgroup"

	api "github.com/Puzzlebottom/tinyapp/internal/api/http"
	"github.com/Puzzlebottom/tinyapp/internal/auth"
	"github.com/Puzzlebottom/tinyapp/internal/config"
	"github.com/Puzzlebottom/tinyapp/internal/service"
	"github.com/Puzzlebottom/tinyapp/internal/storage/memory"
	storagepg "github.com/Puzzlebottom/tinyapp/internal/storage/postgres"
	"github.com/Puzzlebottom/tinyapp/pkg/postgres"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "tinyapp: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	const op = "main.run"

	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	g, ctx := errgroup.WithContext(ctx)

	var (
		accountRepo service.AccountRepository
		urlRepo     service.URLRepository
	)

	switch cfg.Storage {
	case config.StoragePostgres:
		db, err := postgres.Connect(ctx, cfg.Postgres.DSN(), postgres.PoolSettings{
			ConnMaxIdleTime: cfg.Postgres.ConnMaxIdleTime,
			ConnMaxLifetime: cfg.Postgres.ConnMaxLifetime,
			MaxIdleConns:    cfg.Postgres.MaxIdleConns,
			MaxOpenConns:    cfg.Postgres.MaxOpenConns,
		})
		if err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		g.Go(func() error {
			<-ctx.Done()
			return db.Close()
		})

		if err := postgres.RunMigrations("file://migrations", cfg.Postgres.DSN()); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}

		accountRepo = storagepg.NewAccountRepository(db)
		urlRepo = storagepg.NewURLRepository(db)
	case config.StorageMemory:
		accountRepo = memory.NewAccountRepository()
		urlRepo = memory.NewURLRepository()
	default:
		return fmt.Errorf("%s: unknown storage backend: %q", op, cfg.Storage)
	}

	accountSvc := service.NewAccountService(accountRepo, cfg.BcryptCost)
	urlSvc := service.NewURLService(urlRepo, accountRepo, cfg.ShortCodeLength)
	tokens := auth.NewTokenManager(cfg.Session.Secret, cfg.Session.TTL)

	logger := httplog.NewLogger("tinyapp", httplog.Options{
		LogLevel: logLevel(cfg.Env),
		JSON:     cfg.Env == config.EnvProd,
		Concise:  cfg.Env != config.EnvProd,
	})

	server := &http.Server{
		Addr:           cfg.HTTPServer.Addr(),
		Handler:        api.NewRouter(logger, tokens, accountSvc, urlSvc),
		ReadTimeout:    cfg.HTTPServer.ReadTimeout,
		WriteTimeout:   cfg.HTTPServer.WriteTimeout,
		IdleTimeout:    cfg.HTTPServer.IdleTimeout,
		MaxHeaderBytes: cfg.HTTPServer.MaxHeaderBytes,
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	g.Go(func() error {
		var err error

		switch cfg.Env {
		case config.EnvProd:
			err = server.ListenAndServeTLS(cfg.HTTPServer.CertFile, cfg.HTTPServer.KeyFile)
		default:
			err = server.ListenAndServe()
		}

		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("%s: server error occurred: %w", op, err)
		}

		return nil
	})

	g.Go(func() error {
		<-ctx.Done()

		if err := server.Shutdown(context.Background()); err != nil {
			return fmt.Errorf("%s: failed to shutdown server: %w", op, err)
		}

		return nil
	})

	return g.Wait()
}

func logLevel(env string) slog.Level {
	if env == config.EnvProd {
		return slog.LevelInfo
	}
	return slog.LevelDebug
}
