package main

import (
	"context"
	"errors"
	"io"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"filesmanager/internal/ratelimit"
	"filesmanager/internal/util"
	"filesmanager/pkg/storage"
	"filesmanager/pkg/store"
	"filesmanager/services/files/internal/app"
	"filesmanager/services/files/internal/config"
	"filesmanager/services/files/internal/server"
)

type backends struct {
	users    store.UserStore
	files    store.FileStore
	sessions store.SessionStore
	blobs    storage.BlobStore
	limiter  server.Limiter
	closers  []io.Closer
}

func (b *backends) Close() {
	for i := len(b.closers) - 1; i >= 0; i-- {
		if err := b.closers[i].Close(); err != nil {
			slog.Warn("close backend", "err", err)
		}
	}
}

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("load .env: %v", err)
	}

	cfg, err := config.Load(config.Path())
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	sessionTTL, err := config.ParseSessionTTL(cfg.SessionTTL)
	if err != nil {
		log.Fatalf("failed to parse session TTL: %v", err)
	}

	logger := util.InitLogger(cfg.LogLevel)

	b, err := openBackends(cfg)
	if err != nil {
		log.Fatalf("failed to init backends: %v", err)
	}
	defer b.Close()

	appCore, err := app.New(app.Config{
		Users:      b.users,
		Files:      b.files,
		Sessions:   b.sessions,
		Blobs:      b.blobs,
		SessionTTL: sessionTTL,
	})
	if err != nil {
		log.Fatalf("failed to init app: %v", err)
	}

	trusted, err := util.NewTrustedProxies(config.SplitCSV(cfg.TrustedProxyCIDRs))
	if err != nil {
		log.Fatalf("invalid trusted proxy list: %v", err)
	}

	httpServer := server.New(server.Config{
		App:            appCore,
		LoginLimiter:   b.limiter,
		TrustedProxies: trusted,
		MaxUploadBytes: cfg.MaxUploadBytes,
	})

	addr := ":" + cfg.Port
	srv := &http.Server{
		Addr:         addr,
		Handler:      httpServer.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("files server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	if err := g.Wait(); err != nil {
		logger.Error("server error", "err", err)
	}
	slog.Info("files server stopped")
}

// openBackends picks Postgres/Redis when configured and in-memory adapters otherwise.
func openBackends(cfg config.FileConfig) (*backends, error) {
	b := &backends{}
	if cfg.DatabaseURL != "" {
		db, err := store.NewGormStore(cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		b.users, b.files = db, db
		b.closers = append(b.closers, db)
	} else {
		slog.Warn("databaseURL not set, using in-memory repository (data is lost on restart)")
		mem := store.NewMemoryStore()
		b.users, b.files = mem, mem
	}

	if cfg.RedisAddr != "" {
		sessions := store.NewRedisSessionStore(cfg.RedisAddr, cfg.RedisPassword)
		b.sessions = sessions
		b.closers = append(b.closers, sessions)
		if cfg.LoginRateLimitPerMinute > 0 {
			limiter, err := ratelimit.NewRedisFixedWindowLimiter(cfg.RedisAddr, cfg.RedisPassword, "files:ratelimit:login", cfg.LoginRateLimitPerMinute, time.Minute)
			if err != nil {
				b.Close()
				return nil, err
			}
			b.limiter = limiter
			b.closers = append(b.closers, limiter)
		}
	} else {
		slog.Warn("redisAddr not set, using in-memory sessions without login rate limiting")
		b.sessions = store.NewMemorySessionStore(nil)
	}

	switch cfg.StorageBackend {
	case config.StorageMinio:
		blobs, err := storage.NewMinioStore(cfg.MinioEndpoint, cfg.MinioAccessKey, cfg.MinioSecretKey, cfg.MinioBucket, cfg.MinioUseSSL)
		if err != nil {
			b.Close()
			return nil, err
		}
		b.blobs = blobs
	default:
		blobs, err := storage.NewDiskStore(cfg.FolderPath)
		if err != nil {
			b.Close()
			return nil, err
		}
		b.blobs = blobs
	}
	return b, nil
}
