package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"portfolio/internal/cache"
	"portfolio/internal/config"
	"portfolio/internal/database"
	"portfolio/internal/mail"
	"portfolio/internal/middleware"
	"portfolio/internal/policy"
	"portfolio/internal/repository"
	"portfolio/internal/service"
	"portfolio/internal/storage"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Options control runtime initialization behavior.
type Options struct {
	// EnsureAdmin creates the admin account from ADMIN_EMAIL/ADMIN_PASSWORD when missing.
	EnsureAdmin bool
	// SkipStorage leaves Store nil. Tools that never touch images set it.
	SkipStorage bool
}

// Runtime bundles the external connections a process needs.
type Runtime struct {
	DB     *gorm.DB
	Redis  *redis.Client
	Store  *storage.MinioStore
	Mailer mail.Sender

	closeMail func() error
}

// InitRuntime connects to the database, Redis, object storage and the mail transport.
// Redis is optional: an unreachable server leaves Redis nil and caching off.
func InitRuntime(ctx context.Context, cfg *config.Config, opts Options) (*Runtime, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	cache.InitRedis(cfg.RedisURL)
	rt := &Runtime{DB: db, Redis: cache.GetClient(), closeMail: func() error { return nil }}

	if !opts.SkipStorage {
		store, err := storage.NewMinioStore(storage.OptionsFromConfig(cfg))
		if err != nil {
			_ = rt.Close()
			return nil, fmt.Errorf("object storage: %w", err)
		}
		if err := store.EnsureBucket(ctx); err != nil {
			_ = rt.Close()
			return nil, fmt.Errorf("ensure bucket %q: %w", cfg.S3Bucket, err)
		}
		rt.Store = store
	}

	sender, closeMail, err := mail.NewSender(cfg)
	if err != nil {
		_ = rt.Close()
		return nil, err
	}
	rt.Mailer = sender
	rt.closeMail = closeMail

	if opts.EnsureAdmin {
		if err := EnsureAdmin(ctx, cfg, db); err != nil {
			_ = rt.Close()
			return nil, fmt.Errorf("failed to bootstrap admin account: %w", err)
		}
	}

	return rt, nil
}

// CloseMail flushes and releases the mail transport.
func (r *Runtime) CloseMail() error {
	if r.closeMail == nil {
		return nil
	}
	err := r.closeMail()
	r.closeMail = nil
	return err
}

// Close releases every connection held by the runtime.
func (r *Runtime) Close() error {
	errs := []error{r.CloseMail()}
	if r.Redis != nil {
		errs = append(errs, r.Redis.Close())
	}
	if r.DB != nil {
		errs = append(errs, database.Close(r.DB))
	}
	return errors.Join(errs...)
}

// AuthService builds the account service over db, for tools that manage the admin.
func AuthService(cfg *config.Config, db *gorm.DB) *service.AuthService {
	return service.NewAuthService(
		repository.NewUserRepository(db),
		policy.NewAdminEmail(cfg.AdminEmail),
		middleware.NewTokenManager(cfg.JWTSecret, cfg.JWTTTL()),
	)
}

// EnsureAdmin creates the configured admin account once. It is a no-op without
// ADMIN_PASSWORD or when the account already exists.
func EnsureAdmin(ctx context.Context, cfg *config.Config, db *gorm.DB) error {
	if cfg == nil || db == nil || cfg.AdminPassword == "" {
		return nil
	}
	created, err := AuthService(cfg, db).EnsureAdmin(ctx, cfg.AdminEmail, cfg.AdminName, cfg.AdminPassword)
	if err != nil {
		return err
	}
	if created {
		middleware.Logger.InfoContext(ctx, "admin account created", slog.String("email", cfg.AdminEmail))
	}
	return nil
}
