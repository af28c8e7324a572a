package lock

import (
	"fmt"
	"time"

	"github.com/erp/sallabridge/internal/domain/salla"
	"github.com/erp/sallabridge/internal/infrastructure/config"
	"go.uber.org/zap"
)

// Factory creates sync lockers based on configuration
type Factory struct {
	redisConfig           config.RedisConfig
	redisEnabled          bool
	ttl                   time.Duration
	logger                *zap.Logger
	allowInMemoryFallback bool
}

// FactoryOption is a functional option for configuring the factory
type FactoryOption func(*Factory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) FactoryOption {
	return func(f *Factory) {
		f.logger = logger
	}
}

// WithTTL sets the lock TTL used as a safety net against leaked locks
func WithTTL(ttl time.Duration) FactoryOption {
	return func(f *Factory) {
		f.ttl = ttl
	}
}

// WithInMemoryFallback controls whether to fall back to the in-memory
// locker when Redis is unavailable. Default is true.
func WithInMemoryFallback(allow bool) FactoryOption {
	return func(f *Factory) {
		f.allowInMemoryFallback = allow
	}
}

// NewFactory creates a new locker factory
func NewFactory(cfg config.RedisConfig, opts ...FactoryOption) *Factory {
	f := &Factory{
		redisConfig:           cfg,
		redisEnabled:          cfg.Enabled,
		ttl:                   5 * time.Minute,
		logger:                zap.NewNop(),
		allowInMemoryFallback: true,
	}

	for _, opt := range opts {
		opt(f)
	}

	return f
}

// CreateLocker creates a sync locker. When Redis is enabled it is tried
// first; the in-memory locker is used as fallback if allowed.
// WARNING: in-memory locks do not span process instances, so two
// deployments can sync the same record concurrently.
func (f *Factory) CreateLocker() (salla.SyncLocker, error) {
	if !f.redisEnabled {
		f.logger.Info("using in-memory sync locks")
		return NewInMemorySyncLocker(f.ttl), nil
	}

	locker, err := NewRedisSyncLocker(RedisConfig{
		Host:     f.redisConfig.Host,
		Port:     f.redisConfig.Port,
		Password: f.redisConfig.Password,
		DB:       f.redisConfig.DB,
	}, f.ttl)
	if err == nil {
		f.logger.Info("using Redis sync locks")
		return locker, nil
	}

	if !f.allowInMemoryFallback {
		return nil, fmt.Errorf("Redis required for sync locks but unavailable: %w", err)
	}

	f.logger.Warn("Redis unavailable, falling back to in-memory sync locks. "+
		"Concurrent instances may sync the same record.",
		zap.Error(err),
	)
	return NewInMemorySyncLocker(f.ttl), nil
}
