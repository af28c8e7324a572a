package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Log       LogConfig
	HTTP      HTTPConfig
	Salla     SallaConfig
	Sync      SyncConfig
	Storage   StorageConfig
	Scheduler SchedulerConfig
}

// AppConfig holds application-specific settings
type AppConfig struct {
	Name string
	Env  string
	Port string
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime int // in minutes
	ConnMaxIdleTime int // in minutes
}

// RedisConfig holds Redis connection settings
type RedisConfig struct {
	// Enabled switches the keyed sync locks from in-process to Redis, for
	// deployments running more than one worker.
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stdout, stderr, or file path
}

// HTTPConfig holds HTTP server configuration
type HTTPConfig struct {
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	MaxHeaderBytes int
	MaxBodySize    int64
	TrustedProxies []string
}

// SallaConfig holds the connected store and platform API settings
type SallaConfig struct {
	// StoreID names the connected store's credential row.
	StoreID string
	// APIBase is the admin API root.
	APIBase string
	// AuthBase is the OAuth accounts host.
	AuthBase string
	ClientID       string
	ClientSecret   string
	RedirectURI    string
	Scope          string
	WebhookSecret  string
	TimeoutSeconds int
	PerPage        int
}

// SyncConfig holds sync behavior settings
type SyncConfig struct {
	// PrimaryWarehouse and SecondaryWarehouse are the two warehouses stock
	// sync draws from; the primary is also the backorder target.
	PrimaryWarehouse   string
	SecondaryWarehouse string
	// DefaultCurrency is applied to pulled orders missing one.
	DefaultCurrency string
	// InboundOrdersEnabled gates the order.created webhook handler.
	InboundOrdersEnabled bool
	// PostFulfillmentStatusSlug is the remote status pushed when a local
	// order is fulfilled.
	PostFulfillmentStatusSlug string
	// CustomerOptionLabels maps checkout question labels (exact match, as
	// displayed to the buyer) to customer detail fields: company_name,
	// tax_id, commercial_register.
	CustomerOptionLabels map[string]string
}

// StorageConfig holds attachment storage settings
type StorageConfig struct {
	// Backend is "s3" or "filesystem".
	Backend         string
	Bucket          string
	Region          string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	// BaseDir is the root for the filesystem backend.
	BaseDir string
}

// SchedulerConfig holds sync scheduler configuration
type SchedulerConfig struct {
	Enabled           bool
	OrderPullInterval time.Duration
	StockPushInterval time.Duration
	MaxConcurrentJobs int
	JobTimeout        time.Duration
	// RetryAttempts bounds rate-limit retries per job run.
	RetryAttempts int
	// RetryBaseDelay seeds the exponential backoff when the platform sends
	// no Retry-After hint.
	RetryBaseDelay time.Duration
	// RetryMaxDelay caps a single backoff sleep.
	RetryMaxDelay time.Duration
}

// Load loads configuration from TOML file and environment variables
// Priority (highest to lowest):
// 1. Environment variables with SALLA_ prefix (e.g., SALLA_DATABASE_PASSWORD)
// 2. config.toml
// 3. Built-in defaults
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("/app")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, we'll use defaults and env vars
	}

	v.SetEnvPrefix("SALLA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{
		App: AppConfig{
			Name: v.GetString("app.name"),
			Env:  v.GetString("app.env"),
			Port: v.GetString("app.port"),
		},
		Database: DatabaseConfig{
			Host:            v.GetString("database.host"),
			Port:            v.GetInt("database.port"),
			User:            v.GetString("database.user"),
			Password:        v.GetString("database.password"),
			DBName:          v.GetString("database.dbname"),
			SSLMode:         v.GetString("database.sslmode"),
			MaxOpenConns:    v.GetInt("database.max_open_conns"),
			MaxIdleConns:    v.GetInt("database.max_idle_conns"),
			ConnMaxLifetime: v.GetInt("database.conn_max_lifetime"),
			ConnMaxIdleTime: v.GetInt("database.conn_max_idle_time"),
		},
		Redis: RedisConfig{
			Enabled:  v.GetBool("redis.enabled"),
			Host:     v.GetString("redis.host"),
			Port:     v.GetInt("redis.port"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		HTTP: HTTPConfig{
			ReadTimeout:    v.GetDuration("http.read_timeout"),
			WriteTimeout:   v.GetDuration("http.write_timeout"),
			IdleTimeout:    v.GetDuration("http.idle_timeout"),
			MaxHeaderBytes: v.GetInt("http.max_header_bytes"),
			MaxBodySize:    v.GetInt64("http.max_body_size"),
			TrustedProxies: v.GetStringSlice("http.trusted_proxies"),
		},
		Salla: SallaConfig{
			StoreID:        v.GetString("salla.store_id"),
			APIBase:        v.GetString("salla.api_base"),
			AuthBase:       v.GetString("salla.auth_base"),
			ClientID:       v.GetString("salla.client_id"),
			ClientSecret:   v.GetString("salla.client_secret"),
			RedirectURI:    v.GetString("salla.redirect_uri"),
			Scope:          v.GetString("salla.scope"),
			WebhookSecret:  v.GetString("salla.webhook_secret"),
			TimeoutSeconds: v.GetInt("salla.timeout_seconds"),
			PerPage:        v.GetInt("salla.per_page"),
		},
		Sync: SyncConfig{
			PrimaryWarehouse:          v.GetString("sync.primary_warehouse"),
			SecondaryWarehouse:        v.GetString("sync.secondary_warehouse"),
			DefaultCurrency:           v.GetString("sync.default_currency"),
			InboundOrdersEnabled:      v.GetBool("sync.inbound_orders_enabled"),
			PostFulfillmentStatusSlug: v.GetString("sync.post_fulfillment_status_slug"),
			CustomerOptionLabels:      v.GetStringMapString("sync.customer_option_labels"),
		},
		Storage: StorageConfig{
			Backend:         v.GetString("storage.backend"),
			Bucket:          v.GetString("storage.bucket"),
			Region:          v.GetString("storage.region"),
			Endpoint:        v.GetString("storage.endpoint"),
			AccessKeyID:     v.GetString("storage.access_key_id"),
			SecretAccessKey: v.GetString("storage.secret_access_key"),
			BaseDir:         v.GetString("storage.base_dir"),
		},
		Scheduler: SchedulerConfig{
			Enabled:           v.GetBool("scheduler.enabled"),
			OrderPullInterval: v.GetDuration("scheduler.order_pull_interval"),
			StockPushInterval: v.GetDuration("scheduler.stock_push_interval"),
			MaxConcurrentJobs: v.GetInt("scheduler.max_concurrent_jobs"),
			JobTimeout:        v.GetDuration("scheduler.job_timeout"),
			RetryAttempts:     v.GetInt("scheduler.retry_attempts"),
			RetryBaseDelay:    v.GetDuration("scheduler.retry_base_delay"),
			RetryMaxDelay:     v.GetDuration("scheduler.retry_max_delay"),
		},
	}

	applyDefaults(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyDefaults sets default values for any empty config fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "salla-bridge"
	}
	if cfg.App.Env == "" {
		cfg.App.Env = "development"
	}
	if cfg.App.Port == "" {
		cfg.App.Port = "8080"
	}
	if cfg.Database.Host == "" {
		cfg.Database.Host = "localhost"
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = 5432
	}
	if cfg.Database.User == "" {
		cfg.Database.User = "postgres"
	}
	if cfg.Database.DBName == "" {
		cfg.Database.DBName = "sallabridge"
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Database.MaxOpenConns == 0 {
		cfg.Database.MaxOpenConns = 25
	}
	if cfg.Database.MaxIdleConns == 0 {
		cfg.Database.MaxIdleConns = 5
	}
	if cfg.Database.ConnMaxLifetime == 0 {
		cfg.Database.ConnMaxLifetime = 60
	}
	if cfg.Database.ConnMaxIdleTime == 0 {
		cfg.Database.ConnMaxIdleTime = 30
	}
	if cfg.Redis.Host == "" {
		cfg.Redis.Host = "localhost"
	}
	if cfg.Redis.Port == 0 {
		cfg.Redis.Port = 6379
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "console"
	}
	if cfg.Log.Output == "" {
		cfg.Log.Output = "stdout"
	}
	if cfg.HTTP.ReadTimeout == 0 {
		cfg.HTTP.ReadTimeout = 15 * time.Second
	}
	if cfg.HTTP.WriteTimeout == 0 {
		cfg.HTTP.WriteTimeout = 15 * time.Second
	}
	if cfg.HTTP.IdleTimeout == 0 {
		cfg.HTTP.IdleTimeout = 60 * time.Second
	}
	if cfg.HTTP.MaxHeaderBytes == 0 {
		cfg.HTTP.MaxHeaderBytes = 1 << 20 // 1MB
	}
	if cfg.HTTP.MaxBodySize == 0 {
		cfg.HTTP.MaxBodySize = 10 << 20 // 10MB
	}
	if cfg.Salla.StoreID == "" {
		cfg.Salla.StoreID = "default"
	}
	if cfg.Salla.APIBase == "" {
		cfg.Salla.APIBase = "https://api.salla.dev/admin/v2"
	}
	if cfg.Salla.AuthBase == "" {
		cfg.Salla.AuthBase = "https://accounts.salla.sa"
	}
	if cfg.Salla.Scope == "" {
		cfg.Salla.Scope = "offline_access"
	}
	if cfg.Salla.TimeoutSeconds == 0 {
		cfg.Salla.TimeoutSeconds = 30
	}
	if cfg.Salla.PerPage == 0 {
		cfg.Salla.PerPage = 50
	}
	if cfg.Sync.PrimaryWarehouse == "" {
		cfg.Sync.PrimaryWarehouse = "WH-MAIN"
	}
	if cfg.Sync.SecondaryWarehouse == "" {
		cfg.Sync.SecondaryWarehouse = "WH-OVERFLOW"
	}
	if cfg.Sync.DefaultCurrency == "" {
		cfg.Sync.DefaultCurrency = "SAR"
	}
	if cfg.Sync.PostFulfillmentStatusSlug == "" {
		cfg.Sync.PostFulfillmentStatusSlug = "completed"
	}
	if len(cfg.Sync.CustomerOptionLabels) == 0 {
		cfg.Sync.CustomerOptionLabels = map[string]string{
			"اسم الشركة":     "company_name",
			"الرقم الضريبي":  "tax_id",
			"السجل التجاري":  "commercial_register",
		}
	}
	if cfg.Storage.Backend == "" {
		cfg.Storage.Backend = "filesystem"
	}
	if cfg.Storage.BaseDir == "" {
		cfg.Storage.BaseDir = "./attachments"
	}
	if cfg.Scheduler.OrderPullInterval == 0 {
		cfg.Scheduler.OrderPullInterval = 10 * time.Minute
	}
	if cfg.Scheduler.StockPushInterval == 0 {
		cfg.Scheduler.StockPushInterval = 30 * time.Minute
	}
	if cfg.Scheduler.MaxConcurrentJobs == 0 {
		cfg.Scheduler.MaxConcurrentJobs = 3
	}
	if cfg.Scheduler.JobTimeout == 0 {
		cfg.Scheduler.JobTimeout = 30 * time.Minute
	}
	if cfg.Scheduler.RetryAttempts == 0 {
		cfg.Scheduler.RetryAttempts = 3
	}
	if cfg.Scheduler.RetryBaseDelay == 0 {
		cfg.Scheduler.RetryBaseDelay = 2 * time.Second
	}
	if cfg.Scheduler.RetryMaxDelay == 0 {
		cfg.Scheduler.RetryMaxDelay = 2 * time.Minute
	}
}

// validate performs validation on the configuration
func (c *Config) validate() error {
	if c.Database.MaxOpenConns <= 0 {
		return fmt.Errorf("database.max_open_conns must be positive")
	}
	if c.Database.MaxIdleConns < 0 {
		return fmt.Errorf("database.max_idle_conns cannot be negative")
	}
	if c.Database.MaxIdleConns > c.Database.MaxOpenConns {
		return fmt.Errorf("database.max_idle_conns (%d) cannot exceed database.max_open_conns (%d)",
			c.Database.MaxIdleConns, c.Database.MaxOpenConns)
	}
	if c.Scheduler.RetryAttempts < 0 {
		return fmt.Errorf("scheduler.retry_attempts cannot be negative")
	}

	if c.App.Env == "production" {
		if c.Salla.ClientID == "" || c.Salla.ClientSecret == "" {
			return fmt.Errorf("salla.client_id and salla.client_secret are required in production")
		}
		if c.Salla.WebhookSecret == "" {
			return fmt.Errorf("salla.webhook_secret is required in production")
		}
		if c.Database.Password == "" {
			return fmt.Errorf("database.password is required in production")
		}
		if c.Database.SSLMode == "disable" {
			return fmt.Errorf("database.sslmode cannot be 'disable' in production")
		}
		if c.Storage.Backend == "s3" && c.Storage.Bucket == "" {
			return fmt.Errorf("storage.bucket is required for the s3 backend")
		}
	}

	return nil
}

// DSN returns the database connection string with properly escaped values
func (d *DatabaseConfig) DSN() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(d.User, d.Password),
		Host:   fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:   d.DBName,
	}
	q := u.Query()
	q.Set("sslmode", d.SSLMode)
	u.RawQuery = q.Encode()
	return u.String()
}

// Addr returns the Redis host:port pair
func (r *RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}
