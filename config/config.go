package config

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/sagarc03/quire"
	"github.com/sagarc03/quire/auth"
	"github.com/sagarc03/quire/breaker"
	quirehttp "github.com/sagarc03/quire/http"
	"github.com/sagarc03/quire/internal/supaclient"
	"github.com/sagarc03/quire/keybackend"
)

// configKey is the context key for storing the loaded configuration.
type configKey struct{}

// WithContext returns a new context with the config stored.
func WithContext(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, configKey{}, cfg)
}

// FromContext retrieves the config from context.
// Returns an error if config is not found.
func FromContext(ctx context.Context) (*Config, error) {
	cfg, ok := ctx.Value(configKey{}).(*Config)
	if !ok || cfg == nil {
		return nil, errors.New("config not found in context")
	}
	return cfg, nil
}

// Config is the root configuration struct for quire.
type Config struct {
	Server   ServerConfig         `mapstructure:"server"`
	Service  ServiceConfig        `mapstructure:"service"`
	Database DatabaseConfig       `mapstructure:"database"`
	Storage  StorageConfig        `mapstructure:"storage"`
	Supabase supaclient.Config    `mapstructure:"supabase"`
	Auth     AuthConfig           `mapstructure:"auth"`
	CORS     quirehttp.CORSConfig `mapstructure:"cors"`
	Log      LogConfig            `mapstructure:"log"`
	Metrics  MetricsConfig        `mapstructure:"metrics"`
	Breaker  BreakerConfig        `mapstructure:"breaker"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port            int           `mapstructure:"port" validate:"required,min=1,max=65535"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout" validate:"min=0"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout" validate:"min=0"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout" validate:"min=0"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"min=0"`
	MaxContentBytes int64         `mapstructure:"max_content_bytes" validate:"min=0"`
}

// ServiceConfig holds service-level configuration.
type ServiceConfig struct {
	// CleanupTimeout bounds admin operations such as sweep, in seconds.
	CleanupTimeout int `mapstructure:"cleanup_timeout" validate:"min=1"`
}

// DatabaseConfig selects the metadata backend.
type DatabaseConfig struct {
	Type   string       `mapstructure:"type" validate:"required,oneof=sqlite postgres supabase"`
	DSN    string       `mapstructure:"dsn" validate:"required_unless=Type supabase"`
	Tables quire.Tables `mapstructure:"tables"`
}

// StorageConfig selects the blob backend.
type StorageConfig struct {
	Type     string `mapstructure:"type" validate:"required,oneof=filesystem supabase"`
	Path     string `mapstructure:"path" validate:"required_if=Type filesystem"`
	Bucket   string `mapstructure:"bucket" validate:"required_if=Type supabase"`
	Compress bool   `mapstructure:"compress"`
}

// AuthConfig selects how bearer tokens are verified.
type AuthConfig struct {
	Mode   string                  `mapstructure:"mode" validate:"required,oneof=jwt supabase static"`
	JWT    auth.JWTConfig          `mapstructure:"jwt"`
	Tokens keybackend.TokensConfig `mapstructure:"tokens"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level  string `mapstructure:"level" validate:"required,oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"required,oneof=text json"`
}

type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path" validate:"omitempty,startswith=/"`
}

// BreakerConfig guards the remote (supabase) backends.
type BreakerConfig struct {
	Enabled      bool          `mapstructure:"enabled"`
	FailureRatio float64       `mapstructure:"failure_ratio" validate:"gt=0,lte=1"`
	MinRequests  uint32        `mapstructure:"min_requests" validate:"min=1"`
	MaxRequests  uint32        `mapstructure:"max_requests" validate:"min=1"`
	Interval     time.Duration `mapstructure:"interval" validate:"min=0"`
	Timeout      time.Duration `mapstructure:"timeout" validate:"gt=0"`
}

// Settings converts the config to breaker settings.
func (c BreakerConfig) Settings() breaker.Settings {
	return breaker.Settings{
		FailureRatio: c.FailureRatio,
		MinRequests:  c.MinRequests,
		MaxRequests:  c.MaxRequests,
		Interval:     c.Interval,
		Timeout:      c.Timeout,
	}
}

// NeedsSupabase reports whether any configured component talks to Supabase.
func (c *Config) NeedsSupabase() bool {
	return c.Database.Type == "supabase" || c.Storage.Type == "supabase" || c.Auth.Mode == "supabase"
}

// validate checks rules that span sections.
func (c *Config) validate() error {
	if err := c.Database.Tables.Validate(); err != nil {
		return err
	}

	if c.NeedsSupabase() {
		if err := c.Supabase.Validate(); err != nil {
			return err
		}
	}

	if c.Auth.Mode == "jwt" && c.Auth.JWT.Secret == "" && c.Auth.JWT.PublicKey == "" {
		return errors.New("auth.jwt: secret or public_key is required in jwt mode")
	}

	return nil
}

// flagToViperKey maps CLI flag names to viper configuration keys.
var flagToViperKey = map[string]string{
	"db-type":      "database.type",
	"db-dsn":       "database.dsn",
	"storage-type": "storage.type",
	"storage-path": "storage.path",
	"port":         "server.port",
	"auth-mode":    "auth.mode",
	"log-level":    "log.level",
	"log-format":   "log.format",
}

// bindFlags binds CLI flags to viper keys with custom name mapping.
func bindFlags(v *viper.Viper, flags *pflag.FlagSet) {
	flags.VisitAll(func(f *pflag.Flag) {
		viperKey := f.Name
		if mapped, ok := flagToViperKey[viperKey]; ok {
			viperKey = mapped
		}

		// Only bind if the flag was explicitly set
		if f.Changed {
			_ = v.BindPFlag(viperKey, f)
		}
	})
}

// setDefaults configures default values on the viper instance.
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 5708)
	v.SetDefault("server.read_timeout", 30*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)
	v.SetDefault("server.idle_timeout", 120*time.Second)
	v.SetDefault("server.shutdown_timeout", 30*time.Second)
	v.SetDefault("server.max_content_bytes", quirehttp.DefaultMaxContentBytes)

	v.SetDefault("service.cleanup_timeout", 300) // seconds

	v.SetDefault("database.type", "sqlite")
	v.SetDefault("database.dsn", "quire.db")
	v.SetDefault("database.tables.records", "workspace_files")

	v.SetDefault("storage.type", "filesystem")
	v.SetDefault("storage.path", "./data")
	v.SetDefault("storage.bucket", "workspace-files")
	v.SetDefault("storage.compress", false)

	// keys without a real default are still registered so AutomaticEnv can fill them
	v.SetDefault("supabase.url", "")
	v.SetDefault("supabase.key", "")
	v.SetDefault("supabase.schema", "public")

	v.SetDefault("auth.mode", "static")
	v.SetDefault("auth.jwt.signing_method", "HS256")
	v.SetDefault("auth.jwt.secret", "")
	v.SetDefault("auth.jwt.public_key", "")
	v.SetDefault("auth.jwt.issuer", "")
	v.SetDefault("auth.tokens.file", "")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetDefault("metrics.enabled", false)
	v.SetDefault("metrics.path", "/metrics")

	bs := breaker.DefaultSettings()
	v.SetDefault("breaker.enabled", true)
	v.SetDefault("breaker.failure_ratio", bs.FailureRatio)
	v.SetDefault("breaker.min_requests", bs.MinRequests)
	v.SetDefault("breaker.max_requests", bs.MaxRequests)
	v.SetDefault("breaker.interval", bs.Interval)
	v.SetDefault("breaker.timeout", bs.Timeout)
}

// Load reads configuration and returns a validated Config struct.
// Order of precedence (highest to lowest): flags > env > config files > defaults
//
// Parameters:
//   - configFiles: list of config file paths (later files override earlier ones)
//   - flags: cobra flag set for flag binding (can be nil)
func Load(configFiles []string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	if len(configFiles) > 0 {
		v.SetConfigFile(configFiles[0])
		if err := v.ReadInConfig(); err != nil {
			slog.Warn("error reading config file", "file", configFiles[0], "err", err)
		}

		for _, cf := range configFiles[1:] {
			v.SetConfigFile(cf)
			if err := v.MergeInConfig(); err != nil {
				slog.Warn("error merging config file", "file", cf, "err", err)
			}
		}
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")

		if err := v.ReadInConfig(); err != nil {
			var configNotFound viper.ConfigFileNotFoundError
			if !errors.As(err, &configNotFound) {
				slog.Warn("error reading config file", "err", err)
			}
		}
	}

	v.SetEnvPrefix("QUIRE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if flags != nil {
		bindFlags(v, flags)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}
