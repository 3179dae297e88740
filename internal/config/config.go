package config

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"github.com/Alturino/storefront/internal/log"
)

type Application struct {
	Env     string `mapstructure:"env"      json:"env"`
	Host    string `mapstructure:"host"     json:"host"`
	LogPath string `mapstructure:"log_path" json:"log_path"`
	Port    int    `mapstructure:"port"     json:"port"`
}

type Upstream struct {
	BaseURL string        `mapstructure:"base_url" json:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"  json:"timeout"`
}

type Payment struct {
	SecretKey  string        `mapstructure:"secret_key"  json:"-"`
	BackendURL string        `mapstructure:"backend_url" json:"backend_url"`
	Currency   string        `mapstructure:"currency"    json:"currency"`
	Timeout    time.Duration `mapstructure:"timeout"     json:"timeout"`
}

type PriceCache struct {
	Backend string `mapstructure:"backend" json:"backend"`
	Path    string `mapstructure:"path"    json:"path"`
	Key     string `mapstructure:"key"     json:"key"`
}

type Cache struct {
	Host     string `mapstructure:"host"     json:"host"`
	Password string `mapstructure:"password" json:"-"`
	Database int    `mapstructure:"database" json:"database"`
	Port     uint16 `mapstructure:"port"     json:"port"`
}

type Otel struct {
	Host    string `mapstructure:"host"    json:"host"`
	Port    int    `mapstructure:"port"    json:"port"`
	Enabled bool   `mapstructure:"enabled" json:"enabled"`
}

type Config struct {
	Application `mapstructure:"application" json:"application"`
	Upstream    `mapstructure:"upstream"    json:"upstream"`
	Payment     `mapstructure:"payment"     json:"payment"`
	PriceCache  `mapstructure:"price_cache" json:"price_cache"`
	Cache       `mapstructure:"cache"       json:"cache"`
	Otel        `mapstructure:"otel"        json:"otel"`
}

const (
	PriceCacheBackendFile  = "file"
	PriceCacheBackendRedis = "redis"
)

var (
	once   sync.Once
	config *Config
)

func setDefaults(v *viper.Viper) {
	v.SetDefault("application.env", "production")
	v.SetDefault("application.host", "0.0.0.0")
	v.SetDefault("application.port", 8000)
	v.SetDefault("application.log_path", "/var/log/storefront.log")

	v.SetDefault("upstream.base_url", "https://fakestoreapi.com")
	v.SetDefault("upstream.timeout", 10*time.Second)

	v.SetDefault("payment.secret_key", "")
	v.SetDefault("payment.backend_url", "")
	v.SetDefault("payment.currency", "usd")
	v.SetDefault("payment.timeout", 15*time.Second)

	v.SetDefault("price_cache.backend", PriceCacheBackendFile)
	v.SetDefault("price_cache.path", "products.json")
	v.SetDefault("price_cache.key", "storefront:products")

	v.SetDefault("cache.host", "localhost")
	v.SetDefault("cache.port", 6379)
	v.SetDefault("cache.password", "")
	v.SetDefault("cache.database", 0)

	v.SetDefault("otel.host", "otel-collector")
	v.SetDefault("otel.port", 4317)
	v.SetDefault("otel.enabled", false)
}

// Load reads <path>/<filename>.yaml when present, then applies environment
// overrides such as PAYMENT_SECRET_KEY or UPSTREAM_BASE_URL.
func Load(c context.Context, path string, filename string) (*Config, error) {
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "config Load").
		Str("filename", filename).
		Str("path", path).
		Logger()

	v := viper.New()
	setDefaults(v)
	v.SetConfigName(filename)
	v.AddConfigPath(path)
	v.SetConfigType("yaml")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	logger = logger.With().Str(log.KeyProcess, "reading config").Logger()
	logger.Info().Msg("reading config")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			err = fmt.Errorf("error when reading config with error=%w", err)
			logger.Error().Err(err).Msg(err.Error())
			return nil, err
		}
		logger.Warn().Msg("config file not found, using defaults and environment")
	}
	logger.Info().Msg("read config")

	logger = logger.With().Str(log.KeyProcess, "unmarshaling config").Logger()
	logger.Info().Msg("unmarshaling config")
	cfg := Config{}
	if err := v.Unmarshal(&cfg); err != nil {
		err = fmt.Errorf("error unmarshaling config with error=%w", err)
		logger.Error().Err(err).Msg(err.Error())
		return nil, err
	}
	logger.Info().Msg("unmarshaled config")

	logger = logger.With().Str(log.KeyProcess, "validating config").Logger()
	switch cfg.PriceCache.Backend {
	case PriceCacheBackendFile, PriceCacheBackendRedis:
	default:
		err := fmt.Errorf("unknown price_cache.backend=%s", cfg.PriceCache.Backend)
		logger.Error().Err(err).Msg(err.Error())
		return nil, err
	}
	if cfg.Upstream.Timeout <= 0 || cfg.Payment.Timeout <= 0 {
		err := fmt.Errorf(
			"timeouts must be positive, upstream.timeout=%s payment.timeout=%s",
			cfg.Upstream.Timeout,
			cfg.Payment.Timeout,
		)
		logger.Error().Err(err).Msg(err.Error())
		return nil, err
	}

	return &cfg, nil
}

func InitConfig(c context.Context, filename string) *Config {
	once.Do(func() {
		logger := zerolog.Ctx(c).
			With().
			Str(log.KeyTag, "main InitConfig").
			Str(log.KeyProcess, "init config").
			Logger()

		cfg, err := Load(c, "./env", filename)
		if err != nil {
			logger.Fatal().Err(err).Msg(err.Error())
		}
		config = cfg
		logger.Info().Any(log.KeyConfig, cfg).Msg("initialized config")
	})
	return config
}
