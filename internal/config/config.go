package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type HTTPConfig struct {
	Host           string
	Port           int
	AllowedOrigins []string
}

type DBConfig struct {
	Driver          string
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime string
}

type AuthConfig struct {
	AccessSecret string
	AccessTTL    time.Duration
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type SupplierConfig struct {
	Name  string
	Phone string
	Email string
}

type ClientsConfig struct {
	ProtectedCodes []string
}

type QuotesConfig struct {
	ExpirySweepInterval time.Duration
}

type Config struct {
	Environment string
	LogLevel    string
	HTTP        HTTPConfig
	DB          DBConfig
	Auth        AuthConfig
	Redis       RedisConfig
	Supplier    SupplierConfig
	Clients     ClientsConfig
	Quotes      QuotesConfig
}

const (
	DefaultSupplierName  = "Williams Property Service"
	DefaultSupplierPhone = "0800 945 526"
	DefaultSupplierEmail = "jobs@williamspropertyservice.co.nz"
)

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("app")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("./deploy")
	v.AddConfigPath("./internal/config")
	v.AutomaticEnv()

	v.SetDefault("QUOTES_EXPIRY_SWEEP_INTERVAL", "15m")

	_ = v.ReadInConfig()

	cfg := &Config{
		Environment: v.GetString("APP_ENV"),
		LogLevel:    v.GetString("LOG_LEVEL"),
		HTTP: HTTPConfig{
			Host:           v.GetString("HTTP_HOST"),
			Port:           v.GetInt("HTTP_PORT"),
			AllowedOrigins: parseList(v.GetString("CORS_ALLOWED_ORIGINS")),
		},
		DB: DBConfig{
			Driver:          v.GetString("DB_DRIVER"),
			DSN:             v.GetString("DB_DSN"),
			MaxOpenConns:    v.GetInt("DB_MAX_OPEN_CONNS"),
			MaxIdleConns:    v.GetInt("DB_MAX_IDLE_CONNS"),
			ConnMaxLifetime: v.GetString("DB_CONN_MAX_LIFETIME"),
		},
		Auth: AuthConfig{
			AccessSecret: v.GetString("JWT_ACCESS_SECRET"),
			AccessTTL:    v.GetDuration("JWT_ACCESS_TTL"),
		},
		Redis: RedisConfig{
			Addr:     v.GetString("REDIS_ADDR"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
		},
		Supplier: SupplierConfig{
			Name:  v.GetString("SUPPLIER_NAME"),
			Phone: v.GetString("SUPPLIER_PHONE"),
			Email: v.GetString("SUPPLIER_EMAIL"),
		},
		Clients: ClientsConfig{
			ProtectedCodes: parseList(v.GetString("CLIENTS_PROTECTED_CODES")),
		},
		Quotes: QuotesConfig{
			ExpirySweepInterval: v.GetDuration("QUOTES_EXPIRY_SWEEP_INTERVAL"),
		},
	}

	applyDefaults(cfg)

	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Environment == "" {
		cfg.Environment = "development"
	}
	if cfg.HTTP.Host == "" {
		cfg.HTTP.Host = "0.0.0.0"
	}
	if cfg.HTTP.Port == 0 {
		cfg.HTTP.Port = 8080
	}
	if cfg.DB.Driver == "" {
		cfg.DB.Driver = "postgres"
	}
	if cfg.Auth.AccessTTL <= 0 {
		cfg.Auth.AccessTTL = 12 * time.Hour
	}
	if cfg.Supplier.Name == "" {
		cfg.Supplier.Name = DefaultSupplierName
	}
	if cfg.Supplier.Phone == "" {
		cfg.Supplier.Phone = DefaultSupplierPhone
	}
	if cfg.Supplier.Email == "" {
		cfg.Supplier.Email = DefaultSupplierEmail
	}
	if len(cfg.Clients.ProtectedCodes) == 0 {
		cfg.Clients.ProtectedCodes = []string{"VISIONWEST"}
	}
}

func validate(cfg *Config) error {
	if cfg.DB.DSN == "" {
		return fmt.Errorf("DB_DSN is required")
	}
	switch cfg.DB.Driver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("DB_DRIVER must be postgres or sqlite, got %q", cfg.DB.Driver)
	}
	if cfg.Auth.AccessSecret == "" {
		return fmt.Errorf("JWT_ACCESS_SECRET is required")
	}
	if cfg.Quotes.ExpirySweepInterval < 0 {
		return fmt.Errorf("QUOTES_EXPIRY_SWEEP_INTERVAL must not be negative")
	}
	return nil
}

func parseList(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	items := strings.Split(raw, ",")
	result := make([]string, 0, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item != "" {
			result = append(result, item)
		}
	}
	return result
}
