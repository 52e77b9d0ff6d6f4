package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig
	DB       DBConfig
	JWT      JWTConfig
	S3       S3Config
	Log      LogConfig
	CORS     CORSConfig
	Registry RegistryConfig
	Import   ImportConfig
	Email    EmailConfig
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	Environment  string        `mapstructure:"environment"`
}

// DBConfig holds PostgreSQL connection settings.
type DBConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
	MaxOpen  int    `mapstructure:"max_open"`
	MaxIdle  int    `mapstructure:"max_idle"`
}

// DSN returns the PostgreSQL connection string.
func (d *DBConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// JWTConfig holds JWT signing and expiry settings.
type JWTConfig struct {
	Secret string        `mapstructure:"secret"`
	Issuer string        `mapstructure:"issuer"`
	Expiry time.Duration `mapstructure:"expiry"`
}

// S3Config holds AWS S3 settings used to archive uploaded exports.
type S3Config struct {
	Region        string `mapstructure:"region"`
	Bucket        string `mapstructure:"bucket"`
	Endpoint      string `mapstructure:"endpoint"`
	AccessKey     string `mapstructure:"access_key"`
	SecretKey     string `mapstructure:"secret_key"`
	MaxFileSizeMB int64  `mapstructure:"max_file_size_mb"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// RegistryConfig holds settings for the AFIP taxpayer registry (padrón) gateway.
type RegistryConfig struct {
	BaseURL     string `mapstructure:"base_url"`
	APIKey      string `mapstructure:"api_key"`
	TimeoutSecs int    `mapstructure:"timeout_secs"`
}

// Enabled reports whether a registry gateway is configured.
func (r *RegistryConfig) Enabled() bool {
	return r.BaseURL != ""
}

// Timeout returns the request timeout for registry lookups.
func (r *RegistryConfig) Timeout() time.Duration {
	return time.Duration(r.TimeoutSecs) * time.Second
}

// ImportConfig holds importer behaviour settings.
type ImportConfig struct {
	DefaultCurrency string `mapstructure:"default_currency"`
	ArchiveUploads  bool   `mapstructure:"archive_uploads"`
}

// EmailConfig holds settings for review notification emails.
type EmailConfig struct {
	Provider         string   `mapstructure:"provider"` // "ses" or "noop"
	Region           string   `mapstructure:"region"`
	FromAddress      string   `mapstructure:"from_address"`
	FromName         string   `mapstructure:"from_name"`
	ReviewRecipients []string `mapstructure:"review_recipients"`
}

// Load reads configuration from environment variables with the AFIPIMPORT_ prefix.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("AFIPIMPORT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Server defaults
	v.SetDefault("server.port", ":8080")
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "60s")
	v.SetDefault("server.environment", "development")

	// DB defaults
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.user", "afipimport")
	v.SetDefault("db.password", "afipimport_secret")
	v.SetDefault("db.name", "afipimport_db")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.max_open", 25)
	v.SetDefault("db.max_idle", 10)

	// JWT defaults
	v.SetDefault("jwt.secret", "change-me-in-production")
	v.SetDefault("jwt.issuer", "afipimport")
	v.SetDefault("jwt.expiry", "12h")

	// S3 defaults
	v.SetDefault("s3.region", "sa-east-1")
	v.SetDefault("s3.bucket", "afipimport-uploads")
	v.SetDefault("s3.endpoint", "")
	v.SetDefault("s3.max_file_size_mb", 10)

	// Log defaults
	v.SetDefault("log.level", "debug")
	v.SetDefault("log.format", "console")

	v.SetDefault("cors.allowed_origins", "http://localhost:3000,http://127.0.0.1:3000")

	// Registry defaults (disabled unless a base URL is set)
	v.SetDefault("registry.base_url", "")
	v.SetDefault("registry.api_key", "")
	v.SetDefault("registry.timeout_secs", 10)

	v.SetDefault("import.default_currency", "ARS")
	v.SetDefault("import.archive_uploads", true)

	// Email defaults
	v.SetDefault("email.provider", "noop")
	v.SetDefault("email.region", "sa-east-1")
	v.SetDefault("email.from_address", "noreply@afipimport.local")
	v.SetDefault("email.from_name", "AFIP Import")
	v.SetDefault("email.review_recipients", "")

	// Bind environment variables explicitly for nested keys
	envBindings := map[string]string{
		"server.port":             "AFIPIMPORT_SERVER_PORT",
		"server.read_timeout":     "AFIPIMPORT_SERVER_READ_TIMEOUT",
		"server.write_timeout":    "AFIPIMPORT_SERVER_WRITE_TIMEOUT",
		"server.environment":      "AFIPIMPORT_SERVER_ENVIRONMENT",
		"db.host":                 "AFIPIMPORT_DB_HOST",
		"db.port":                 "AFIPIMPORT_DB_PORT",
		"db.user":                 "AFIPIMPORT_DB_USER",
		"db.password":             "AFIPIMPORT_DB_PASSWORD",
		"db.name":                 "AFIPIMPORT_DB_NAME",
		"db.sslmode":              "AFIPIMPORT_DB_SSLMODE",
		"db.max_open":             "AFIPIMPORT_DB_MAX_OPEN",
		"db.max_idle":             "AFIPIMPORT_DB_MAX_IDLE",
		"jwt.secret":              "AFIPIMPORT_JWT_SECRET",
		"jwt.issuer":              "AFIPIMPORT_JWT_ISSUER",
		"jwt.expiry":              "AFIPIMPORT_JWT_EXPIRY",
		"s3.region":               "AFIPIMPORT_S3_REGION",
		"s3.bucket":               "AFIPIMPORT_S3_BUCKET",
		"s3.endpoint":             "AFIPIMPORT_S3_ENDPOINT",
		"s3.access_key":           "AFIPIMPORT_S3_ACCESS_KEY",
		"s3.secret_key":           "AFIPIMPORT_S3_SECRET_KEY",
		"s3.max_file_size_mb":     "AFIPIMPORT_S3_MAX_FILE_SIZE_MB",
		"log.level":               "AFIPIMPORT_LOG_LEVEL",
		"log.format":              "AFIPIMPORT_LOG_FORMAT",
		"cors.allowed_origins":    "AFIPIMPORT_CORS_ALLOWED_ORIGINS",
		"registry.base_url":       "AFIPIMPORT_REGISTRY_BASE_URL",
		"registry.api_key":        "AFIPIMPORT_REGISTRY_API_KEY",
		"registry.timeout_secs":   "AFIPIMPORT_REGISTRY_TIMEOUT_SECS",
		"import.default_currency": "AFIPIMPORT_IMPORT_DEFAULT_CURRENCY",
		"import.archive_uploads":  "AFIPIMPORT_IMPORT_ARCHIVE_UPLOADS",
		"email.provider":          "AFIPIMPORT_EMAIL_PROVIDER",
		"email.region":            "AFIPIMPORT_EMAIL_REGION",
		"email.from_address":      "AFIPIMPORT_EMAIL_FROM_ADDRESS",
		"email.from_name":         "AFIPIMPORT_EMAIL_FROM_NAME",
		"email.review_recipients": "AFIPIMPORT_EMAIL_REVIEW_RECIPIENTS",
	}
	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}

	cfg := &Config{}

	// Railway/Heroku/Render set a PORT env var. Use it if AFIPIMPORT_SERVER_PORT is not explicitly set.
	serverPort := v.GetString("server.port")
	if port := os.Getenv("PORT"); port != "" && os.Getenv("AFIPIMPORT_SERVER_PORT") == "" {
		serverPort = ":" + port
	}

	cfg.Server = ServerConfig{
		Port:         serverPort,
		ReadTimeout:  v.GetDuration("server.read_timeout"),
		WriteTimeout: v.GetDuration("server.write_timeout"),
		Environment:  v.GetString("server.environment"),
	}
	cfg.DB = DBConfig{
		Host:     v.GetString("db.host"),
		Port:     v.GetInt("db.port"),
		User:     v.GetString("db.user"),
		Password: v.GetString("db.password"),
		Name:     v.GetString("db.name"),
		SSLMode:  v.GetString("db.sslmode"),
		MaxOpen:  v.GetInt("db.max_open"),
		MaxIdle:  v.GetInt("db.max_idle"),
	}
	cfg.JWT = JWTConfig{
		Secret: v.GetString("jwt.secret"),
		Issuer: v.GetString("jwt.issuer"),
		Expiry: v.GetDuration("jwt.expiry"),
	}
	cfg.S3 = S3Config{
		Region:        v.GetString("s3.region"),
		Bucket:        v.GetString("s3.bucket"),
		Endpoint:      v.GetString("s3.endpoint"),
		AccessKey:     v.GetString("s3.access_key"),
		SecretKey:     v.GetString("s3.secret_key"),
		MaxFileSizeMB: v.GetInt64("s3.max_file_size_mb"),
	}
	cfg.Log = LogConfig{
		Level:  v.GetString("log.level"),
		Format: v.GetString("log.format"),
	}

	cfg.CORS = CORSConfig{
		AllowedOrigins: splitList(v.GetString("cors.allowed_origins")),
	}

	cfg.Registry = RegistryConfig{
		BaseURL:     strings.TrimRight(v.GetString("registry.base_url"), "/"),
		APIKey:      v.GetString("registry.api_key"),
		TimeoutSecs: v.GetInt("registry.timeout_secs"),
	}
	cfg.Import = ImportConfig{
		DefaultCurrency: strings.ToUpper(v.GetString("import.default_currency")),
		ArchiveUploads:  v.GetBool("import.archive_uploads"),
	}
	cfg.Email = EmailConfig{
		Provider:         strings.ToLower(v.GetString("email.provider")),
		Region:           v.GetString("email.region"),
		FromAddress:      v.GetString("email.from_address"),
		FromName:         v.GetString("email.from_name"),
		ReviewRecipients: splitList(v.GetString("email.review_recipients")),
	}

	return cfg, nil
}

// splitList parses a comma-separated env value, dropping blanks.
func splitList(raw string) []string {
	var out []string
	for _, item := range strings.Split(raw, ",") {
		item = strings.TrimSpace(item)
		if item != "" {
			out = append(out, item)
		}
	}
	return out
}
