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
	Server    ServerConfig
	DB        DBConfig
	S3        S3Config
	Log       LogConfig
	AI        AIConfig
	Pipeline  PipelineConfig
	Reference ReferenceConfig
	CORS      CORSConfig
	Queue     QueueConfig
	Dispatch  DispatchConfig
	Email     EmailConfig
}

// EmailConfig holds email delivery settings.
type EmailConfig struct {
	Provider    string `mapstructure:"provider"`
	Region      string `mapstructure:"region"`
	FromAddress string `mapstructure:"from_address"`
	FromName    string `mapstructure:"from_name"`
}

// QueueConfig holds extraction queue worker settings.
type QueueConfig struct {
	PollIntervalSecs int `mapstructure:"poll_interval_secs"`
	MaxRetries       int `mapstructure:"max_retries"`
	Concurrency      int `mapstructure:"concurrency"`
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// TierConfig maps one model tier to a provider model.
type TierConfig struct {
	Provider    string `mapstructure:"provider"`
	APIKey      string `mapstructure:"api_key"`
	Model       string `mapstructure:"model"`
	TimeoutSecs int    `mapstructure:"timeout_secs"`
}

// Configured reports whether the tier has a provider assigned.
func (t *TierConfig) Configured() bool {
	return t != nil && t.Provider != ""
}

// Timeout returns the per-attempt timeout, defaulting to 60s.
func (t *TierConfig) Timeout() time.Duration {
	if t.TimeoutSecs <= 0 {
		return 60 * time.Second
	}
	return time.Duration(t.TimeoutSecs) * time.Second
}

// AIConfig holds AI extraction settings. Callers select a tier; the tier
// decides which provider and model serve the call.
type AIConfig struct {
	Cheap             TierConfig `mapstructure:"cheap"`
	Standard          TierConfig `mapstructure:"standard"`
	Vision            TierConfig `mapstructure:"vision"`
	DefaultConfidence float64    `mapstructure:"default_confidence"`
	MaxOutputTokens   int        `mapstructure:"max_output_tokens"`
	// TextTier is the tier used for text documents.
	TextTier string `mapstructure:"text_tier"`
}

// Tier returns the config for a named tier, or nil if unknown or unset.
func (a *AIConfig) Tier(name string) *TierConfig {
	var t *TierConfig
	switch name {
	case "cheap":
		t = &a.Cheap
	case "standard":
		t = &a.Standard
	case "vision":
		t = &a.Vision
	}
	if !t.Configured() {
		return nil
	}
	return t
}

// Budget is the worst-case time spent on one AI extraction: two attempts on
// every configured tier.
func (a *AIConfig) Budget() time.Duration {
	var total time.Duration
	for _, name := range []string{"cheap", "standard", "vision"} {
		if t := a.Tier(name); t != nil {
			total += 2 * t.Timeout()
		}
	}
	return total
}

// PipelineConfig holds extraction and normalization settings.
type PipelineConfig struct {
	SuccessThreshold   float64 `mapstructure:"success_threshold"`
	DefaultCountry     string  `mapstructure:"default_country"`
	PreferredCompany   string  `mapstructure:"preferred_company"`
	CompanyOverride    bool    `mapstructure:"company_override"`
	Locale             string  `mapstructure:"locale"`
	StrategyBudgetSecs int     `mapstructure:"strategy_budget_secs"`
	ExtractTimeoutSecs int     `mapstructure:"extract_timeout_secs"`
	MaxDocumentSizeMB  int64   `mapstructure:"max_document_size_mb"`
}

// ReferenceConfig holds reference dataset settings.
type ReferenceConfig struct {
	Source              string `mapstructure:"source"` // "postgres" or "yaml"
	SeedPath            string `mapstructure:"seed_path"`
	RefreshIntervalSecs int    `mapstructure:"refresh_interval_secs"`
}

// DispatchConfig lists export targets and their settings.
type DispatchConfig struct {
	Targets       []string `mapstructure:"targets"`
	ExportBucket  string   `mapstructure:"export_bucket"`
	ExportPrefix  string   `mapstructure:"export_prefix"`
	NotifyAddress []string `mapstructure:"notify_address"`
	TimeoutSecs   int      `mapstructure:"timeout_secs"`
}

// Timeout bounds a single target delivery.
func (d *DispatchConfig) Timeout() time.Duration {
	return time.Duration(d.TimeoutSecs) * time.Second
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

// S3Config holds AWS S3 settings.
type S3Config struct {
	Region        string `mapstructure:"region"`
	Bucket        string `mapstructure:"bucket"`
	Endpoint      string `mapstructure:"endpoint"`
	AccessKey     string `mapstructure:"access_key"`
	SecretKey     string `mapstructure:"secret_key"`
	PresignExpiry int64  `mapstructure:"presign_expiry"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads configuration from environment variables with the FREIGHTDESK_ prefix.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("FREIGHTDESK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Server defaults
	v.SetDefault("server.port", ":8080")
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "5m")
	v.SetDefault("server.environment", "development")

	// DB defaults
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.user", "freightdesk")
	v.SetDefault("db.password", "freightdesk_secret")
	v.SetDefault("db.name", "freightdesk_db")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.max_open", 25)
	v.SetDefault("db.max_idle", 10)

	// S3 defaults
	v.SetDefault("s3.region", "eu-west-1")
	v.SetDefault("s3.bucket", "freightdesk-documents")
	v.SetDefault("s3.endpoint", "")
	v.SetDefault("s3.presign_expiry", 3600)

	// Log defaults
	v.SetDefault("log.level", "debug")
	v.SetDefault("log.format", "console")

	v.SetDefault("cors.allowed_origins", "http://localhost:3000,http://127.0.0.1:3000")

	// Queue defaults
	v.SetDefault("queue.poll_interval_secs", 10)
	v.SetDefault("queue.max_retries", 3)
	v.SetDefault("queue.concurrency", 4)

	// AI tier defaults
	v.SetDefault("ai.cheap.provider", "")
	v.SetDefault("ai.cheap.api_key", "")
	v.SetDefault("ai.cheap.model", "")
	v.SetDefault("ai.cheap.timeout_secs", 30)
	v.SetDefault("ai.standard.provider", "")
	v.SetDefault("ai.standard.api_key", "")
	v.SetDefault("ai.standard.model", "")
	v.SetDefault("ai.standard.timeout_secs", 60)
	v.SetDefault("ai.vision.provider", "")
	v.SetDefault("ai.vision.api_key", "")
	v.SetDefault("ai.vision.model", "")
	v.SetDefault("ai.vision.timeout_secs", 90)
	v.SetDefault("ai.default_confidence", 0.6)
	v.SetDefault("ai.max_output_tokens", 4096)
	v.SetDefault("ai.text_tier", "cheap")

	// Pipeline defaults
	v.SetDefault("pipeline.success_threshold", 0.7)
	v.SetDefault("pipeline.default_country", "NL")
	v.SetDefault("pipeline.preferred_company", "")
	v.SetDefault("pipeline.company_override", false)
	v.SetDefault("pipeline.locale", "nl")
	v.SetDefault("pipeline.strategy_budget_secs", 0)
	v.SetDefault("pipeline.extract_timeout_secs", 300)
	v.SetDefault("pipeline.max_document_size_mb", 25)

	// Reference defaults
	v.SetDefault("reference.source", "postgres")
	v.SetDefault("reference.seed_path", "db/seeds/reference.yaml")
	v.SetDefault("reference.refresh_interval_secs", 900)

	// Dispatch defaults
	v.SetDefault("dispatch.targets", "postgres,log")
	v.SetDefault("dispatch.export_bucket", "freightdesk-exports")
	v.SetDefault("dispatch.export_prefix", "exports")
	v.SetDefault("dispatch.notify_address", "")
	v.SetDefault("dispatch.timeout_secs", 30)

	// Email defaults
	v.SetDefault("email.provider", "noop")
	v.SetDefault("email.region", "eu-west-1")
	v.SetDefault("email.from_address", "noreply@freightdesk.local")
	v.SetDefault("email.from_name", "Freightdesk")

	// Bind environment variables explicitly for nested keys
	envBindings := map[string]string{
		"server.port":                     "FREIGHTDESK_SERVER_PORT",
		"server.read_timeout":             "FREIGHTDESK_SERVER_READ_TIMEOUT",
		"server.write_timeout":            "FREIGHTDESK_SERVER_WRITE_TIMEOUT",
		"server.environment":              "FREIGHTDESK_SERVER_ENVIRONMENT",
		"db.host":                         "FREIGHTDESK_DB_HOST",
		"db.port":                         "FREIGHTDESK_DB_PORT",
		"db.user":                         "FREIGHTDESK_DB_USER",
		"db.password":                     "FREIGHTDESK_DB_PASSWORD",
		"db.name":                         "FREIGHTDESK_DB_NAME",
		"db.sslmode":                      "FREIGHTDESK_DB_SSLMODE",
		"db.max_open":                     "FREIGHTDESK_DB_MAX_OPEN",
		"db.max_idle":                     "FREIGHTDESK_DB_MAX_IDLE",
		"s3.region":                       "FREIGHTDESK_S3_REGION",
		"s3.bucket":                       "FREIGHTDESK_S3_BUCKET",
		"s3.endpoint":                     "FREIGHTDESK_S3_ENDPOINT",
		"s3.access_key":                   "FREIGHTDESK_S3_ACCESS_KEY",
		"s3.secret_key":                   "FREIGHTDESK_S3_SECRET_KEY",
		"s3.presign_expiry":               "FREIGHTDESK_S3_PRESIGN_EXPIRY",
		"log.level":                       "FREIGHTDESK_LOG_LEVEL",
		"log.format":                      "FREIGHTDESK_LOG_FORMAT",
		"cors.allowed_origins":            "FREIGHTDESK_CORS_ALLOWED_ORIGINS",
		"queue.poll_interval_secs":        "FREIGHTDESK_QUEUE_POLL_INTERVAL_SECS",
		"queue.max_retries":               "FREIGHTDESK_QUEUE_MAX_RETRIES",
		"queue.concurrency":               "FREIGHTDESK_QUEUE_CONCURRENCY",
		"ai.cheap.provider":               "FREIGHTDESK_AI_CHEAP_PROVIDER",
		"ai.cheap.api_key":                "FREIGHTDESK_AI_CHEAP_API_KEY",
		"ai.cheap.model":                  "FREIGHTDESK_AI_CHEAP_MODEL",
		"ai.cheap.timeout_secs":           "FREIGHTDESK_AI_CHEAP_TIMEOUT_SECS",
		"ai.standard.provider":            "FREIGHTDESK_AI_STANDARD_PROVIDER",
		"ai.standard.api_key":             "FREIGHTDESK_AI_STANDARD_API_KEY",
		"ai.standard.model":               "FREIGHTDESK_AI_STANDARD_MODEL",
		"ai.standard.timeout_secs":        "FREIGHTDESK_AI_STANDARD_TIMEOUT_SECS",
		"ai.vision.provider":              "FREIGHTDESK_AI_VISION_PROVIDER",
		"ai.vision.api_key":               "FREIGHTDESK_AI_VISION_API_KEY",
		"ai.vision.model":                 "FREIGHTDESK_AI_VISION_MODEL",
		"ai.vision.timeout_secs":          "FREIGHTDESK_AI_VISION_TIMEOUT_SECS",
		"ai.default_confidence":           "FREIGHTDESK_AI_DEFAULT_CONFIDENCE",
		"ai.max_output_tokens":            "FREIGHTDESK_AI_MAX_OUTPUT_TOKENS",
		"ai.text_tier":                    "FREIGHTDESK_AI_TEXT_TIER",
		"pipeline.success_threshold":      "FREIGHTDESK_PIPELINE_SUCCESS_THRESHOLD",
		"pipeline.default_country":        "FREIGHTDESK_PIPELINE_DEFAULT_COUNTRY",
		"pipeline.preferred_company":      "FREIGHTDESK_PIPELINE_PREFERRED_COMPANY",
		"pipeline.company_override":       "FREIGHTDESK_PIPELINE_COMPANY_OVERRIDE",
		"pipeline.locale":                 "FREIGHTDESK_PIPELINE_LOCALE",
		"pipeline.strategy_budget_secs":   "FREIGHTDESK_PIPELINE_STRATEGY_BUDGET_SECS",
		"pipeline.extract_timeout_secs":   "FREIGHTDESK_PIPELINE_EXTRACT_TIMEOUT_SECS",
		"pipeline.max_document_size_mb":   "FREIGHTDESK_PIPELINE_MAX_DOCUMENT_SIZE_MB",
		"reference.source":                "FREIGHTDESK_REFERENCE_SOURCE",
		"reference.seed_path":             "FREIGHTDESK_REFERENCE_SEED_PATH",
		"reference.refresh_interval_secs": "FREIGHTDESK_REFERENCE_REFRESH_INTERVAL_SECS",
		"dispatch.targets":                "FREIGHTDESK_DISPATCH_TARGETS",
		"dispatch.export_bucket":          "FREIGHTDESK_DISPATCH_EXPORT_BUCKET",
		"dispatch.export_prefix":          "FREIGHTDESK_DISPATCH_EXPORT_PREFIX",
		"dispatch.notify_address":         "FREIGHTDESK_DISPATCH_NOTIFY_ADDRESS",
		"dispatch.timeout_secs":           "FREIGHTDESK_DISPATCH_TIMEOUT_SECS",
		"email.provider":                  "FREIGHTDESK_EMAIL_PROVIDER",
		"email.region":                    "FREIGHTDESK_EMAIL_REGION",
		"email.from_address":              "FREIGHTDESK_EMAIL_FROM_ADDRESS",
		"email.from_name":                 "FREIGHTDESK_EMAIL_FROM_NAME",
	}
	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}

	cfg := &Config{}

	// Railway/Heroku/Render set a PORT env var. Use it if FREIGHTDESK_SERVER_PORT is not explicitly set.
	serverPort := v.GetString("server.port")
	if port := os.Getenv("PORT"); port != "" && os.Getenv("FREIGHTDESK_SERVER_PORT") == "" {
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
	cfg.S3 = S3Config{
		Region:        v.GetString("s3.region"),
		Bucket:        v.GetString("s3.bucket"),
		Endpoint:      v.GetString("s3.endpoint"),
		AccessKey:     v.GetString("s3.access_key"),
		SecretKey:     v.GetString("s3.secret_key"),
		PresignExpiry: v.GetInt64("s3.presign_expiry"),
	}
	cfg.Log = LogConfig{
		Level:  v.GetString("log.level"),
		Format: v.GetString("log.format"),
	}
	cfg.CORS = CORSConfig{
		AllowedOrigins: splitList(v.GetString("cors.allowed_origins")),
	}

	cfg.AI = AIConfig{
		Cheap:             tierFrom(v, "ai.cheap"),
		Standard:          tierFrom(v, "ai.standard"),
		Vision:            tierFrom(v, "ai.vision"),
		DefaultConfidence: v.GetFloat64("ai.default_confidence"),
		MaxOutputTokens:   v.GetInt("ai.max_output_tokens"),
		TextTier:          v.GetString("ai.text_tier"),
	}

	cfg.Pipeline = PipelineConfig{
		SuccessThreshold:   v.GetFloat64("pipeline.success_threshold"),
		DefaultCountry:     strings.ToUpper(v.GetString("pipeline.default_country")),
		PreferredCompany:   v.GetString("pipeline.preferred_company"),
		CompanyOverride:    v.GetBool("pipeline.company_override"),
		Locale:             v.GetString("pipeline.locale"),
		StrategyBudgetSecs: v.GetInt("pipeline.strategy_budget_secs"),
		ExtractTimeoutSecs: v.GetInt("pipeline.extract_timeout_secs"),
		MaxDocumentSizeMB:  v.GetInt64("pipeline.max_document_size_mb"),
	}

	cfg.Reference = ReferenceConfig{
		Source:              v.GetString("reference.source"),
		SeedPath:            v.GetString("reference.seed_path"),
		RefreshIntervalSecs: v.GetInt("reference.refresh_interval_secs"),
	}

	cfg.Queue = QueueConfig{
		PollIntervalSecs: v.GetInt("queue.poll_interval_secs"),
		MaxRetries:       v.GetInt("queue.max_retries"),
		Concurrency:      v.GetInt("queue.concurrency"),
	}

	cfg.Dispatch = DispatchConfig{
		Targets:       splitList(v.GetString("dispatch.targets")),
		ExportBucket:  v.GetString("dispatch.export_bucket"),
		ExportPrefix:  v.GetString("dispatch.export_prefix"),
		NotifyAddress: splitList(v.GetString("dispatch.notify_address")),
		TimeoutSecs:   v.GetInt("dispatch.timeout_secs"),
	}

	cfg.Email = EmailConfig{
		Provider:    v.GetString("email.provider"),
		Region:      v.GetString("email.region"),
		FromAddress: v.GetString("email.from_address"),
		FromName:    v.GetString("email.from_name"),
	}

	if cfg.Pipeline.SuccessThreshold <= 0 || cfg.Pipeline.SuccessThreshold > 1 {
		return nil, fmt.Errorf("pipeline.success_threshold must be in (0,1], got %v", cfg.Pipeline.SuccessThreshold)
	}

	return cfg, nil
}

// StrategyBudget returns the time a single strategy may run before it is
// treated as failed. Defaults to the AI worst-case budget.
func (c *Config) StrategyBudget() time.Duration {
	if c.Pipeline.StrategyBudgetSecs > 0 {
		return time.Duration(c.Pipeline.StrategyBudgetSecs) * time.Second
	}
	return c.AI.Budget()
}

func tierFrom(v *viper.Viper, prefix string) TierConfig {
	return TierConfig{
		Provider:    v.GetString(prefix + ".provider"),
		APIKey:      v.GetString(prefix + ".api_key"),
		Model:       v.GetString(prefix + ".model"),
		TimeoutSecs: v.GetInt(prefix + ".timeout_secs"),
	}
}

// splitList parses a comma-separated string into trimmed, non-empty items.
func splitList(raw string) []string {
	var out []string
	for _, o := range strings.Split(raw, ",") {
		o = strings.TrimSpace(o)
		if o != "" {
			out = append(out, o)
		}
	}
	return out
}
