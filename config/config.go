package config

import (
	"context"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

type Config struct {
	Port string
	Env  string

	MongoURI     string
	DatabaseName string

	JWTSecret string
	JWTIssuer string

	// 0 or negative means unlimited; applies to the free plan only.
	FreePlanProjectLimit int

	B2ApplicationKeyID string
	B2ApplicationKey   string
	B2BucketName       string
	AssetTokenTTL      time.Duration

	// 0 disables the background usage reconciler.
	UsageReconcileInterval time.Duration

	AllowedOrigins []string
}

var AppConfig *Config

func LoadConfig() {
	AppConfig = &Config{
		Port: getEnv("PORT", "8080"),
		Env:  getEnv("ENV", "development"),

		MongoURI:     getMongoURI(),
		DatabaseName: getEnv("DATABASE_NAME", "pixxel"),

		JWTSecret: getEnv("JWT_SECRET", ""),
		JWTIssuer: getEnv("JWT_ISSUER", ""),

		FreePlanProjectLimit: parseInt(getEnv("FREE_PLAN_PROJECT_LIMIT", "3")),

		B2ApplicationKeyID: getEnv("B2_APPLICATION_KEY_ID", ""),
		B2ApplicationKey:   getEnv("B2_APPLICATION_KEY", ""),
		B2BucketName:       getEnv("B2_BUCKET_NAME", ""),
		AssetTokenTTL:      parseDuration(getEnv("ASSET_TOKEN_TTL", "15m")),

		UsageReconcileInterval: parseDuration(getEnv("USAGE_RECONCILE_INTERVAL", "0")),

		AllowedOrigins: parseStringSlice(getEnv("ALLOWED_ORIGINS", "http://localhost:3000")),
	}

	logConfig()
	validateConfig()
}

func getMongoURI() string {
	if uri := os.Getenv("MONGODB_URI"); uri != "" {
		return uri
	}
	if uri := os.Getenv("MONGO_URI"); uri != "" {
		return uri
	}
	return "mongodb://localhost:27017"
}

// AssetsConfigured reports whether the optional B2 asset service can be started.
func (c *Config) AssetsConfigured() bool {
	return c.B2ApplicationKeyID != "" && c.B2ApplicationKey != "" && c.B2BucketName != ""
}

func logConfig() {
	log.Info().
		Str("port", AppConfig.Port).
		Str("env", AppConfig.Env).
		Str("database", AppConfig.DatabaseName).
		Str("mongo_uri", maskConnectionString(AppConfig.MongoURI)).
		Str("jwt_secret", maskSecret(AppConfig.JWTSecret)).
		Int("free_plan_project_limit", AppConfig.FreePlanProjectLimit).
		Bool("assets_configured", AppConfig.AssetsConfigured()).
		Dur("usage_reconcile_interval", AppConfig.UsageReconcileInterval).
		Strs("allowed_origins", AppConfig.AllowedOrigins).
		Msg("configuration loaded")
}

func maskSecret(secret string) string {
	if secret == "" {
		return "[NOT SET]"
	}
	if len(secret) <= 8 {
		return "[HIDDEN]"
	}
	return secret[:4] + "***" + secret[len(secret)-4:]
}

func maskConnectionString(uri string) string {
	if strings.Contains(uri, "@") {
		parts := strings.Split(uri, "@")
		return "[CREDENTIALS_HIDDEN]@" + parts[len(parts)-1]
	}
	return uri
}

func validateConfig() {
	if AppConfig.JWTSecret == "" {
		log.Fatal().Msg("JWT_SECRET must be set")
	}
	if AppConfig.Env == "production" && !strings.HasPrefix(AppConfig.MongoURI, "mongodb+srv://") {
		log.Warn().Msg("MONGO_URI is not mongodb+srv:// in production")
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseInt(s string) int {
	i, err := strconv.Atoi(s)
	if err != nil {
		log.Fatal().Str("value", s).Msg("failed to parse int")
	}
	return i
}

func parseDuration(s string) time.Duration {
	if s == "0" {
		return 0
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		log.Fatal().Str("value", s).Msg("failed to parse duration")
	}
	return d
}

func parseStringSlice(s string) []string {
	if s == "" {
		return []string{}
	}

	parts := strings.Split(s, ",")
	var result []string
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

func CreateContext(timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), timeout)
}
