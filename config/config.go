package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	JWT       JWTConfig
	CORS      CORSConfig
	Redis     RedisConfig
	Sheets    SheetsConfig
	Catalog   CatalogConfig
	S3        S3Config
	RateLimit RateLimitConfig
	Seed      SeedConfig
}

type ServerConfig struct {
	Port        string
	GinMode     string
	Environment string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string `masked:"true"`
	DBName   string
	SSLMode  string
}

type JWTConfig struct {
	Secret             string `masked:"true"`
	AccessTokenExpiry  time.Duration
	RefreshTokenExpiry time.Duration
}

type CORSConfig struct {
	AllowedOrigins []string
}

type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     string
	Password string `masked:"true"`
	DB       int
}

// SheetsConfig 운영팀이 보는 구글 시트 미러 설정
type SheetsConfig struct {
	ServiceAccountEmail string
	PrivateKey          string `masked:"true"`
	SpreadsheetID       string
	SyncSpec            string // cron spec, 예: "@every 5m"
	RequestsPerSecond   float64
}

// Configured 세 환경변수가 모두 있어야 시트를 쓸 수 있다
func (c SheetsConfig) Configured() bool {
	return c.ServiceAccountEmail != "" && c.PrivateKey != "" && c.SpreadsheetID != ""
}

// CatalogConfig 외부 스크립트 엔드포인트 (상품 카탈로그 + 파트너 신청 릴레이)
type CatalogConfig struct {
	ScriptURL    string
	CacheTTL     time.Duration
	RelayEnabled bool
}

type S3Config struct {
	Region          string
	Bucket          string
	AccessKeyID     string `masked:"true"`
	SecretAccessKey string `masked:"true"`
	BaseURL         string // CloudFront or S3 direct URL
}

type RateLimitConfig struct {
	PublicRPS   float64
	PublicBurst int
	LoginPerMin int
}

type SeedConfig struct {
	AdminPassword       string `masked:"true"`
	DemoPartnerPassword string `masked:"true"`
}

func Load() (*Config, error) {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	config := &Config{
		Server: ServerConfig{
			Port:        getEnv("SERVER_PORT", "8080"),
			GinMode:     getEnv("GIN_MODE", "debug"),
			Environment: getEnv("ENVIRONMENT", "development"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "admin"),
			Password: getEnv("DB_PASSWORD", "1234"),
			DBName:   getEnv("DB_NAME", "sangjo_partner"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		JWT: JWTConfig{
			Secret:             getEnv("JWT_SECRET", "your-secret-key"),
			AccessTokenExpiry:  parseDuration(getEnv("JWT_ACCESS_TOKEN_EXPIRY", "15m"), 15*time.Minute),
			RefreshTokenExpiry: parseDuration(getEnv("JWT_REFRESH_TOKEN_EXPIRY", "168h"), 168*time.Hour),
		},
		CORS: CORSConfig{
			AllowedOrigins: parseSlice(getEnv("ALLOWED_ORIGINS", "http://localhost:3000")),
		},
		Redis: RedisConfig{
			Enabled:  parseBool(getEnv("REDIS_ENABLED", "false")),
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       parseInt(getEnv("REDIS_DB", "0"), 0),
		},
		Sheets: SheetsConfig{
			ServiceAccountEmail: getEnv("GOOGLE_SERVICE_ACCOUNT_EMAIL", ""),
			// .env 에는 개행이 \n 문자열로 들어온다
			PrivateKey:        strings.ReplaceAll(getEnv("GOOGLE_PRIVATE_KEY", ""), `\n`, "\n"),
			SpreadsheetID:     getEnv("GOOGLE_SHEETS_ID", ""),
			SyncSpec:          getEnv("SHEETS_SYNC_SPEC", "@every 5m"),
			RequestsPerSecond: parseFloat(getEnv("SHEETS_RPS", "1"), 1),
		},
		Catalog: CatalogConfig{
			ScriptURL:    getEnv("CATALOG_SCRIPT_URL", ""),
			CacheTTL:     parseDuration(getEnv("CATALOG_CACHE_TTL", "10m"), 10*time.Minute),
			RelayEnabled: parseBool(getEnv("CATALOG_RELAY_ENABLED", "false")),
		},
		S3: S3Config{
			Region:          getEnv("AWS_REGION", "ap-northeast-2"),
			Bucket:          getEnv("AWS_S3_BUCKET", "sangjo-partner-uploads"),
			AccessKeyID:     getEnv("AWS_ACCESS_KEY_ID", ""),
			SecretAccessKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),
			BaseURL:         getEnv("AWS_S3_BASE_URL", ""),
		},
		RateLimit: RateLimitConfig{
			PublicRPS:   parseFloat(getEnv("RATE_LIMIT_PUBLIC_RPS", "2"), 2),
			PublicBurst: parseInt(getEnv("RATE_LIMIT_PUBLIC_BURST", "10"), 10),
			LoginPerMin: parseInt(getEnv("RATE_LIMIT_LOGIN_PER_MIN", "10"), 10),
		},
		Seed: SeedConfig{
			AdminPassword:       getEnv("SEED_ADMIN_PASSWORD", "admin1234"),
			DemoPartnerPassword: getEnv("SEED_DEMO_PASSWORD", "demo1234"),
		},
	}

	if config.Server.Environment == "production" && config.JWT.Secret == "your-secret-key" {
		return nil, fmt.Errorf("JWT_SECRET must be set in production")
	}

	return config, nil
}

func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	duration, err := time.ParseDuration(s)
	if err != nil {
		log.Printf("Invalid duration %s, using default %s", s, fallback)
		return fallback
	}
	return duration
}

func parseInt(s string, fallback int) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return fallback
	}
	return n
}

func parseFloat(s string, fallback float64) float64 {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f <= 0 {
		return fallback
	}
	return f
}

func parseBool(s string) bool {
	b, _ := strconv.ParseBool(s)
	return b
}

func parseSlice(s string) []string {
	if s == "" {
		return []string{}
	}
	var result []string
	for _, part := range strings.Split(s, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
