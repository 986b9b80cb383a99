package config

import (
	"errors"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Database  DatabaseConfig
	Redis     RedisConfig
	JWT       JWTConfig
	CORS      CORSConfig
	Log       LogConfig
	Coverage  CoverageConfig
	Timetable TimetableConfig
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type JWTConfig struct {
	Secret string
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// CoverageConfig tunes the substitute coverage allocator.
type CoverageConfig struct {
	// DefaultAuxCapacity is the weekly coverage capacity assumed for
	// auxiliary staff, who carry no per-person waiting quota.
	DefaultAuxCapacity int
	// Strategy selects ROUND_ROBIN or GREEDY_MIN_LOAD assignment.
	Strategy string
	// BatchTTL bounds how long an unconfirmed allocation batch is retained.
	BatchTTL time.Duration
}

// TimetableConfig describes the weekly grid and caching behaviour.
type TimetableConfig struct {
	Days             int
	PeriodsPerDay    int
	FirstPeriodStart string
	PeriodMinutes    int
	BreakMinutes     int
	CacheTTL         time.Duration
	RepairIterations int
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Database = DatabaseConfig{
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.JWT = JWTConfig{Secret: v.GetString("JWT_SECRET")}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Coverage = CoverageConfig{
		DefaultAuxCapacity: v.GetInt("COVERAGE_AUX_CAPACITY"),
		Strategy:           v.GetString("COVERAGE_STRATEGY"),
		BatchTTL:           parseDuration(v.GetString("COVERAGE_BATCH_TTL"), time.Hour),
	}

	cfg.Timetable = TimetableConfig{
		Days:             v.GetInt("TIMETABLE_DAYS"),
		PeriodsPerDay:    v.GetInt("TIMETABLE_PERIODS_PER_DAY"),
		FirstPeriodStart: v.GetString("TIMETABLE_FIRST_PERIOD_START"),
		PeriodMinutes:    v.GetInt("TIMETABLE_PERIOD_MINUTES"),
		BreakMinutes:     v.GetInt("TIMETABLE_BREAK_MINUTES"),
		CacheTTL:         parseDuration(v.GetString("TIMETABLE_CACHE_TTL"), 5*time.Minute),
		RepairIterations: v.GetInt("TIMETABLE_REPAIR_ITERATIONS"),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "motabea")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("JWT_SECRET", "dev_secret")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("COVERAGE_AUX_CAPACITY", 10)
	v.SetDefault("COVERAGE_STRATEGY", "ROUND_ROBIN")
	v.SetDefault("COVERAGE_BATCH_TTL", "1h")

	v.SetDefault("TIMETABLE_DAYS", 5)
	v.SetDefault("TIMETABLE_PERIODS_PER_DAY", 7)
	v.SetDefault("TIMETABLE_FIRST_PERIOD_START", "07:30")
	v.SetDefault("TIMETABLE_PERIOD_MINUTES", 45)
	v.SetDefault("TIMETABLE_BREAK_MINUTES", 10)
	v.SetDefault("TIMETABLE_CACHE_TTL", "5m")
	v.SetDefault("TIMETABLE_REPAIR_ITERATIONS", 12)
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
