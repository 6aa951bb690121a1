package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	StoreDriverPostgres = "postgres"
	StoreDriverMemory   = "memory"
)

// Config is built once at startup and passed by pointer; nothing reads the
// environment after Load returns.
type Config struct {
	APIPort string `yaml:"api_port"`
	JWTKey  []byte `yaml:"-"`

	StoreDriver string `yaml:"store_driver"`

	DBHost     string `yaml:"db_host"`
	DBPort     string `yaml:"db_port"`
	DBUser     string `yaml:"db_user"`
	DBPassword string `yaml:"db_password"`
	DBName     string `yaml:"db_name"`
	DBSslMode  string `yaml:"db_sslmode"`
	DBConnStr  string `yaml:"-"`

	RedisAddr     string `yaml:"redis_addr"`
	RedisPassword string `yaml:"redis_password"`
	RedisDB       int    `yaml:"redis_db"`

	ContestCacheTTL         time.Duration `yaml:"-"`
	JudgeQueueName          string        `yaml:"judge_queue_name"`
	LeaderboardSize         int           `yaml:"leaderboard_size"`
	LeaderboardPushInterval time.Duration `yaml:"-"`
	RequestTimeout          time.Duration `yaml:"-"`
}

// fileConfig mirrors the YAML document; durations are kept as strings there.
type fileConfig struct {
	Config                  `yaml:",inline"`
	JWTSecret               string `yaml:"jwt_secret"`
	ContestCacheTTL         string `yaml:"contest_cache_ttl"`
	LeaderboardPushInterval string `yaml:"leaderboard_push_interval"`
	RequestTimeout          string `yaml:"request_timeout"`
}

// Load builds the configuration. Values come from the optional YAML file at
// path, then from .env and the process environment, which take precedence.
func Load(path string) (*Config, error) {
	fc := fileConfig{}
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, &fc); err != nil {
				return nil, fmt.Errorf("parse config file %s: %w", path, err)
			}
		case errors.Is(err, os.ErrNotExist):
			log.Printf("Config file %s not found, using environment only", path)
		default:
			return nil, fmt.Errorf("read config file %s: %w", path, err)
		}
	}

	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	f := fc.Config
	cfg := &Config{
		APIPort:                 getEnv("API_PORT", or(f.APIPort, "8080")),
		JWTKey:                  []byte(getEnv("JWT_SECRET", fc.JWTSecret)),
		StoreDriver:             getEnv("STORE_DRIVER", or(f.StoreDriver, StoreDriverPostgres)),
		DBHost:                  getEnv("DB_HOST", or(f.DBHost, "localhost")),
		DBPort:                  getEnv("DB_PORT", or(f.DBPort, "5432")),
		DBUser:                  getEnv("DB_USER", or(f.DBUser, "contest")),
		DBPassword:              getEnv("DB_PASSWORD", or(f.DBPassword, "contest")),
		DBName:                  getEnv("DB_NAME", or(f.DBName, "contest_arena")),
		DBSslMode:               getEnv("DB_SSLMODE", or(f.DBSslMode, "disable")),
		RedisAddr:               getEnv("REDIS_ADDR", f.RedisAddr),
		RedisPassword:           getEnv("REDIS_PASSWORD", f.RedisPassword),
		RedisDB:                 getEnvAsInt("REDIS_DB", f.RedisDB),
		ContestCacheTTL:         getEnvAsDuration("CONTEST_CACHE_TTL", parseDuration(fc.ContestCacheTTL, 10*time.Minute)),
		JudgeQueueName:          getEnv("JUDGE_QUEUE_NAME", or(f.JudgeQueueName, "judge_jobs_queue")),
		LeaderboardSize:         getEnvAsInt("LEADERBOARD_SIZE", orInt(f.LeaderboardSize, 50)),
		LeaderboardPushInterval: getEnvAsDuration("LEADERBOARD_PUSH_INTERVAL", parseDuration(fc.LeaderboardPushInterval, 5*time.Second)),
		RequestTimeout:          getEnvAsDuration("REQUEST_TIMEOUT", parseDuration(fc.RequestTimeout, 30*time.Second)),
	}

	if len(cfg.JWTKey) == 0 {
		return nil, errors.New("JWT_SECRET must be set")
	}
	if cfg.StoreDriver != StoreDriverPostgres && cfg.StoreDriver != StoreDriverMemory {
		return nil, fmt.Errorf("unknown STORE_DRIVER %q", cfg.StoreDriver)
	}

	cfg.DBConnStr = "host=" + cfg.DBHost +
		" port=" + cfg.DBPort +
		" user=" + cfg.DBUser +
		" password=" + cfg.DBPassword +
		" dbname=" + cfg.DBName +
		" sslmode=" + cfg.DBSslMode
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	return parseDuration(getEnv(key, ""), fallback)
}

// parseDuration parses a duration string or returns the fallback if empty or invalid.
func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}

func or(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}

func orInt(value, fallback int) int {
	if value == 0 {
		return fallback
	}
	return value
}
