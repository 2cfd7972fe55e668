package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"userlist/internal/infrastructure"
)

type Config struct {
	HTTPAddr    string        `yaml:"http_addr"`
	PublicURL   string        `yaml:"public_url"`
	DatabaseURL string        `yaml:"database_url"`
	AppTitle    string        `yaml:"app_title"`
	RenderWait  time.Duration `yaml:"render_wait"`
	LogLevel    string        `yaml:"log_level"`

	Redis     RedisConfig     `yaml:"redis"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
}

type RedisConfig struct {
	URL      string        `yaml:"url"`
	Host     string        `yaml:"host"`
	Port     string        `yaml:"port"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	TTL      time.Duration `yaml:"ttl"`
}

type RateLimitConfig struct {
	RPS   float64 `yaml:"rps"`
	Burst int     `yaml:"burst"`
}

func Default() *Config {
	return &Config{
		HTTPAddr:    ":8080",
		DatabaseURL: "file:userlist.db",
		AppTitle:    "Users",
		RenderWait:  3 * time.Second,
		LogLevel:    "info",
		Redis: RedisConfig{
			TTL: 30 * time.Second,
		},
		RateLimit: RateLimitConfig{
			RPS:   50,
			Burst: 100,
		},
	}
}

// Load layers defaults, the optional YAML file at path, a .env file in the
// working directory and finally the process environment.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(raw, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg.HTTPAddr = infrastructure.GetEnvAsString("HTTP_ADDR", cfg.HTTPAddr)
	cfg.PublicURL = infrastructure.GetEnvAsString("PUBLIC_URL", cfg.PublicURL)
	cfg.DatabaseURL = infrastructure.GetEnvAsString("DATABASE_URL", cfg.DatabaseURL)
	cfg.AppTitle = infrastructure.GetEnvAsString("APP_TITLE", cfg.AppTitle)
	cfg.RenderWait = infrastructure.GetEnvAsDuration("RENDER_WAIT", cfg.RenderWait)
	cfg.LogLevel = infrastructure.GetEnvAsString("LOG_LEVEL", cfg.LogLevel)

	cfg.Redis.URL = infrastructure.GetEnvAsString("REDIS_URL", cfg.Redis.URL)
	cfg.Redis.Host = infrastructure.GetEnvAsString("REDIS_HOST", cfg.Redis.Host)
	cfg.Redis.Port = infrastructure.GetEnvAsString("REDIS_PORT", cfg.Redis.Port)
	cfg.Redis.Password = infrastructure.GetEnvAsString("REDIS_PASSWORD", cfg.Redis.Password)
	cfg.Redis.DB = infrastructure.GetEnvAsInt("REDIS_DB", cfg.Redis.DB)
	cfg.Redis.TTL = infrastructure.GetEnvAsDuration("CACHE_TTL", cfg.Redis.TTL)

	cfg.RateLimit.RPS = infrastructure.GetEnvAsFloat("RATE_LIMIT_RPS", cfg.RateLimit.RPS)
	cfg.RateLimit.Burst = infrastructure.GetEnvAsInt("RATE_LIMIT_BURST", cfg.RateLimit.Burst)

	if cfg.PublicURL == "" {
		cfg.PublicURL = publicURLFromAddr(cfg.HTTPAddr)
	}
	cfg.PublicURL = strings.TrimRight(cfg.PublicURL, "/")

	return cfg, nil
}

func (c *Config) RedisService() infrastructure.RedisConfig {
	return infrastructure.RedisConfig{
		URL:      c.Redis.URL,
		Host:     c.Redis.Host,
		Port:     c.Redis.Port,
		Password: c.Redis.Password,
		DB:       c.Redis.DB,
		TTL:      c.Redis.TTL,
	}
}

func publicURLFromAddr(addr string) string {
	if strings.HasPrefix(addr, ":") {
		return "http://localhost" + addr
	}
	return "http://" + addr
}
