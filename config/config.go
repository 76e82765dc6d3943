package config

import (
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type DBConfig struct {
	// Driver is "postgres" (default) or "memory" for a process-local store.
	Driver   string `yaml:"driver"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
	SSLMode  string `yaml:"sslmode"`
	MaxConns int32  `yaml:"max_conns"`
	MinConns int32  `yaml:"min_conns"`
	// SlowQueryThreshold 超过该阈值的语句会被记录
	SlowQueryThreshold time.Duration `yaml:"slow_query_threshold"`
}

type RedisConfig struct {
	Enabled  bool          `yaml:"enabled"`
	Addr     string        `yaml:"addr"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	TTL      time.Duration `yaml:"ttl"`
}

type MQConfig struct {
	Enabled bool   `yaml:"enabled"`
	URL     string `yaml:"url"`
	// Exchange 事件发布的 topic exchange
	Exchange string `yaml:"exchange"`
}

type ServerConfig struct {
	Port           string        `yaml:"port"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
}

type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
}

type Config struct {
	LogLevel string       `yaml:"log_level"`
	DB       DBConfig     `yaml:"db"`
	Redis    RedisConfig  `yaml:"redis"`
	MQ       MQConfig     `yaml:"mq"`
	Server   ServerConfig `yaml:"server"`
	CORS     CORSConfig   `yaml:"cors"`
}

// Load reads the file named by CONFIG_FILE (default config.yaml) and exits on error.
func Load() *Config {
	path := os.Getenv("CONFIG_FILE")
	if path == "" {
		path = "config.yaml"
	}

	cfg, err := LoadFile(path)
	if err != nil {
		log.Fatalf("failed to load %s: %v", path, err)
	}
	return cfg
}

// LoadFile decodes path, applies environment overrides and fills defaults.
// A missing file is not an error: the environment alone is enough.
func LoadFile(path string) (*Config, error) {
	var cfg Config

	f, err := os.Open(path)
	switch {
	case err == nil:
		defer f.Close()
		if err := yaml.NewDecoder(f).Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("failed to decode %s: %w", path, err)
		}
	case os.IsNotExist(err):
	default:
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}

	// 环境变量覆盖（生产环境使用）
	overrideFromEnv(&cfg)
	applyDefaults(&cfg)

	return &cfg, nil
}

// DSN returns the pgx connection string for the database section.
func (c DBConfig) DSN() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     net.JoinHostPort(c.Host, strconv.Itoa(c.Port)),
		Path:     "/" + c.Name,
		RawQuery: "sslmode=" + url.QueryEscape(c.SSLMode),
	}
	return u.String()
}

func overrideFromEnv(cfg *Config) {
	if level := os.Getenv("LOG_LEVEL"); level != "" {
		cfg.LogLevel = level
	}

	// DB配置
	if driver := os.Getenv("DB_DRIVER"); driver != "" {
		cfg.DB.Driver = driver
	}
	if host := os.Getenv("DB_HOST"); host != "" {
		cfg.DB.Host = host
	}
	if port := os.Getenv("DB_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			cfg.DB.Port = p
		}
	}
	if user := os.Getenv("DB_USER"); user != "" {
		cfg.DB.User = user
	}
	if password := os.Getenv("DB_PASSWORD"); password != "" {
		cfg.DB.Password = password
	}
	if name := os.Getenv("DB_NAME"); name != "" {
		cfg.DB.Name = name
	}
	if mode := os.Getenv("DB_SSLMODE"); mode != "" {
		cfg.DB.SSLMode = mode
	}

	// Redis配置
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		cfg.Redis.Addr = addr
		cfg.Redis.Enabled = true
	}
	if password := os.Getenv("REDIS_PASSWORD"); password != "" {
		cfg.Redis.Password = password
	}

	// MQ配置
	if url := os.Getenv("MQ_URL"); url != "" {
		cfg.MQ.URL = url
		cfg.MQ.Enabled = true
	}
	if exchange := os.Getenv("MQ_EXCHANGE"); exchange != "" {
		cfg.MQ.Exchange = exchange
	}

	// Server配置
	if port := os.Getenv("SERVER_PORT"); port != "" {
		cfg.Server.Port = port
	}

	if origins := os.Getenv("CORS_ALLOWED_ORIGINS"); origins != "" {
		cfg.CORS.AllowedOrigins = splitList(origins)
	}
}

func applyDefaults(cfg *Config) {
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.DB.Driver == "" {
		cfg.DB.Driver = "postgres"
	}
	if cfg.DB.Host == "" {
		cfg.DB.Host = "localhost"
	}
	if cfg.DB.Port == 0 {
		cfg.DB.Port = 5432
	}
	if cfg.DB.SSLMode == "" {
		cfg.DB.SSLMode = "disable"
	}
	if cfg.DB.MaxConns == 0 {
		cfg.DB.MaxConns = 10
	}
	if cfg.DB.MinConns == 0 {
		cfg.DB.MinConns = 2
	}
	if cfg.DB.SlowQueryThreshold == 0 {
		cfg.DB.SlowQueryThreshold = 100 * time.Millisecond
	}
	if cfg.Redis.TTL == 0 {
		cfg.Redis.TTL = time.Minute
	}
	if cfg.MQ.Exchange == "" {
		cfg.MQ.Exchange = "events"
	}
	if cfg.Server.Port == "" {
		cfg.Server.Port = ":5000"
	}
	if !strings.Contains(cfg.Server.Port, ":") {
		cfg.Server.Port = ":" + cfg.Server.Port
	}
	if cfg.Server.RequestTimeout == 0 {
		cfg.Server.RequestTimeout = 5 * time.Second
	}
	if len(cfg.CORS.AllowedOrigins) == 0 {
		cfg.CORS.AllowedOrigins = []string{
			"http://localhost:3000",
			"https://donezo-vert.vercel.app",
		}
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
