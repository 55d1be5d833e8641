package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

type DBConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
	URL      string `yaml:"url"`
}

// DSN builds the postgres connection string, preferring a full URL.
func (c DBConfig) DSN() string {
	if c.URL != "" {
		return c.URL
	}
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%d sslmode=disable TimeZone=UTC",
		c.Host, c.User, c.Password, c.Name, c.Port,
	)
}

type ServerConfig struct {
	Port string `yaml:"port"`
}

type JWTConfig struct {
	Secret string `yaml:"secret"`
}

type GatewayConfig struct {
	SecretKey     string `yaml:"secret_key"`
	BaseURL       string `yaml:"base_url"`
	MinOrderMinor int64  `yaml:"min_order_minor"`
}

type AMQPConfig struct {
	URL string `yaml:"url"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type CloudinaryConfig struct {
	CloudName string `yaml:"cloud_name"`
	APIKey    string `yaml:"api_key"`
	APISecret string `yaml:"api_secret"`
}

type EngineConfig struct {
	// ReopenAfterDispute puts a contract back into Working/Completed after a
	// ticket is resolved instead of leaving it terminally closed.
	ReopenAfterDispute bool `yaml:"reopen_after_dispute"`
}

type Config struct {
	Server     ServerConfig     `yaml:"server"`
	DB         DBConfig         `yaml:"db"`
	JWT        JWTConfig        `yaml:"jwt"`
	Gateway    GatewayConfig    `yaml:"gateway"`
	AMQP       AMQPConfig       `yaml:"amqp"`
	Redis      RedisConfig      `yaml:"redis"`
	Cloudinary CloudinaryConfig `yaml:"cloudinary"`
	Engine     EngineConfig     `yaml:"engine"`
}

// Load reads config.yaml when present and lets environment variables override
// individual values, so containers need no config file at all.
func Load() (*Config, error) {
	var cfg Config

	if f, err := os.Open("config.yaml"); err == nil {
		defer f.Close()
		if err := yaml.NewDecoder(f).Decode(&cfg); err != nil {
			return nil, fmt.Errorf("failed to decode config.yaml: %w", err)
		}
	}

	overrideFromEnv(&cfg)

	if cfg.Server.Port == "" {
		cfg.Server.Port = "8080"
	}
	if cfg.Gateway.MinOrderMinor == 0 {
		cfg.Gateway.MinOrderMinor = 100
	}
	return &cfg, nil
}

func overrideFromEnv(cfg *Config) {
	setString(&cfg.DB.Host, "DB_HOST")
	setInt(&cfg.DB.Port, "DB_PORT")
	setString(&cfg.DB.User, "DB_USER")
	setString(&cfg.DB.Password, "DB_PASSWORD")
	setString(&cfg.DB.Name, "DB_NAME")
	setString(&cfg.DB.URL, "DATABASE_URL")

	setString(&cfg.Server.Port, "PORT")
	setString(&cfg.JWT.Secret, "JWT_SECRET")

	setString(&cfg.Gateway.SecretKey, "PAYSTACK_SECRET_KEY")
	setString(&cfg.Gateway.BaseURL, "PAYSTACK_BASE_URL")
	setInt64(&cfg.Gateway.MinOrderMinor, "PAYSTACK_MIN_ORDER_MINOR")

	setString(&cfg.AMQP.URL, "AMQP_URL")

	setString(&cfg.Redis.Addr, "REDIS_ADDR")
	setString(&cfg.Redis.Password, "REDIS_PASSWORD")
	setInt(&cfg.Redis.DB, "REDIS_DB")

	setString(&cfg.Cloudinary.CloudName, "CLOUDINARY_CLOUD_NAME")
	setString(&cfg.Cloudinary.APIKey, "CLOUDINARY_API_KEY")
	setString(&cfg.Cloudinary.APISecret, "CLOUDINARY_API_SECRET")

	if v := os.Getenv("REOPEN_AFTER_DISPUTE"); v != "" {
		cfg.Engine.ReopenAfterDispute = v == "true" || v == "1"
	}
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setInt64(dst *int64, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			*dst = n
		}
	}
}
