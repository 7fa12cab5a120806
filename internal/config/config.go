package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/BurntSushi/toml"
)

// Config holds application level configuration. Values come from an optional
// TOML file (CONFIG_FILE, default configs/config.toml) and are then
// overridden by environment variables.
type Config struct {
	Server ServerConfig `toml:"server"`
	MySQL  MySQLConfig  `toml:"mysql"`
	Redis  RedisConfig  `toml:"redis"`
	Auth   AuthConfig   `toml:"auth"`
	Upload UploadConfig `toml:"upload"`
}

type ServerConfig struct {
	Host string `toml:"host"`
	Port string `toml:"port"`
}

type MySQLConfig struct {
	DSN string `toml:"dsn"`
}

type RedisConfig struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
}

type AuthConfig struct {
	// JWTSecret has no default on purpose; the server refuses to start
	// without one.
	JWTSecret      string `toml:"jwt_secret"`
	TokenTTLMinute int    `toml:"token_ttl_minute"`
}

type UploadConfig struct {
	Dir string `toml:"dir"`
}

// Load builds Config from the optional TOML file and the environment.
func Load() (*Config, error) {
	cfg := defaultConfig()

	path := getEnv("CONFIG_FILE", "configs/config.toml")
	if _, err := os.Stat(path); err == nil {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("decode config file: %w", err)
		}
	}

	overrideByEnv(cfg)

	if cfg.Auth.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required and has no default")
	}
	return cfg, nil
}

// HTTPAddr returns the listen address for the HTTP server.
func (c *Config) HTTPAddr() string {
	return c.Server.Host + ":" + c.Server.Port
}

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: "4000",
		},
		MySQL: MySQLConfig{
			DSN: "user:password@tcp(localhost:3306)/inkpress?charset=utf8mb4&parseTime=True&loc=Local",
		},
		Redis: RedisConfig{
			Addr: "localhost:6379",
		},
		Auth: AuthConfig{
			TokenTTLMinute: 7 * 24 * 60,
		},
		Upload: UploadConfig{
			Dir: "uploads",
		},
	}
}

func overrideByEnv(cfg *Config) {
	cfg.Server.Host = getEnv("SERVER_HOST", cfg.Server.Host)
	cfg.Server.Port = getEnv("SERVER_PORT", cfg.Server.Port)
	cfg.MySQL.DSN = getEnv("MYSQL_DSN", cfg.MySQL.DSN)
	cfg.Redis.Addr = getEnv("REDIS_ADDR", cfg.Redis.Addr)
	cfg.Redis.Password = getEnv("REDIS_PASSWORD", cfg.Redis.Password)
	cfg.Redis.DB = getEnvInt("REDIS_DB", cfg.Redis.DB)
	cfg.Auth.JWTSecret = getEnv("JWT_SECRET", cfg.Auth.JWTSecret)
	cfg.Auth.TokenTTLMinute = getEnvInt("TOKEN_TTL_MINUTE", cfg.Auth.TokenTTLMinute)
	cfg.Upload.Dir = getEnv("UPLOAD_DIR", cfg.Upload.Dir)
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
	}
	return def
}
