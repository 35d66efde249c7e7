// Package config loads runtime configuration from the environment. Every
// key is read under the GATEHOUSE_ prefix; nested keys use underscores
// (e.g. GATEHOUSE_REDIS_ADDR).
package config

import (
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the fully resolved runtime configuration.
type Config struct {
	// HTTPAddr is the listen address of the HTTP server.
	HTTPAddr string

	// PostgresDSN points at the durable store. Required.
	PostgresDSN string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// JWTSecret signs bearer tokens. Required.
	JWTSecret []byte
	// JWTIssuer is optional; when set it is stamped into and enforced on
	// every bearer token.
	JWTIssuer string
	AccessTTL time.Duration

	RefreshTTL time.Duration
	ResetTTL   time.Duration

	// RoleCipherKey and RoleCipherIV are base64-encoded. When either is
	// absent the process generates an ephemeral pair at startup, which
	// invalidates outstanding bearer tokens on restart.
	RoleCipherKey []byte
	RoleCipherIV  []byte

	RateWindow  time.Duration
	RateCeiling int64
}

// Load reads the environment and validates required keys.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("GATEHOUSE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("http.addr", ":8080")
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.db", 0)
	v.SetDefault("jwt.access_ttl", 15*time.Minute)
	v.SetDefault("refresh.ttl", 30*24*time.Hour)
	v.SetDefault("reset.ttl", time.Hour)
	v.SetDefault("rate.window", 30*time.Second)
	v.SetDefault("rate.ceiling", 20)

	cfg := &Config{
		HTTPAddr:      v.GetString("http.addr"),
		PostgresDSN:   v.GetString("postgres.dsn"),
		RedisAddr:     v.GetString("redis.addr"),
		RedisPassword: v.GetString("redis.password"),
		RedisDB:       v.GetInt("redis.db"),
		JWTSecret:     []byte(v.GetString("jwt.secret")),
		JWTIssuer:     v.GetString("jwt.issuer"),
		AccessTTL:     v.GetDuration("jwt.access_ttl"),
		RefreshTTL:    v.GetDuration("refresh.ttl"),
		ResetTTL:      v.GetDuration("reset.ttl"),
		RateWindow:    v.GetDuration("rate.window"),
		RateCeiling:   v.GetInt64("rate.ceiling"),
	}

	if cfg.PostgresDSN == "" {
		return nil, fmt.Errorf("GATEHOUSE_POSTGRES_DSN is required")
	}
	if len(cfg.JWTSecret) == 0 {
		return nil, fmt.Errorf("GATEHOUSE_JWT_SECRET is required")
	}

	var err error
	if raw := v.GetString("role_cipher.key"); raw != "" {
		cfg.RoleCipherKey, err = base64.StdEncoding.DecodeString(raw)
		if err != nil {
			return nil, fmt.Errorf("decoding GATEHOUSE_ROLE_CIPHER_KEY: %w", err)
		}
	}
	if raw := v.GetString("role_cipher.iv"); raw != "" {
		cfg.RoleCipherIV, err = base64.StdEncoding.DecodeString(raw)
		if err != nil {
			return nil, fmt.Errorf("decoding GATEHOUSE_ROLE_CIPHER_IV: %w", err)
		}
	}
	if (cfg.RoleCipherKey == nil) != (cfg.RoleCipherIV == nil) {
		return nil, fmt.Errorf("GATEHOUSE_ROLE_CIPHER_KEY and GATEHOUSE_ROLE_CIPHER_IV must be set together")
	}

	return cfg, nil
}
