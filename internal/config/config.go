package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config is built once at startup and passed by reference into every
// component constructor. Nothing mutates it afterwards.
type Config struct {
	// signing
	SecretKey    string
	JWTAlgorithm string
	JWTIssuer    string
	ServerName   string

	// token lifetimes
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
	ResetTokenTTL   time.Duration

	// stores
	DatabaseURL    string
	RedisAddress   string
	RedisPassword  string
	RedisDB        int
	RedisOpTimeout time.Duration

	// mail
	MailServer   string
	MailPort     int
	MailUsername string
	MailPassword string
	MailUseTLS   bool
	MailSender   string

	// social login
	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURL  string

	// http
	HTTPAddress    string
	AllowedOrigins []string

	LogLevel string
}

// Issuer returns the configured JWT issuer, falling back to the server
// name when none is set.
func (c *Config) Issuer() string {
	if c.JWTIssuer != "" {
		return c.JWTIssuer
	}
	return c.ServerName
}

func Load() (*Config, error) {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("SECRET_KEY", "top-secret!")
	v.SetDefault("JWT_ALGORITHM", "HS256")
	v.SetDefault("SERVER_NAME", "127.0.0.1:5000")
	v.SetDefault("JWT_ACCESS_TOKEN_EXPIRATION", "30m")
	v.SetDefault("JWT_REFRESH_TOKEN_EXPIRATION", "720h")
	v.SetDefault("MAIL_EXPIRES_IN", 120)
	v.SetDefault("R_HOST", "127.0.0.1")
	v.SetDefault("R_PORT", 6379)
	v.SetDefault("R_JWT_DB", 0)
	v.SetDefault("R_OP_TIMEOUT", "3s")
	v.SetDefault("MAIL_SERVER", "localhost")
	v.SetDefault("MAIL_PORT", 25)
	v.SetDefault("MAIL_SENDER", "noreply@authapi.com")
	v.SetDefault("HTTP_ADDRESS", ":8080")
	v.SetDefault("LOG_LEVEL", "debug")

	for _, key := range []string{
		"SECRET_KEY", "JWT_ALGORITHM", "JWT_ISSUER", "SERVER_NAME",
		"JWT_ACCESS_TOKEN_EXPIRATION", "JWT_REFRESH_TOKEN_EXPIRATION",
		"MAIL_EXPIRES_IN", "DATABASE_URL",
		"R_HOST", "R_PORT", "R_PWD", "R_JWT_DB", "R_OP_TIMEOUT",
		"MAIL_SERVER", "MAIL_PORT", "MAIL_USERNAME", "MAIL_PASSWORD",
		"MAIL_USE_TLS", "MAIL_SENDER",
		"GOOGLE_CLIENT_ID", "GOOGLE_CLIENT_SECRET", "GOOGLE_REDIRECT_URL",
		"HTTP_ADDRESS", "ALLOWED_ORIGINS", "LOG_LEVEL",
	} {
		if err := v.BindEnv(key); err != nil {
			return nil, err
		}
	}

	dbURL := v.GetString("DATABASE_URL")
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is not set")
	}

	cfg := &Config{
		SecretKey:          v.GetString("SECRET_KEY"),
		JWTAlgorithm:       v.GetString("JWT_ALGORITHM"),
		JWTIssuer:          v.GetString("JWT_ISSUER"),
		ServerName:         v.GetString("SERVER_NAME"),
		AccessTokenTTL:     v.GetDuration("JWT_ACCESS_TOKEN_EXPIRATION"),
		RefreshTokenTTL:    v.GetDuration("JWT_REFRESH_TOKEN_EXPIRATION"),
		ResetTokenTTL:      time.Duration(v.GetInt("MAIL_EXPIRES_IN")) * time.Second,
		DatabaseURL:        dbURL,
		RedisAddress:       fmt.Sprintf("%s:%d", v.GetString("R_HOST"), v.GetInt("R_PORT")),
		RedisPassword:      v.GetString("R_PWD"),
		RedisDB:            v.GetInt("R_JWT_DB"),
		RedisOpTimeout:     v.GetDuration("R_OP_TIMEOUT"),
		MailServer:         v.GetString("MAIL_SERVER"),
		MailPort:           v.GetInt("MAIL_PORT"),
		MailUsername:       v.GetString("MAIL_USERNAME"),
		MailPassword:       v.GetString("MAIL_PASSWORD"),
		MailUseTLS:         v.GetBool("MAIL_USE_TLS"),
		MailSender:         v.GetString("MAIL_SENDER"),
		GoogleClientID:     v.GetString("GOOGLE_CLIENT_ID"),
		GoogleClientSecret: v.GetString("GOOGLE_CLIENT_SECRET"),
		GoogleRedirectURL:  v.GetString("GOOGLE_REDIRECT_URL"),
		HTTPAddress:        v.GetString("HTTP_ADDRESS"),
		AllowedOrigins:     v.GetStringSlice("ALLOWED_ORIGINS"),
		LogLevel:           v.GetString("LOG_LEVEL"),
	}

	if cfg.AccessTokenTTL <= 0 || cfg.RefreshTokenTTL <= 0 || cfg.ResetTokenTTL <= 0 {
		return nil, fmt.Errorf("token TTLs must be positive")
	}

	return cfg, nil
}
