package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	HTTPAddress string

	DatabaseURL string

	RedisAddress  string
	RedisPassword string
	RedisDB       int

	JWTSecret       string
	JWTIssuer       string
	JWTAudience     string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration

	// SingleLogin включает политику «один активный сеанс»: новый логин
	// гасит все прежние сессии пользователя.
	SingleLogin bool

	PasswordPepper string

	AllowedOrigins   []string
	AllowCredentials bool
}

func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("json")
	viper.AddConfigPath(".")

	viper.AutomaticEnv()
	for _, key := range []string{
		"HTTP_ADDRESS",
		"DATABASE_URL",
		"REDIS_ADDRESS",
		"REDIS_PASSWORD",
		"REDIS_DB",
		"JWT_SECRET",
		"JWT_ISSUER",
		"JWT_AUDIENCE",
		"ACCESS_TOKEN_TTL",
		"REFRESH_TOKEN_TTL",
		"SINGLE_LOGIN",
		"PASSWORD_PEPPER",
		"ALLOWED_ORIGINS",
		"ALLOW_CREDENTIALS",
	} {
		if err := viper.BindEnv(key); err != nil {
			return nil, err
		}
	}

	viper.SetDefault("HTTP_ADDRESS", ":8080")
	viper.SetDefault("ACCESS_TOKEN_TTL", "15m")
	viper.SetDefault("REFRESH_TOKEN_TTL", "24h")
	viper.SetDefault("SINGLE_LOGIN", true)

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	cfg := &Config{
		HTTPAddress:      viper.GetString("HTTP_ADDRESS"),
		DatabaseURL:      viper.GetString("DATABASE_URL"),
		RedisAddress:     viper.GetString("REDIS_ADDRESS"),
		RedisPassword:    viper.GetString("REDIS_PASSWORD"),
		RedisDB:          viper.GetInt("REDIS_DB"),
		JWTSecret:        viper.GetString("JWT_SECRET"),
		JWTIssuer:        viper.GetString("JWT_ISSUER"),
		JWTAudience:      viper.GetString("JWT_AUDIENCE"),
		AccessTokenTTL:   viper.GetDuration("ACCESS_TOKEN_TTL"),
		RefreshTokenTTL:  viper.GetDuration("REFRESH_TOKEN_TTL"),
		SingleLogin:      viper.GetBool("SINGLE_LOGIN"),
		PasswordPepper:   viper.GetString("PASSWORD_PEPPER"),
		AllowedOrigins:   viper.GetStringSlice("ALLOWED_ORIGINS"),
		AllowCredentials: viper.GetBool("ALLOW_CREDENTIALS"),
	}

	for name, val := range map[string]string{
		"DATABASE_URL":  cfg.DatabaseURL,
		"REDIS_ADDRESS": cfg.RedisAddress,
		"JWT_SECRET":    cfg.JWTSecret,
		"JWT_ISSUER":    cfg.JWTIssuer,
	} {
		if val == "" {
			return nil, fmt.Errorf("%s is required", name)
		}
	}

	if cfg.AccessTokenTTL <= 0 || cfg.RefreshTokenTTL <= 0 {
		return nil, fmt.Errorf("token TTLs must be positive")
	}
	if cfg.AccessTokenTTL >= cfg.RefreshTokenTTL {
		return nil, fmt.Errorf("ACCESS_TOKEN_TTL must be shorter than REFRESH_TOKEN_TTL")
	}

	return cfg, nil
}
