package config

import (
	"log"

	"github.com/spf13/viper"
)

type Config struct {
	Port                string `mapstructure:"PORT"`
	DatabaseDriver      string `mapstructure:"DATABASE_DRIVER"`
	DatabasePath        string `mapstructure:"DATABASE_PATH"`
	DatabaseURL         string `mapstructure:"DATABASE_URL"`
	DiscordClientID     string `mapstructure:"DISCORD_CLIENT_ID"`
	DiscordClientSecret string `mapstructure:"DISCORD_CLIENT_SECRET"`
	DiscordRedirectURL  string `mapstructure:"DISCORD_REDIRECT_URL"`
	DiscordBotToken     string `mapstructure:"DISCORD_BOT_TOKEN"`
	JWTSecret           string `mapstructure:"JWT_SECRET"`
	FrontendURL         string `mapstructure:"FRONTEND_URL"`
	CatalogPath         string `mapstructure:"CATALOG_PATH"`
	NATSURL             string `mapstructure:"NATS_URL"`
	NotifyEnabled       bool   `mapstructure:"NOTIFY_ENABLED"`
	LogLevel            string `mapstructure:"LOG_LEVEL"`
}

func LoadConfig() *Config {
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("DATABASE_DRIVER", "sqlite")
	viper.SetDefault("DATABASE_PATH", "jobquest.db")
	viper.SetDefault("DISCORD_REDIRECT_URL", "http://127.0.0.1:8080/auth/discord/callback")
	viper.SetDefault("FRONTEND_URL", "http://127.0.0.1:4000/")
	viper.SetDefault("NOTIFY_ENABLED", true)
	viper.SetDefault("LOG_LEVEL", "info")

	viper.BindEnv("DATABASE_URL")
	viper.BindEnv("DISCORD_CLIENT_ID")
	viper.BindEnv("DISCORD_CLIENT_SECRET")
	viper.BindEnv("DISCORD_BOT_TOKEN")
	viper.BindEnv("JWT_SECRET")
	viper.BindEnv("FRONTEND_URL")
	viper.BindEnv("CATALOG_PATH")
	viper.BindEnv("NATS_URL")
	viper.BindEnv("NOTIFY_ENABLED")
	viper.BindEnv("LOG_LEVEL")

	viper.AutomaticEnv()

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		log.Fatalf("Unable to decode into struct, %v", err)
	}

	return &config
}
