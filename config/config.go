package config

import (
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

type Config struct {
	Server   Server
	Database Database
	Consumer Consumer
	Badge    Badge
}

type Server struct {
	Port    string
	GinMode string
}

type Database struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
}

// Consumer holds the settings for the external export API.
type Consumer struct {
	APIKey             string
	RateLimitPerMinute int
}

// Badge holds the gamification timing constants used to discount the
// badge-popup interruption from answer timings.
type Badge struct {
	PopupDurationMs int64
}

func NewConfig() (*Config, error) {
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")

	viper.AutomaticEnv()

	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("GIN_MODE", "debug")
	viper.SetDefault("CONSUMER_RATE_LIMIT", 100)
	viper.SetDefault("BADGE_POPUP_DURATION_MS", 4000)

	if err := viper.ReadInConfig(); err != nil {
		log.Warn().Err(err).Msg("Error reading config file")
	}

	var config Config

	config.Server.Port = viper.GetString("SERVER_PORT")
	config.Server.GinMode = viper.GetString("GIN_MODE")
	config.Database.Host = viper.GetString("DATABASE_HOST")
	config.Database.Port = viper.GetString("DATABASE_PORT")
	config.Database.User = viper.GetString("DATABASE_USER")
	config.Database.Password = viper.GetString("DATABASE_PASSWORD")
	config.Database.Name = viper.GetString("DATABASE_NAME")

	config.Consumer.APIKey = viper.GetString("CONSUMER_API_KEY")
	config.Consumer.RateLimitPerMinute = viper.GetInt("CONSUMER_RATE_LIMIT")
	config.Badge.PopupDurationMs = viper.GetInt64("BADGE_POPUP_DURATION_MS")

	if config.Consumer.APIKey == "" {
		log.Warn().Msg("CONSUMER_API_KEY is not set. The export API will reject every request.")
	}

	log.Info().
		Str("server_port", config.Server.Port).
		Str("database_host", config.Database.Host).
		Str("database_name", config.Database.Name).
		Int("consumer_rate_limit", config.Consumer.RateLimitPerMinute).
		Msg("Config loaded")
	return &config, nil
}
