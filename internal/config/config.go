package config

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
)

// Config stores all configuration of the application. Values are read by
// viper from an env file or environment variables.
type Config struct {
	ServerAddress string        `mapstructure:"SERVER_ADDRESS"`
	HostSecret    string        `mapstructure:"HOST_SECRET"`
	TokenSecret   string        `mapstructure:"TOKEN_SECRET"`
	TokenTTL      time.Duration `mapstructure:"TOKEN_TTL"`
	PaymentWindow time.Duration `mapstructure:"PAYMENT_WINDOW"`
	SweepInterval time.Duration `mapstructure:"SWEEP_INTERVAL"`
	UploadDir     string        `mapstructure:"UPLOAD_DIR"`
}

// LoadConfig reads configuration from the given env file, if it exists,
// with environment variables taking precedence.
func LoadConfig(path string) (config Config, err error) {
	viper.SetDefault("SERVER_ADDRESS", "0.0.0.0:8080")
	viper.SetDefault("TOKEN_TTL", "24h")
	viper.SetDefault("PAYMENT_WINDOW", "2m")
	viper.SetDefault("SWEEP_INTERVAL", "1s")
	viper.SetDefault("UPLOAD_DIR", "./uploads")
	viper.SetDefault("HOST_SECRET", "")
	viper.SetDefault("TOKEN_SECRET", "")

	viper.AutomaticEnv()

	if _, statErr := os.Stat(path); statErr == nil {
		viper.SetConfigFile(path)
		viper.SetConfigType("env")
		if err = viper.ReadInConfig(); err != nil {
			return
		}
	}

	if err = viper.Unmarshal(&config); err != nil {
		return
	}

	err = validateConfig(config)
	return
}

func validateConfig(config Config) error {
	if config.HostSecret == "" {
		return fmt.Errorf("HOST_SECRET is required")
	}
	if config.TokenSecret == "" {
		return fmt.Errorf("TOKEN_SECRET is required")
	}
	if config.PaymentWindow <= 0 {
		return fmt.Errorf("PAYMENT_WINDOW must be positive")
	}
	if config.SweepInterval <= 0 {
		return fmt.Errorf("SWEEP_INTERVAL must be positive")
	}
	return nil
}
