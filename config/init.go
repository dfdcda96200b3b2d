package config

import (
	"log"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"

	internalconfig "github.com/flowyn/flowyn-core/internal/config"
	"github.com/flowyn/flowyn-core/internal/logger"
	"github.com/flowyn/flowyn-core/internal/tracing"
)

func InitConfig() (*Config, error) {
	config := &Config{
		AppConfig:      &internalconfig.AppConfig{},
		Logger:         &logger.Config{},
		Tracing:        &tracing.JaegerConfig{},
		DatabaseConfig: &internalconfig.DatabaseConfig{},
		AIConfig:       &internalconfig.AIConfig{},
		AccountsConfig: &internalconfig.AccountsConfig{},
	}

	err := godotenv.Load()
	if err != nil {
		log.Print("Unable to load .env file")
	}

	err = env.Parse(config)
	if err != nil {
		log.Fatalf("Error loading flowyn config: %v", err)
	}

	return config, nil
}
