package config

import (
	"github.com/flowyn/flowyn-core/internal/config"
	"github.com/flowyn/flowyn-core/internal/logger"
	"github.com/flowyn/flowyn-core/internal/tracing"
)

type Config struct {
	AppConfig      *config.AppConfig
	Logger         *logger.Config
	Tracing        *tracing.JaegerConfig
	DatabaseConfig *config.DatabaseConfig
	AIConfig       *config.AIConfig
	AccountsConfig *config.AccountsConfig
}
