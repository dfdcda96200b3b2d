package config

type AppConfig struct {
	APIPort     string `env:"PORT" envDefault:"12333"`
	APIKey      string `env:"API_KEY,required"`
	RabbitMQURL string `env:"RABBITMQ_URL"`
}

type DatabaseConfig struct {
	Host            string `env:"FLOWYN_POSTGRES_HOST,required"`
	Port            string `env:"FLOWYN_POSTGRES_PORT,required"`
	User            string `env:"FLOWYN_POSTGRES_USER,required"`
	DBName          string `env:"FLOWYN_POSTGRES_DB_NAME,required"`
	Password        string `env:"FLOWYN_POSTGRES_PASSWORD,required"`
	MaxConn         int    `env:"FLOWYN_POSTGRES_DB_MAX_CONN"`
	MaxIdleConn     int    `env:"FLOWYN_POSTGRES_DB_MAX_IDLE_CONN"`
	ConnMaxLifetime int    `env:"FLOWYN_POSTGRES_DB_CONN_MAX_LIFETIME"`
	LogLevel        string `env:"FLOWYN_POSTGRES_LOG_LEVEL" envDefault:"WARN"`
	SSLMode         string `env:"FLOWYN_POSTGRES_SSL_MODE" envDefault:"require"`
}

type AIConfig struct {
	Url              string `env:"FLOWYN_AI_API_URL" envDefault:"https://api.flowyn.io" validate:"required"`
	ApiKey           string `env:"FLOWYN_AI_API_KEY"`
	Model            string `env:"FLOWYN_AI_MODEL" envDefault:"flowyn-assist-1"`
	MailboxSeedCount int    `env:"FLOWYN_AI_MAILBOX_SEED_COUNT" envDefault:"10"`
}

type AccountsConfig struct {
	// Simulated network latency of the mocked account-management layer.
	LatencyMs int `env:"FLOWYN_ACCOUNTS_LATENCY_MS" envDefault:"300"`
}
