package database

// Config holds storage settings for the embedded SQLite database.
type Config struct {
	Path           string `yaml:"path" envconfig:"DATABASE_PATH"`
	BusyTimeoutMS  int    `yaml:"busy_timeout_ms" envconfig:"DB_BUSY_TIMEOUT_MS"`
	MaxConnections int    `yaml:"max_connections" envconfig:"DB_MAX_CONNECTIONS"`
}
