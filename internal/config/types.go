package config

// Config holds all configuration for the application.
type Config struct {
	DBName        string
	MigrationsDir string
	Port          string
	Turso         TursoConfig
	ProjectID     string
	IngestTopic   string
}

type TursoConfig struct {
	PrimaryURL string
	AuthToken  string
}
