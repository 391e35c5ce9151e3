// internal/common/config/config.go
package config

import "path/filepath"

// Config is the main application configuration struct.
type Config struct {
	App     AppConfig     `mapstructure:"app"`
	Server  ServerConfig  `mapstructure:"server"`
	Storage StorageConfig `mapstructure:"storage"`
	Scoring ScoringConfig `mapstructure:"scoring"`
	Report  ReportConfig  `mapstructure:"report"`
	Email   EmailConfig   `mapstructure:"email"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// --- Core App/Infrastructure Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type ServerConfig struct {
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	ReadTimeout     int    `mapstructure:"read_timeout"`     // milliseconds
	WriteTimeout    int    `mapstructure:"write_timeout"`    // milliseconds
	ShutdownTimeout int    `mapstructure:"shutdown_timeout"` // milliseconds
	MaxBodyBytes    int64  `mapstructure:"max_body_bytes"`
}

// StorageConfig holds the directory layout for payloads and artifacts.
type StorageConfig struct {
	BaseDir    string `mapstructure:"base_dir"`
	PayloadDir string `mapstructure:"payload_dir"`
	OutputDir  string `mapstructure:"output_dir"`
}

// PayloadPath returns the absolute payload directory.
func (s StorageConfig) PayloadPath() string {
	return filepath.Join(s.BaseDir, s.PayloadDir)
}

// OutputPath returns the absolute artifact output directory.
func (s StorageConfig) OutputPath() string {
	return filepath.Join(s.BaseDir, s.OutputDir)
}

// ScoringConfig points at the versioned category/weight table.
type ScoringConfig struct {
	TablePath string `mapstructure:"table_path"`
}

// ReportConfig holds rendering options.
type ReportConfig struct {
	Title        string `mapstructure:"title"`
	IncludeChart bool   `mapstructure:"include_chart"`
}

// EmailConfig holds settings for report delivery.
type EmailConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	FromEmail string `mapstructure:"from_email"`
	Subject   string `mapstructure:"subject"`

	AWS struct {
		Region string `mapstructure:"region"`
	} `mapstructure:"aws"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}
