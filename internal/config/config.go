// Package config provides configuration management for the Riftline analysis
// pipeline.
package config

import (
	"fmt"
	"time"
)

// Config represents the complete application configuration
type Config struct {
	App        AppConfig        `mapstructure:"app" validate:"required"`
	Database   DatabaseConfig   `mapstructure:"database" validate:"required"`
	Analysis   AnalysisConfig   `mapstructure:"analysis" validate:"required"`
	Matching   MatchingConfig   `mapstructure:"matching" validate:"required"`
	Classifier ClassifierConfig `mapstructure:"classifier" validate:"required"`
	Identity   IdentityConfig   `mapstructure:"identity"`
	Metrics    MetricsConfig    `mapstructure:"metrics"`
}

// AppConfig represents application-level configuration
type AppConfig struct {
	Name        string `mapstructure:"name" validate:"required"`
	Environment string `mapstructure:"environment" validate:"required,environment"`
	LogLevel    string `mapstructure:"log_level" validate:"required,loglevel"`
}

// DatabaseConfig represents database connection configuration
type DatabaseConfig struct {
	Host           string `mapstructure:"host" validate:"required"`
	Port           int    `mapstructure:"port" validate:"required,min=1,max=65535"`
	Name           string `mapstructure:"name" validate:"required"`
	User           string `mapstructure:"user" validate:"required"`
	Password       string `mapstructure:"password" validate:"required"`
	SSLMode        string `mapstructure:"ssl_mode" validate:"required,oneof=disable require verify-full"`
	MaxConnections int    `mapstructure:"max_connections" validate:"required,gt=0"`
}

// AnalysisConfig controls the decision engine
type AnalysisConfig struct {
	// Mode selects the analysis path: empirical, ml or auto
	Mode           string  `mapstructure:"mode" validate:"required,oneof=empirical ml auto"`
	ValueThreshold float64 `mapstructure:"value_threshold" validate:"gte=0,lte=1"`
	MinimumSample  int     `mapstructure:"minimum_sample" validate:"gte=1"`
	StatisticType  string  `mapstructure:"statistic_type" validate:"required"`
}

// MatchingConfig controls fixture-to-history reconciliation
type MatchingConfig struct {
	ToleranceHours int     `mapstructure:"tolerance_hours" validate:"gte=1"`
	MinConfidence  float64 `mapstructure:"min_confidence" validate:"gte=0,lte=1"`
}

// ClassifierConfig locates the inference artifact
type ClassifierConfig struct {
	// BundlePath may be empty: the pipeline then runs empirical-only
	BundlePath          string  `mapstructure:"bundle_path"`
	ConfidenceThreshold float64 `mapstructure:"confidence_threshold" validate:"gte=0,lte=1"`
}

// IdentityConfig optionally overrides the built-in canonical name table
type IdentityConfig struct {
	TablePath string `mapstructure:"table_path"`
}

// MetricsConfig represents metrics endpoint configuration
type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled"`
	Port    int  `mapstructure:"port" validate:"omitempty,min=1,max=65535"`
}

// Tolerance returns the matching tolerance as a duration
func (m *MatchingConfig) Tolerance() time.Duration {
	return time.Duration(m.ToleranceHours) * time.Hour
}

// DSN builds the PostgreSQL connection string
func (d *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode,
	)
}
