package config

import (
	"fmt"

	"salesd/internal/common/fsutil"
)

// Config holds runtime parameters for the service.
// Zero values mean "unspecified" and will be replaced by defaults in main.
type Config struct {
	Addr      string `json:"addr" yaml:"addr" toml:"addr"`
	ModelsDir string `json:"models_dir" yaml:"models_dir" toml:"models_dir"`
	// Explicit artifact paths; when empty they are looked up in ModelsDir.
	TreeModel     string `json:"tree_model" yaml:"tree_model" toml:"tree_model"`
	ForecastModel string `json:"forecast_model" yaml:"forecast_model" toml:"forecast_model"`
	Encoders      string `json:"encoders" yaml:"encoders" toml:"encoders"`

	LogLevel              string `json:"log_level" yaml:"log_level" toml:"log_level"`
	LogFormat             string `json:"log_format" yaml:"log_format" toml:"log_format"`
	MaxBodyBytes          int64  `json:"max_body_bytes" yaml:"max_body_bytes" toml:"max_body_bytes"`
	PredictTimeoutSeconds int64  `json:"predict_timeout_seconds" yaml:"predict_timeout_seconds" toml:"predict_timeout_seconds"`

	CORSEnabled        bool     `json:"cors_enabled" yaml:"cors_enabled" toml:"cors_enabled"`
	CORSAllowedOrigins []string `json:"cors_allowed_origins" yaml:"cors_allowed_origins" toml:"cors_allowed_origins"`
	CORSAllowedMethods []string `json:"cors_allowed_methods" yaml:"cors_allowed_methods" toml:"cors_allowed_methods"`
	CORSAllowedHeaders []string `json:"cors_allowed_headers" yaml:"cors_allowed_headers" toml:"cors_allowed_headers"`
}

// Load reads a configuration file based on its extension.
// Supports: .yaml/.yml, .json, .toml
func Load(path string) (Config, error) {
	var cfg Config
	if path == "" {
		return cfg, fmt.Errorf("empty config path")
	}
	if err := fsutil.DecodeFile(path, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Merge returns base with every non-zero field of override applied on top.
func Merge(base, override Config) Config {
	out := base
	if override.Addr != "" {
		out.Addr = override.Addr
	}
	if override.ModelsDir != "" {
		out.ModelsDir = override.ModelsDir
	}
	if override.TreeModel != "" {
		out.TreeModel = override.TreeModel
	}
	if override.ForecastModel != "" {
		out.ForecastModel = override.ForecastModel
	}
	if override.Encoders != "" {
		out.Encoders = override.Encoders
	}
	if override.LogLevel != "" {
		out.LogLevel = override.LogLevel
	}
	if override.LogFormat != "" {
		out.LogFormat = override.LogFormat
	}
	if override.MaxBodyBytes != 0 {
		out.MaxBodyBytes = override.MaxBodyBytes
	}
	if override.PredictTimeoutSeconds != 0 {
		out.PredictTimeoutSeconds = override.PredictTimeoutSeconds
	}
	if override.CORSEnabled {
		out.CORSEnabled = true
	}
	if len(override.CORSAllowedOrigins) > 0 {
		out.CORSAllowedOrigins = override.CORSAllowedOrigins
	}
	if len(override.CORSAllowedMethods) > 0 {
		out.CORSAllowedMethods = override.CORSAllowedMethods
	}
	if len(override.CORSAllowedHeaders) > 0 {
		out.CORSAllowedHeaders = override.CORSAllowedHeaders
	}
	return out
}
