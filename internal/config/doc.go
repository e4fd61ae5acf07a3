// Package config provides centralized configuration management for the
// normalization service. It loads application settings and the
// workbook parse configuration, validates both, and exposes a
// type-safe API to the rest of the application.
//
// # Configuration Sources
//
// Application configuration is loaded in order of precedence:
//
//	1. Environment variables (highest priority)
//	2. config.yaml / configs/config.yaml
//	3. Default values (lowest priority)
//
// All environment variables use the SHEETNORM_ prefix:
//
//	SHEETNORM_SERVER_PORT=8080
//	SHEETNORM_LOGGING_LEVEL=debug
//	SHEETNORM_PATHS_INPUT_DIR=/srv/workbooks
//	SHEETNORM_PARSE_CONFIG_FILE=/etc/sheetnorm/parse.yaml
//
// # Parse Configuration
//
// The workbook parse configuration is a separate YAML document naming
// the canonical branches and optional per-section layout hints:
//
//	branches: [North, South, East]
//	revenue:
//	  header_row: 2
//	hours:
//	  start_row: 40
//	  end_row: 52
//	fuzzy_threshold: 0.75
//
// It is decoded into domain.ParseConfig and checked with
// go-playground/validator before any parsing starts.
package config
