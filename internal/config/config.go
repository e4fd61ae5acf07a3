package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"

	"sheetnorm/pkg/contracts/domain"
)

// Config represents the complete application configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server" envconfig:"SERVER"`
	Security SecurityConfig `yaml:"security" envconfig:"SECURITY"`
	Logging  LoggingConfig  `yaml:"logging" envconfig:"LOGGING"`
	Paths    PathsConfig    `yaml:"paths" envconfig:"PATHS"`
	Parse    ParseSettings  `yaml:"parse" envconfig:"PARSE"`
}

// ServerConfig contains HTTP server configuration.
type ServerConfig struct {
	Port            int           `yaml:"port" envconfig:"PORT" default:"8080"`
	ReadTimeout     time.Duration `yaml:"read_timeout" envconfig:"READ_TIMEOUT" default:"15s"`
	WriteTimeout    time.Duration `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT" default:"15s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT" default:"60s"`
	MaxHeaderBytes  int           `yaml:"max_header_bytes" envconfig:"MAX_HEADER_BYTES" default:"1048576"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT" default:"30s"`
	MaxUploadBytes  int64         `yaml:"max_upload_bytes" envconfig:"MAX_UPLOAD_BYTES" default:"52428800"`
}

// SecurityConfig contains security-related configuration.
type SecurityConfig struct {
	AllowedOrigins []string        `yaml:"allowed_origins" envconfig:"ALLOWED_ORIGINS" default:"http://localhost:8080"`
	EnableCORS     bool            `yaml:"enable_cors" envconfig:"ENABLE_CORS" default:"true"`
	RateLimit      RateLimitConfig `yaml:"rate_limit" envconfig:"RATE_LIMIT"`
}

// RateLimitConfig contains rate limiting configuration.
type RateLimitConfig struct {
	Enabled bool    `yaml:"enabled" envconfig:"ENABLED" default:"true"`
	RPS     float64 `yaml:"rps" envconfig:"RPS" default:"100"`
	Burst   int     `yaml:"burst" envconfig:"BURST" default:"50"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	Level       string `yaml:"level" envconfig:"LEVEL" default:"info"`
	Format      string `yaml:"format" envconfig:"FORMAT" default:"json"`
	Output      string `yaml:"output" envconfig:"OUTPUT" default:"both"`
	FilePath    string `yaml:"file_path" envconfig:"FILE_PATH" default:"logs/app.log"`
	Development bool   `yaml:"development" envconfig:"DEVELOPMENT" default:"false"`
}

// PathsConfig contains file system paths configuration.
type PathsConfig struct {
	InputDir  string `yaml:"input_dir" envconfig:"INPUT_DIR" default:"input"`
	OutputDir string `yaml:"output_dir" envconfig:"OUTPUT_DIR" default:"output"`
	LogsDir   string `yaml:"logs_dir" envconfig:"LOGS_DIR" default:"logs"`
}

// ParseSettings locates the workbook parse configuration and toggles
// debug-level parse logging.
type ParseSettings struct {
	ConfigFile string `yaml:"config_file" envconfig:"CONFIG_FILE" default:"parse.yaml"`
	Debug      bool   `yaml:"debug" envconfig:"DEBUG" default:"false"`
}

// Load loads configuration from environment variables and an optional
// YAML file. Environment variables take precedence.
func Load() (*Config, error) {
	var cfg Config

	if err := envconfig.Process("SHEETNORM", &cfg); err != nil {
		return nil, fmt.Errorf("load config from env: %w", err)
	}

	if configFile := findConfigFile(); configFile != "" {
		fileConfig, err := loadFromFile(configFile)
		if err != nil {
			return nil, fmt.Errorf("load config from file: %w", err)
		}
		cfg = mergeConfigs(*fileConfig, cfg)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

// LoadParseConfig reads and validates a workbook parse configuration
// from a YAML document.
func LoadParseConfig(path string) (*domain.ParseConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read parse config %s: %w", path, err)
	}
	return ParseConfigFromYAML(data)
}

// ParseConfigFromYAML decodes and validates a parse configuration.
func ParseConfigFromYAML(data []byte) (*domain.ParseConfig, error) {
	var pc domain.ParseConfig
	if err := yaml.Unmarshal(data, &pc); err != nil {
		return nil, fmt.Errorf("decode parse config: %w", err)
	}
	if err := validator.New().Struct(&pc); err != nil {
		return nil, fmt.Errorf("invalid parse config: %w", err)
	}
	return &pc, nil
}

func loadFromFile(filePath string) (*Config, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// mergeConfigs merges file config with env config; env takes
// precedence for any field it set.
func mergeConfigs(fileConfig, envConfig Config) Config {
	if envConfig.Server.Port == 0 {
		envConfig.Server.Port = fileConfig.Server.Port
	}
	if envConfig.Server.ReadTimeout == 0 {
		envConfig.Server.ReadTimeout = fileConfig.Server.ReadTimeout
	}
	if envConfig.Server.WriteTimeout == 0 {
		envConfig.Server.WriteTimeout = fileConfig.Server.WriteTimeout
	}
	if envConfig.Server.MaxUploadBytes == 0 {
		envConfig.Server.MaxUploadBytes = fileConfig.Server.MaxUploadBytes
	}
	if len(envConfig.Security.AllowedOrigins) == 0 {
		envConfig.Security.AllowedOrigins = fileConfig.Security.AllowedOrigins
	}
	if envConfig.Paths.InputDir == "" {
		envConfig.Paths.InputDir = fileConfig.Paths.InputDir
	}
	if envConfig.Paths.OutputDir == "" {
		envConfig.Paths.OutputDir = fileConfig.Paths.OutputDir
	}
	if envConfig.Parse.ConfigFile == "" {
		envConfig.Parse.ConfigFile = fileConfig.Parse.ConfigFile
	}
	return envConfig
}

// ResolvePath resolves a configured path against the working
// directory when it is not already absolute.
func ResolvePath(base, path string) string {
	if filepath.IsAbs(path) || base == "" {
		return path
	}
	return filepath.Join(base, path)
}

func (c *Config) validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Server.ReadTimeout <= 0 {
		return fmt.Errorf("server read timeout must be positive")
	}
	if c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("server write timeout must be positive")
	}
	if len(c.Security.AllowedOrigins) == 0 {
		return fmt.Errorf("at least one allowed origin must be specified")
	}

	if c.Logging.Format != "json" {
		c.Logging.Format = "json"
	}
	if c.Logging.Output != "both" && c.Logging.Output != "file" && c.Logging.Output != "console" {
		c.Logging.Output = "both"
	}
	if c.Logging.FilePath == "" {
		c.Logging.FilePath = "logs/app.log"
	}
	return nil
}

func findConfigFile() string {
	locations := []string{
		"config.yaml",
		"configs/config.yaml",
	}
	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}
	return ""
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			IdleTimeout:     60 * time.Second,
			MaxHeaderBytes:  1 << 20,
			ShutdownTimeout: 30 * time.Second,
			MaxUploadBytes:  50 << 20,
		},
		Security: SecurityConfig{
			AllowedOrigins: []string{"http://localhost:8080"},
			EnableCORS:     true,
			RateLimit: RateLimitConfig{
				Enabled: true,
				RPS:     100,
				Burst:   50,
			},
		},
		Logging: LoggingConfig{
			Level:    "info",
			Format:   "json",
			Output:   "both",
			FilePath: "logs/app.log",
		},
		Paths: PathsConfig{
			InputDir:  "input",
			OutputDir: "output",
			LogsDir:   "logs",
		},
		Parse: ParseSettings{
			ConfigFile: "parse.yaml",
		},
	}
}
