package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// ETLConfig holds the configuration of the FII analytics pipeline
type ETLConfig struct {
	// Directory holding downloaded archives and extracted raw CSV tables
	SourceDir string `json:"source_dir"`

	// Directory the analysis CSV files are written to
	OutputDir string `json:"output_dir"`

	// Years processed by every run
	Years []int `json:"years"`

	// CVM index page listing the yearly ZIP archives
	BaseURL string `json:"base_url"`

	// Fetch and extract archives before processing
	FetchBeforeRun bool `json:"fetch_before_run"`

	// HTTP client timeout for retrieval, 0 disables it
	HTTPTimeout time.Duration `json:"http_timeout"`

	// Interval of the scheduled mode
	RunInterval time.Duration `json:"run_interval"`

	// Optional SQL database for the run log and the analysis mirror
	Database DatabaseConfig `json:"database"`

	// Log file, empty means stdout only
	LogFile string `json:"log_file"`

	// Enable debug logging
	EnableDetailedLogging bool `json:"enable_detailed_logging"`

	// Dashboard server settings
	Server ServerConfig `json:"server"`
}

// DatabaseConfig holds the database connection settings.
// An empty Driver disables the database.
type DatabaseConfig struct {
	Driver   string `json:"driver"` // "mysql", "sqlite" or ""
	Path     string `json:"path"`   // sqlite only
	Host     string `json:"host"`
	Port     int    `json:"port"`
	User     string `json:"user"`
	Password string `json:"password"`
	DBName   string `json:"dbname"`
}

// ServerConfig holds the dashboard server settings
type ServerConfig struct {
	Addr      string `json:"addr"`
	PublicDir string `json:"public_dir"`
	// Run the pipeline inside the server on RunInterval
	Schedule bool `json:"schedule"`
}

// DefaultBaseURL is the CVM index of quarterly FII disclosure archives
const DefaultBaseURL = "https://dados.cvm.gov.br/dados/FII/DOC/INF_TRIMESTRAL/DADOS/"

// Default configuration values
var (
	DefaultYears = []int{2016, 2017, 2018, 2019, 2020, 2021, 2022, 2023, 2024, 2025}

	DefaultDatabaseConfig = DatabaseConfig{
		Driver: "",
		Path:   "./fii_analytics.db",
		Host:   "localhost",
		Port:   3306,
		User:   "root",
		DBName: "fii_analytics",
	}

	DefaultETLConfig = ETLConfig{
		SourceDir:             "./dados_fiis",
		OutputDir:             "./analises",
		Years:                 DefaultYears,
		BaseURL:               DefaultBaseURL,
		FetchBeforeRun:        true,
		RunInterval:           24 * time.Hour,
		Database:              DefaultDatabaseConfig,
		EnableDetailedLogging: false,
		Server: ServerConfig{
			Addr:      ":8080",
			PublicDir: "./public",
		},
	}
)

// GetConfig returns the default configuration overlaid with environment variables
func GetConfig() ETLConfig {
	return FromEnv(os.Getenv)
}

// FromEnv builds the configuration from a lookup function so tests can inject values
func FromEnv(getenv func(string) string) ETLConfig {
	config := DefaultETLConfig
	config.Years = append([]int(nil), DefaultYears...)

	setString(getenv, "FII_SOURCE_DIR", &config.SourceDir)
	setString(getenv, "FII_OUTPUT_DIR", &config.OutputDir)
	setString(getenv, "FII_BASE_URL", &config.BaseURL)
	setBool(getenv, "FII_FETCH_BEFORE_RUN", &config.FetchBeforeRun)
	setDuration(getenv, "FII_HTTP_TIMEOUT", &config.HTTPTimeout)
	setDuration(getenv, "FII_RUN_INTERVAL", &config.RunInterval)
	setString(getenv, "FII_LOG_FILE", &config.LogFile)
	setBool(getenv, "FII_VERBOSE", &config.EnableDetailedLogging)

	setString(getenv, "FII_DB_DRIVER", &config.Database.Driver)
	setString(getenv, "FII_DB_PATH", &config.Database.Path)
	setString(getenv, "FII_DB_HOST", &config.Database.Host)
	setInt(getenv, "FII_DB_PORT", &config.Database.Port)
	setString(getenv, "FII_DB_USER", &config.Database.User)
	setString(getenv, "FII_DB_PASSWORD", &config.Database.Password)
	setString(getenv, "FII_DB_NAME", &config.Database.DBName)

	setString(getenv, "FII_HTTP_ADDR", &config.Server.Addr)
	setString(getenv, "FII_PUBLIC_DIR", &config.Server.PublicDir)
	setBool(getenv, "FII_SCHEDULE", &config.Server.Schedule)

	config.Database.Driver = strings.ToLower(strings.TrimSpace(config.Database.Driver))
	return config
}

func setString(getenv func(string) string, key string, dst *string) {
	if v := getenv(key); v != "" {
		*dst = v
	}
}

func setBool(getenv func(string) string, key string, dst *bool) {
	if v := getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func setInt(getenv func(string) string, key string, dst *int) {
	if v := getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setDuration(getenv func(string) string, key string, dst *time.Duration) {
	if v := getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			*dst = d
		}
	}
}
