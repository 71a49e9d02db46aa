// Package config loads settings for the server and the API clients.
//
// Precedence: environment (EQUIPVIZ_*) > config file > defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// ConfigDirName is the per-user directory holding client state.
const ConfigDirName = ".equipment-visualizer"

// Server holds backend settings.
type Server struct {
	Host           string `mapstructure:"host" yaml:"host"`
	Port           int    `mapstructure:"port" yaml:"port"`
	DatabaseDSN    string `mapstructure:"database_dsn" yaml:"database_dsn"`
	UploadDir      string `mapstructure:"upload_dir" yaml:"upload_dir"`
	MaxUploadBytes int64  `mapstructure:"max_upload_bytes" yaml:"max_upload_bytes"`

	ReportCacheSize   int `mapstructure:"report_cache_size" yaml:"report_cache_size"`
	ReportCacheTTLMin int `mapstructure:"report_cache_ttl_min" yaml:"report_cache_ttl_min"`

	ReadTimeoutSec     int `mapstructure:"read_timeout_sec" yaml:"read_timeout_sec"`
	WriteTimeoutSec    int `mapstructure:"write_timeout_sec" yaml:"write_timeout_sec"`
	ShutdownTimeoutSec int `mapstructure:"shutdown_timeout_sec" yaml:"shutdown_timeout_sec"`

	LogLevel  string `mapstructure:"log_level" yaml:"log_level"`
	LogFormat string `mapstructure:"log_format" yaml:"log_format"`
}

// Addr returns the listen address.
func (s *Server) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// ReportCacheTTL returns the report cache TTL as a duration.
func (s *Server) ReportCacheTTL() time.Duration {
	return time.Duration(s.ReportCacheTTLMin) * time.Minute
}

// ShutdownTimeout returns how long a graceful shutdown may take.
func (s *Server) ShutdownTimeout() time.Duration {
	return time.Duration(s.ShutdownTimeoutSec) * time.Second
}

// Client holds settings shared by the CLI and web clients.
type Client struct {
	ServerURL  string `mapstructure:"server_url" yaml:"server_url"`
	TimeoutSec int    `mapstructure:"timeout_sec" yaml:"timeout_sec"`

	// WebAddr is where the web client itself listens.
	WebAddr string `mapstructure:"web_addr" yaml:"web_addr"`
}

// Timeout returns the request timeout as a duration.
func (c *Client) Timeout() time.Duration {
	return time.Duration(c.TimeoutSec) * time.Second
}

// LoadServer loads server configuration from file, env, and defaults.
func LoadServer(cfgFile string) (*Server, error) {
	v := viper.New()
	v.SetEnvPrefix("EQUIPVIZ")
	v.AutomaticEnv()

	v.SetDefault("host", "")
	v.SetDefault("port", 8080)
	v.SetDefault("database_dsn", "")
	v.SetDefault("upload_dir", "./uploads")
	v.SetDefault("max_upload_bytes", int64(10<<20))
	v.SetDefault("report_cache_size", 32)
	v.SetDefault("report_cache_ttl_min", 15)
	v.SetDefault("read_timeout_sec", 30)
	v.SetDefault("write_timeout_sec", 30)
	v.SetDefault("shutdown_timeout_sec", 10)
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "text")

	if err := readConfigFile(v, cfgFile); err != nil {
		return nil, err
	}

	var c Server
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &c, nil
}

// LoadClient loads client configuration from file, env, and defaults.
func LoadClient(cfgFile string) (*Client, error) {
	v := viper.New()
	v.SetEnvPrefix("EQUIPVIZ")
	v.AutomaticEnv()

	v.SetDefault("server_url", "http://127.0.0.1:8080")
	v.SetDefault("timeout_sec", 15)
	v.SetDefault("web_addr", ":8090")

	if err := readConfigFile(v, cfgFile); err != nil {
		return nil, err
	}

	var c Client
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &c, nil
}

// SaveClient writes client configuration to the given path, defaulting
// to ~/.equipment-visualizer/config.yaml.
func SaveClient(c *Client, cfgFile string) error {
	path := cfgFile
	if path == "" {
		dir, err := Dir()
		if err != nil {
			return err
		}
		path = filepath.Join(dir, "config.yaml")
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Dir returns the per-user config directory, creating it if needed.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	dir := filepath.Join(home, ConfigDirName)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("mkdir config dir: %w", err)
	}
	return dir, nil
}

func readConfigFile(v *viper.Viper, cfgFile string) error {
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("read config %s: %w", cfgFile, err)
		}
		return nil
	}

	v.AddConfigPath(".")
	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(filepath.Join(home, ConfigDirName))
	}
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	// optional read
	_ = v.ReadInConfig()
	return nil
}
