// Package config reads the project configuration: songplays.yaml, or the
// legacy dwh.cfg INI file when no YAML file exists.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/vvka-141/songplays/pkg/songplays"
)

// ErrConfigNotFound is returned when neither config file exists.
// Callers can check for this with errors.Is(err, config.ErrConfigNotFound).
var ErrConfigNotFound = errors.New("config file not found")

const (
	ConfigFileName       = "songplays.yaml"
	LegacyConfigFileName = "dwh.cfg"
	DefaultDialect       = "redshift"
)

type ConnectionConfig struct {
	Host           string `yaml:"host"`
	Port           int    `yaml:"port"`
	Username       string `yaml:"username"`
	Database       string `yaml:"database"`
	SSLMode        string `yaml:"sslmode"`
	AuthMethod     string `yaml:"auth_method,omitempty"`
	AzureTenantID  string `yaml:"azure_tenant_id,omitempty"`
	AzureClientID  string `yaml:"azure_client_id,omitempty"`
	AWSRegion      string `yaml:"aws_region,omitempty"`
	GoogleInstance string `yaml:"google_instance,omitempty"`
}

type WarehouseConfig struct {
	Dialect string `yaml:"dialect"`
	Schema  string `yaml:"schema,omitempty"`
}

type S3Config struct {
	LogData     string `yaml:"log_data"`
	SongData    string `yaml:"song_data"`
	LogJSONPath string `yaml:"log_jsonpath"`
}

type IAMRoleConfig struct {
	ARN string `yaml:"arn"`
}

type ProjectConfig struct {
	Connection ConnectionConfig `yaml:"connection"`
	Warehouse  WarehouseConfig  `yaml:"warehouse"`
	S3         S3Config         `yaml:"s3"`
	IAMRole    IAMRoleConfig    `yaml:"iam_role"`
	Region     string           `yaml:"region"`
	Timeout    string           `yaml:"timeout"`

	// Password is only ever set from a legacy dwh.cfg.
	Password string `yaml:"-"`

	// Path is the file the configuration was read from.
	Path string `yaml:"-"`
}

// Load reads songplays.yaml from projectPath, falling back to dwh.cfg.
func Load(projectPath string) (*ProjectConfig, error) {
	yamlPath := filepath.Join(projectPath, ConfigFileName)
	data, err := os.ReadFile(yamlPath)
	if err == nil {
		var cfg ProjectConfig
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("%s: %w", yamlPath, err)
		}
		cfg.Path = yamlPath
		return &cfg, nil
	}
	if !os.IsNotExist(err) {
		return nil, err
	}

	legacyPath := filepath.Join(projectPath, LegacyConfigFileName)
	if _, err := os.Stat(legacyPath); err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}
	return LoadLegacy(legacyPath)
}

// Sources returns the load inputs described by the configuration.
func (c *ProjectConfig) Sources() songplays.Sources {
	return songplays.Sources{
		LogData:     c.S3.LogData,
		SongData:    c.S3.SongData,
		LogJSONPath: c.S3.LogJSONPath,
		IAMRoleARN:  c.IAMRole.ARN,
		Region:      c.Region,
	}
}

// Dialect returns the configured dialect or DefaultDialect.
func (c *ProjectConfig) Dialect() string {
	if c.Warehouse.Dialect == "" {
		return DefaultDialect
	}
	return c.Warehouse.Dialect
}

// TimeoutDuration parses the timeout setting. Empty means zero.
func (c *ProjectConfig) TimeoutDuration() (time.Duration, error) {
	if c.Timeout == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 0, fmt.Errorf("invalid timeout %q: %w", c.Timeout, songplays.ErrInvalidConfig)
	}
	return d, nil
}
