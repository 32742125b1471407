package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"xapi-connector/src/helpers"
	"xapi-connector/src/models"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

const (
	DefaultXapiHost  = "xapi.xtb.com"
	DefaultWSBaseURL = "wss://ws.xtb.com"

	DemoPort       = 5124
	DemoStreamPort = 5125
	RealPort       = 5112
	RealStreamPort = 5113

	envPrefix = "XAPI"
)

// -----------------------------------------------------------------------------

// Config wraps models.MConfig and provides business logic methods
type Config struct {
	*models.MConfig
}

// envOverrides is read from XAPI_USER, XAPI_PASSWORD, XAPI_MODE,
// XAPI_TRANSPORT and XAPI_LOG_LEVEL and takes precedence over the file.
// Fields carry no envconfig tag on purpose: a tag would make envconfig fall
// back to the unprefixed name, and $USER is always set.
type envOverrides struct {
	User      string
	Password  string
	Mode      string
	Transport string
	LogLevel  string `split_words:"true"`
}

// -----------------------------------------------------------------------------

// NewConfig creates a new Config from a YAML file, then applies environment
// overrides and defaults before validating.
func NewConfig(configPath string) (*Config, error) {
	// 1. Read the YAML file content
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, helpers.NewConfigurationError(fmt.Sprintf("failed to read config file '%s'", configPath), err)
	}

	// 2. Unmarshal data into the models struct
	var modelConfig models.MConfig
	if err := yaml.Unmarshal(data, &modelConfig); err != nil {
		return nil, helpers.NewConfigurationError("failed to parse config from YAML", err)
	}

	return finish(&Config{MConfig: &modelConfig})
}

// -----------------------------------------------------------------------------

// Default returns a demo-account configuration, still subject to the
// environment overrides. The CLI uses it when no file is given.
func Default() (*Config, error) {
	return finish(&Config{MConfig: &models.MConfig{
		Name:      "xapi-connector",
		Host:      "127.0.0.1",
		Port:      8080,
		LogLevel:  "INFO",
		LogFormat: "console",
		GrpcHost:  "127.0.0.1",
		GrpcPort:  50051,
		Xapi: models.MXapiConfig{
			Mode:      "demo",
			Transport: "socket",
			AppName:   "xapi-connector",
		},
		Storage: models.MStorageConfig{DBType: "none"},
		Cache:   models.MCacheConfig{Enabled: true, TTLSeconds: 600},
		DataSource: models.MDataSourceConfig{
			DataRetentionDays:     7,
			UpdateIntervalSeconds: 5,
			Symbols:               []string{"EURUSD"},
		},
	}})
}

// -----------------------------------------------------------------------------

func finish(c *Config) (*Config, error) {
	if err := c.applyEnv(); err != nil {
		return nil, err
	}
	c.ApplyDefaults()
	if err := c.Validate(); err != nil {
		return nil, helpers.NewConfigurationError("config validation failed", err)
	}
	return c, nil
}

// -----------------------------------------------------------------------------

func (c *Config) applyEnv() error {
	var env envOverrides
	if err := envconfig.Process(envPrefix, &env); err != nil {
		return helpers.NewConfigurationError("failed to read environment overrides", err)
	}
	if env.User != "" {
		c.Xapi.User = env.User
	}
	if env.Password != "" {
		c.Xapi.Password = env.Password
	}
	if env.Mode != "" {
		c.Xapi.Mode = strings.ToLower(env.Mode)
	}
	if env.Transport != "" {
		c.Xapi.Transport = strings.ToLower(env.Transport)
	}
	if env.LogLevel != "" {
		c.LogLevel = env.LogLevel
	}
	return nil
}

// -----------------------------------------------------------------------------

// ApplyDefaults fills every zero value that has a sensible default. Endpoints
// follow the account mode.
func (c *Config) ApplyDefaults() {
	x := &c.Xapi
	if x.Mode == "" {
		x.Mode = "demo"
	}
	if x.Transport == "" {
		x.Transport = "socket"
	}
	if x.Host == "" {
		x.Host = DefaultXapiHost
	}
	if x.Port == 0 {
		x.Port = DemoPort
		if x.Mode == "real" {
			x.Port = RealPort
		}
	}
	if x.StreamPort == 0 {
		x.StreamPort = DemoStreamPort
		if x.Mode == "real" {
			x.StreamPort = RealStreamPort
		}
	}
	if x.URL == "" {
		x.URL = DefaultWSBaseURL + "/" + x.Mode
	}
	if x.StreamURL == "" {
		x.StreamURL = DefaultWSBaseURL + "/" + x.Mode + "Stream"
	}
	if x.AppName == "" {
		x.AppName = c.Name
	}
	if x.DialTimeout == 0 {
		x.DialTimeout = 10
	}
	if x.RequestTimeout == 0 {
		x.RequestTimeout = 30
	}
	if x.MinRequestIntervalMs == 0 {
		x.MinRequestIntervalMs = 200
	}
	if x.MaxMessageSize == 0 {
		x.MaxMessageSize = 16 << 20
	}
	if x.MaxRetries == 0 {
		x.MaxRetries = 3
	}
	if x.KeepAliveSeconds == 0 {
		x.KeepAliveSeconds = 60
	}

	if c.Storage.DBType == "" {
		c.Storage.DBType = "none"
	}
	if c.DataSource.UpdateIntervalSeconds == 0 {
		c.DataSource.UpdateIntervalSeconds = 5
	}
	if c.DataSource.DataRetentionDays == 0 {
		c.DataSource.DataRetentionDays = 7
	}
	if c.Cache.TTLSeconds == 0 {
		c.Cache.TTLSeconds = 600
	}
}

// -----------------------------------------------------------------------------

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate performs configuration validation
func (c *Config) Validate() error {
	if err := validate.Struct(c.MConfig); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("invalid value %v for %s (rule %s)", fe.Value(), fe.Namespace(), fe.Tag())
		}
		return err
	}

	// Cross-field checks the tags cannot express
	if c.Port != 0 && (c.Port <= 1024 || c.Port > 65535) {
		return fmt.Errorf("invalid server port number: %d (must be between 1025 and 65535)", c.Port)
	}
	if c.Storage.DBType == "sqlite" && c.Storage.DBPath == "" {
		return fmt.Errorf("database path cannot be empty for sqlite")
	}
	if c.Storage.DBType == "postgres" && c.Storage.DBConnectionString == "" {
		return fmt.Errorf("connection string cannot be empty for postgres")
	}
	for i, s := range c.DataSource.Symbols {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("data source symbol %d cannot be empty", i)
		}
	}

	return nil
}

// -----------------------------------------------------------------------------

// HasCredentials reports whether a login can be attempted.
func (c *Config) HasCredentials() bool {
	return c.Xapi.User != "" && c.Xapi.Password != ""
}

// -----------------------------------------------------------------------------

// Save persists the current configuration to the specified YAML file path.
// The password is never written.
func (c *Config) Save(configPath string) error {
	out := *c.MConfig
	out.Xapi.Password = ""

	// 1. Marshal the struct to YAML
	data, err := yaml.Marshal(&out)
	if err != nil {
		return fmt.Errorf("failed to marshal config to YAML: %w", err)
	}

	// 2. Write to file (0600: it may hold the user id)
	if err := os.WriteFile(configPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write config to file '%s': %w", configPath, err)
	}

	return nil
}
