package server

import (
	"fmt"
	"os"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
)

// ServerConfig represents the complete server configuration
type ServerConfig struct {
	Server *ServerSettings `hcl:"server,block"`
	Scores *ScoreSettings  `hcl:"scores,block"`
	Levels *LevelSettings  `hcl:"levels,block"`
}

// ServerSettings contains server-level configuration
type ServerSettings struct {
	Address  string `hcl:"address,optional"`
	Port     int    `hcl:"port,optional"`
	LogLevel string `hcl:"log_level,optional"`
}

// ScoreSettings selects the best-score store.
type ScoreSettings struct {
	Kind string `hcl:"kind,optional"`
	Path string `hcl:"path,optional"`
}

// LevelSettings points at a level catalog file.
type LevelSettings struct {
	Path  string `hcl:"path,optional"`
	Watch bool   `hcl:"watch,optional"`
}

// DefaultServerConfig returns default server configuration
func DefaultServerConfig() *ServerConfig {
	c := &ServerConfig{}
	c.applyDefaults()
	return c
}

// LoadServerConfig loads server configuration from HCL file
func LoadServerConfig(filename string) (*ServerConfig, error) {
	if _, err := os.Stat(filename); os.IsNotExist(err) {
		return DefaultServerConfig(), nil
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}

	var config ServerConfig
	diags = gohcl.DecodeBody(file.Body, nil, &config)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}

	config.applyDefaults()
	return &config, nil
}

func (c *ServerConfig) applyDefaults() {
	if c.Server == nil {
		c.Server = &ServerSettings{}
	}
	if c.Server.Address == "" {
		c.Server.Address = "localhost"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.LogLevel == "" {
		c.Server.LogLevel = "info"
	}
	if c.Scores == nil {
		c.Scores = &ScoreSettings{}
	}
	if c.Scores.Kind == "" {
		c.Scores.Kind = "memory"
	}
	if c.Levels == nil {
		c.Levels = &LevelSettings{}
	}
}

// Validate validates the server configuration
func (c *ServerConfig) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Server.Port)
	}
	switch c.Scores.Kind {
	case "memory":
	case "file", "sqlite":
		if c.Scores.Path == "" {
			return fmt.Errorf("scores: %s store needs a path", c.Scores.Kind)
		}
	default:
		return fmt.Errorf("scores: unknown kind %q", c.Scores.Kind)
	}
	if c.Levels.Watch && c.Levels.Path == "" {
		return fmt.Errorf("levels: watch needs a path")
	}
	return nil
}

// GetServerAddress returns the full server address
func (c *ServerConfig) GetServerAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Address, c.Server.Port)
}
