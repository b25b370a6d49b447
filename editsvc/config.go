package editsvc

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/hazyhaar/domedit/safeio"
)

// Config holds all editsvc configuration.
type Config struct {
	// ProjectRoot is the directory all edit targets must live under.
	ProjectRoot string `yaml:"project_root"`
	// DBPath is the journal SQLite database path.
	DBPath string `yaml:"db_path"`
	// MaxFileBytes caps how large a source file the service will patch.
	MaxFileBytes int64 `yaml:"max_file_bytes"`
	// HistoryLimit is the default page size for patch history queries.
	HistoryLimit int `yaml:"history_limit"`
}

func (c *Config) defaults() {
	if c.ProjectRoot == "" {
		c.ProjectRoot = "."
	}
	if c.DBPath == "" {
		c.DBPath = "domedit.db"
	}
	if c.MaxFileBytes <= 0 {
		c.MaxFileBytes = safeio.MaxSourceFile
	}
	if c.HistoryLimit <= 0 {
		c.HistoryLimit = 50
	}
}

// LoadConfigFile reads a YAML config file.
func LoadConfigFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
