// Package config handles planfile configuration.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// Config holds all configuration
type Config struct {
	// Paths
	Dir      string `json:"dir"`       // Directory holding the plan files
	MainFile string `json:"main_file"` // Root plan file within Dir

	// Timezone overrides the zone detected from the plan files. Empty means
	// follow the files (or the system zone).
	Timezone string `json:"timezone"`

	// Editor used for new/edit/log; falls back to $EDITOR, then vi.
	Editor string `json:"editor"`

	// Server
	Server ServerConfig `json:"server"`

	// Archive
	Archive ArchiveConfig `json:"archive"`

	// Services
	Gcal   GcalConfig   `json:"gcal"`
	Qdrant QdrantConfig `json:"qdrant"`
	Ollama OllamaConfig `json:"ollama"`
}

// ServerConfig for the HTTP daemon
type ServerConfig struct {
	Addr string `json:"addr"`
}

// ArchiveConfig for the completion archive
type ArchiveConfig struct {
	Path string `json:"path"` // SQLite file; empty disables archiving
}

// GcalConfig for Google Calendar push
type GcalConfig struct {
	Calendar  string `json:"calendar"`   // Target calendar name
	TokenPath string `json:"token_path"` // Cached OAuth token
}

// QdrantConfig for semantic search
type QdrantConfig struct {
	Host string `json:"host"`
	Port int    `json:"port"`
}

// OllamaConfig for the embedding backend
type OllamaConfig struct {
	URL   string `json:"url"`
	Model string `json:"model"`
}

// Default returns default configuration
func Default() *Config {
	home, _ := os.UserHomeDir()
	configDir := filepath.Join(home, ".config", "planfile")

	return &Config{
		Dir:      filepath.Join(home, "plan"),
		MainFile: "main.plan",
		Server: ServerConfig{
			Addr: "localhost:8076",
		},
		Archive: ArchiveConfig{
			Path: filepath.Join(configDir, "archive.db"),
		},
		Gcal: GcalConfig{
			Calendar:  "planfile",
			TokenPath: filepath.Join(configDir, "gcal-token.json"),
		},
		Qdrant: QdrantConfig{
			Host: "localhost",
			Port: 6334,
		},
		Ollama: OllamaConfig{
			URL:   "http://localhost:11434",
			Model: "nomic-embed-text",
		},
	}
}

// Path returns the config file location: $PLANFILE_CONFIG if set, else
// ~/.config/planfile/config.json.
func Path() string {
	if p := os.Getenv("PLANFILE_CONFIG"); p != "" {
		return p
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "planfile", "config.json")
}

// Load loads config from file, falling back to defaults
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = Path()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			applyEnv(cfg)
			return cfg, nil // Use defaults
		}
		return nil, err
	}

	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	applyEnv(cfg)
	return cfg, nil
}

// applyEnv lets the environment override the file
func applyEnv(cfg *Config) {
	if dir := os.Getenv("PLANFILE_DIR"); dir != "" {
		cfg.Dir = dir
	}
}

// MainPath returns the full path of the root plan file.
func (c *Config) MainPath() string {
	return filepath.Join(c.Dir, c.MainFile)
}

// Save saves config to file
func (c *Config) Save(path string) error {
	if path == "" {
		path = Path()
	}

	// Ensure directory exists
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0600)
}
