// internal/config/config.go
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"assetgraph/internal/asset"

	"github.com/joho/godotenv"
)

type Config struct {
	Server struct {
		Host string `json:"host"`
		Port int    `json:"port"`
	} `json:"server"`

	Database struct {
		Path string `json:"path"`
	} `json:"database"`

	Project ProjectConfig `json:"project"`

	Watch struct {
		Debounce Duration `json:"debounce"`
	} `json:"watch"`

	Environment string `json:"environment"` // dev, prod
	LogLevel    string `json:"log_level"`   // debug, info, warn, error
}

// ProjectConfig describes the asset tree the loaders read from.
type ProjectConfig struct {
	Root              string   `json:"root"`
	AssetsDir         string   `json:"assets_dir"`
	SystemSuffixes    []string `json:"system_suffixes"`
	SystemDirs        []string `json:"system_dirs"`
	IgnoredExtensions []string `json:"ignored_extensions"`
	HiddenIsSystem    *bool    `json:"hidden_is_system,omitempty"`
}

// Rules converts the project settings into asset classification rules.
func (p ProjectConfig) Rules() asset.Rules {
	rules := asset.Rules{
		SystemSuffixes:    p.SystemSuffixes,
		SystemDirs:        p.SystemDirs,
		IgnoredExtensions: p.IgnoredExtensions,
		HiddenIsSystem:    true,
	}
	if p.HiddenIsSystem != nil {
		rules.HiddenIsSystem = *p.HiddenIsSystem
	}
	return rules
}

// Duration decodes "500ms"-style strings.
type Duration time.Duration

func (d *Duration) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("parsing duration %q: %w", s, err)
	}
	*d = Duration(v)
	return nil
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

// StateDir is the directory holding the database inside a project.
const StateDir = ".assetgraph"

// Default returns the configuration used when no file is present.
func Default(root string) *Config {
	cfg := &Config{}
	cfg.Server.Host = "127.0.0.1"
	cfg.Server.Port = 8420
	cfg.Database.Path = filepath.Join(root, StateDir, "db")
	cfg.Project = ProjectConfig{
		Root:              root,
		AssetsDir:         "Assets",
		SystemSuffixes:    []string{".meta", ".config", ".assetgraph"},
		SystemDirs:        []string{"AssetGraph"},
		IgnoredExtensions: []string{".cs", ".js", ".dll"},
	}
	cfg.Watch.Debounce = Duration(500 * time.Millisecond)
	cfg.Environment = "development"
	cfg.LogLevel = "info"
	return cfg
}

// Load reads path over the defaults for root. A missing file is not an
// error. Environment variables (optionally from a .env file) win last.
func Load(path, root string) (*Config, error) {
	config := Default(root)

	file, err := os.Open(path)
	switch {
	case err == nil:
		defer file.Close()
		if err := json.NewDecoder(file).Decode(config); err != nil {
			return nil, fmt.Errorf("decoding config %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return nil, err
	}

	_ = godotenv.Load()
	if err := applyEnv(config); err != nil {
		return nil, err
	}

	if config.Project.Root == "" {
		config.Project.Root = root
	}
	if config.Database.Path == "" {
		config.Database.Path = filepath.Join(config.Project.Root, StateDir, "db")
	}
	return config, nil
}

func applyEnv(config *Config) error {
	config.Project.Root = firstNonEmpty(strings.TrimSpace(os.Getenv("ASSETGRAPH_PROJECT_ROOT")), config.Project.Root)
	config.Database.Path = firstNonEmpty(strings.TrimSpace(os.Getenv("ASSETGRAPH_DB_PATH")), config.Database.Path)
	config.LogLevel = firstNonEmpty(strings.TrimSpace(os.Getenv("ASSETGRAPH_LOG_LEVEL")), config.LogLevel)
	config.Environment = firstNonEmpty(strings.TrimSpace(os.Getenv("ASSETGRAPH_ENV")), config.Environment)

	if raw := strings.TrimSpace(os.Getenv("ASSETGRAPH_PORT")); raw != "" {
		port, err := strconv.Atoi(strings.TrimPrefix(raw, ":"))
		if err != nil {
			return fmt.Errorf("parsing ASSETGRAPH_PORT: %w", err)
		}
		config.Server.Port = port
	}
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
