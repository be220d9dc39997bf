package config

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sethvargo/go-envconfig"
	"github.com/thomas-vilte/matebackport/internal/errors"
)

// Config is persisted in ~/.mate-backport/config.json. Environment variables
// override the file; command line flags override both.
type Config struct {
	NodeDir     string `json:"node_dir" env:"MATE_BACKPORT_NODE_DIR, overwrite"`
	V8Dir       string `json:"v8_dir" env:"MATE_BACKPORT_V8_DIR, overwrite"`
	Language    string `json:"language" env:"MATE_BACKPORT_LANG, overwrite"`
	GPGSign     bool   `json:"gpg_sign" env:"MATE_BACKPORT_GPG_SIGN, overwrite"`
	Bump        bool   `json:"bump"`
	RefsBaseURL string `json:"refs_base_url"`

	PathFile string `json:"-"`
}

const (
	configDirName  = ".mate-backport"
	configFileName = "config.json"

	defaultLang        = LangEN
	defaultNodeDir     = "."
	defaultRefsBaseURL = "https://github.com/v8/v8/commit"
)

// defaultV8Dir is where the V8 clone used for backports is kept by default.
var defaultV8Dir = filepath.Join("~", ".update-v8", "v8")

// LoadConfig reads the configuration under path, which is either a home
// directory or a .json file, creating it with defaults when missing.
// Environment overrides are applied after the file is read.
func LoadConfig(ctx context.Context, path string) (*Config, error) {
	configPath := path
	if filepath.Ext(path) != ".json" {
		configPath = filepath.Join(path, configDirName, configFileName)
	}

	cfg, err := readConfig(configPath)
	if err != nil {
		return nil, err
	}

	if err := envconfig.Process(ctx, cfg); err != nil {
		return nil, errors.ErrInvalidConfig.WithError(err)
	}
	cfg.Language = GetLocaleConfig(cfg.Language)

	home := path
	if filepath.Ext(path) == ".json" {
		home, _ = os.UserHomeDir()
	}
	cfg.NodeDir = ExpandHome(cfg.NodeDir, home)
	cfg.V8Dir = ExpandHome(cfg.V8Dir, home)

	if err := validateConfig(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func readConfig(configPath string) (*Config, error) {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return createDefaultConfig(configPath)
	} else if err != nil {
		return nil, errors.ErrConfigMissing.WithError(err).WithContext("path", configPath)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, errors.ErrConfigMissing.WithError(err).WithContext("path", configPath)
	}

	cfg := defaultConfig(configPath)
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, errors.ErrInvalidConfig.WithError(err).WithContext("path", configPath)
	}
	cfg.PathFile = configPath
	return cfg, nil
}

func defaultConfig(path string) *Config {
	return &Config{
		NodeDir:     defaultNodeDir,
		V8Dir:       defaultV8Dir,
		Language:    defaultLang,
		Bump:        true,
		RefsBaseURL: defaultRefsBaseURL,
		PathFile:    path,
	}
}

func createDefaultConfig(path string) (*Config, error) {
	cfg := defaultConfig(path)
	if err := SaveConfig(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func SaveConfig(cfg *Config) error {
	if err := validateConfig(cfg); err != nil {
		return err
	}

	if cfg.PathFile == "" {
		return errors.ErrInvalidConfig.WithContext("field", "path_file")
	}

	if err := os.MkdirAll(filepath.Dir(cfg.PathFile), 0755); err != nil {
		return errors.ErrInvalidConfig.WithError(err).WithContext("path", cfg.PathFile)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return errors.ErrInvalidConfig.WithError(err)
	}

	if err := os.WriteFile(cfg.PathFile, data, 0644); err != nil {
		return errors.ErrInvalidConfig.WithError(err).WithContext("path", cfg.PathFile)
	}
	return nil
}

func validateConfig(cfg *Config) error {
	if cfg.Language == "" {
		return errors.ErrInvalidConfig.WithError(fmt.Errorf("language cannot be empty"))
	}
	if cfg.NodeDir == "" {
		return errors.ErrInvalidConfig.WithError(fmt.Errorf("node_dir cannot be empty"))
	}
	if cfg.V8Dir == "" {
		return errors.ErrInvalidConfig.WithError(fmt.Errorf("v8_dir cannot be empty"))
	}
	if cfg.RefsBaseURL != "" && !strings.HasPrefix(cfg.RefsBaseURL, "http://") && !strings.HasPrefix(cfg.RefsBaseURL, "https://") {
		return errors.ErrInvalidConfig.WithError(fmt.Errorf("refs_base_url must be an http(s) URL: %q", cfg.RefsBaseURL))
	}
	return nil
}

// ExpandHome replaces a leading ~ in path with home.
func ExpandHome(path, home string) string {
	if path == "~" {
		return home
	}
	if strings.HasPrefix(path, "~"+string(filepath.Separator)) || strings.HasPrefix(path, "~/") {
		return filepath.Join(home, path[2:])
	}
	return path
}

// CheckDirs verifies that both repositories exist on disk.
func (c *Config) CheckDirs() error {
	if info, err := os.Stat(c.NodeDir); err != nil || !info.IsDir() {
		return errors.ErrNodeDirMissing.WithError(err).WithContext("path", c.NodeDir)
	}
	if info, err := os.Stat(c.V8Dir); err != nil || !info.IsDir() {
		return errors.ErrV8DirMissing.WithError(err).WithContext("path", c.V8Dir)
	}
	return nil
}
