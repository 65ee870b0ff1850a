package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/cbroglie/mustache"
	"github.com/dustin/go-humanize"
)

const (
	DefaultServerURL   = "http://localhost:5000"
	DefaultTimeout     = 2 * time.Minute
	DefaultDeckName    = "flashcards.pptx"
	DefaultMaxUploadMB = 50
)

// DefaultAccept is the file type filter applied when choosing a document
var DefaultAccept = []string{".pdf"}

type Config struct {
	ServerURL      string
	Timeout        time.Duration
	OutputDir      string   // Where exported decks are saved (default: cwd)
	DeckName       string   // File name for exported decks
	Accept         []string // Extensions offered for upload
	MaxUploadBytes int64
	LogPath        string
	OpenCommand    string // Viewer for saved decks, {path} is the deck. Empty uses the OS default.
	PromptTemplate string // Mustache template for the upload instruction, empty to send none
}

type tomlConfig struct {
	ServerURL   string   `toml:"server_url"`
	Timeout     string   `toml:"timeout"`
	OutputDir   string   `toml:"output_dir"`
	DeckName    string   `toml:"deck_name"`
	Accept      []string `toml:"accept"`
	MaxUploadMB int64    `toml:"max_upload_mb"`
	LogPath     string   `toml:"log_path"`
	OpenCommand string   `toml:"open_command"`
}

// Dir returns ~/.config/storycards
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "storycards"), nil
}

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		ServerURL:      DefaultServerURL,
		Timeout:        DefaultTimeout,
		DeckName:       DefaultDeckName,
		Accept:         append([]string(nil), DefaultAccept...),
		MaxUploadBytes: DefaultMaxUploadMB * 1024 * 1024,
	}
}

// Load reads config from ~/.config/storycards/
func Load() (*Config, error) {
	dir, err := Dir()
	if err != nil {
		return Default(), nil // Use defaults
	}
	return LoadFrom(dir)
}

// LoadFrom reads config.toml and prompt.txt from dir. Missing files leave
// defaults in place; a malformed config.toml is an error.
func LoadFrom(dir string) (*Config, error) {
	cfg := Default()

	tomlPath := filepath.Join(dir, "config.toml")
	if _, err := os.Stat(tomlPath); err == nil {
		var tc tomlConfig
		if _, err := toml.DecodeFile(tomlPath, &tc); err != nil {
			return cfg, fmt.Errorf("failed to parse %s: %w", tomlPath, err)
		}
		if err := cfg.apply(tc); err != nil {
			return cfg, fmt.Errorf("invalid %s: %w", tomlPath, err)
		}
	}

	// If a prompt template exists, send it with every upload
	if data, err := os.ReadFile(filepath.Join(dir, "prompt.txt")); err == nil {
		cfg.PromptTemplate = strings.TrimSpace(string(data))
	}

	return cfg, nil
}

func (cfg *Config) apply(tc tomlConfig) error {
	if tc.ServerURL != "" {
		cfg.ServerURL = tc.ServerURL
	}
	if tc.Timeout != "" {
		d, err := time.ParseDuration(tc.Timeout)
		if err != nil {
			return fmt.Errorf("timeout: %w", err)
		}
		cfg.Timeout = d
	}
	if tc.OutputDir != "" {
		cfg.OutputDir = ExpandHome(tc.OutputDir)
	}
	if tc.DeckName != "" {
		cfg.DeckName = tc.DeckName
	}
	if len(tc.Accept) > 0 {
		cfg.Accept = cfg.Accept[:0]
		for _, ext := range tc.Accept {
			ext = strings.ToLower(strings.TrimSpace(ext))
			if !strings.HasPrefix(ext, ".") {
				ext = "." + ext
			}
			cfg.Accept = append(cfg.Accept, ext)
		}
	}
	if tc.MaxUploadMB > 0 {
		cfg.MaxUploadBytes = tc.MaxUploadMB * 1024 * 1024
	}
	if tc.LogPath != "" {
		cfg.LogPath = ExpandHome(tc.LogPath)
	}
	if tc.OpenCommand != "" {
		cfg.OpenCommand = tc.OpenCommand
	}
	return nil
}

// RenderPrompt renders PromptTemplate for a document. An empty template
// renders to an empty string, meaning no instruction is sent.
func (cfg *Config) RenderPrompt(fileName string, size int64) (string, error) {
	if cfg.PromptTemplate == "" {
		return "", nil
	}

	data := map[string]interface{}{
		"file_name": fileName,
		"stem":      strings.TrimSuffix(fileName, filepath.Ext(fileName)),
		"size":      humanize.Bytes(uint64(size)),
		"has_size":  size > 0,
	}

	out, err := mustache.Render(cfg.PromptTemplate, data)
	if err != nil {
		return "", fmt.Errorf("render prompt template: %w", err)
	}
	return strings.TrimSpace(out), nil
}

// ExpandHome replaces a leading ~/ with the home directory
func ExpandHome(path string) string {
	if !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[2:])
}
