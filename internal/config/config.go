package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains file and directory locations.
type Paths struct {
	OutputDir string `toml:"output_dir"`
	LogDir    string `toml:"log_dir"`
	Database  string `toml:"database"`
	Template  string `toml:"template"`
	Icon      string `toml:"icon"`
}

// Generation controls batch size and parallelism.
type Generation struct {
	Count   int `toml:"count"`
	Size    int `toml:"size"`
	Workers int `toml:"workers"`
}

// Sticker controls where the QR lands on the template and how the result is scaled.
type Sticker struct {
	PositionX   int     `toml:"position_x"`
	PositionY   int     `toml:"position_y"`
	ScaleFactor float64 `toml:"scale_factor"`
	DPI         int     `toml:"dpi"`
}

// PDF controls the page layout of the assembled sticker document.
type PDF struct {
	PageSize string  `toml:"page_size"`
	Margin   float64 `toml:"margin"`
	Width    float64 `toml:"width"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format        string `toml:"format"`
	Level         string `toml:"level"`
	MaxSizeMB     int    `toml:"max_size_mb"`
	MaxBackups    int    `toml:"max_backups"`
	RetentionDays int    `toml:"retention_days"`
}

// Config encapsulates all configuration values for sticqr.
//
// Style is kept as a raw override map; the qrstyle package merges it over its
// own defaults and rejects unknown keys.
type Config struct {
	Paths      Paths          `toml:"paths"`
	Generation Generation     `toml:"generation"`
	Sticker    Sticker        `toml:"sticker"`
	PDF        PDF            `toml:"pdf"`
	Logging    Logging        `toml:"logging"`
	Style      map[string]any `toml:"style"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/sticqr/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("sticqr.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the output tree, the log directory, and the
// directory holding a file-backed database.
func (c *Config) EnsureDirectories() error {
	dirs := []string{c.Paths.OutputDir, c.QRDir(), c.StickerDir(), c.PDFDir(), c.Paths.LogDir}
	if DatabaseIsFile(c.Paths.Database) {
		dirs = append(dirs, filepath.Dir(c.Paths.Database))
	}
	for _, dir := range dirs {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// QRDir is where raw QR images are written.
func (c *Config) QRDir() string {
	return filepath.Join(c.Paths.OutputDir, "qrcodes")
}

// StickerDir is where composed stickers are written.
func (c *Config) StickerDir() string {
	return filepath.Join(c.Paths.OutputDir, "stickers")
}

// PDFDir is where assembled sticker documents are written.
func (c *Config) PDFDir() string {
	return filepath.Join(c.Paths.OutputDir, "pdf")
}

// DatabaseIsFile reports whether dsn names a SQLite file rather than a
// server connection string.
func DatabaseIsFile(dsn string) bool {
	lower := strings.ToLower(strings.TrimSpace(dsn))
	if lower == "" || lower == ":memory:" {
		return false
	}
	if strings.HasPrefix(lower, "file:") {
		return false
	}
	return !strings.Contains(lower, "://") && !strings.Contains(lower, "=")
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
