package testsupport

import (
	"path/filepath"
	"testing"

	"sticqr/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.OutputDir = filepath.Join(base, "output")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Paths.Database = filepath.Join(base, "data", "sticqr.db")
	cfgVal.Generation.Count = 3
	cfgVal.Generation.Size = 80
	cfgVal.Generation.Workers = 2
	cfgVal.Sticker.PositionX = 100
	cfgVal.Sticker.PositionY = 100
	cfgVal.Sticker.ScaleFactor = 0.5

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithTemplate writes a solid w×h template image and points the config at it.
func WithTemplate(w, h int) ConfigOption {
	return func(b *configBuilder) {
		path := filepath.Join(b.baseDir, "assets", "template.png")
		WritePNG(b.t, path, w, h, TemplateColor)
		b.cfg.Paths.Template = path
	}
}

// WithIcon writes a small icon image and points the config at it.
func WithIcon() ConfigOption {
	return func(b *configBuilder) {
		path := filepath.Join(b.baseDir, "assets", "icon.png")
		WritePNG(b.t, path, 16, 16, IconColor)
		b.cfg.Paths.Icon = path
	}
}

// WithStyle sets a style override.
func WithStyle(key string, value any) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Style[key] = value
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.OutputDir)
}
