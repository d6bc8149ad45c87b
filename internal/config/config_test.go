package config_test

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"sticqr/internal/config"
)

func TestLoadDefaultConfigExpandsPaths(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Setenv("STICQR_DATABASE", "")

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantOutput := filepath.Join(tempHome, ".local", "share", "sticqr", "output")
	if cfg.Paths.OutputDir != wantOutput {
		t.Fatalf("unexpected output dir: got %q want %q", cfg.Paths.OutputDir, wantOutput)
	}
	wantDB := filepath.Join(tempHome, ".local", "share", "sticqr", "sticqr.db")
	if cfg.Paths.Database != wantDB {
		t.Fatalf("unexpected database: got %q want %q", cfg.Paths.Database, wantDB)
	}
	if cfg.Generation.Count != 10 || cfg.Generation.Size != 700 {
		t.Fatalf("unexpected generation defaults: %+v", cfg.Generation)
	}
	wantWorkers := min(runtime.NumCPU(), 256)
	if cfg.Generation.Workers != wantWorkers {
		t.Fatalf("expected %d workers, got %d", wantWorkers, cfg.Generation.Workers)
	}
	if cfg.Sticker.PositionX != 720 || cfg.Sticker.PositionY != 1200 {
		t.Fatalf("unexpected sticker position: %+v", cfg.Sticker)
	}
	if cfg.Sticker.ScaleFactor != 0.6 || cfg.Sticker.DPI != 300 {
		t.Fatalf("unexpected sticker scale/dpi: %+v", cfg.Sticker)
	}
	if cfg.PDF.PageSize != "A4" || cfg.PDF.Width != 190 || cfg.PDF.Margin != 10 {
		t.Fatalf("unexpected pdf defaults: %+v", cfg.PDF)
	}
	if cfg.Logging.Format != "console" || cfg.Logging.Level != "info" {
		t.Fatalf("unexpected logging defaults: %+v", cfg.Logging)
	}
	if cfg.Paths.Template != "" || cfg.Paths.Icon != "" {
		t.Fatalf("expected no template or icon by default, got %q / %q", cfg.Paths.Template, cfg.Paths.Icon)
	}
}

func TestLoadCustomConfig(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Setenv("STICQR_DATABASE", "")

	configPath := filepath.Join(tempHome, "config.toml")
	content := `
[paths]
output_dir = "~/prints"
database = "~/db/codes.db"
template = "~/assets/template.png"

[generation]
count = 4
size = 300
workers = 3

[sticker]
position_x = 10
position_y = 20
scale_factor = 0

[pdf]
page_size = "letter"

[logging]
format = "JSON"
level = "DEBUG"

[style]
corner_radius = 12
cutout_shape = "circle"
border_color = [10, 20, 30]
`
	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected config file to exist")
	}
	if resolved != configPath {
		t.Fatalf("unexpected resolved path: %q", resolved)
	}
	if cfg.Paths.OutputDir != filepath.Join(tempHome, "prints") {
		t.Fatalf("unexpected output dir: %q", cfg.Paths.OutputDir)
	}
	if cfg.Paths.Database != filepath.Join(tempHome, "db", "codes.db") {
		t.Fatalf("unexpected database: %q", cfg.Paths.Database)
	}
	if cfg.Paths.Template != filepath.Join(tempHome, "assets", "template.png") {
		t.Fatalf("unexpected template: %q", cfg.Paths.Template)
	}
	if cfg.Generation.Count != 4 || cfg.Generation.Size != 300 || cfg.Generation.Workers != 3 {
		t.Fatalf("unexpected generation: %+v", cfg.Generation)
	}
	if cfg.Sticker.ScaleFactor != 0 {
		t.Fatalf("expected scaling disabled, got %v", cfg.Sticker.ScaleFactor)
	}
	if cfg.Logging.Format != "json" || cfg.Logging.Level != "debug" {
		t.Fatalf("expected lowercased logging values, got %+v", cfg.Logging)
	}

	style, err := cfg.ResolveStyle()
	if err != nil {
		t.Fatalf("ResolveStyle: %v", err)
	}
	if style.CornerRadius != 12 {
		t.Fatalf("expected corner radius override, got %d", style.CornerRadius)
	}
	if style.CutoutShape != "circle" {
		t.Fatalf("expected circle cutout, got %q", style.CutoutShape)
	}
	if style.BorderColor.R != 10 || style.BorderColor.G != 20 || style.BorderColor.B != 30 {
		t.Fatalf("unexpected border color: %+v", style.BorderColor)
	}
}

func TestDatabaseEnvironmentOverride(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Setenv("STICQR_DATABASE", "postgres://user:pw@localhost:5432/sticqr")

	cfg, _, _, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Paths.Database != "postgres://user:pw@localhost:5432/sticqr" {
		t.Fatalf("expected env database, got %q", cfg.Paths.Database)
	}
	if config.DatabaseIsFile(cfg.Paths.Database) {
		t.Fatal("postgres URL must not be treated as a file")
	}
}

func TestDatabaseIsFile(t *testing.T) {
	cases := map[string]bool{
		"/var/lib/sticqr.db":           true,
		"codes.db":                     true,
		":memory:":                     false,
		"file::memory:?cache=shared":   false,
		"postgres://localhost/sticqr":  false,
		"host=localhost dbname=sticqr": false,
		"":                             false,
	}
	for dsn, want := range cases {
		if got := config.DatabaseIsFile(dsn); got != want {
			t.Errorf("DatabaseIsFile(%q) = %v, want %v", dsn, got, want)
		}
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"count", "[generation]\ncount = -1\n", "generation.count"},
		{"size", "[generation]\nsize = 10\n", "generation.size"},
		{"scale", "[sticker]\nscale_factor = -0.5\n", "sticker.scale_factor"},
		{"page", "[pdf]\npage_size = \"B7\"\n", "pdf.page_size"},
		{"format", "[logging]\nformat = \"xml\"\n", "logging.format"},
		{"style key", "[style]\nglow = 3\n", "glow"},
		{"style value", "[style]\ncorner_radius = -4\n", "corner_radius"},
		{"unknown field", "[paths]\nlibrary_dir = \"/tmp\"\n", "parse config"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tempHome := t.TempDir()
			t.Setenv("HOME", tempHome)
			t.Setenv("STICQR_DATABASE", "")
			path := filepath.Join(tempHome, "config.toml")
			if err := os.WriteFile(path, []byte(tc.content), 0o644); err != nil {
				t.Fatalf("write config: %v", err)
			}
			_, _, _, err := config.Load(path)
			if err == nil {
				t.Fatalf("expected error for %s", tc.name)
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected error mentioning %q, got %v", tc.want, err)
			}
		})
	}
}

func TestEnsureDirectoriesCreatesOutputTree(t *testing.T) {
	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.OutputDir = filepath.Join(base, "out")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Paths.Database = filepath.Join(base, "data", "sticqr.db")

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories: %v", err)
	}
	for _, dir := range []string{cfg.QRDir(), cfg.StickerDir(), cfg.PDFDir(), cfg.Paths.LogDir, filepath.Join(base, "data")} {
		info, err := os.Stat(dir)
		if err != nil {
			t.Fatalf("expected %s to exist: %v", dir, err)
		}
		if !info.IsDir() {
			t.Fatalf("expected %s to be a directory", dir)
		}
	}
	if filepath.Dir(cfg.QRDir()) != cfg.Paths.OutputDir {
		t.Fatalf("qr dir %q should live under output dir", cfg.QRDir())
	}
}

func TestCreateSampleRoundTrips(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Setenv("STICQR_DATABASE", "")

	path := filepath.Join(tempHome, "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	var raw map[string]any
	if err := toml.Unmarshal(data, &raw); err != nil {
		t.Fatalf("sample is not valid TOML: %v", err)
	}
	for _, section := range []string{"paths", "generation", "sticker", "pdf", "logging", "style"} {
		if _, ok := raw[section]; !ok {
			t.Fatalf("sample missing [%s] section", section)
		}
	}

	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load sample: %v", err)
	}
	if !exists {
		t.Fatal("expected sample to exist")
	}
	if cfg.Paths.Template != filepath.Join(tempHome, "sticqr", "assets", "sticQR_template.png") {
		t.Fatalf("unexpected sample template: %q", cfg.Paths.Template)
	}
}
