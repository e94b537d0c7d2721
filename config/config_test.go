package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap/zapcore"

	osrerrors "github.com/wippyai/osr-runtime/errors"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "osrhost.toml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	want := Default()
	if cfg.Surface != want.Surface || cfg.Output != want.Output || cfg.Logging != want.Logging {
		t.Errorf("cfg = %+v, want %+v", cfg, want)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Surface.Width != 640 {
		t.Errorf("width = %d, want default 640", cfg.Surface.Width)
	}
}

func TestLoad_File(t *testing.T) {
	path := writeConfig(t, `
[renderer]
path = "renderer.wasm"
memory_limit_pages = 256

[surface]
url = "https://example.com"
width = 800
height = 600
scale = 2.0
transparent = true

[output]
dir = "frames"
format = "bmp"
frames = 5

[logging]
level = "debug"
development = true
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	tests := []struct {
		name string
		got  any
		want any
	}{
		{"renderer path", cfg.Renderer.Path, "renderer.wasm"},
		{"memory limit", cfg.Renderer.MemoryLimitPages, uint32(256)},
		{"url", cfg.Surface.URL, "https://example.com"},
		{"width", cfg.Surface.Width, int32(800)},
		{"height", cfg.Surface.Height, int32(600)},
		{"scale", cfg.Surface.Scale, 2.0},
		{"transparent", cfg.Surface.Transparent, true},
		{"frame rate kept", cfg.Surface.FrameRate, int32(30)},
		{"dir", cfg.Output.Dir, "frames"},
		{"format", cfg.Output.Format, FormatBMP},
		{"frames", cfg.Output.Frames, 5},
		{"level", cfg.Logging.Level, "debug"},
		{"development", cfg.Logging.Development, true},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s = %v, want %v", tt.name, tt.got, tt.want)
		}
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "[surface]\nwidth = 800\n")
	t.Setenv("OSR_SURFACE_WIDTH", "1024")
	t.Setenv("OSR_SURFACE_FRAME_RATE", "60")
	t.Setenv("OSR_RENDERER_MEMORY_LIMIT_PAGES", "64")
	t.Setenv("OSR_LOG_LEVEL", "warn")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Surface.Width != 1024 {
		t.Errorf("width = %d, want 1024", cfg.Surface.Width)
	}
	if cfg.Surface.FrameRate != 60 {
		t.Errorf("frame rate = %d, want 60", cfg.Surface.FrameRate)
	}
	if cfg.Renderer.MemoryLimitPages != 64 {
		t.Errorf("memory limit = %d, want 64", cfg.Renderer.MemoryLimitPages)
	}
	if lvl, _ := cfg.Logging.ZapLevel(); lvl != zapcore.WarnLevel {
		t.Errorf("level = %v, want warn", lvl)
	}
}

func TestLoad_BadEnv(t *testing.T) {
	t.Setenv("OSR_SURFACE_HEIGHT", "tall")
	_, err := Load("")
	var e *osrerrors.Error
	if !errors.As(err, &e) || e.Phase != osrerrors.PhaseConfig {
		t.Fatalf("err = %v, want config error", err)
	}
}

func TestLoad_UnknownKey(t *testing.T) {
	path := writeConfig(t, "[surface]\ndepth = 24\n")
	_, err := Load(path)
	var e *osrerrors.Error
	if !errors.As(err, &e) || e.Kind != osrerrors.KindInvalidInput {
		t.Fatalf("err = %v, want invalid input", err)
	}
	if len(e.Path) != 1 || e.Path[0] != "surface.depth" {
		t.Errorf("path = %v, want [surface.depth]", e.Path)
	}
}

func TestLoad_MalformedFile(t *testing.T) {
	path := writeConfig(t, "[surface\nwidth = ")
	if _, err := Load(path); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		path   string
	}{
		{"zero width", func(c *Config) { c.Surface.Width = 0 }, "surface.width"},
		{"negative height", func(c *Config) { c.Surface.Height = -1 }, "surface.height"},
		{"zero scale", func(c *Config) { c.Surface.Scale = 0 }, "surface.scale"},
		{"negative frame rate", func(c *Config) { c.Surface.FrameRate = -1 }, "surface.frame_rate"},
		{"negative frames", func(c *Config) { c.Output.Frames = -1 }, "output.frames"},
		{"unknown format", func(c *Config) { c.Output.Format = "gif" }, "output.format"},
		{"bad level", func(c *Config) { c.Logging.Level = "loud" }, "logging.level"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			var e *osrerrors.Error
			if !errors.As(err, &e) {
				t.Fatalf("err = %v, want *errors.Error", err)
			}
			if got := e.Path[0] + "." + e.Path[1]; got != tt.path {
				t.Errorf("path = %s, want %s", got, tt.path)
			}
		})
	}

	if err := Default().Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
}

func TestLogConfig_NewLogger(t *testing.T) {
	for _, dev := range []bool{false, true} {
		logger, err := LogConfig{Level: "debug", Development: dev}.NewLogger()
		if err != nil {
			t.Fatalf("dev=%v: %v", dev, err)
		}
		if !logger.Core().Enabled(zapcore.DebugLevel) {
			t.Errorf("dev=%v: debug not enabled", dev)
		}
	}

	if _, err := (LogConfig{Level: "loud"}).NewLogger(); err == nil {
		t.Error("expected error for unknown level")
	}
}

func TestLoad_YAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "osrhost.yaml")
	body := "surface:\n  width: 320\n  transparent: true\noutput:\n  format: bmp\n"
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Surface.Width != 320 || !cfg.Surface.Transparent || cfg.Output.Format != FormatBMP {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.Surface.Height != 480 {
		t.Errorf("height = %d, want default 480", cfg.Surface.Height)
	}
}

func TestLoad_YAMLUnknownKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "osrhost.yml")
	if err := os.WriteFile(path, []byte("surface:\n  depth: 24\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for unknown key")
	}
}

func TestLoad_EmptyYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "osrhost.yaml")
	if err := os.WriteFile(path, nil, 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err != nil {
		t.Fatalf("Load: %v", err)
	}
}
