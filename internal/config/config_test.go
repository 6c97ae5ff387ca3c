package config

import (
	stderrors "errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/legodom/lego/internal/errors"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestNew(t *testing.T) {
	cfg := New()

	if cfg.Server.Addr != DefaultAddr {
		t.Errorf("Server.Addr = %q, want %q", cfg.Server.Addr, DefaultAddr)
	}
	if cfg.Components != DefaultComponents || cfg.Page != DefaultPage {
		t.Errorf("paths = %q, %q", cfg.Components, cfg.Page)
	}
	if cfg.Monitoring.SlowRender != 16*time.Millisecond {
		t.Errorf("SlowRender = %v", cfg.Monitoring.SlowRender)
	}
}

func TestLoad_Formats(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
	}{
		{"yaml", "lego.yaml", `
name: todo
syntax: mustache
components: ui
styles:
  base: css/base.css
routes:
  - path: /users/:id
    component: user-page
    require: [user]
loader:
  url: https://cdn.example.com/c/
  timeout: 3s
server:
  addr: ":8080"
  live: false
monitoring:
  slow_render: 20ms
`},
		{"json", "lego.json", `{
  "name": "todo",
  "syntax": "mustache",
  "components": "ui",
  "styles": {"base": "css/base.css"},
  "routes": [{"path": "/users/:id", "component": "user-page", "require": ["user"]}],
  "loader": {"url": "https://cdn.example.com/c/", "timeout": "3s"},
  "server": {"addr": ":8080", "live": false},
  "monitoring": {"slow_render": "20ms"}
}`},
		{"toml", "lego.toml", `
name = "todo"
syntax = "mustache"
components = "ui"

[styles]
base = "css/base.css"

[[routes]]
path = "/users/:id"
component = "user-page"
require = ["user"]

[loader]
url = "https://cdn.example.com/c/"
timeout = "3s"

[server]
addr = ":8080"
live = false

[monitoring]
slow_render = "20ms"
`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			writeFile(t, dir, tt.file, tt.content)

			cfg, err := Load(dir)
			if err != nil {
				t.Fatalf("Load() error: %v", err)
			}
			if cfg.Name != "todo" || cfg.Syntax != "mustache" {
				t.Errorf("name/syntax = %q/%q", cfg.Name, cfg.Syntax)
			}
			if cfg.ComponentsPath() != filepath.Join(dir, "ui") {
				t.Errorf("ComponentsPath() = %q", cfg.ComponentsPath())
			}
			if cfg.PagePath() != filepath.Join(dir, DefaultPage) {
				t.Errorf("PagePath() = %q", cfg.PagePath())
			}
			if got := cfg.StylePaths()["base"]; got != filepath.Join(dir, "css/base.css") {
				t.Errorf("StylePaths()[base] = %q", got)
			}
			if len(cfg.Routes) != 1 || cfg.Routes[0].Component != "user-page" || len(cfg.Routes[0].Require) != 1 {
				t.Errorf("Routes = %+v", cfg.Routes)
			}
			if cfg.Loader.Timeout != 3*time.Second || cfg.Loader.MaxSize != 1<<20 {
				t.Errorf("Loader = %+v", cfg.Loader)
			}
			if cfg.Server.Addr != ":8080" || cfg.Server.Live || !cfg.Server.Metrics {
				t.Errorf("Server = %+v", cfg.Server)
			}
			if cfg.Monitoring.SlowRender != 20*time.Millisecond {
				t.Errorf("SlowRender = %v", cfg.Monitoring.SlowRender)
			}
		})
	}
}

func TestLoad_Missing(t *testing.T) {
	_, err := Load(t.TempDir())
	if !stderrors.Is(err, errors.New("L060")) {
		t.Fatalf("Load() error = %v, want L060", err)
	}
}

func TestLoad_Malformed(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "lego.json", `{"name": `)
	_, err := Load(dir)
	if !stderrors.Is(err, errors.New("L061")) {
		t.Fatalf("Load() error = %v, want L061", err)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "lego.yaml", "server:\n  addr: \":8080\"\n")
	t.Setenv("LEGO_SERVER_ADDR", ":9999")
	t.Setenv("LEGO_LOADER_URL", "https://env.example.com/")

	cfg, err := Load(dir)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Server.Addr != ":9999" {
		t.Errorf("Server.Addr = %q, want env override", cfg.Server.Addr)
	}
	if cfg.Loader.URL != "https://env.example.com/" {
		t.Errorf("Loader.URL = %q", cfg.Loader.URL)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		code   string
	}{
		{"bad syntax", func(c *Config) { c.Syntax = "handlebars" }, "L062"},
		{"two loaders", func(c *Config) {
			c.Loader.URL = "https://x"
			c.Loader.S3.Bucket = "b"
		}, "L061"},
		{"negative size", func(c *Config) { c.Loader.MaxSize = -1 }, "L061"},
		{"relative route", func(c *Config) { c.Routes = []RouteConfig{{Path: "users", Component: "a-b"}} }, ""},
		{"route without component", func(c *Config) { c.Routes = []RouteConfig{{Path: "/"}} }, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := New()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("Validate() = nil")
			}
			if tt.code != "" && !stderrors.Is(err, errors.New(tt.code)) {
				t.Errorf("Validate() = %v, want %s", err, tt.code)
			}
		})
	}
	if err := New().Validate(); err != nil {
		t.Errorf("defaults invalid: %v", err)
	}
}

func TestLoadOrDefaults(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("LEGO_PAGE", "app.html")

	cfg, err := LoadOrDefaults(dir)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.PagePath() != filepath.Join(dir, "app.html") {
		t.Errorf("PagePath() = %q", cfg.PagePath())
	}
}

func TestFindProjectRoot(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "lego.yml", "name: x\n")
	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}

	got, err := FindProjectRoot(nested)
	if err != nil {
		t.Fatal(err)
	}
	want, _ := filepath.Abs(root)
	if got != want {
		t.Errorf("FindProjectRoot() = %q, want %q", got, want)
	}
}
