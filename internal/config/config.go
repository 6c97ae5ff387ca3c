package config

import (
	stderrors "errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/legodom/lego/internal/errors"
	"github.com/legodom/lego/pkg/binding"
)

const (
	// ConfigName is the base name of the configuration file. The extension
	// selects the format: .yaml, .yml, .json or .toml.
	ConfigName = "lego"

	// EnvPrefix prefixes environment overrides: LEGO_SERVER_ADDR.
	EnvPrefix = "LEGO"

	// DefaultAddr is the default serve address.
	DefaultAddr = "localhost:3000"

	// DefaultComponents is the default component directory.
	DefaultComponents = "components"

	// DefaultPage is the default page document.
	DefaultPage = "index.html"
)

// Extensions lists the recognised configuration file extensions in lookup
// order.
var Extensions = []string{".yaml", ".yml", ".json", ".toml"}

// Config is the project configuration.
type Config struct {
	// Name is the project name.
	Name string `mapstructure:"name"`

	// Components is the directory of .lego files.
	Components string `mapstructure:"components"`

	// Page is the HTML document components are mounted into.
	Page string `mapstructure:"page"`

	// Syntax is the interpolation syntax: "brackets" or "mustache".
	Syntax string `mapstructure:"syntax"`

	// Outlet is the selector of the default router target.
	Outlet string `mapstructure:"outlet"`

	// Styles maps style set names to CSS files.
	Styles map[string]string `mapstructure:"styles"`

	// Routes is the route table, matched in order.
	Routes []RouteConfig `mapstructure:"routes"`

	Loader     LoaderConfig     `mapstructure:"loader"`
	Server     ServerConfig     `mapstructure:"server"`
	Monitoring MonitoringConfig `mapstructure:"monitoring"`

	// configPath stores the path where the config was loaded from.
	configPath string
}

// RouteConfig is one route.
type RouteConfig struct {
	// Path is the route pattern, such as /users/:id.
	Path string `mapstructure:"path"`

	// Component is the tag mounted into the targets.
	Component string `mapstructure:"component"`

	// Require lists global state keys that must be set for the route to be
	// entered.
	Require []string `mapstructure:"require"`
}

// LoaderConfig selects where unknown components are fetched from. At most
// one of URL and S3.Bucket may be set.
type LoaderConfig struct {
	// URL is the base URL of an HTTP component server.
	URL string `mapstructure:"url"`

	S3 S3Config `mapstructure:"s3"`

	// Timeout bounds a single load.
	Timeout time.Duration `mapstructure:"timeout"`

	// MaxSize bounds a component file in bytes.
	MaxSize int64 `mapstructure:"max_size"`
}

// S3Config locates components in an S3 bucket.
type S3Config struct {
	Bucket string `mapstructure:"bucket"`
	Prefix string `mapstructure:"prefix"`
	Region string `mapstructure:"region"`
}

// ServerConfig configures lego serve.
type ServerConfig struct {
	Addr string `mapstructure:"addr"`

	// Metrics exposes Prometheus metrics at /metrics and render statistics
	// at /debug/lego.
	Metrics bool `mapstructure:"metrics"`

	// Live serves the page as a live view over WebSocket.
	Live bool `mapstructure:"live"`
}

// MonitoringConfig configures render monitoring.
type MonitoringConfig struct {
	SlowRender time.Duration `mapstructure:"slow_render"`

	// Log reports slow renders and caught errors to the log.
	Log bool `mapstructure:"log"`

	// Tracing names the OpenTelemetry tracer. Empty disables tracing.
	Tracing string `mapstructure:"tracing"`
}

// New creates a Config with default values.
func New() *Config {
	return &Config{
		Components: DefaultComponents,
		Page:       DefaultPage,
		Syntax:     binding.SyntaxBrackets,
		Loader: LoaderConfig{
			Timeout: 10 * time.Second,
			MaxSize: 1 << 20,
		},
		Server: ServerConfig{
			Addr:    DefaultAddr,
			Metrics: true,
			Live:    true,
		},
		Monitoring: MonitoringConfig{
			SlowRender: 16 * time.Millisecond,
		},
	}
}

// newViper returns a viper instance carrying the defaults, so every key
// can be overridden from the environment.
func newViper() *viper.Viper {
	d := New()
	v := viper.New()
	v.SetDefault("name", d.Name)
	v.SetDefault("components", d.Components)
	v.SetDefault("page", d.Page)
	v.SetDefault("syntax", d.Syntax)
	v.SetDefault("outlet", d.Outlet)
	v.SetDefault("loader.url", d.Loader.URL)
	v.SetDefault("loader.s3.bucket", d.Loader.S3.Bucket)
	v.SetDefault("loader.s3.prefix", d.Loader.S3.Prefix)
	v.SetDefault("loader.s3.region", d.Loader.S3.Region)
	v.SetDefault("loader.timeout", d.Loader.Timeout)
	v.SetDefault("loader.max_size", d.Loader.MaxSize)
	v.SetDefault("server.addr", d.Server.Addr)
	v.SetDefault("server.metrics", d.Server.Metrics)
	v.SetDefault("server.live", d.Server.Live)
	v.SetDefault("monitoring.slow_render", d.Monitoring.SlowRender)
	v.SetDefault("monitoring.log", d.Monitoring.Log)
	v.SetDefault("monitoring.tracing", d.Monitoring.Tracing)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads lego.yaml, lego.yml, lego.json or lego.toml from dir.
func Load(dir string) (*Config, error) {
	path, ok := find(dir)
	if !ok {
		return nil, errors.New("L060").
			WithDetail("No lego.yaml, lego.json or lego.toml found in " + dir).
			WithSuggestion("Create lego.yaml or pass the page and components directory as flags")
	}
	return LoadFile(path)
}

// LoadFile reads configuration from the specified file path.
func LoadFile(path string) (*Config, error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New("L060").WithDetail("No configuration file at " + path)
		}
		return nil, errors.New("L061").Wrap(err)
	}
	v := newViper()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, errors.New("L061").
			WithDetail("Failed to parse " + filepath.Base(path) + ": " + err.Error())
	}
	return decode(v, path)
}

// Defaults returns the configuration built from defaults and the
// environment alone, for projects without a configuration file. Relative
// paths resolve against dir.
func Defaults(dir string) (*Config, error) {
	return decode(newViper(), filepath.Join(dir, ConfigName+".yaml"))
}

// LoadOrDefaults loads the configuration in dir, falling back to Defaults
// when there is none.
func LoadOrDefaults(dir string) (*Config, error) {
	cfg, err := Load(dir)
	if stderrors.Is(err, errors.New("L060")) {
		return Defaults(dir)
	}
	return cfg, err
}

func decode(v *viper.Viper, path string) (*Config, error) {
	cfg := New()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errors.New("L061").Wrap(err)
	}
	cfg.configPath = path
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if _, err := binding.ParseSyntax(c.Syntax); err != nil {
		return errors.New("L062").
			WithDetail(`Got syntax "` + c.Syntax + `".`).
			WithSuggestion(`Use syntax: brackets or syntax: mustache`)
	}
	if c.Loader.URL != "" && c.Loader.S3.Bucket != "" {
		return errors.New("L061").
			WithDetail("loader.url and loader.s3.bucket are both set").
			WithSuggestion("Keep one component source")
	}
	if c.Loader.MaxSize < 0 {
		return errors.New("L061").WithDetail("loader.max_size must not be negative")
	}
	for i, r := range c.Routes {
		if !strings.HasPrefix(r.Path, "/") {
			return errors.Newf(errors.CategoryConfig, "routes[%d]: path %q must start with /", i, r.Path)
		}
		if r.Component == "" {
			return errors.Newf(errors.CategoryConfig, "routes[%d]: component is required", i)
		}
	}
	return nil
}

// Path returns the path where the config was loaded from.
func (c *Config) Path() string {
	return c.configPath
}

// Dir returns the directory containing the config file.
func (c *Config) Dir() string {
	if c.configPath == "" {
		return ""
	}
	return filepath.Dir(c.configPath)
}

// Resolve returns path relative to the config directory, or path itself
// when it is absolute.
func (c *Config) Resolve(path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(c.Dir(), path)
}

// ComponentsPath returns the absolute path to the components directory.
func (c *Config) ComponentsPath() string { return c.Resolve(c.Components) }

// PagePath returns the absolute path to the page document.
func (c *Config) PagePath() string { return c.Resolve(c.Page) }

// StylePaths returns the style set files keyed by set name.
func (c *Config) StylePaths() map[string]string {
	out := make(map[string]string, len(c.Styles))
	for name, p := range c.Styles {
		out[name] = c.Resolve(p)
	}
	return out
}

// Exists checks if a config file exists in the given directory.
func Exists(dir string) bool {
	_, ok := find(dir)
	return ok
}

func find(dir string) (string, bool) {
	for _, ext := range Extensions {
		p := filepath.Join(dir, ConfigName+ext)
		if _, err := os.Stat(p); err == nil {
			return p, true
		}
	}
	return "", false
}

// FindProjectRoot walks up directories to find the project root.
// Returns the directory containing the config file, or an error if not found.
func FindProjectRoot(startDir string) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}

	for {
		if Exists(dir) {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", errors.New("L060").
				WithDetail("No lego.yaml found in " + startDir + " or any parent directory")
		}
		dir = parent
	}
}
