// Package config manages YAML-based configuration, environment overrides, CLI flags and storage roots.
package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/CageChen/filehub/internal/snapshot"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Root is a browsable storage location with an alias for display
type Root struct {
	Path   string `yaml:"path" json:"path"`
	Alias  string `yaml:"alias" json:"alias"`
	GitRef string `yaml:"git_ref,omitempty" json:"git_ref,omitempty"`
}

// LogConfig selects the log level and encoding
type LogConfig struct {
	Level  string `yaml:"level" json:"level"`
	Format string `yaml:"format" json:"format"`
}

// RecentConfig configures the recently opened files store
type RecentConfig struct {
	Path  string `yaml:"path" json:"path"`
	Limit int    `yaml:"limit" json:"limit"`
}

// Config holds all configuration options for FileHub
type Config struct {
	Roots      []Root           `yaml:"roots,omitempty" json:"roots"`
	Home       string           `yaml:"home,omitempty" json:"home"`
	Port       int              `yaml:"port" json:"port"`
	Watch      bool             `yaml:"watch" json:"watch"`
	Open       bool             `yaml:"open" json:"open"`
	Sort       snapshot.SortKey `yaml:"sort" json:"sort"`
	ShowHidden bool             `yaml:"show_hidden" json:"show_hidden"`
	Exclude    []string         `yaml:"exclude" json:"exclude"`
	Log        LogConfig        `yaml:"log" json:"log"`
	Recent     RecentConfig     `yaml:"recent" json:"recent"`
	Metrics    bool             `yaml:"metrics" json:"metrics"`

	// Internal: path to config file for saving
	configPath string
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	return &Config{
		Port:    8080,
		Watch:   true,
		Sort:    snapshot.SortByName,
		Exclude: []string{".git", "node_modules"},
		Log:     LogConfig{Level: "info", Format: "console"},
		Recent:  RecentConfig{Path: filepath.Join(GetConfigDir(), "recent.db"), Limit: 100},
		Metrics: true,
	}
}

// GetConfigDir returns the config directory path
func GetConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".config/filehub"
	}
	return filepath.Join(home, ".config", "filehub")
}

// GetConfigPath returns the full path to the config file
func GetConfigPath() string {
	return filepath.Join(GetConfigDir(), "config.yaml")
}

// Load loads configuration from the config file, the environment and command line flags
func Load() (*Config, error) {
	return LoadArgs(os.Args[1:])
}

// LoadArgs is Load with explicit command line arguments. Precedence, lowest
// first: defaults, config file, environment (including .env), flags.
func LoadArgs(args []string) (*Config, error) {
	cfg := DefaultConfig()

	fs := flag.NewFlagSet("filehub", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	path := fs.String("path", "", "Directory to browse (replaces configured roots)")
	port := fs.Int("port", 0, "HTTP server port")
	sortBy := fs.String("sort", "", "Default sort key (name/size/date/type)")
	hidden := fs.Bool("hidden", false, "Show hidden files")
	watch := fs.Bool("watch", true, "Enable directory watching")
	open := fs.Bool("open", false, "Open browser on startup")
	configFile := fs.String("config", "", "Configuration file path")
	envFile := fs.String("env", ".env", "Environment file path")
	fs.StringVar(path, "p", "", "Directory to browse (shorthand)")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	set := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })

	// Determine config file path
	var cfgPath string
	if *configFile != "" {
		cfgPath = *configFile
	} else if _, err := os.Stat(GetConfigPath()); err == nil {
		cfgPath = GetConfigPath()
	} else if _, err := os.Stat("filehub.yaml"); err == nil {
		cfgPath = "filehub.yaml"
	}

	if cfgPath != "" {
		if err := cfg.loadFromFile(cfgPath); err != nil && *configFile != "" {
			// Only return error if user explicitly specified config file
			return nil, err
		}
		cfg.configPath = cfgPath
	} else {
		cfg.configPath = GetConfigPath()
	}

	if err := godotenv.Load(*envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("loading %s: %w", *envFile, err)
	}
	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}

	// Command line flags override everything else (only if explicitly set)
	if *path != "" {
		cfg.Roots = []Root{{Path: *path}}
		cfg.Home = ""
	}
	if set["port"] {
		cfg.Port = *port
	}
	if set["sort"] {
		if err := cfg.Sort.UnmarshalText([]byte(*sortBy)); err != nil {
			return nil, err
		}
	}
	if set["hidden"] {
		cfg.ShowHidden = *hidden
	}
	if set["watch"] {
		cfg.Watch = *watch
	}
	if set["open"] {
		cfg.Open = *open
	}

	cfg.normalize()
	return cfg, nil
}

// applyEnv applies FILEHUB_* variables found through lookup.
func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup("FILEHUB_PATH"); ok && v != "" {
		c.Roots = []Root{{Path: v}}
		c.Home = ""
	}
	if v, ok := lookup("FILEHUB_PORT"); ok && v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("FILEHUB_PORT: %w", err)
		}
		c.Port = port
	}
	if v, ok := lookup("FILEHUB_SORT"); ok && v != "" {
		if err := c.Sort.UnmarshalText([]byte(v)); err != nil {
			return fmt.Errorf("FILEHUB_SORT: %w", err)
		}
	}
	boolVars := map[string]*bool{
		"FILEHUB_SHOW_HIDDEN": &c.ShowHidden,
		"FILEHUB_WATCH":       &c.Watch,
		"FILEHUB_METRICS":     &c.Metrics,
	}
	for name, dst := range boolVars {
		if v, ok := lookup(name); ok && v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("%s: %w", name, err)
			}
			*dst = b
		}
	}
	if v, ok := lookup("FILEHUB_LOG_LEVEL"); ok && v != "" {
		c.Log.Level = v
	}
	if v, ok := lookup("FILEHUB_LOG_FORMAT"); ok && v != "" {
		c.Log.Format = v
	}
	if v, ok := lookup("FILEHUB_RECENT_DB"); ok && v != "" {
		c.Recent.Path = v
	}
	return nil
}

// normalize resolves root paths, fills in aliases and picks a home root
func (c *Config) normalize() {
	if len(c.Roots) == 0 {
		home, err := os.UserHomeDir()
		if err != nil {
			home = "."
		}
		c.Roots = []Root{{Path: home, Alias: "internal"}}
	}

	seen := make(map[string]int)
	for i := range c.Roots {
		if absPath, err := filepath.Abs(c.Roots[i].Path); err == nil {
			c.Roots[i].Path = absPath
		}
		if c.Roots[i].Alias == "" {
			c.Roots[i].Alias = defaultAlias(c.Roots[i])
		}
		// Aliases address roots in virtual paths and must be unique
		alias := c.Roots[i].Alias
		if n := seen[alias]; n > 0 {
			c.Roots[i].Alias = fmt.Sprintf("%s-%d", alias, n+1)
		}
		seen[alias]++
	}

	if _, _, ok := c.RootByAlias(c.Home); !ok {
		c.Home = c.Roots[0].Alias
	}
}

func defaultAlias(r Root) string {
	alias := filepath.Base(r.Path)
	if alias == string(filepath.Separator) || alias == "." {
		alias = "root"
	}
	if r.GitRef != "" {
		alias += "@" + r.GitRef
	}
	return strings.ReplaceAll(alias, "/", "_")
}

func (c *Config) loadFromFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, c)
}

// Save saves the current configuration to the config file
func (c *Config) Save() error {
	if err := os.MkdirAll(filepath.Dir(c.configPath), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(c.configPath, data, 0o644)
}

// AddRoot adds a new root with the given path, alias and git ref
func (c *Config) AddRoot(path, alias, gitRef string) (Root, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return Root{}, err
	}

	for _, r := range c.Roots {
		if r.Path == absPath && r.GitRef == gitRef {
			return r, nil // Already exists
		}
	}
	root := Root{Path: absPath, Alias: alias, GitRef: gitRef}
	if root.Alias == "" {
		root.Alias = defaultAlias(root)
	}
	if _, _, taken := c.RootByAlias(root.Alias); taken {
		return Root{}, fmt.Errorf("alias %q already in use", root.Alias)
	}
	c.Roots = append(c.Roots, root)
	return root, nil
}

// RemoveRootByIndex removes a root by its index
func (c *Config) RemoveRootByIndex(index int) {
	if index < 0 || index >= len(c.Roots) {
		return
	}
	c.Roots = append(c.Roots[:index], c.Roots[index+1:]...)
}

// RootByAlias looks up a root by alias
func (c *Config) RootByAlias(alias string) (Root, int, bool) {
	for i, r := range c.Roots {
		if r.Alias == alias {
			return r, i, true
		}
	}
	return Root{}, -1, false
}

// GetConfigFilePath returns the path to the config file
func (c *Config) GetConfigFilePath() string {
	return c.configPath
}

// IsExcluded checks if a path's base name matches an exclude pattern
func (c *Config) IsExcluded(path string) bool {
	base := filepath.Base(path)
	for _, exclude := range c.Exclude {
		if matched, _ := filepath.Match(exclude, base); matched {
			return true
		}
	}
	return false
}
