package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Prefix of environment variables that override file settings.
const envPrefix = "COVERWALL_"

// Hard limits enforced by Validate.
const (
	maxRequestsCeiling = 6
	maxChoicesCeiling  = 10
	minArtworkSize     = 100
	maxArtworkSize     = 3000
)

var validProviders = []string{"itunes", "deezer", "musicbrainz"}

// RegionPlan names the primary and secondary storefronts for one script.
type RegionPlan struct {
	Primary   string `yaml:"primary"`
	Secondary string `yaml:"secondary"`
}

// Regions holds the storefront plans for Latin and Han queries.
type Regions struct {
	Latin RegionPlan `yaml:"latin"`
	Han   RegionPlan `yaml:"han"`
}

// Config contains the program configuration
type Config struct {
	Verbose     bool     `yaml:"verbose"`
	LogFile     string   `yaml:"log_file,omitempty"`
	Providers   []string `yaml:"providers"`
	CatalogPath string   `yaml:"catalog_path,omitempty"`

	MaxQueryLength    int           `yaml:"max_query_length"`
	MaxRequests       int           `yaml:"max_requests"`
	ResultLimit       int           `yaml:"result_limit"`
	RequestTimeout    time.Duration `yaml:"request_timeout"`
	RequestsPerMinute int           `yaml:"requests_per_minute"`
	CacheTTL          time.Duration `yaml:"cache_ttl"`

	ArtworkSize      int     `yaml:"artwork_size"`
	AutoSelectMargin int     `yaml:"auto_select_margin"`
	MaxChoices       int     `yaml:"max_choices"`
	Regions          Regions `yaml:"regions"`

	ListenAddr       string        `yaml:"listen_addr"`
	OutputDir        string        `yaml:"output_dir"`
	SessionRetention time.Duration `yaml:"session_retention"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() Config {
	return Config{
		Providers:         []string{"itunes", "deezer"},
		MaxQueryLength:    100,
		MaxRequests:       6,
		ResultLimit:       25,
		RequestTimeout:    10 * time.Second,
		RequestsPerMinute: 20,
		CacheTTL:          5 * time.Minute,
		ArtworkSize:       1000,
		MaxChoices:        5,
		Regions: Regions{
			Latin: RegionPlan{Primary: "us", Secondary: "gb"},
			Han:   RegionPlan{Primary: "hk", Secondary: "tw"},
		},
		ListenAddr:       "127.0.0.1:8080",
		OutputDir:        filepath.Join(homeDir(), "Pictures", "coverwall"),
		SessionRetention: time.Hour,
	}
}

// LoadConfigFile loads configuration from a YAML file.
// If path is empty, searches standard locations. Returns defaults if no file found.
func LoadConfigFile(path string) (Config, error) {
	cfg := DefaultConfig()

	if path == "" {
		path = FindConfigFile()
		if path == "" {
			return cfg, nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	cfg.expandPaths()

	return cfg, nil
}

// Load reads the config file, then applies variables from envFile (when it
// exists) and the process environment on top.
func Load(path, envFile string) (Config, error) {
	cfg, err := LoadConfigFile(path)
	if err != nil {
		return cfg, err
	}

	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return cfg, fmt.Errorf("failed to load env file %s: %w", envFile, err)
		}
	}

	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return cfg, err
	}
	cfg.expandPaths()

	return cfg, nil
}

// ApplyEnv overrides settings from COVERWALL_* variables returned by lookup.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	get := func(name string) (string, bool) {
		v, ok := lookup(envPrefix + name)
		return strings.TrimSpace(v), ok && strings.TrimSpace(v) != ""
	}

	if v, ok := get("PROVIDERS"); ok {
		c.Providers = splitList(v)
	}
	for name, dst := range map[string]*string{
		"LOG_FILE":        &c.LogFile,
		"CATALOG_PATH":    &c.CatalogPath,
		"LISTEN_ADDR":     &c.ListenAddr,
		"OUTPUT_DIR":      &c.OutputDir,
		"LATIN_PRIMARY":   &c.Regions.Latin.Primary,
		"LATIN_SECONDARY": &c.Regions.Latin.Secondary,
		"HAN_PRIMARY":     &c.Regions.Han.Primary,
		"HAN_SECONDARY":   &c.Regions.Han.Secondary,
	} {
		if v, ok := get(name); ok {
			*dst = v
		}
	}

	if v, ok := get("VERBOSE"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid %sVERBOSE %q: %w", envPrefix, v, err)
		}
		c.Verbose = b
	}

	for name, dst := range map[string]*int{
		"MAX_QUERY_LENGTH":    &c.MaxQueryLength,
		"MAX_REQUESTS":        &c.MaxRequests,
		"RESULT_LIMIT":        &c.ResultLimit,
		"REQUESTS_PER_MINUTE": &c.RequestsPerMinute,
		"ARTWORK_SIZE":        &c.ArtworkSize,
		"AUTO_SELECT_MARGIN":  &c.AutoSelectMargin,
		"MAX_CHOICES":         &c.MaxChoices,
	} {
		if v, ok := get(name); ok {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("invalid %s%s %q: %w", envPrefix, name, v, err)
			}
			*dst = n
		}
	}

	for name, dst := range map[string]*time.Duration{
		"REQUEST_TIMEOUT":   &c.RequestTimeout,
		"CACHE_TTL":         &c.CacheTTL,
		"SESSION_RETENTION": &c.SessionRetention,
	} {
		if v, ok := get(name); ok {
			d, err := time.ParseDuration(v)
			if err != nil {
				return fmt.Errorf("invalid %s%s %q: %w", envPrefix, name, v, err)
			}
			*dst = d
		}
	}

	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.ToLower(strings.TrimSpace(part)); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func (c *Config) expandPaths() {
	c.OutputDir = ExpandHome(c.OutputDir)
	c.CatalogPath = ExpandHome(c.CatalogPath)
	c.LogFile = ExpandHome(c.LogFile)
}

// ExpandHome replaces a leading ~ with the user's home directory.
func ExpandHome(path string) string {
	if strings.HasPrefix(path, "~/") {
		return filepath.Join(homeDir(), path[2:])
	}
	return path
}

// FindConfigFile searches for a config file in standard locations
func FindConfigFile() string {
	home := homeDir()
	locations := []string{
		"./coverwall.yaml",
		"./coverwall.yml",
		filepath.Join(home, ".config", "coverwall", "config.yaml"),
		filepath.Join(home, ".config", "coverwall", "config.yml"),
		filepath.Join(home, ".coverwall.yaml"),
		filepath.Join(home, ".coverwall.yml"),
	}

	for _, path := range locations {
		if path == "" {
			continue
		}
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// SaveConfigFile saves the current configuration to a YAML file
func SaveConfigFile(cfg Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// GetDefaultConfigPath returns the default config file path
func GetDefaultConfigPath() string {
	return filepath.Join(homeDir(), ".config", "coverwall", "config.yaml")
}

func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return os.Getenv("HOME")
	}
	return home
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if len(c.Providers) == 0 {
		return fmt.Errorf("at least one provider is required, valid providers: %s", strings.Join(validProviders, ", "))
	}
	for _, p := range c.Providers {
		if !slices.Contains(validProviders, p) {
			return fmt.Errorf("unknown provider %q, valid providers: %s", p, strings.Join(validProviders, ", "))
		}
	}

	if c.MaxQueryLength < 1 {
		return fmt.Errorf("max_query_length must be at least 1, got %d", c.MaxQueryLength)
	}
	if c.MaxRequests < 1 || c.MaxRequests > maxRequestsCeiling {
		return fmt.Errorf("max_requests must be between 1 and %d, got %d", maxRequestsCeiling, c.MaxRequests)
	}
	if c.ResultLimit < 1 || c.ResultLimit > 200 {
		return fmt.Errorf("result_limit must be between 1 and 200, got %d", c.ResultLimit)
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("request_timeout must be positive, got %s", c.RequestTimeout)
	}
	if c.RequestsPerMinute < 0 {
		return fmt.Errorf("requests_per_minute cannot be negative, got %d", c.RequestsPerMinute)
	}
	if c.CacheTTL < 0 {
		return fmt.Errorf("cache_ttl cannot be negative, got %s", c.CacheTTL)
	}

	if c.ArtworkSize < minArtworkSize || c.ArtworkSize > maxArtworkSize {
		return fmt.Errorf("artwork_size must be between %d and %d, got %d", minArtworkSize, maxArtworkSize, c.ArtworkSize)
	}
	if c.AutoSelectMargin < 0 {
		return fmt.Errorf("auto_select_margin cannot be negative, got %d", c.AutoSelectMargin)
	}
	if c.MaxChoices < 2 || c.MaxChoices > maxChoicesCeiling {
		return fmt.Errorf("max_choices must be between 2 and %d, got %d", maxChoicesCeiling, c.MaxChoices)
	}

	for name, code := range map[string]string{
		"regions.latin.primary":   c.Regions.Latin.Primary,
		"regions.latin.secondary": c.Regions.Latin.Secondary,
		"regions.han.primary":     c.Regions.Han.Primary,
		"regions.han.secondary":   c.Regions.Han.Secondary,
	} {
		if !isCountryCode(code) {
			return fmt.Errorf("%s must be a two-letter country code, got %q", name, code)
		}
	}

	if c.OutputDir == "" {
		return fmt.Errorf("output_dir cannot be empty")
	}
	if c.SessionRetention <= 0 {
		return fmt.Errorf("session_retention must be positive, got %s", c.SessionRetention)
	}

	return nil
}

func isCountryCode(s string) bool {
	if len(s) != 2 {
		return false
	}
	for _, r := range s {
		if r < 'a' || r > 'z' {
			return false
		}
	}
	return true
}
