// Package config provides YAML-based configuration loading for Shopclerk.
package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Default menu labels. Customers send these exact strings to trigger the
// stateless menu actions.
const (
	DefaultProductsLabel = "🛒 Products"
	DefaultContactLabel  = "📞 Contact us"
)

// Config is the top-level Shopclerk configuration, loaded from clerk.yaml.
// The bot token is deliberately absent: it comes from the process
// environment and its absence is fatal at startup.
type Config struct {
	Platform  string          `yaml:"platform"` // "discord" or "slack"
	Channel   string          `yaml:"channel"`  // default channel the bot serves
	Menu      MenuConfig      `yaml:"menu"`
	Contact   ContactConfig   `yaml:"contact"`
	Catalog   []ProductConfig `yaml:"catalog"`
	Store     StoreConfig     `yaml:"store"`
	Digest    DigestConfig    `yaml:"digest"`
	Dashboard DashboardConfig `yaml:"dashboard"`
}

// MenuConfig holds the menu keyword labels.
type MenuConfig struct {
	Products string `yaml:"products"`
	Contact  string `yaml:"contact"`
}

// ContactConfig is the contact card sent for the contact menu action.
type ContactConfig struct {
	Phone string `yaml:"phone"`
	Email string `yaml:"email"`
}

// ProductConfig defines one catalog product.
type ProductConfig struct {
	Code        int    `yaml:"code"`
	Name        string `yaml:"name"`
	Price       string `yaml:"price"`
	Description string `yaml:"description"`
}

// StoreConfig selects the order store backend.
type StoreConfig struct {
	Backend string `yaml:"backend"` // "file" (default), "sqlite", "mysql"
	Path    string `yaml:"path"`    // file path (file/sqlite backends)
	DSN     string `yaml:"dsn"`     // mysql DSN
}

// DigestConfig controls the daily order digest.
type DigestConfig struct {
	Enabled bool   `yaml:"enabled"`
	Cron    string `yaml:"cron"` // 5-field cron expression
}

// DashboardConfig controls the read-only orders dashboard.
type DashboardConfig struct {
	Enabled bool `yaml:"enabled"`
	Port    int  `yaml:"port"`
}

// Load reads a YAML config file from path and returns a validated Config.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	return Parse(data)
}

// Parse unmarshals YAML bytes into a validated Config.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// applyDefaults fills in derived and default values.
func (c *Config) applyDefaults() {
	if c.Menu.Products == "" {
		c.Menu.Products = DefaultProductsLabel
	}
	if c.Menu.Contact == "" {
		c.Menu.Contact = DefaultContactLabel
	}
	if c.Store.Backend == "" {
		c.Store.Backend = "file"
	}
	if c.Store.Backend == "file" && c.Store.Path == "" {
		c.Store.Path = "orders.json"
	}
	if c.Digest.Enabled && c.Digest.Cron == "" {
		c.Digest.Cron = "0 9 * * *"
	}
	if c.Dashboard.Enabled && c.Dashboard.Port == 0 {
		c.Dashboard.Port = 8080
	}
}

// validate checks that all required fields are present and consistent.
func (c *Config) validate() error {
	var errs []string
	switch c.Platform {
	case "discord", "slack":
	case "":
		errs = append(errs, "platform is required")
	default:
		errs = append(errs, fmt.Sprintf("unsupported platform %q", c.Platform))
	}
	if len(c.Catalog) == 0 {
		errs = append(errs, "at least one catalog product is required")
	}
	seen := make(map[int]bool)
	for i, p := range c.Catalog {
		if p.Code <= 0 {
			errs = append(errs, fmt.Sprintf("catalog[%d].code must be positive", i))
		}
		if p.Name == "" {
			errs = append(errs, fmt.Sprintf("catalog[%d].name is required", i))
		}
		if seen[p.Code] {
			errs = append(errs, fmt.Sprintf("catalog[%d].code %d is duplicated", i, p.Code))
		}
		seen[p.Code] = true
	}
	switch c.Store.Backend {
	case "file", "sqlite":
		if c.Store.Path == "" {
			errs = append(errs, fmt.Sprintf("store.path is required for the %s backend", c.Store.Backend))
		}
	case "mysql":
		if c.Store.DSN == "" {
			errs = append(errs, "store.dsn is required for the mysql backend")
		}
	default:
		errs = append(errs, fmt.Sprintf("unsupported store backend %q", c.Store.Backend))
	}
	if c.Menu.Products == c.Menu.Contact {
		errs = append(errs, "menu.products and menu.contact must differ")
	}
	if len(errs) > 0 {
		return fmt.Errorf("config: validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}
