// Package config loads cbk settings from defaults, an optional YAML file,
// a .env file and CBK_-prefixed environment variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment override, e.g. CBK_SERVER_ADDR.
const EnvPrefix = "CBK"

// Config is the typed view of the settings tree.
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Catalog CatalogConfig `mapstructure:"catalog"`
	Scraper ScraperConfig `mapstructure:"scraper"`
	Log     LogConfig     `mapstructure:"log"`
}

// ServerConfig holds the HTTP listen address and server timeouts.
type ServerConfig struct {
	Addr            string        `mapstructure:"addr"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// CatalogConfig points at the product document and the rule table. Empty
// paths select the embedded defaults.
type CatalogConfig struct {
	Path      string `mapstructure:"path"`
	RulesPath string `mapstructure:"rules_path"`
}

// ScraperConfig drives cbk scrape. Delay is the pause between requests.
type ScraperConfig struct {
	BaseURL   string        `mapstructure:"base_url"`
	Output    string        `mapstructure:"output"`
	ImageDir  string        `mapstructure:"image_dir"`
	Delay     time.Duration `mapstructure:"delay"`
	Timeout   time.Duration `mapstructure:"timeout"`
	UserAgent string        `mapstructure:"user_agent"`
	// Categories maps a catalog category to the listing URLs scraped for it.
	Categories map[string][]string `mapstructure:"categories"`
	Selectors  SelectorConfig      `mapstructure:"selectors"`
}

// SelectorConfig holds the CSS selectors used against the source shop.
type SelectorConfig struct {
	ProductLink   string `mapstructure:"product_link"`
	NextPage      string `mapstructure:"next_page"`
	Name          string `mapstructure:"name"`
	Price         string `mapstructure:"price"`
	OriginalPrice string `mapstructure:"original_price"`
	Brand         string `mapstructure:"brand"`
	Description   string `mapstructure:"description"`
	Image         string `mapstructure:"image"`
	OutOfStock    string `mapstructure:"out_of_stock"`
}

// LogConfig selects the zap level and the development encoder.
type LogConfig struct {
	Level       string `mapstructure:"level"`
	Development bool   `mapstructure:"development"`
}

// SetDefaults registers the default value of every known key on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", "0.0.0.0:8080")
	v.SetDefault("server.read_timeout", 10*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)
	v.SetDefault("server.idle_timeout", 60*time.Second)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)

	v.SetDefault("catalog.path", "")
	v.SetDefault("catalog.rules_path", "")

	v.SetDefault("scraper.base_url", "")
	v.SetDefault("scraper.output", "products.json")
	v.SetDefault("scraper.image_dir", "")
	v.SetDefault("scraper.delay", time.Second)
	v.SetDefault("scraper.timeout", 20*time.Second)
	v.SetDefault("scraper.user_agent", "cbk-scraper/1.0")
	v.SetDefault("scraper.selectors.product_link", ".product-item a.product-link")
	v.SetDefault("scraper.selectors.next_page", "a.next")
	v.SetDefault("scraper.selectors.name", "h1.product-name")
	v.SetDefault("scraper.selectors.price", ".price .current")
	v.SetDefault("scraper.selectors.original_price", ".price .old")
	v.SetDefault("scraper.selectors.brand", ".product-brand")
	v.SetDefault("scraper.selectors.description", ".product-description")
	v.SetDefault("scraper.selectors.image", ".product-image img")
	v.SetDefault("scraper.selectors.out_of_stock", ".out-of-stock")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.development", false)
}

// Load builds the configuration. A non-empty path must name a readable YAML
// file; with an empty path ./cbk.yaml is used when present. A missing .env
// file is not an error.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("cbk")
		v.SetConfigType("yaml")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := New(v).Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	return &cfg, nil
}

// Viper wraps a viper instance. A nil instance behaves as an empty tree.
type Viper struct {
	v *viper.Viper
}

// New wraps v.
func New(v *viper.Viper) *Viper {
	if v == nil {
		v = viper.New()
	}
	return &Viper{v: v}
}

func (c *Viper) GetString(key string) string          { return c.v.GetString(key) }
func (c *Viper) GetInt(key string) int                { return c.v.GetInt(key) }
func (c *Viper) GetBool(key string) bool              { return c.v.GetBool(key) }
func (c *Viper) GetDuration(key string) time.Duration { return c.v.GetDuration(key) }
func (c *Viper) IsSet(key string) bool                { return c.v.IsSet(key) }

// Sub returns the subtree at key, or an empty tree when key is absent.
func (c *Viper) Sub(key string) *Viper {
	return New(c.v.Sub(key))
}

// Unmarshal decodes the whole tree into target using mapstructure tags.
func (c *Viper) Unmarshal(target any) error {
	return c.v.Unmarshal(target)
}
