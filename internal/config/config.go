// Package config loads dealchef settings.
//
// Values come from built-in defaults, then a YAML file, then DEALCHEF_*
// environment variables. A .env file in the working directory is loaded
// into the environment first; variables already set win over it.
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/tayloree/dealchef/internal/catalog"
	"github.com/tayloree/dealchef/internal/logging"
	"github.com/tayloree/dealchef/internal/match"
	"github.com/tayloree/dealchef/internal/shopping"
	"gopkg.in/yaml.v3"
)

// DefaultPath is read when no config file is named and it exists.
const DefaultPath = "dealchef.yaml"

// EnvPrefix prefixes every environment override.
const EnvPrefix = "DEALCHEF_"

// Config is the full application configuration.
type Config struct {
	Recipes   string        `yaml:"recipes"`
	Offers    string        `yaml:"offers"`
	OffersTTL time.Duration `yaml:"offers_ttl"`
	Pricing   Pricing       `yaml:"pricing"`
	Matching  Matching      `yaml:"matching"`
	Shopping  Shopping      `yaml:"shopping"`
	Server    Server        `yaml:"server"`
	Log       Log           `yaml:"log"`
}

// Pricing selects how unmatched ingredients are priced.
type Pricing struct {
	Mode       string             `yaml:"mode"`
	Flat       float64            `yaml:"flat"`
	Categories map[string]float64 `yaml:"categories"`
}

// Matching tunes the offer matcher.
type Matching struct {
	Strategy string               `yaml:"strategy"`
	Synonyms []match.SynonymGroup `yaml:"synonyms"`
	Staples  []string             `yaml:"staples"`
}

// Shopping configures list aggregation.
type Shopping struct {
	Policy string `yaml:"policy"`
}

// Server configures the HTTP API.
type Server struct {
	Addr        string   `yaml:"addr"`
	CORSOrigins []string `yaml:"cors_origins"`
	RateLimit   float64  `yaml:"rate_limit"`
	RateBurst   int      `yaml:"rate_burst"`
}

// Log configures the process logger.
type Log struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Recipes:   "data/recipes.yaml",
		Offers:    "data/offers.json",
		OffersTTL: catalog.DefaultOfferTTL,
		Pricing:   Pricing{Mode: match.PricingFlat, Flat: match.DefaultFlatPrice},
		Matching:  Matching{Strategy: match.HighestDiscount.Name()},
		Shopping:  Shopping{Policy: string(shopping.PerRecipe)},
		Server: Server{
			Addr:        ":8080",
			CORSOrigins: []string{"*"},
			RateLimit:   10,
			RateBurst:   20,
		},
		Log: Log{Level: "info", Format: logging.FormatText},
	}
}

// Load builds the configuration. An empty path reads DefaultPath when it
// exists; a named file must exist.
func Load(path string) (Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultPath
	}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parsing config %s: %w", path, err)
		}
	case errors.Is(err, fs.ErrNotExist) && !explicit:
	default:
		return Config{}, fmt.Errorf("reading config: %w", err)
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("loading .env: %w", err)
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// ApplyEnv overrides fields from DEALCHEF_* variables found by lookup.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	get := func(key string) (string, bool) {
		v, ok := lookup(EnvPrefix + key)
		v = strings.TrimSpace(v)
		return v, ok && v != ""
	}

	setString := map[string]*string{
		"RECIPES":           &c.Recipes,
		"OFFERS":            &c.Offers,
		"PRICING_MODE":      &c.Pricing.Mode,
		"MATCHING_STRATEGY": &c.Matching.Strategy,
		"SHOPPING_POLICY":   &c.Shopping.Policy,
		"SERVER_ADDR":       &c.Server.Addr,
		"LOG_LEVEL":         &c.Log.Level,
		"LOG_FORMAT":        &c.Log.Format,
	}
	for key, dst := range setString {
		if v, ok := get(key); ok {
			*dst = v
		}
	}

	if v, ok := get("OFFERS_TTL"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%sOFFERS_TTL: %w", EnvPrefix, err)
		}
		c.OffersTTL = d
	}
	if v, ok := get("PRICING_FLAT"); ok {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("%sPRICING_FLAT: %w", EnvPrefix, err)
		}
		c.Pricing.Flat = f
	}
	if v, ok := get("SERVER_RATE_LIMIT"); ok {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("%sSERVER_RATE_LIMIT: %w", EnvPrefix, err)
		}
		c.Server.RateLimit = f
	}
	if v, ok := get("SERVER_RATE_BURST"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%sSERVER_RATE_BURST: %w", EnvPrefix, err)
		}
		c.Server.RateBurst = n
	}
	if v, ok := get("SERVER_CORS_ORIGINS"); ok {
		c.Server.CORSOrigins = splitList(v)
	}
	if v, ok := get("MATCHING_STAPLES"); ok {
		c.Matching.Staples = splitList(v)
	}
	return nil
}

// Validate reports the first invalid enum or range value.
func (c Config) Validate() error {
	if _, err := c.Engine(); err != nil {
		return err
	}
	if _, err := shopping.ParsePolicy(c.Shopping.Policy); err != nil {
		return err
	}
	if _, err := c.Logger(io.Discard); err != nil {
		return err
	}
	if c.OffersTTL < 0 {
		return fmt.Errorf("offers_ttl must not be negative, got %s", c.OffersTTL)
	}
	if c.Server.RateLimit < 0 || c.Server.RateBurst < 0 {
		return errors.New("server rate_limit and rate_burst must not be negative")
	}
	return nil
}

// Engine builds the matching engine described by the configuration.
func (c Config) Engine() (*match.Engine, error) {
	strategy, err := match.StrategyByName(c.Matching.Strategy)
	if err != nil {
		return nil, err
	}
	pricer, err := match.PricerByMode(c.Pricing.Mode, c.Pricing.Flat, c.Pricing.Categories)
	if err != nil {
		return nil, err
	}
	return match.NewEngine(
		match.WithStrategy(strategy),
		match.WithPricer(pricer),
		match.WithSynonyms(match.DefaultSynonymTable().Merge(c.Matching.Synonyms...)),
		match.WithStaples(match.NewStapleClassifier().WithExtra(c.Matching.Staples...)),
	), nil
}

// Aggregator builds the shopping list aggregator over the configured engine.
func (c Config) Aggregator() (*shopping.Aggregator, error) {
	engine, err := c.Engine()
	if err != nil {
		return nil, err
	}
	policy, err := shopping.ParsePolicy(c.Shopping.Policy)
	if err != nil {
		return nil, err
	}
	return shopping.NewAggregator(engine, policy), nil
}

// Logger builds the configured logger writing to w.
func (c Config) Logger(w io.Writer) (*slog.Logger, error) {
	return logging.New(w, c.Log.Level, c.Log.Format)
}

// OffersRemote reports whether Offers names an HTTP feed.
func (c Config) OffersRemote() bool {
	lower := strings.ToLower(c.Offers)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

// OfferSource returns the configured feed or file behind a TTL cache.
func (c Config) OfferSource(logger *slog.Logger) *catalog.CachedOfferSource {
	var src catalog.OfferSource = catalog.OfferFile(c.Offers)
	if c.OffersRemote() {
		src = catalog.NewClient(c.Offers)
	}
	if logger == nil {
		logger = logging.Discard()
	}
	return catalog.NewCachedOfferSource(src, c.OffersTTL, catalog.WithLogger(logger.With("offers", c.Offers)))
}

// RecipeSource loads the configured recipe catalog.
func (c Config) RecipeSource() (*catalog.RecipeBook, error) {
	return catalog.LoadRecipeBook(c.Recipes)
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
