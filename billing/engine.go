package billing

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// Size is a print size preset offered by the order form
type Size struct {
	ID      int    `yaml:"id" json:"id"`
	Label   string `yaml:"label" json:"label"`
	Width   int    `yaml:"width" json:"width"`
	Height  int    `yaml:"height" json:"height"`
	Variant string `yaml:"variant,omitempty" json:"variant,omitempty"`
}

// Config is the billing configuration, usually read from a YAML file:
//
//	currency: AFN
//	maxDigitalItems: 5
//	maxOffsetItems: 5
//	sizes:
//	  - {id: 1, label: "1030 x 820", width: 1030, height: 820}
type Config struct {
	Currency        string `yaml:"currency"`
	MaxDigitalItems int    `yaml:"maxDigitalItems"`
	MaxOffsetItems  int    `yaml:"maxOffsetItems"`
	Sizes           []Size `yaml:"sizes"`
}

// DefaultConfig returns the shop's standard limits and print sizes.
func DefaultConfig() Config {
	return Config{
		Currency:        "AFN",
		MaxDigitalItems: 5,
		MaxOffsetItems:  5,
		Sizes: []Size{
			{ID: 1, Label: "1030 x 820", Width: 1030, Height: 820},
			{ID: 2, Label: "1030 x 770", Width: 1030, Height: 770},
			{ID: 3, Label: "724 x 625", Width: 724, Height: 625},
			{ID: 4, Label: "680 x 550", Width: 680, Height: 550},
			{ID: 5, Label: "645 x 510", Width: 645, Height: 510},
			{ID: 6, Label: "510 x 400", Width: 510, Height: 400},
			{ID: 7, Label: "450 x 370 A", Width: 450, Height: 370, Variant: "A"},
			{ID: 8, Label: "450 x 370 B", Width: 450, Height: 370, Variant: "B"},
		},
	}
}

// Engine validates orders and computes their money fields
type Engine struct {
	config *Config
}

var (
	engineInstance *Engine
	engineMu       sync.RWMutex
)

// NewEngine builds an engine from a YAML file. An empty path yields the default configuration;
// keys missing from the file keep their defaults.
func NewEngine(configPath string) (*Engine, error) {
	config := DefaultConfig()
	if configPath != "" {
		if !filepath.IsAbs(configPath) {
			wd, err := os.Getwd()
			if err != nil {
				return nil, fmt.Errorf("failed to get working directory: %w", err)
			}
			configPath = filepath.Join(wd, configPath)
		}

		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read billing config: %w", err)
		}
		if err := yaml.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("failed to parse billing config: %w", err)
		}
	}

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid billing config: %w", err)
	}
	return &Engine{config: &config}, nil
}

func validateConfig(config *Config) error {
	if config.Currency == "" {
		return fmt.Errorf("currency is required")
	}
	if config.MaxDigitalItems < 1 || config.MaxOffsetItems < 1 {
		return fmt.Errorf("item limits must be at least 1")
	}
	seen := make(map[int]bool, len(config.Sizes))
	for _, s := range config.Sizes {
		if s.Width <= 0 || s.Height <= 0 {
			return fmt.Errorf("size %q must have positive width and height", s.Label)
		}
		if seen[s.ID] {
			return fmt.Errorf("duplicate size id %d", s.ID)
		}
		seen[s.ID] = true
	}
	return nil
}

// Init loads the engine and installs it as the process-wide instance.
func Init(configPath string) (*Engine, error) {
	engine, err := NewEngine(configPath)
	if err != nil {
		return nil, err
	}
	engineMu.Lock()
	engineInstance = engine
	engineMu.Unlock()

	source := configPath
	if source == "" {
		source = "defaults"
	}
	zap.S().Infof("✅ BillingEngine: loaded %d sizes from %s (currency=%s)", len(engine.config.Sizes), source, engine.config.Currency)
	return engine, nil
}

// GetEngine returns the process-wide engine, falling back to the default configuration.
func GetEngine() *Engine {
	engineMu.RLock()
	e := engineInstance
	engineMu.RUnlock()
	if e != nil {
		return e
	}
	def := DefaultConfig()
	return &Engine{config: &def}
}

// Currency returns the currency code printed on bills.
func (e *Engine) Currency() string {
	return e.config.Currency
}

// Sizes returns a copy of the print size presets.
func (e *Engine) Sizes() []Size {
	out := make([]Size, len(e.config.Sizes))
	copy(out, e.config.Sizes)
	return out
}
