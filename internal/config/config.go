package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server         ServerConfig         `yaml:"server"`
	Classification ClassificationConfig `yaml:"classification"`
	Demand         DemandConfig         `yaml:"demand"`
	Allocation     AllocationConfig     `yaml:"allocation"`
	Display        DisplayConfig        `yaml:"display"`
}

type ServerConfig struct {
	Port        int    `yaml:"port"`
	Environment string `yaml:"environment"`
}

// ClassificationRule maps a location-name substring to a location class.
// Rules are evaluated in order, first match wins; a name matching no rule
// classifies as "other", which no allocation round ever targets.
type ClassificationRule struct {
	Pattern string `yaml:"pattern"`
	Class   string `yaml:"class"`
}

type ClassificationConfig struct {
	Rules          []ClassificationRule `yaml:"rules"`
	DenyLocations  []string             `yaml:"deny_locations"`
	DenyRequesters []string             `yaml:"deny_requesters"`
}

// DemandConfig holds the substring markers that split demand lines into
// tiers: export vs domestic market, new vs recurring demand.
type DemandConfig struct {
	ExportMarkers []string `yaml:"export_markers"`
	NewMarkers    []string `yaml:"new_markers"`
}

type AllocationConfig struct {
	// PickupPlanMode is "additive" (pickup plans are an independent supply
	// pool) or "netted" (pickup-plan quantities are subtracted from matching
	// purchase orders at pool construction).
	PickupPlanMode string `yaml:"pickup_plan_mode"`
	// ExportSingleSource lets an export-tier task try to cover its whole
	// quantity from one stock class before the round waterfall runs.
	ExportSingleSource bool `yaml:"export_single_source"`
}

type DisplayConfig struct {
	SourceNames map[string]string `yaml:"source_names"`
}

const (
	PickupPlanAdditive = "additive"
	PickupPlanNetted   = "netted"
)

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	data = []byte(os.ExpandEnv(string(data)))

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	setDefaults(&cfg)
	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func LoadFromEnv() *Config {
	cfg := &Config{}

	if port := os.Getenv("STOCKFLOW_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			cfg.Server.Port = p
		}
	}
	if env := os.Getenv("STOCKFLOW_ENV"); env != "" {
		cfg.Server.Environment = env
	}
	if mode := os.Getenv("STOCKFLOW_PICKUP_PLAN_MODE"); mode != "" {
		cfg.Allocation.PickupPlanMode = mode
	}

	setDefaults(cfg)
	return cfg
}

func validate(cfg *Config) error {
	switch cfg.Allocation.PickupPlanMode {
	case PickupPlanAdditive, PickupPlanNetted:
	default:
		return fmt.Errorf("invalid pickup_plan_mode %q", cfg.Allocation.PickupPlanMode)
	}
	return nil
}

func setDefaults(cfg *Config) {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 3007
	}
	if cfg.Server.Environment == "" {
		cfg.Server.Environment = "development"
	}
	if len(cfg.Classification.Rules) == 0 {
		cfg.Classification.Rules = []ClassificationRule{
			{Pattern: "DOMESTIC", Class: "domestic_wh"},
			{Pattern: "MAIN", Class: "domestic_wh"},
			{Pattern: "HQ", Class: "domestic_wh"},
			{Pattern: "OUTSOURC", Class: "outsourced_wh"},
			{Pattern: "3PL", Class: "outsourced_wh"},
			{Pattern: "PARTNER", Class: "outsourced_wh"},
			{Pattern: "CLOUD", Class: "cloud_wh"},
		}
	}
	if len(cfg.Classification.DenyLocations) == 0 {
		cfg.Classification.DenyLocations = []string{"WALMART", "TEMU"}
	}
	if len(cfg.Demand.ExportMarkers) == 0 {
		cfg.Demand.ExportMarkers = []string{"US", "EXPORT"}
	}
	if len(cfg.Demand.NewMarkers) == 0 {
		cfg.Demand.NewMarkers = []string{"NEW"}
	}
	if cfg.Allocation.PickupPlanMode == "" {
		cfg.Allocation.PickupPlanMode = PickupPlanAdditive
	}
	if len(cfg.Display.SourceNames) == 0 {
		cfg.Display.SourceNames = map[string]string{
			"domestic_wh":    "domestic",
			"outsourced_wh":  "outsourced",
			"cloud_wh":       "cloud",
			"pickup_plan":    "pickup-plan",
			"purchase_order": "po",
		}
	}
}
