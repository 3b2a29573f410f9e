package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

// YAMLConfig represents the structure of the config.yaml file.
// Lists are easier to manage in YAML than in env vars.
type YAMLConfig struct {
	Search   SearchConfig   `yaml:"search"`
	Tracking TrackingConfig `yaml:"tracking"`
}

// SearchConfig tunes the search aggregator.
type SearchConfig struct {
	// Additional title substrings that mark a hit as a PDF/paper.
	PDFTitleDenylist []string `yaml:"pdf_title_denylist,omitempty"`
	// Filters used when a request does not name any.
	DefaultFilters []string `yaml:"default_filters,omitempty"`
}

// TrackingConfig tunes tracking link generation.
type TrackingConfig struct {
	DefaultCampaign string `yaml:"default_campaign,omitempty"`
}

// LoadYAMLConfig loads the YAML configuration file.
// Path is determined by CONFIG_FILE env var, defaulting to "config.yaml".
// Returns nil without error if the config file doesn't exist.
func LoadYAMLConfig() (*YAMLConfig, error) {
	return LoadYAMLConfigFrom(getEnv("CONFIG_FILE", "config.yaml"))
}

// LoadYAMLConfigFrom loads the YAML configuration from path.
func LoadYAMLConfigFrom(path string) (*YAMLConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			// Config file is optional
			return nil, nil
		}
		return nil, err
	}

	var cfg YAMLConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	// Set defaults
	if cfg.Tracking.DefaultCampaign == "" {
		cfg.Tracking.DefaultCampaign = "community_outreach"
	}

	return &cfg, nil
}

// PDFTitleDenylist returns the extra PDF title markers, nil-safe.
func (c *YAMLConfig) PDFTitleDenylist() []string {
	if c == nil {
		return nil
	}
	return c.Search.PDFTitleDenylist
}

// DefaultFilters returns the configured default filters, nil-safe.
func (c *YAMLConfig) DefaultFilters() []string {
	if c == nil {
		return nil
	}
	return c.Search.DefaultFilters
}

// DefaultCampaign returns the configured default campaign, or "" when unset.
func (c *YAMLConfig) DefaultCampaign() string {
	if c == nil {
		return ""
	}
	return c.Tracking.DefaultCampaign
}
