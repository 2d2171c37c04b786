// Package config loads responder settings from a YAML file or the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/next-trace/scg-respond/respond"
)

// Environment keys read by LoadFromEnv.
const (
	EnvVerbose      = "RESPOND_VERBOSE"
	EnvLegacyFormat = "RESPOND_LEGACY_FORMAT"
	EnvMetrics      = "RESPOND_METRICS"
)

// Settings are the responder switches that can come from outside the program.
type Settings struct {
	Verbose      bool `yaml:"verbose"`
	LegacyFormat bool `yaml:"legacyFormat"`
	Metrics      bool `yaml:"metrics"`
}

type fileConfig struct {
	Respond Settings `yaml:"respond"`
}

// String implements fmt.Stringer.
func (s Settings) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "verbose=%v ", s.Verbose)
	fmt.Fprintf(&sb, "legacyFormat=%v ", s.LegacyFormat)
	fmt.Fprintf(&sb, "metrics=%v", s.Metrics)

	return sb.String()
}

// LoadFile reads the "respond" section of a YAML file:
//
//	respond:
//	  verbose: true
//	  legacyFormat: false
//	  metrics: true
func LoadFile(path string) (Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Settings{}, fmt.Errorf("config: read %s: %w", path, err)
	}

	var parsed fileConfig
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return Settings{}, fmt.Errorf("config: decode %s: %w", path, err)
	}

	return parsed.Respond, nil
}

// LoadFromEnv reads settings from the environment. Each existing dotenv file is
// loaded first; variables already set in the environment win over the file.
func LoadFromEnv(dotenvFiles ...string) (Settings, error) {
	for _, f := range dotenvFiles {
		if _, err := os.Stat(f); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}

			return Settings{}, fmt.Errorf("config: stat %s: %w", f, err)
		}

		if err := godotenv.Load(f); err != nil {
			return Settings{}, fmt.Errorf("config: load %s: %w", f, err)
		}
	}

	v := viper.New()
	v.AutomaticEnv()

	for _, k := range []string{EnvVerbose, EnvLegacyFormat, EnvMetrics} {
		_ = v.BindEnv(k)
		v.SetDefault(k, false)
	}

	return Settings{
		Verbose:      v.GetBool(EnvVerbose),
		LegacyFormat: v.GetBool(EnvLegacyFormat),
		Metrics:      v.GetBool(EnvMetrics),
	}, nil
}

// Apply copies the switches into cfg. Metrics registers on
// prometheus.DefaultRegisterer unless cfg already names a Registerer.
func (s Settings) Apply(cfg *respond.Config) {
	cfg.Verbose = cfg.Verbose || s.Verbose
	cfg.LegacyFormat = cfg.LegacyFormat || s.LegacyFormat

	if s.Metrics && cfg.Registerer == nil {
		cfg.Registerer = prometheus.DefaultRegisterer
	}
}
