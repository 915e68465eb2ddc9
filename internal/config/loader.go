package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

const envPrefix = "MEATFLOW"

// newViper maps nested keys such as "store.path" to MEATFLOW_STORE_PATH.
func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	bindEnv(v)
	return v
}

// bindEnv registers every key so AutomaticEnv is consulted by Unmarshal even
// when the key is missing from the file.
func bindEnv(v *viper.Viper) {
	for _, key := range []string{
		"log.level", "log.format",
		"store.path",
		"source.csv_path", "source.geojson_path", "source.delimiter", "source.decimal_comma",
		"source.columns.year", "source.columns.product", "source.columns.period", "source.columns.country",
		"source.indicators",
		"engine.top_n", "engine.top_k", "engine.exponent", "engine.cache_size",
		"server.addr",
		"publish.out_dir",
	} {
		_ = v.BindEnv(key)
	}
}

// Load reads the YAML file at path (skipped when path is empty), applies
// MEATFLOW_* overrides and defaults, then validates.
func Load(path string) (*Config, error) {
	v := newViper()
	if strings.TrimSpace(path) != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: read %q: %w", path, err)
		}
	}
	return unmarshalAndFinalize(v)
}

// LoadFromEnv builds a Config from MEATFLOW_* variables and defaults only.
func LoadFromEnv() (*Config, error) {
	return Load("")
}

func unmarshalAndFinalize(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}
	ApplyDefaults(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: validation failed: %w", err)
	}
	return cfg, nil
}
