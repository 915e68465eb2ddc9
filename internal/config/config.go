// Package config loads meatflow settings from an optional YAML file and
// MEATFLOW_* environment variables.
package config

import (
	"errors"
	"fmt"

	"meatflow/internal/logging"
	"meatflow/internal/model"
)

type Config struct {
	Log     logging.Config `mapstructure:"log" yaml:"log"`
	Store   StoreConfig    `mapstructure:"store" yaml:"store"`
	Source  SourceConfig   `mapstructure:"source" yaml:"source"`
	Engine  EngineConfig   `mapstructure:"engine" yaml:"engine"`
	Server  ServerConfig   `mapstructure:"server" yaml:"server"`
	Publish PublishConfig  `mapstructure:"publish" yaml:"publish"`
}

type StoreConfig struct {
	// Path of the sqlite file. Empty disables persistence.
	Path string `mapstructure:"path" yaml:"path"`
}

type SourceConfig struct {
	CSVPath      string        `mapstructure:"csv_path" yaml:"csv_path"`
	GeoJSONPath  string        `mapstructure:"geojson_path" yaml:"geojson_path"`
	Delimiter    string        `mapstructure:"delimiter" yaml:"delimiter"`
	DecimalComma *bool         `mapstructure:"decimal_comma" yaml:"decimal_comma"`
	Columns      ColumnsConfig `mapstructure:"columns" yaml:"columns"`
	// Indicators are the CSV headers of the six indicator columns, in the
	// order of model.Indicators().
	Indicators []string `mapstructure:"indicators" yaml:"indicators"`
}

type ColumnsConfig struct {
	Year    string `mapstructure:"year" yaml:"year"`
	Product string `mapstructure:"product" yaml:"product"`
	Period  string `mapstructure:"period" yaml:"period"`
	Country string `mapstructure:"country" yaml:"country"`
}

type EngineConfig struct {
	TopN      int     `mapstructure:"top_n" yaml:"top_n"`
	TopK      int     `mapstructure:"top_k" yaml:"top_k"`
	Exponent  float64 `mapstructure:"exponent" yaml:"exponent"`
	CacheSize int     `mapstructure:"cache_size" yaml:"cache_size"`
}

type ServerConfig struct {
	Addr string `mapstructure:"addr" yaml:"addr"`
}

type PublishConfig struct {
	OutDir string `mapstructure:"out_dir" yaml:"out_dir"`
}

// Validate checks ranges that defaults cannot repair.
func (c *Config) Validate() error {
	var errs []error
	if c.Engine.TopN < 1 {
		errs = append(errs, fmt.Errorf("engine.top_n must be >= 1, got %d", c.Engine.TopN))
	}
	if c.Engine.TopK < 1 {
		errs = append(errs, fmt.Errorf("engine.top_k must be >= 1, got %d", c.Engine.TopK))
	}
	if c.Engine.Exponent <= 0 || c.Engine.Exponent > 1 {
		errs = append(errs, fmt.Errorf("engine.exponent must be in (0, 1], got %g", c.Engine.Exponent))
	}
	if c.Engine.CacheSize < 0 {
		errs = append(errs, fmt.Errorf("engine.cache_size must be >= 0, got %d", c.Engine.CacheSize))
	}
	if len([]rune(c.Source.Delimiter)) != 1 {
		errs = append(errs, fmt.Errorf("source.delimiter must be a single character, got %q", c.Source.Delimiter))
	}
	if n := len(c.Source.Indicators); n != len(model.Indicators()) {
		errs = append(errs, fmt.Errorf("source.indicators must list %d headers, got %d", len(model.Indicators()), n))
	}
	return errors.Join(errs...)
}
