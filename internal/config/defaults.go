package config

import "meatflow/internal/model"

const (
	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"

	DefaultStorePath = "meatflow.db"

	DefaultDelimiter     = ";"
	DefaultColumnYear    = "ANNREF"
	DefaultColumnProduct = "N500_LIB"
	DefaultColumnPeriod  = "N053_LIB"
	DefaultColumnCountry = "COMEXVIANDE_DIM2_LIB"

	DefaultTopN      = 5
	DefaultTopK      = 8
	DefaultExponent  = 0.5
	DefaultCacheSize = 64

	DefaultServerAddr = ":8080"
	DefaultOutDir     = "site/data"
)

// ApplyDefaults fills zero-value fields. Explicit values win.
func ApplyDefaults(cfg *Config) {
	if cfg == nil {
		return
	}

	if cfg.Log.Level == "" {
		cfg.Log.Level = DefaultLogLevel
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = DefaultLogFormat
	}

	if cfg.Source.Delimiter == "" {
		cfg.Source.Delimiter = DefaultDelimiter
	}
	if cfg.Source.DecimalComma == nil {
		on := true
		cfg.Source.DecimalComma = &on
	}
	if cfg.Source.Columns.Year == "" {
		cfg.Source.Columns.Year = DefaultColumnYear
	}
	if cfg.Source.Columns.Product == "" {
		cfg.Source.Columns.Product = DefaultColumnProduct
	}
	if cfg.Source.Columns.Period == "" {
		cfg.Source.Columns.Period = DefaultColumnPeriod
	}
	if cfg.Source.Columns.Country == "" {
		cfg.Source.Columns.Country = DefaultColumnCountry
	}
	if len(cfg.Source.Indicators) == 0 {
		for _, indicator := range model.Indicators() {
			cfg.Source.Indicators = append(cfg.Source.Indicators, string(indicator))
		}
	}

	if cfg.Engine.TopN == 0 {
		cfg.Engine.TopN = DefaultTopN
	}
	if cfg.Engine.TopK == 0 {
		cfg.Engine.TopK = DefaultTopK
	}
	if cfg.Engine.Exponent == 0 {
		cfg.Engine.Exponent = DefaultExponent
	}
	if cfg.Engine.CacheSize == 0 {
		cfg.Engine.CacheSize = DefaultCacheSize
	}

	if cfg.Server.Addr == "" {
		cfg.Server.Addr = DefaultServerAddr
	}
	if cfg.Publish.OutDir == "" {
		cfg.Publish.OutDir = DefaultOutDir
	}
}

// Default returns a configuration with every default applied.
func Default() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}
