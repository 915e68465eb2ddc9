package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"meatflow/internal/geo"
	"meatflow/internal/logging"
	"meatflow/internal/model"
	"meatflow/internal/source/csv"
	"meatflow/internal/store"
	"meatflow/internal/store/sqlite"
	"meatflow/internal/view"
)

var ErrNoSource = errors.New("cli: neither store.path nor source.csv_path is set")

// OpenStore returns a sqlite store, or a NopStore when path is empty.
func OpenStore(path string) (store.Store, error) {
	if strings.TrimSpace(path) == "" {
		return &store.NopStore{}, nil
	}
	return sqlite.New(path)
}

// LoadRecords reads the record set from the sqlite store when one is
// configured, otherwise straight from the CSV export.
func (c *Context) LoadRecords(ctx context.Context) ([]model.TradeRecord, error) {
	cfg := c.Config
	switch {
	case strings.TrimSpace(cfg.Store.Path) != "":
		st, err := sqlite.New(cfg.Store.Path)
		if err != nil {
			return nil, fmt.Errorf("cli: open store: %w", err)
		}
		defer st.Close()
		records, err := st.ListRecords(ctx, store.Filter{})
		if err != nil {
			return nil, fmt.Errorf("cli: list records: %w", err)
		}
		c.Logger.Info("records loaded", logging.String("source", cfg.Store.Path), logging.Int("records", len(records)))
		return records, nil
	case strings.TrimSpace(cfg.Source.CSVPath) != "":
		result, err := csv.LoadFile(cfg.Source.CSVPath, csv.OptionsFromConfig(cfg.Source))
		if err != nil {
			return nil, err
		}
		c.Logger.Info("records loaded",
			logging.String("source", cfg.Source.CSVPath),
			logging.Int("records", len(result.Records)),
			logging.Int("skipped", result.Skipped),
		)
		return result.Records, nil
	default:
		return nil, ErrNoSource
	}
}

// LoadFeatures reads the GeoJSON features. An empty path yields none.
func (c *Context) LoadFeatures() ([]geo.Feature, error) {
	path := strings.TrimSpace(c.Config.Source.GeoJSONPath)
	if path == "" {
		c.Logger.Warn("source.geojson_path not set, map output disabled")
		return nil, nil
	}
	features, err := geo.LoadFile(path)
	if err != nil {
		return nil, err
	}
	c.Logger.Info("features loaded", logging.String("source", path), logging.Int("features", len(features)))
	return features, nil
}

// NewEngine builds a view engine with the engine section of the config.
func (c *Context) NewEngine(records []model.TradeRecord) (*view.Engine, error) {
	cfg := c.Config.Engine
	opts := []view.Option{
		view.WithLogger(c.Logger.Named("engine")),
		view.WithTopN(cfg.TopN),
		view.WithTopK(cfg.TopK),
		view.WithExponent(cfg.Exponent),
		view.WithCacheSize(cfg.CacheSize),
	}
	if c.Metrics != nil {
		opts = append(opts, view.WithMetrics(c.Metrics))
	}
	return view.NewEngine(records, opts...)
}
