package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"meatflow/internal/cli"
	"meatflow/internal/config"
	"meatflow/internal/logging"
	"meatflow/internal/metrics"
	"meatflow/internal/model"
	"meatflow/internal/source/csv"
)

type runOptions struct {
	csvPath  string
	dbPath   string
	fromYear int
	verbose  bool
}

func newRunCommand() *cobra.Command {
	opts := &runOptions{}
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Read the CSV export and upsert every record into the store",
		RunE: func(cmd *cobra.Command, args []string) error {
			cc, err := cli.FromCommand(cmd)
			if err != nil {
				return err
			}
			return runCollector(cmd.Context(), cc, *opts)
		},
	}
	f := cmd.Flags()
	f.StringVar(&opts.csvPath, "csv", "", "CSV export path (default: source.csv_path)")
	f.StringVar(&opts.dbPath, "db", "", "sqlite database path (default: store.path, then "+config.DefaultStorePath+")")
	f.IntVar(&opts.fromYear, "from-year", 0, "skip records older than this year (0 = all)")
	f.BoolVar(&opts.verbose, "verbose", false, "log each stored record")
	return cmd
}

func runCollector(ctx context.Context, cc *cli.Context, opts runOptions) error {
	logger := cc.Logger
	start := time.Now()

	csvPath := firstNonEmpty(opts.csvPath, cc.Config.Source.CSVPath)
	if csvPath == "" {
		return fmt.Errorf("no CSV path: set --csv or source.csv_path")
	}
	dbPath := firstNonEmpty(opts.dbPath, cc.Config.Store.Path, config.DefaultStorePath)

	result, err := csv.LoadFile(csvPath, csv.OptionsFromConfig(cc.Config.Source))
	if err != nil {
		return err
	}

	records := make([]model.TradeRecord, 0, len(result.Records))
	older := 0
	for _, record := range result.Records {
		if opts.fromYear != 0 && record.Year < opts.fromYear {
			older++
			continue
		}
		records = append(records, record)
	}
	countIngested(cc.Metrics, len(records), result.Skipped, older)

	st, err := cli.OpenStore(dbPath)
	if err != nil {
		return err
	}
	defer st.Close()

	if err := st.UpsertRecords(ctx, records); err != nil {
		return fmt.Errorf("store records: %w", err)
	}

	years, err := st.ListYears(ctx)
	if err != nil {
		return fmt.Errorf("list stored years: %w", err)
	}

	if opts.verbose {
		for _, record := range records {
			logger.Info("stored",
				logging.Int("year", record.Year),
				logging.String("product", record.ProductType),
				logging.String("period", record.Period),
				logging.String("country", record.Country),
			)
		}
	}

	logger.Info("collector run complete",
		logging.String("csv", csvPath),
		logging.String("db", dbPath),
		logging.String("stored", humanize.Comma(int64(len(records)))),
		logging.Int("skipped", result.Skipped),
		logging.Int("older", older),
		logging.Any("stored_years", years),
		logging.Duration("elapsed", time.Since(start)),
	)
	return nil
}

func countIngested(m *metrics.Metrics, stored, skipped, older int) {
	if m == nil {
		return
	}
	m.RecordsIngested.WithLabelValues("stored").Add(float64(stored))
	m.RecordsIngested.WithLabelValues("skipped").Add(float64(skipped))
	m.RecordsIngested.WithLabelValues("filtered").Add(float64(older))
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			return trimmed
		}
	}
	return ""
}
