package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"meatflow/internal/cli"
	"meatflow/internal/geo"
	"meatflow/internal/heatmap"
	"meatflow/internal/logging"
	"meatflow/internal/model"
	"meatflow/internal/view"
)

type metaFile struct {
	GeneratedAt string          `json:"generated_at"`
	BuildID     string          `json:"build_id"`
	Records     int             `json:"records"`
	Years       []int           `json:"years"`
	Indicators  []indicatorMeta `json:"indicators"`
	HasMap      bool            `json:"has_map"`
}

type indicatorMeta struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
}

type buildOptions struct {
	outDir       string
	includeWorld bool
	includeTotal bool
	periods      string
}

func newBuildCommand() *cobra.Command {
	opts := &buildOptions{}
	cmd := &cobra.Command{
		Use:   "build",
		Short: "Write static JSON snapshots for every indicator and year",
		RunE: func(cmd *cobra.Command, args []string) error {
			cc, err := cli.FromCommand(cmd)
			if err != nil {
				return err
			}
			if opts.outDir == "" {
				opts.outDir = cc.Config.Publish.OutDir
			}
			records, err := cc.LoadRecords(cmd.Context())
			if err != nil {
				return err
			}
			features, err := cc.LoadFeatures()
			if err != nil {
				return err
			}
			engine, err := cc.NewEngine(records)
			if err != nil {
				return err
			}
			return build(engine, features, *opts, cc.Logger)
		},
	}
	f := cmd.Flags()
	f.StringVar(&opts.outDir, "out", "", "output directory (default: publish.out_dir)")
	f.BoolVar(&opts.includeWorld, "world", false, "include the world aggregate row")
	f.BoolVar(&opts.includeTotal, "total", false, "include the TOTAL product row")
	f.StringVar(&opts.periods, "periods", string(heatmap.ModeMonths), "heatmap periods (months, annual, both)")
	return cmd
}

// build writes meta.json plus one snapshot per (indicator, year) and one per
// indicator over all years. Choropleth fills are written next to each
// snapshot when features are available.
func build(engine *view.Engine, features []geo.Feature, opts buildOptions, logger logging.Logger) error {
	mode, err := heatmap.ParseMode(opts.periods)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(opts.outDir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	meta := metaFile{
		GeneratedAt: time.Now().UTC().Format(time.RFC3339),
		BuildID:     uuid.NewString(),
		Records:     engine.Len(),
		Years:       engine.Years(),
		HasMap:      len(features) > 0,
	}

	written := 0
	for _, indicator := range model.Indicators() {
		slug := slugify(string(indicator))
		meta.Indicators = append(meta.Indicators, indicatorMeta{Name: string(indicator), Slug: slug})

		dir := filepath.Join(opts.outDir, slug)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}

		base := view.Selection{
			Indicator:    indicator,
			IncludeWorld: opts.includeWorld,
			IncludeTotal: opts.includeTotal,
			PeriodMode:   mode,
		}
		selections := make(map[string]view.Selection, len(meta.Years)+1)
		all := base
		all.AllYears = true
		selections["all"] = all
		for _, year := range meta.Years {
			sel := base
			sel.Year = year
			selections[strconv.Itoa(year)] = sel
		}

		for name, sel := range selections {
			n, err := writeSelection(engine, features, sel, dir, name)
			if err != nil {
				return err
			}
			written += n
		}
	}

	if err := writeJSON(filepath.Join(opts.outDir, "meta.json"), meta); err != nil {
		return fmt.Errorf("write meta.json: %w", err)
	}

	logger.Info("publisher build complete",
		logging.String("out", opts.outDir),
		logging.String("build_id", meta.BuildID),
		logging.Int("files", written+1),
	)
	return nil
}

func writeSelection(engine *view.Engine, features []geo.Feature, sel view.Selection, dir, name string) (int, error) {
	snap, err := engine.Snapshot(sel)
	if err != nil {
		return 0, err
	}
	if err := writeJSON(filepath.Join(dir, name+".json"), snap); err != nil {
		return 0, fmt.Errorf("write snapshot %s/%s: %w", dir, name, err)
	}
	if len(features) == 0 {
		return 1, nil
	}

	fills, err := engine.Choropleth(sel, features)
	if err != nil {
		return 1, err
	}
	if err := writeJSON(filepath.Join(dir, name+"-map.json"), fills); err != nil {
		return 1, fmt.Errorf("write map %s/%s: %w", dir, name, err)
	}
	return 2, nil
}

func writeJSON(path string, value any) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	return encoder.Encode(value)
}

// slugify lowercases s and collapses every run of other characters into a
// single dash.
func slugify(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(s) {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
