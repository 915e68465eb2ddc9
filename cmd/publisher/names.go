package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"meatflow/internal/cli"
	"meatflow/internal/geo"
	"meatflow/internal/logging"
	"meatflow/internal/view"
)

var errMappingGaps = errors.New("unmapped geographic names found")

func newCheckNamesCommand() *cobra.Command {
	var strict bool
	cmd := &cobra.Command{
		Use:   "check-names",
		Short: "List map names that match neither the resolver table nor a dataset country",
		RunE: func(cmd *cobra.Command, args []string) error {
			cc, err := cli.FromCommand(cmd)
			if err != nil {
				return err
			}
			records, err := cc.LoadRecords(cmd.Context())
			if err != nil {
				return err
			}
			features, err := cc.LoadFeatures()
			if err != nil {
				return err
			}
			if len(features) == 0 {
				return geo.ErrNoFeatures
			}
			engine, err := cc.NewEngine(records)
			if err != nil {
				return err
			}
			return checkNames(cmd.OutOrStdout(), engine, features, strict, cc.Logger)
		},
	}
	cmd.Flags().BoolVar(&strict, "strict", false, "exit non-zero when gaps are found")
	return cmd
}

func checkNames(w io.Writer, engine *view.Engine, features []geo.Feature, strict bool, logger logging.Logger) error {
	gaps := engine.MappingGaps(features)
	for _, name := range gaps {
		fmt.Fprintln(w, name)
	}
	logger.Info("mapping check complete",
		logging.Int("features", len(features)),
		logging.Int("gaps", len(gaps)),
	)
	if strict && len(gaps) > 0 {
		return fmt.Errorf("%w: %d", errMappingGaps, len(gaps))
	}
	return nil
}
