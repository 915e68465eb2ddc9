package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"meatflow/internal/cli"
	"meatflow/internal/server"
)

func newServeCommand() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve snapshots over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			cc, err := cli.FromCommand(cmd)
			if err != nil {
				return err
			}
			if addr == "" {
				addr = cc.Config.Server.Addr
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

			srv := server.New(addr, engine, features, cc.Logger, cc.Metrics)
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			errCh := make(chan error, 1)
			go func() { errCh <- srv.Start() }()

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
				return srv.Stop(context.Background())
			}
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default: server.addr)")
	return cmd
}
