package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/tensorplex-labs/typescribe/internal/tui"
)

func newTUICmd() *cobra.Command {
	var opts tui.Options
	cmd := &cobra.Command{
		Use:   "tui",
		Short: "Open the interactive terminal form",
		RunE: func(cmd *cobra.Command, args []string) error {
			api, _, err := newSDKAPI()
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGTERM)
			defer stop()
			return tui.Run(ctx, api, opts)
		},
	}
	cmd.Flags().StringVar(&opts.OutDir, "out", "", "directory downloads are written to")
	cmd.Flags().BoolVar(&opts.NoColor, "no-color", false, "show code without syntax highlighting")
	return cmd
}
