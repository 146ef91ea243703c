package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/tensorplex-labs/typescribe/internal/config"
	"github.com/tensorplex-labs/typescribe/internal/sdkapi"
	"github.com/tensorplex-labs/typescribe/internal/utils/logger"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var opts logger.Options

	root := &cobra.Command{
		Use:           "typescribe",
		Short:         "Generate TypeScript SDKs from API documentation",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			opts.Out = cmd.ErrOrStderr()
			logger.Init(opts)
		},
	}

	root.PersistentFlags().BoolVar(&opts.Debug, "debug", false, "enable debug logging")
	root.PersistentFlags().BoolVar(&opts.Trace, "trace", false, "enable trace logging")
	root.PersistentFlags().BoolVar(&opts.Info, "info", false, "log info and above")

	root.AddCommand(newGenerateCmd())
	root.AddCommand(newServeCmd())
	root.AddCommand(newTUICmd())
	root.AddCommand(newPresetsCmd())

	return root
}

// newSDKAPI loads the process configuration and builds the backend client.
func newSDKAPI() (*sdkapi.SDKAPI, *config.AppConfig, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Error().Err(err).Msg("failed to load environment configuration")
		return nil, nil, err
	}

	api, err := sdkapi.NewSDKAPI(&cfg.BackendEnvConfig, sdkapi.WithTimeout(cfg.ClientTimeout))
	if err != nil {
		return nil, nil, fmt.Errorf("init sdk api client: %w", err)
	}
	return api, cfg, nil
}
