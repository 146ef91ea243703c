package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/tensorplex-labs/typescribe/internal/config"
	"github.com/tensorplex-labs/typescribe/internal/webui"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd() *cobra.Command {
	var host string
	var port int
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the web form",
		RunE: func(cmd *cobra.Command, args []string) error {
			api, _, err := newSDKAPI()
			if err != nil {
				return err
			}

			serverCfg, err := config.LoadServerEnv(cmd.Context())
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("host") {
				serverCfg.Host = host
			}
			if cmd.Flags().Changed("port") {
				serverCfg.Port = port
			}

			srv := webui.NewServer(serverCfg, api)

			// setup signal handling for graceful shutdown before starting the server
			sigChan := make(chan os.Signal, 1)
			signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
			defer signal.Stop(sigChan)

			go func() {
				<-sigChan
				log.Info().Msg("shutdown signal received, stopping web form")
				ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
				defer cancel()
				if err := srv.Shutdown(ctx); err != nil {
					log.Error().Err(err).Msg("graceful shutdown failed")
				}
			}()

			if err := srv.Start(); err != nil {
				return err
			}
			log.Info().Msg("web form stopped")
			return nil
		},
	}
	cmd.Flags().StringVar(&host, "host", config.DefaultServerHost, "listen host (overrides SERVER_HOST)")
	cmd.Flags().IntVar(&port, "port", config.DefaultServerPort, "listen port (overrides SERVER_PORT)")
	return cmd
}
