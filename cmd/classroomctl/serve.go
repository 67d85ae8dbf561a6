package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/tendant/simple-classroom/internal/server"
	"github.com/tendant/simple-classroom/pkg/classroom/config"
)

func NewServeCommand() *cobra.Command {
	var port string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the classroom HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			var extra []config.Option
			if port != "" {
				extra = append(extra, config.WithPort(port))
			}
			rt, err := openRuntime(ctx, cmd, extra...)
			if err != nil {
				return err
			}
			defer rt.Close()

			svc, err := rt.cfg.BuildService(rt.backends, rt.log)
			if err != nil {
				return err
			}
			handler, err := server.Routes(rt.cfg, svc, rt.log)
			if err != nil {
				return err
			}
			return server.Run(ctx, rt.cfg, handler, rt.log)
		},
	}

	cmd.Flags().StringVarP(&port, "port", "p", "", "port to listen on (overrides PORT)")
	return cmd
}
