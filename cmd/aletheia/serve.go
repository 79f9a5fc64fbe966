// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/aletheiaproj/aletheia/internal/httpapi"
	"github.com/aletheiaproj/aletheia/internal/mcpserver"
)

func newServeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the verification tools over MCP on stdio",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signalContext(cmd.Context())
			defer stop()

			svc, closeSvc, err := a.newService(a.execEngine(), true)
			if err != nil {
				return err
			}
			defer closeSvc()

			srv := mcpserver.NewServer("aletheia", version, svc, a.logger.Named("mcp"))
			return srv.ServeStdio(ctx)
		},
	}
}

func newHTTPCmd(a *app) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "http",
		Short: "Serve the verification API over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !cmd.Flags().Changed("addr") {
				addr = a.cfg.HTTP.Addr
			}
			ctx, stop := signalContext(cmd.Context())
			defer stop()

			svc, closeSvc, err := a.newService(a.execEngine(), true)
			if err != nil {
				return err
			}
			defer closeSvc()

			return httpapi.NewServer(svc, a.logger.Named("http")).Run(ctx, addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address, overriding http.addr")
	return cmd
}

func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	return signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
}
