// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pdiddy/advisor-engine/internal/server"
	"github.com/pdiddy/advisor-engine/pkg/types"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Expose the analysis engine over HTTP",
	Long: `Serve starts the HTTP API. POST a JSON body {"question": "..."} to
/api/analyze to run one analysis cycle; /healthz reports liveness.

The server drains in-flight requests on SIGINT or SIGTERM.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().String("addr", "", "listen address (default :5000)")
	addEngineFlags(serveCmd)

	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := engineConfigFromFlags(cmd)
	eng, err := buildEngine(cfg)
	if err != nil {
		return err
	}

	addr, _ := cmd.Flags().GetString("addr")
	srv := server.New(types.ServerConfig{Addr: addr}, eng, logger)

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := srv.Start(); err != nil {
		return err
	}

	<-ctx.Done()
	logger.Info("shutting down", zap.String("addr", srv.Addr()))
	return srv.Shutdown(context.Background())
}
