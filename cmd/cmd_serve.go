package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/rustyeddy/sentinel/config"
	"github.com/rustyeddy/sentinel/httpserver"
	"github.com/rustyeddy/sentinel/lifecycle"
	"github.com/rustyeddy/sentinel/logging"
	"github.com/rustyeddy/sentinel/utils"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the sentinel automation engine",
	Long:  `Loads the config file, wires the component graph, and runs until a shutdown signal arrives.`,
	RunE:  serveRun,
}

func serveRun(cmd *cobra.Command, args []string) error {
	doc, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	doc = overlay.Apply(doc)

	logSvc, err := logging.NewService(doc.Logging)
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	logger := slog.Default()

	httpAddr := fmt.Sprintf(":%d", doc.Prometheus.Port)
	httpSrv := httpserver.NewServer(httpAddr)
	httpSrv.Register("/stats", (*utils.Stats)(nil))
	httpSrv.Register("/logging", logSvc)

	sup := lifecycle.NewSupervisor(configPath, overlay, httpSrv, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	httpDone := make(chan struct{})
	go httpSrv.Start(httpDone)
	defer close(httpDone)

	return sup.Run(ctx)
}
