package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/opsgate/opsgate/internal/config"
	"github.com/opsgate/opsgate/internal/server"
)

var (
	servePort   int
	serveConfig string
)

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().IntVar(&servePort, "port", 0, "HTTP listen port (overrides config file)")
	serveCmd.Flags().StringVar(&serveConfig, "config", "", "Path to config YAML")
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the oversight HTTP server",
	Long:  "Runs opsgate as a central oversight server over HTTP/JSON.\nClients submit operations for evaluation and decision, report component\nhealth, and query the audit ledger. Supports hot-reload of the config file.",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	logger := slog.New(slog.NewJSONHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	srv, err := server.New(server.Options{
		Port:       servePort,
		ConfigPath: serveConfig,
		Logger:     logger,
	})
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}
	defer srv.Close()

	// Start hot-reload watcher for the config file
	watchPath := serveConfig
	if watchPath == "" {
		watchPath = config.DefaultPath()
	}
	reloader, err := server.NewReloader(srv, []string{watchPath})
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: hot-reload disabled: %v\n", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if reloader != nil {
		go reloader.Run(ctx)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigCh
		fmt.Fprintln(os.Stderr, "\nShutting down oversight server...")
		cancel()
		srv.GracefulStop()
	}()

	return srv.Serve()
}
