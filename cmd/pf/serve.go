package main

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/planfile/planfile/internal/api"
	"github.com/planfile/planfile/internal/config"
	"github.com/planfile/planfile/internal/logging"
)

func serveCmd() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the planfile HTTP daemon",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !verbose {
				logging.SetLevel(logging.INFO)
			}
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if fileFlag != "" {
				cfg.Dir = filepath.Dir(fileFlag)
				cfg.MainFile = filepath.Base(fileFlag)
			}
			return runServer(cfg, addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config)")
	return cmd
}

// runServer runs the HTTP API with the plan file watcher until interrupted.
// Shared with the standalone daemon.
func runServer(cfg *config.Config, addr string) error {
	if addr != "" {
		cfg.Server.Addr = addr
	}

	archive, closeArchive, err := openArchive(cfg)
	if err != nil {
		logging.WithError(err).Warn("completion archive unavailable")
		archive, closeArchive = nil, func() {}
	}
	defer closeArchive()

	server := api.New(cfg, archive)
	watcher := api.NewWatcher(server, 0)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go watcher.Run(ctx)

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
		<-sigCh
		logging.Info("shutting down")
		server.Stop(context.Background())
		cancel()
	}()

	return server.Start()
}
