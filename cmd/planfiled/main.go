// planfiled - the planfile HTTP daemon.
//
// Serves the same API as `pf serve`: entry queries, completion endpoints,
// ICS export and a websocket feed that announces plan file changes.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/planfile/planfile/internal/api"
	"github.com/planfile/planfile/internal/config"
	"github.com/planfile/planfile/internal/logging"
	"github.com/planfile/planfile/internal/storage"
)

var (
	configPath string
	planFile   string
	addr       string
	debug      bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "planfiled",
		Short: "planfile daemon - HTTP API and change feed for plan files",
		Args:  cobra.NoArgs,
		RunE:  runDaemon,
	}

	rootCmd.Flags().StringVar(&configPath, "config", "", "config file (default ~/.config/planfile/config.json)")
	rootCmd.Flags().StringVar(&planFile, "file", "", "root plan file (default from config)")
	rootCmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config)")
	rootCmd.Flags().BoolVar(&debug, "debug", false, "debug logging")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "planfiled:", err)
		os.Exit(1)
	}
}

func runDaemon(cmd *cobra.Command, args []string) error {
	if debug {
		logging.SetLevel(logging.DEBUG)
	} else {
		logging.SetLevel(logging.INFO)
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if planFile != "" {
		cfg.Dir = filepath.Dir(planFile)
		cfg.MainFile = filepath.Base(planFile)
	}
	if addr != "" {
		cfg.Server.Addr = addr
	}

	var archive *storage.ArchiveStore
	if cfg.Archive.Path != "" {
		db, err := storage.Open(storage.Config{Path: cfg.Archive.Path})
		if err != nil {
			logging.WithError(err).Warn("completion archive unavailable")
		} else if err := db.Migrate(); err != nil {
			db.Close()
			logging.WithError(err).Warn("completion archive unavailable")
		} else {
			defer db.Close()
			archive = storage.NewArchiveStore(db)
		}
	}

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

	logging.WithFile(cfg.MainPath()).Info("watching plan files")
	return server.Start()
}
