package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/wirechat-client/internal/app"
	"github.com/vovakirdan/wirechat-client/internal/config"
	"github.com/vovakirdan/wirechat-client/internal/log"
	"github.com/vovakirdan/wirechat-client/internal/store/sqlite"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		configPath string
		overrides  config.Config
	)

	root := &cobra.Command{
		Use:           "wirechat-client",
		Short:         "Terminal client for the wirechat room server",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&configPath, "config", "", "path to config file")
	pf.StringVar(&overrides.ServerURL, "server", "", "base URL for REST endpoints")
	pf.StringVar(&overrides.SocketURL, "socket", "", "persistent connection URL")
	pf.StringVar(&overrides.Room, "room", "", "initial room (blue or red)")
	pf.StringVar(&overrides.Token, "token", "", "session token sent with login")
	pf.StringVar(&overrides.LogLevel, "log-level", "", "debug, info, warn or error")
	pf.StringVar(&overrides.StatusAddr, "status-addr", "", "enable local status endpoint on this address")
	pf.StringVar(&overrides.ArchivePath, "archive", "", "enable local transcript archive at this path")

	loadConfig := func() (config.Config, error) {
		bootstrap := log.New("info")
		cfg, path, err := config.Load(bootstrap, configPath)
		if err != nil {
			return cfg, fmt.Errorf("load config %s: %w", path, err)
		}
		cfg.UpdateFrom(overrides)
		return cfg, nil
	}

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Connect to the server and chat",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			logger := log.New(cfg.LogLevel)

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			application, err := app.New(cfg, logger)
			if err != nil {
				return err
			}
			return application.Run(ctx)
		},
	}

	var (
		transcriptRoom  string
		transcriptLimit int
	)
	transcriptCmd := &cobra.Command{
		Use:   "transcript",
		Short: "Print recent messages from the local transcript archive",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if cfg.ArchivePath == "" {
				return fmt.Errorf("no archive configured; set archive_path or --archive")
			}

			archive, err := sqlite.New(cfg.ArchivePath)
			if err != nil {
				return fmt.Errorf("open archive: %w", err)
			}
			defer archive.Close()

			ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Second)
			defer cancel()

			entries, err := archive.RecentMessages(ctx, transcriptRoom, transcriptLimit)
			if err != nil {
				return err
			}
			for _, e := range entries {
				ts := time.UnixMilli(e.Timestamp).Format("2006-01-02 15:04:05")
				fmt.Printf("[%s] %s | %s\n", ts, e.Sender, e.Text)
			}
			return nil
		},
	}
	transcriptCmd.Flags().StringVar(&transcriptRoom, "room", "blue", "room to read")
	transcriptCmd.Flags().IntVar(&transcriptLimit, "limit", 50, "maximum entries to print")

	root.AddCommand(runCmd, transcriptCmd)
	return root
}
