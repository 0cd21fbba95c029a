package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"guestbook/services/guestbook/internal/app"
	"guestbook/services/guestbook/internal/config"
)

// rootOptions holds flags shared by every command.
type rootOptions struct {
	configPath string
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}
	serve := newServeCommand(opts)

	cmd := &cobra.Command{
		Use:   "guestbook",
		Short: "A small htmx guestbook",
		Long:  "Serves the guestbook page and offers moderation commands against the same entry store.",
		// Running without a subcommand serves the site.
		RunE:          serve.RunE,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&opts.configPath, "config", config.ConfigPath, "path to config.yaml (GUESTBOOK_CONFIG wins)")

	cmd.AddCommand(serve)
	cmd.AddCommand(newEntriesCommand(opts))
	return cmd
}

func loadConfig(opts *rootOptions) (config.FileConfig, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return cfg, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

func openApp(cfg config.FileConfig) (*app.App, error) {
	loc, err := config.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, err
	}
	timeout, err := config.ParseStoreTimeout(cfg.StoreTimeout)
	if err != nil {
		return nil, err
	}
	appCore, err := app.New(app.Config{
		Driver:       cfg.StoreDriver,
		SupabaseURL:  cfg.SupabaseURL,
		SupabaseKey:  cfg.SupabaseKey,
		DatabaseURL:  cfg.DatabaseURL,
		SQLitePath:   cfg.SQLitePath,
		Table:        cfg.Table,
		Location:     loc,
		StoreTimeout: timeout,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to init app: %w", err)
	}
	return appCore, nil
}
