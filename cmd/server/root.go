package main

import (
	"github.com/reelhub/backend/pkg/config"
	"github.com/reelhub/backend/pkg/logger"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "reels-api",
		Short:         "Short-video reels backend",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.AddCommand(newServeCommand())
	rootCmd.AddCommand(newMigrateCommand())
	rootCmd.AddCommand(newRoutesCommand())
	return rootCmd
}

// loadRuntime reads the configuration and builds the logger it describes.
func loadRuntime() (*config.Config, *logrus.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}

	opts := logger.DefaultOptions()
	opts.Level = cfg.LogLevel
	opts.Format = cfg.LogFormat
	opts.File = cfg.LogFile
	log, err := logger.New(opts)
	if err != nil {
		return nil, nil, err
	}
	if !cfg.DotEnvLoaded {
		log.Info("No .env file found, assuming environment variables are set.")
	}
	return cfg, log, nil
}

func newMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the users and reels tables",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := loadRuntime()
			if err != nil {
				return err
			}
			db, err := config.InitDB(cfg, log)
			if err != nil {
				return err
			}
			defer db.CloseDB()

			if err := config.AutoMigrate(db.SQL); err != nil {
				return err
			}
			log.Info("Auto-migrations completed")
			return nil
		},
	}
}
