package main

import (
	"context"
	"fmt"
	"os"

	"github.com/desertthunder/playrelay/internal/shared"
	"github.com/desertthunder/playrelay/internal/ui"
	"github.com/urfave/cli/v3"
)

// Setup creates the config file from the embedded template when missing, then initializes the database and runs
// migrations.
func (r *Runner) Setup(ctx context.Context, cmd *cli.Command) error {
	configPath := cmd.String("config")

	if _, err := os.Stat(configPath); err != nil {
		r.logger.Info("config file not found, creating from template", "path", configPath)
		if err := shared.CreateConfigFile(configPath); err != nil {
			return fmt.Errorf("failed to create config file: %w", err)
		}
		r.logger.Info("config file created", "path", configPath)
	}

	config, err := shared.LoadConfig(configPath)
	if err != nil {
		return err
	}

	if cmd.Bool("rollback") {
		return r.rollback(config.Database)
	}

	r.logger.Info("initializing database", "path", config.Database.Path)

	db, err := shared.OpenHistoryDatabase(config.Database)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()

	r.logger.Infof("setup complete for database: %v", config.Database.Path)

	r.writePlain("%s\n", ui.Success("✓ Setup complete"))
	r.writePlain("Config:   %s\n", configPath)
	r.writePlain("Database: %s\n", config.Database.Path)
	if err := config.Validate(); err != nil {
		r.writePlain("%s\n", ui.Warn(fmt.Sprintf("Next: %v (edit %s or set SPOTIFY_CLIENT_ID/SPOTIFY_CLIENT_SECRET)", err, configPath)))
	}
	return nil
}

// rollback reverts the most recently applied history migration.
func (r *Runner) rollback(cfg shared.DatabaseConfig) error {
	db, err := shared.NewDatabase(cfg.Path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	shared.ConfigureDatabase(db, cfg.MaxOpenConns, cfg.MaxIdleConns)

	if err := shared.RollbackMigration(db); err != nil {
		return err
	}

	r.logger.Info("rolled back latest migration", "path", cfg.Path)
	return r.writePlain("%s\n", ui.Success("✓ Rolled back latest migration"))
}
