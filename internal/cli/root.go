package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/lazypower/bananimon/internal/config"
	"github.com/lazypower/bananimon/internal/game"
	"github.com/lazypower/bananimon/internal/logger"
	"github.com/lazypower/bananimon/internal/store"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "bananimon",
	Short: "Raise a companion by caring for it every day",
	Long:  "Bananimon keeps a virtual companion whose needs decay over time. Daily care builds bond and streak until it evolves.",

	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", defaultConfigPath(), "path to YAML config")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(sweepCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(stagesCmd)
}

func defaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".bananimon", "config.yaml")
}

// loadConfig reads the config file named by --config.
func loadConfig() (config.Config, error) {
	return loadConfigFrom(configPath)
}

func loadConfigFrom(path string) (config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return cfg, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

// openDB opens the database named by the config, defaulting to the home
// directory.
func openDB(cfg config.Config) (*store.DB, error) {
	dbPath := cfg.Database.Path
	if dbPath == "" {
		var err error
		dbPath, err = store.DefaultDBPath()
		if err != nil {
			return nil, fmt.Errorf("resolve db path: %w", err)
		}
	}
	return store.Open(dbPath)
}

// openEngine wires config, database and game engine for a command. The
// returned cleanup closes the database.
func openEngine(cfg config.Config, log *logger.Logger) (*game.Engine, func(), error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, nil, err
	}
	db, err := openDB(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("open database: %w", err)
	}
	eng := game.New(db, loc, log)
	eng.DecayInterval = cfg.Game.DecayInterval
	eng.StreakInterval = cfg.Game.StreakInterval
	return eng, func() { db.Close() }, nil
}
