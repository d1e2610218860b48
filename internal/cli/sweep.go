package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/lazypower/bananimon/internal/logger"
)

var (
	sweepDecay   bool
	sweepStreaks bool
)

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Run the scheduled sweeps once",
	Long:  "Apply decay catch-up and the daily streak break to every companion, then exit. With no flags both sweeps run.",
	RunE:  runSweepOnce,
}

func init() {
	sweepCmd.Flags().BoolVar(&sweepDecay, "decay", false, "run the decay sweep")
	sweepCmd.Flags().BoolVar(&sweepStreaks, "streaks", false, "run the streak sweep")
}

func runSweepOnce(cmd *cobra.Command, args []string) error {
	if !sweepDecay && !sweepStreaks {
		sweepDecay, sweepStreaks = true, true
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log, err := logger.New(cfg.Log.Mode)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer log.Sync()

	eng, closeDB, err := openEngine(cfg, log)
	if err != nil {
		return err
	}
	defer closeDB()

	ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Minute)
	defer cancel()

	out := cmd.OutOrStdout()
	if sweepDecay {
		n, err := eng.SweepDecay(ctx)
		if err != nil {
			return fmt.Errorf("decay sweep: %w", err)
		}
		fmt.Fprintf(out, "decay: %d companions updated\n", n)
	}
	if sweepStreaks {
		n, err := eng.SweepStreaks(ctx)
		if err != nil {
			return fmt.Errorf("streak sweep: %w", err)
		}
		fmt.Fprintf(out, "streaks: %d streaks halved\n", n)
	}
	return nil
}
