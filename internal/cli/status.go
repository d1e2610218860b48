package cli

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/lazypower/bananimon/internal/game"
	"github.com/lazypower/bananimon/internal/logger"
	"github.com/lazypower/bananimon/internal/store"
)

// --- status command ---

var statusCmd = &cobra.Command{
	Use:   "status <companion-id>",
	Short: "Show a companion's needs and progress",
	Args:  cobra.ExactArgs(1),
	RunE:  runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	eng, closeDB, err := openEngine(cfg, logger.Nop())
	if err != nil {
		return err
	}
	defer closeDB()

	ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
	defer cancel()

	c, err := eng.Companion(ctx, args[0])
	if err != nil {
		return fmt.Errorf("companion %s: %w", args[0], err)
	}
	printCompanion(cmd.OutOrStdout(), c, eng.Loc)
	return nil
}

func printCompanion(w io.Writer, c *store.Companion, loc *time.Location) {
	stage := game.Stage(c.EvolutionStage).Info()

	fmt.Fprintf(w, "%s the %s (%s)\n", c.Name, c.AnimalType, c.Temperament)
	fmt.Fprintf(w, "  stage:   %s - %s\n", stage.Name, stage.Description)
	if !stage.Terminal {
		fmt.Fprintf(w, "  next:    bond %.0f, streak %d\n", stage.NextBond, stage.NextStreak)
	}
	fmt.Fprintf(w, "  bond:    %.2f\n", c.Bond)
	fmt.Fprintf(w, "  streak:  %d\n", c.CareStreak)
	fmt.Fprintf(w, "  hunger %d  rest %d  cleanliness %d  mood %d  focus %d\n",
		c.Hunger, c.Rest, c.Cleanliness, c.Mood, c.Focus)
	fmt.Fprintf(w, "  last care: %s\n", c.LastCareAt.In(loc).Format("2006-01-02 15:04"))
	fmt.Fprintf(w, "  rest hour: %02d:00 UTC\n", c.RestWindowUTC)
}

// --- stages command ---

var stagesCmd = &cobra.Command{
	Use:   "stages",
	Short: "List evolution stages and their thresholds",
	Run: func(cmd *cobra.Command, args []string) {
		printStages(cmd.OutOrStdout())
	},
}

func printStages(w io.Writer) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "STAGE\tNAME\tLEAVE AT\tDESCRIPTION")
	for _, s := range game.Stages() {
		next := "-"
		if !s.Terminal {
			next = fmt.Sprintf("bond %.0f, streak %d", s.NextBond, s.NextStreak)
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", s.Stage, s.Name, next, s.Description)
	}
	tw.Flush()
}
