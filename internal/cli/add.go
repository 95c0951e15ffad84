package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/OverStackedLab/mytimeblock.com/internal/schedule"
	"github.com/spf13/cobra"
)

var addCmd = &cobra.Command{
	Use:   "add [title]",
	Short: "Add a scheduled block",
	Long: `Add a block to the calendar.

Examples:
  timeblock add "Deep work" --start "2024-01-01 09:00" --end "2024-01-01 10:30"
  timeblock add "Conference" --start 2024-01-01 --end 2024-01-03`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAdd,
}

var (
	addStart string
	addEnd   string
)

func init() {
	addCmd.Flags().StringVarP(&addStart, "start", "s", "", "Start time (YYYY-MM-DD [HH:MM])")
	addCmd.Flags().StringVarP(&addEnd, "end", "e", "", "End time (YYYY-MM-DD [HH:MM])")
}

func runAdd(cmd *cobra.Command, args []string) error {
	sess, _, cleanup, err := openSession(cmd.Context())
	if err != nil {
		return err
	}
	defer cleanup()

	title := strings.Join(args, " ")

	start, err := parseWhen(addStart, time.Now())
	if err != nil {
		return fmt.Errorf("invalid --start: %w", err)
	}
	end, err := parseWhen(addEnd, start.Add(30*time.Minute))
	if err != nil {
		return fmt.Errorf("invalid --end: %w", err)
	}

	ev := sess.CreateFromSelection(start, end, schedule.ActionSelect)
	if ev == nil {
		return fmt.Errorf("failed to create block")
	}
	ev.Title = title
	if !sess.SetEvent(*ev, nil) {
		return fmt.Errorf("failed to save block")
	}
	sess.Flush()

	kind := "timed"
	if ev.AllDay {
		kind = "all-day"
	}
	fmt.Printf("✓ Added %s block %q (%s → %s)\n", kind, title,
		ev.Start.Format("2006-01-02 15:04"), ev.End.Format("2006-01-02 15:04"))
	return nil
}

// parseWhen accepts a date or a date-time, defaulting to fallback when empty
func parseWhen(s string, fallback time.Time) (time.Time, error) {
	if s == "" {
		return fallback, nil
	}
	for _, layout := range []string{"2006-01-02 15:04", "2006-01-02T15:04", "2006-01-02"} {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized time %q", s)
}
