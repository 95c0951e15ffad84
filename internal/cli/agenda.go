package cli

import (
	"fmt"
	"sort"
	"time"

	"github.com/OverStackedLab/mytimeblock.com/internal/model"
	"github.com/spf13/cobra"
)

var agendaCmd = &cobra.Command{
	Use:   "agenda [date]",
	Short: "List blocks for a day",
	Long: `List scheduled blocks for a day (default: today).

Examples:
  timeblock agenda
  timeblock agenda 2024-01-15
  timeblock agenda --all`,
	Args: cobra.MaximumNArgs(1),
	RunE: runAgenda,
}

var agendaAll bool

func init() {
	agendaCmd.Flags().BoolVarP(&agendaAll, "all", "a", false, "List every block")
}

func runAgenda(cmd *cobra.Command, args []string) error {
	sess, _, cleanup, err := openSession(cmd.Context())
	if err != nil {
		return err
	}
	defer cleanup()

	events := sess.Events()
	sort.Slice(events, func(i, j int) bool { return events[i].Start.Before(events[j].Start) })

	if !agendaAll {
		day := time.Now()
		if len(args) > 0 {
			day, err = time.ParseInLocation("2006-01-02", args[0], time.Local)
			if err != nil {
				return fmt.Errorf("invalid date %q: %w", args[0], err)
			}
		}
		dayStart := model.Midnight(day)
		dayEnd := dayStart.AddDate(0, 0, 1)

		filtered := events[:0]
		for _, e := range events {
			if e.Start.Before(dayEnd) && e.End.After(dayStart) {
				filtered = append(filtered, e)
			}
		}
		events = filtered
		fmt.Printf("Agenda for %s:\n", dayStart.Format("Mon Jan 2 2006"))
	}

	if len(events) == 0 {
		fmt.Println("  (no blocks)")
		return nil
	}

	for _, e := range events {
		when := fmt.Sprintf("%s–%s", e.Start.Format("15:04"), e.End.Format("15:04"))
		if e.AllDay {
			when = "all day      "
		}
		if agendaAll {
			when = e.Start.Format("2006-01-02 ") + when
		}
		fmt.Printf("  %s  %s  [%s]\n", when, e.Title, shortID(e.ID))
	}
	return nil
}

// shortID truncates a uuid for display; legacy numeric ids pass through
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
