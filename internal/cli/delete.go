package cli

import (
	"fmt"
	"strings"

	"github.com/OverStackedLab/mytimeblock.com/internal/model"
	"github.com/spf13/cobra"
)

var deleteCmd = &cobra.Command{
	Use:   "delete [id]",
	Short: "Delete a block",
	Long: `Delete a block by id (or unique id prefix).

Examples:
  timeblock delete 3f2a91c0`,
	Args: cobra.ExactArgs(1),
	RunE: runDelete,
}

func runDelete(cmd *cobra.Command, args []string) error {
	sess, _, cleanup, err := openSession(cmd.Context())
	if err != nil {
		return err
	}
	defer cleanup()

	ev, err := resolveEvent(sess.Events(), args[0])
	if err != nil {
		return err
	}

	sess.DeleteEvent(ev.ID)
	sess.Flush()

	fmt.Printf("✓ Deleted %q\n", ev.Title)
	return nil
}

// resolveEvent finds an event by id or unique prefix
func resolveEvent(events []model.Event, idOrPrefix string) (model.Event, error) {
	var matches []model.Event
	for _, e := range events {
		if e.ID == idOrPrefix {
			return e, nil
		}
		if strings.HasPrefix(e.ID, idOrPrefix) {
			matches = append(matches, e)
		}
	}

	switch len(matches) {
	case 1:
		return matches[0], nil
	case 0:
		return model.Event{}, fmt.Errorf("no block matches %q", idOrPrefix)
	default:
		return model.Event{}, fmt.Errorf("%q is ambiguous (%d matches)", idOrPrefix, len(matches))
	}
}
