package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var duplicateCmd = &cobra.Command{
	Use:   "duplicate [id]",
	Short: "Duplicate a block one day forward",
	Args:  cobra.ExactArgs(1),
	RunE:  runDuplicate,
}

func runDuplicate(cmd *cobra.Command, args []string) error {
	sess, _, cleanup, err := openSession(cmd.Context())
	if err != nil {
		return err
	}
	defer cleanup()

	ev, err := resolveEvent(sess.Events(), args[0])
	if err != nil {
		return err
	}

	dup, ok := sess.Duplicate(ev.ID)
	if !ok {
		return fmt.Errorf("failed to duplicate %q", ev.Title)
	}
	sess.Flush()

	fmt.Printf("✓ Duplicated %q to %s\n", dup.Title, dup.Start.Format("2006-01-02 15:04"))
	return nil
}
