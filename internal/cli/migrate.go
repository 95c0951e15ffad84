package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/OverStackedLab/mytimeblock.com/internal/migrate"
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate [file]",
	Short: "Import a legacy event blob",
	Long: `Import events from a legacy JSON blob (a document with an "events"
array, as written by earlier releases). Safe to run more than once:
already-imported events are overwritten in place, not duplicated.

With no file argument, the blob is read from the local key-value bucket
where the oldest releases stored it.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runMigrate,
}

// legacyBlobKey is where the oldest releases kept the serialized array
const legacyBlobKey = "events"

func runMigrate(cmd *cobra.Command, args []string) error {
	sess, local, cleanup, err := openSession(cmd.Context())
	if err != nil {
		return err
	}
	defer cleanup()

	var data []byte
	if len(args) > 0 {
		data, err = os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", args[0], err)
		}
	} else {
		blob, err := local.Get(context.Background(), legacyBlobKey)
		if err != nil {
			return fmt.Errorf("failed to read legacy blob: %w", err)
		}
		if blob == "" {
			fmt.Println("No legacy events found.")
			return nil
		}
		data = []byte(blob)
	}

	events, err := migrate.Convert(data)
	if err != nil {
		return err
	}

	existing := make(map[string]bool)
	for _, e := range sess.Events() {
		existing[e.ID] = true
	}

	imported := 0
	for _, ev := range events {
		if existing[ev.ID] {
			if !sess.SetEvent(ev, nil) {
				continue
			}
		} else if !sess.ImportEvent(ev) {
			continue
		}
		imported++
	}
	sess.Flush()

	fmt.Printf("✓ Imported %d of %d legacy event(s)\n", imported, len(events))
	return nil
}
