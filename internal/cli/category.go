package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var categoryCmd = &cobra.Command{
	Use:   "category",
	Short: "Category maintenance",
}

// The palette editor owns category records; when it deletes one it runs
// this to clear the dangling reference from every affected block.
var categoryClearCmd = &cobra.Command{
	Use:   "clear [category-id]",
	Short: "Clear a deleted category from all blocks",
	Args:  cobra.ExactArgs(1),
	RunE:  runCategoryClear,
}

func init() {
	categoryCmd.AddCommand(categoryClearCmd)
}

func runCategoryClear(cmd *cobra.Command, args []string) error {
	sess, _, cleanup, err := openSession(cmd.Context())
	if err != nil {
		return err
	}
	defer cleanup()

	n := sess.ClearCategory(args[0])
	sess.Flush()

	fmt.Printf("✓ Cleared category from %d block(s)\n", n)
	return nil
}
