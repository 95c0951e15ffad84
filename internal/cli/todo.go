package cli

import (
	"fmt"
	"strings"

	"github.com/OverStackedLab/mytimeblock.com/internal/config"
	"github.com/OverStackedLab/mytimeblock.com/internal/store"
	"github.com/OverStackedLab/mytimeblock.com/internal/todo"
	"github.com/spf13/cobra"
)

var todoCmd = &cobra.Command{
	Use:   "todo",
	Short: "Manage the checklist beside the calendar",
	Long: `Manage the todo checklist.

Examples:
  timeblock todo add "Reply to Sam"
  timeblock todo list
  timeblock todo done 3f2a91c0
  timeblock todo rm 3f2a91c0`,
}

var todoAddCmd = &cobra.Command{
	Use:   "add [text]",
	Short: "Add a todo",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runTodoAdd,
}

var todoListCmd = &cobra.Command{
	Use:   "list",
	Short: "List todos",
	RunE:  runTodoList,
}

var todoDoneCmd = &cobra.Command{
	Use:   "done [id]",
	Short: "Toggle a todo's completed flag",
	Args:  cobra.ExactArgs(1),
	RunE:  runTodoDone,
}

var todoEditCmd = &cobra.Command{
	Use:   "edit [id] [text]",
	Short: "Rewrite a todo's text",
	Args:  cobra.MinimumNArgs(2),
	RunE:  runTodoEdit,
}

var todoRmCmd = &cobra.Command{
	Use:   "rm [id]",
	Short: "Delete a todo",
	Args:  cobra.ExactArgs(1),
	RunE:  runTodoRm,
}

func init() {
	todoCmd.AddCommand(todoAddCmd)
	todoCmd.AddCommand(todoListCmd)
	todoCmd.AddCommand(todoDoneCmd)
	todoCmd.AddCommand(todoEditCmd)
	todoCmd.AddCommand(todoRmCmd)
}

// openTodoList opens the user's checklist over the local KV bucket
func openTodoList() (*todo.List, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		cfg = config.DefaultConfig()
	}

	userID := localUserID
	if cfg.Backend == config.BackendCloud && cfg.UserID != "" {
		userID = cfg.UserID
	}

	local, err := store.OpenLocalDefault()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open database: %w", err)
	}

	cleanup := func() { _ = local.Close() }
	return todo.NewList(local, userID), cleanup, nil
}

func runTodoAdd(cmd *cobra.Command, args []string) error {
	list, cleanup, err := openTodoList()
	if err != nil {
		return err
	}
	defer cleanup()

	t, err := list.Add(cmd.Context(), strings.Join(args, " "))
	if err != nil {
		return err
	}

	fmt.Printf("✓ Added todo %q [%s]\n", t.Text, shortID(t.ID))
	return nil
}

func runTodoList(cmd *cobra.Command, args []string) error {
	list, cleanup, err := openTodoList()
	if err != nil {
		return err
	}
	defer cleanup()

	todos, err := list.Load(cmd.Context())
	if err != nil {
		return err
	}
	if len(todos) == 0 {
		fmt.Println("  (no todos)")
		return nil
	}

	for _, t := range todos {
		mark := " "
		if t.Completed {
			mark = "x"
		}
		fmt.Printf("  [%s] %s  [%s]\n", mark, t.Text, shortID(t.ID))
	}
	return nil
}

func runTodoDone(cmd *cobra.Command, args []string) error {
	list, cleanup, err := openTodoList()
	if err != nil {
		return err
	}
	defer cleanup()

	id, err := resolveTodoID(cmd, list, args[0])
	if err != nil {
		return err
	}

	t, err := list.Toggle(cmd.Context(), id)
	if err != nil {
		return err
	}

	state := "reopened"
	if t.Completed {
		state = "done"
	}
	fmt.Printf("✓ Marked %q %s\n", t.Text, state)
	return nil
}

func runTodoEdit(cmd *cobra.Command, args []string) error {
	list, cleanup, err := openTodoList()
	if err != nil {
		return err
	}
	defer cleanup()

	id, err := resolveTodoID(cmd, list, args[0])
	if err != nil {
		return err
	}

	t, err := list.Edit(cmd.Context(), id, strings.Join(args[1:], " "))
	if err != nil {
		return err
	}

	fmt.Printf("✓ Updated todo to %q\n", t.Text)
	return nil
}

func runTodoRm(cmd *cobra.Command, args []string) error {
	list, cleanup, err := openTodoList()
	if err != nil {
		return err
	}
	defer cleanup()

	id, err := resolveTodoID(cmd, list, args[0])
	if err != nil {
		return err
	}

	if err := list.Delete(cmd.Context(), id); err != nil {
		return err
	}

	fmt.Println("✓ Deleted todo")
	return nil
}

// resolveTodoID finds a todo by id or unique prefix
func resolveTodoID(cmd *cobra.Command, list *todo.List, idOrPrefix string) (string, error) {
	todos, err := list.Load(cmd.Context())
	if err != nil {
		return "", err
	}

	var matches []string
	for _, t := range todos {
		if t.ID == idOrPrefix {
			return t.ID, nil
		}
		if strings.HasPrefix(t.ID, idOrPrefix) {
			matches = append(matches, t.ID)
		}
	}

	switch len(matches) {
	case 1:
		return matches[0], nil
	case 0:
		return "", fmt.Errorf("no todo matches %q", idOrPrefix)
	default:
		return "", fmt.Errorf("%q is ambiguous (%d matches)", idOrPrefix, len(matches))
	}
}
