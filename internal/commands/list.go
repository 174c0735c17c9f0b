package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"todo/internal/config"
	"todo/internal/exitcode"
	"todo/internal/output"
	"todo/internal/service"
)

func init() {
	Register(&ListCmd{})
}

// ListCmd implements the list command.
// Handles both `todo` (no args) and `todo list`.
type ListCmd struct {
	showIDs bool
}

// SetShowIDs sets the --ids flag (for testing).
func (c *ListCmd) SetShowIDs(show bool) {
	c.showIDs = show
}

func (c *ListCmd) Name() string      { return "list" }
func (c *ListCmd) Aliases() []string { return []string{"ls"} }
func (c *ListCmd) Synopsis() string  { return "List tasks" }
func (c *ListCmd) Usage() string     { return "todo list [--ids]" }
func (c *ListCmd) NeedsStore() bool  { return true }

func (c *ListCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.BoolVar(&c.showIDs, "ids", false, "")
}

// numberedTask pairs a task with its 1-based position in the collection.
type numberedTask struct {
	num  int
	task service.Task
}

func (c *ListCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	if len(args) > 0 {
		fmt.Fprintf(errOut, "error: unexpected argument: %s\n", args[0])
		return exitcode.UserError
	}

	tasks := svc.Tasks()
	if len(tasks) == 0 {
		if !cfg.Quiet {
			fmt.Fprintln(out, "no tasks yet")
		}
		return exitcode.Success
	}

	// Numbers are collection positions, usable as task refs
	var active, completed []numberedTask
	for i, t := range tasks {
		if t.Completed {
			completed = append(completed, numberedTask{i + 1, t})
		} else {
			active = append(active, numberedTask{i + 1, t})
		}
	}

	c.printSection(out, "Active", active)
	c.printSection(out, "Completed", completed)
	return exitcode.Success
}

// printSection prints a header and its tasks. Empty sections are skipped.
func (c *ListCmd) printSection(out io.Writer, title string, tasks []numberedTask) {
	if len(tasks) == 0 {
		return
	}
	output.FormatSectionHeader(out, title, len(tasks))
	for _, nt := range tasks {
		output.FormatTask(out, nt.num, nt.task, c.showIDs)
	}
}
