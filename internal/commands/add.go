package commands

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"

	"todo/internal/config"
	"todo/internal/exitcode"
	"todo/internal/service"
)

func init() {
	Register(&AddCmd{})
}

// AddCmd implements the add command.
type AddCmd struct {
	printID bool
}

// SetPrintID makes add print the new task id instead of "ok" (for testing).
func (c *AddCmd) SetPrintID(printID bool) {
	c.printID = printID
}

func (c *AddCmd) Name() string      { return "add" }
func (c *AddCmd) Aliases() []string { return []string{"create"} }
func (c *AddCmd) Synopsis() string  { return "Add a task" }
func (c *AddCmd) Usage() string     { return "todo add [--id] <text...>" }
func (c *AddCmd) NeedsStore() bool  { return true }

func (c *AddCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.BoolVar(&c.printID, "id", false, "")
}

func (c *AddCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	// Join args to form the text; the manager trims it
	text := strings.Join(args, " ")

	task, ok, err := svc.Add(ctx, text)
	if err != nil {
		if errors.Is(err, service.ErrPersist) {
			return storeFailure(err, errOut)
		}
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}
	if !ok {
		fmt.Fprintln(errOut, "error: task text required")
		return exitcode.UserError
	}

	if cfg.Quiet {
		return exitcode.Success
	}
	if c.printID {
		fmt.Fprintln(out, task.ID)
	} else {
		fmt.Fprintln(out, "ok")
	}
	return exitcode.Success
}
