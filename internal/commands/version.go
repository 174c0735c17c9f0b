package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"runtime/debug"

	"todo/internal/config"
	"todo/internal/exitcode"
	"todo/internal/service"
)

// Version is the application version.
// Override with -ldflags "-X todo/internal/commands.Version=x.y.z".
var Version = "0.1.0"

func init() {
	Register(&VersionCmd{})
}

// VersionCmd implements the version command.
type VersionCmd struct {
	build bool
}

func (c *VersionCmd) Name() string      { return "version" }
func (c *VersionCmd) Aliases() []string { return nil }
func (c *VersionCmd) Synopsis() string  { return "Print version" }
func (c *VersionCmd) Usage() string     { return "todo version [--build]" }
func (c *VersionCmd) NeedsStore() bool  { return false }

func (c *VersionCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.BoolVar(&c.build, "build", false, "")
}

func (c *VersionCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	fmt.Fprintf(out, "%s %s\n", config.AppName, Version)
	if !c.build {
		return exitcode.Success
	}

	info, ok := debug.ReadBuildInfo()
	if !ok {
		fmt.Fprintln(out, "build info unavailable")
		return exitcode.Success
	}
	fmt.Fprintf(out, "go      %s\n", info.GoVersion)
	fmt.Fprintf(out, "module  %s\n", info.Main.Path)
	for _, s := range info.Settings {
		if s.Key == "vcs.revision" {
			fmt.Fprintf(out, "commit  %s\n", s.Value)
		}
	}
	return exitcode.Success
}
