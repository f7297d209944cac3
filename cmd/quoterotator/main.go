// Package main is the quoterotator command: the daemon that rotates quotes
// on a schedule and serves them locally, plus one-shot commands that edit
// the same stored state.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"
)

// Build-time variables, injected via ldflags.
// Example: go build -ldflags "-X main.Version=1.0.0 -X main.Commit=$(git rev-parse HEAD) -X main.BuildTime=$(date -u +%Y-%m-%dT%H:%M:%SZ)"
var (
	// Version is the semantic version of the binary.
	Version = "dev"

	// Commit is the git commit SHA.
	Commit = "unknown"

	// BuildTime is the timestamp when the binary was built.
	BuildTime = "unknown"
)

// Globals are the flags shared by every command.
type Globals struct {
	ConfigDir string           `help:"Directory holding base.yaml and profile overrides." default:"configs" env:"QUOTEROTATOR_CONFIG_DIR"`
	Profile   string           `short:"p" help:"Config profile to layer over base.yaml." default:"local" env:"APP_ENVIRONMENT"`
	LogLevel  string           `help:"Override log.level (trace, debug, info, warn, error)."`
	JSON      bool             `help:"Print results as JSON."`
	Version   kong.VersionFlag `help:"Show version and exit."`

	out io.Writer
}

// CLI is the command tree.
type CLI struct {
	Globals

	Serve    ServeCmd    `cmd:"" help:"Run the rotation daemon and the local HTTP API."`
	Status   StatusCmd   `cmd:"" default:"1" help:"Show the current quote."`
	Next     NextCmd     `cmd:"" help:"Advance to the next quote now."`
	Tick     TickCmd     `cmd:"" help:"Apply any rotation that is due."`
	List     ListCmd     `cmd:"" help:"List all quotes."`
	Add      AddCmd      `cmd:"" help:"Append a quote."`
	Edit     EditCmd     `cmd:"" help:"Replace the quote at INDEX."`
	Remove   RemoveCmd   `cmd:"" help:"Delete the quote at INDEX."`
	Interval IntervalCmd `cmd:"" help:"Set the rotation interval."`
	Style    StyleCmd    `cmd:"" help:"Change how the quote is displayed."`
	Import   ImportCmd   `cmd:"" help:"Append quotes from a YAML, JSON or text file."`
}

func main() {
	// A missing .env is normal; values from it never override the real environment.
	_ = godotenv.Load()

	if err := execute(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// execute parses args and runs the selected command, printing results to out.
func execute(args []string, out io.Writer) error {
	var cli CLI

	parser, err := kong.New(&cli,
		kong.Name("quoterotator"),
		kong.Description("Rotate through your quotes on a schedule."),
		kong.UsageOnError(),
		kong.Vars{"version": fmt.Sprintf("%s (%s, built %s)", Version, Commit, BuildTime)},
	)
	if err != nil {
		return err
	}

	ctx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	cli.out = out

	return ctx.Run(&cli.Globals)
}
