// Command spendbook is a personal expense ledger with an interactive menu and
// one-shot subcommands.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/ArionMiles/spendbook/pkg/config"
	"github.com/ArionMiles/spendbook/pkg/logging"
)

const usage = `Usage: spendbook [-config FILE] <command> [flags]

Commands:
  menu         Interactive menu (default)
  add          Add an expense: -date D -category C -amount A [-budget B]
  remove       Remove an expense by its listed position: -index N
  list         List expenses [-month YYYY-MM]
  month        List expenses for a month [YYYY-MM], default current month
  total        Print the total of all expenses
  categories   Totals per category [-month YYYY-MM]
  export       Mirror the ledger: -to csv|json|sqlite|postgres|sheets [-out PATH]
  status       Check configuration, storage and credentials
  help         Show this help

Configuration is read from the JSON file, a .env file and the environment.
`

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdin, os.Stdout); err != nil {
		slog.Error("spendbook failed", "error", err)
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout io.Writer) error {
	fs := flag.NewFlagSet("spendbook", flag.ContinueOnError)
	fs.SetOutput(stdout)
	fs.Usage = func() { fmt.Fprint(stdout, usage) }
	configPath := fs.String("config", "config.json", "path to the optional JSON config file")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}

	// A missing .env is normal.
	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	logger := logging.Setup(logging.FromValues(cfg.LogLevel, cfg.LogFormat))

	command, rest := "menu", fs.Args()
	if len(rest) > 0 {
		command, rest = rest[0], rest[1:]
	}

	a := newApp(cfg, logger, stdin, stdout)

	switch command {
	case "menu":
		return a.runMenu(ctx)
	case "add":
		return a.runAdd(ctx, rest)
	case "remove":
		return a.runRemove(ctx, rest)
	case "list":
		return a.runList(ctx, rest)
	case "month":
		return a.runMonth(ctx, rest)
	case "total":
		return a.runTotal(ctx)
	case "categories":
		return a.runCategories(ctx, rest)
	case "export":
		return a.runExport(ctx, rest)
	case "status":
		return a.runStatus(ctx)
	case "help", "-h", "--help":
		fmt.Fprint(stdout, usage)
		return nil
	default:
		fmt.Fprint(stdout, usage)
		return fmt.Errorf("unknown command %q", command)
	}
}
