package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime/debug"

	"github.com/chojs23/gopngquant/internal/cli"
	"github.com/chojs23/gopngquant/internal/run"
)

var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	opts, err := cli.Parse(cli.ExpandArgs(os.Args[1:]))
	if err == nil {
		err = opts.Validate()
	}
	if err != nil {
		code := report(os.Stdout, os.Stderr, opts, err)
		stop()
		os.Exit(code)
	}

	exitCode := run.Run(ctx, opts)
	stop()
	os.Exit(exitCode)
}

// report prints what the invocation asked for or what was wrong with it and
// returns the exit code.
func report(stdout, stderr io.Writer, opts cli.Options, err error) int {
	var syntaxErr *cli.SyntaxError
	switch {
	case errors.As(err, &syntaxErr):
		fmt.Fprintln(stderr, syntaxErr)
		return 2
	case errors.Is(err, cli.ErrVersion):
		fmt.Fprintln(stdout, versionString())
		return 0
	case errors.Is(err, cli.ErrHelp):
		fmt.Fprint(stdout, cli.Banner(versionString()))
		fmt.Fprintln(stdout)
		fmt.Fprintln(stdout, cli.Usage())
		return 0
	case errors.Is(err, cli.ErrMissingArguments):
		fmt.Fprint(stderr, cli.Banner(versionString()))
		fmt.Fprintln(stderr)
		fmt.Fprintln(stderr, cli.Usage())
		return 1
	case errors.Is(err, cli.ErrNoInputFiles):
		fmt.Fprintf(stderr, "error: %s\n\n", err)
		if opts.Verbose {
			fmt.Fprint(stderr, cli.Banner(versionString()))
		}
		fmt.Fprintln(stderr, cli.Usage())
		return 1
	default:
		fmt.Fprintln(stderr, err)
		return 2
	}
}

func versionString() string {
	if version != "dev" {
		return version
	}
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return version
	}
	if info.Main.Version == "" || info.Main.Version == "(devel)" {
		return version
	}
	return info.Main.Version
}
