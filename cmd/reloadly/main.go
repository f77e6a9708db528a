package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/Reloadly/reloadly-sdk-go/core"
)

var Version = "dev"

func main() {
	core.Version = Version

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := execute(ctx, os.Stdout, os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		stop()
		os.Exit(1)
	}
}

// execute runs one CLI invocation with the given arguments.
func execute(ctx context.Context, stdout io.Writer, args []string) error {
	a := newApp(stdout)

	cmd := newRootCommand(a)
	cmd.SetArgs(args)
	cmd.SetOut(stdout)

	err := cmd.ExecuteContext(ctx)

	return errors.Join(err, a.teardown())
}
