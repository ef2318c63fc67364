// Command envctl inspects and switches the environment selected for each API
// of an envmanager registry.
//
// Usage:
//
//	envctl [flags] list
//	envctl [flags] current <api>
//	envctl [flags] select <api> <environment>
//	envctl [flags] url <api> [path]
//	envctl [flags] add <api> <environment> <url>
//	envctl [flags] remove <api> [environment]
//
// Built-in entries come from the pipe-delimited -table file and the -definitions
// YAML file. add and remove manage user-defined environments. Configuration is
// read from ENVCTL_* variables, see pkg/config.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, errUsage) {
			os.Exit(2)
		}
		fmt.Fprintf(os.Stderr, "envctl: %v\n", err)
		os.Exit(1)
	}
}
