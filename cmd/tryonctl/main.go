package main

import (
	"context"
	"os"

	"github.com/deploymenttheory/go-tryon-dashboard-client/internal/cli"
)

var (
	executeCmd  = cli.Execute
	mapExitCode = cli.ExitCode
	terminate   = os.Exit
)

func run(args []string) int {
	if err := executeCmd(context.Background(), args); err != nil {
		return mapExitCode(err)
	}
	return 0
}

func main() {
	terminate(run(os.Args[1:]))
}
