package main

import (
	"fmt"
	"os"

	"github.com/sadopc/taskr/internal/cli"
	apperrors "github.com/sadopc/taskr/internal/errors"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	if err := cli.NewRootCommand(version).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %s\n", apperrors.GetUserMessage(err))
		os.Exit(1)
	}
}
