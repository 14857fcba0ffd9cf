package main

import (
	"fmt"
	"os"

	"github.com/futig/survey-agent/internal/builder"
	"github.com/futig/survey-agent/internal/cli"
)

func main() {
	if err := cli.NewRootCmd(builder.BuildAgent).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
