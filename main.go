package main

import (
	"fmt"
	"os"

	"github.com/temirov/deploysync/cmd/cli"
)

const (
	exitErrorTemplateConstant = "%v\n"
)

// main executes the deploysync command-line application.
func main() {
	if executionError := cli.Execute(); executionError != nil {
		fmt.Fprintf(os.Stderr, exitErrorTemplateConstant, executionError)
		os.Exit(1)
	}
}
