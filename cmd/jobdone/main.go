// jobdone - task completion notifications

package main

import (
	"os"

	"github.com/ariel-frischer/jobdone/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(cli.ExitCode(err))
	}
}
