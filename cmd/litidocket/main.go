// Command litidocket is the command-line client for the LitiDocket API
// server: deadline management, the month calendar, triage jobs, conflict
// reports, and precedent search.
package main

import (
	"os"

	"github.com/turtacn/LitiDocket/internal/interfaces/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
