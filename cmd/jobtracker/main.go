package main

import (
	"os"

	"linkedin-job-tracker/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
