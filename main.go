package main

import (
	"os"

	"github.com/conneroisu/tweetify/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(cmd.ExitCode(err))
	}
}
