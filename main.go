package main

import (
	"os"

	"github.com/jeryldev/sprintboard/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
