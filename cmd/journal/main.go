package main

import (
	"os"
)

func main() {
	cmd, a := newRootCmd()
	err := cmd.Execute()
	a.teardown()
	if err != nil {
		os.Exit(1)
	}
}
