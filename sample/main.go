package main

import (
	"os"

	"github.com/super-flat/actorexpect/sample/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
