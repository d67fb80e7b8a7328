package main

import (
	"fmt"
	"os"

	"github.com/rolo-app/rolo/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "rolo:", err)
		os.Exit(1)
	}
}
