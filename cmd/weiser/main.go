// Command weiser runs declarative data-quality checks over SQL sources.
package main

import (
	"fmt"
	"os"

	"github.com/weiser-ai/weiser-go/internal/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
