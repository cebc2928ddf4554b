package main

import (
	"fmt"
	"os"

	"github.com/surya16122114/immigration-ai-assistant/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
