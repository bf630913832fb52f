package main

import (
	"os"

	"github.com/symfluence/snowcover/backend/cmd/snowcover/commands"
)

// main is the entry point for the snowcover CLI:
// go run ./cmd/snowcover [command]
func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
