package main

import (
	"os"

	"github.com/wonny/streakboard/cmd/streakboard/commands"
)

// main is the entry point for the streakboard CLI
// ⭐ 통합 CLI 진입점: go run ./cmd/streakboard [command]
func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
