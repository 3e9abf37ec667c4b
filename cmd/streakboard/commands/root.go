package commands

import (
	"github.com/spf13/cobra"
)

var (
	// Global flags
	verbose bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "streakboard",
	Short: "Streakboard - 연판 사다리(limit-up promotion ladder) 백엔드",
	Long: `Streakboard Unified CLI

A주 거래일 캘린더와 일일 상한가/하한가 풀을 수집하고
연속 상한가 승급 사다리를 계산합니다.

Usage:
  go run ./cmd/streakboard [command]

Examples:
  go run ./cmd/streakboard api
  go run ./cmd/streakboard calendar sync 2025
  go run ./cmd/streakboard ladder --date 2025-01-03 --exclude-st
  go run ./cmd/streakboard test-db`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug 로그 출력")
}
