package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/streakboard/internal/api"
	"github.com/wonny/streakboard/internal/api/handlers"
)

// apiCmd represents the api command
var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "API 서버 시작",
	Long: `REST API 서버를 시작합니다.

Endpoints:
  GET  /health                      - Health check
  GET  /api/calendar/{year}         - 연간 거래일 캘린더
  GET  /api/calendar/resolve        - 유효 거래일 계산 (?date=)
  POST /api/calendar/sync/{year}    - 캘린더 수동 동기화
  GET  /api/pool/ladder             - 승급 사다리 (?date=&exclude_st=)
  GET  /api/pool/query              - 풀 조회 (?date=&pool_type=&exclude_st=)
  GET  /api/pool/status             - 풀별 저장 건수 (?date=)
  POST /api/pool/sync               - 전체 풀 동기화 (?date=)
  POST /api/pool/sync/{poolType}    - 단일 풀 동기화 (?date=)

Example:
  go run ./cmd/streakboard api
  go run ./cmd/streakboard api --port 8080`,
	RunE: runAPIServer,
}

var (
	apiPort string
)

func init() {
	rootCmd.AddCommand(apiCmd)

	// Flags
	apiCmd.Flags().StringVar(&apiPort, "port", "", "API 서버 포트 (기본: PORT)")
}

func runAPIServer(cmd *cobra.Command, args []string) error {
	fmt.Println("=== Streakboard API Server ===")

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	// Override port if flag is set
	if apiPort != "" {
		a.cfg.Port = apiPort
	}

	router := api.NewRouter(api.Handlers{
		Health:   handlers.NewHealthHandler(a.db, a.redis),
		Calendar: handlers.NewCalendarHandler(a.calendarStore, a.resolver, a.log),
		Pool:     handlers.NewPoolHandler(a.service, a.syncer, a.poolRepo, a.resolver, a.log),
	}, a.log)

	server := api.New(a.cfg, a.log, router)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	fmt.Printf("\n✅ Server running on http://localhost:%s\n", a.cfg.Port)
	fmt.Println("\nPress Ctrl+C to stop")

	// Wait for interrupt signal or server failure
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case <-quit:
	}

	a.log.Info("Shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	a.log.Info("Server stopped")
	return nil
}
