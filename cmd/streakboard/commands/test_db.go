package commands

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/streakboard/pkg/config"
	"github.com/wonny/streakboard/pkg/database"
)

// testDBCmd represents the test-db command
var testDBCmd = &cobra.Command{
	Use:   "test-db",
	Short: "PostgreSQL 연결 테스트",
	Long: `데이터베이스 연결과 스키마를 점검합니다.

이 명령어는:
- config에서 DATABASE_URL 로드
- Ping / Health Check
- data.trading_calendar, data.stock_pool_snapshots 테이블 확인
- Connection Pool 통계 표시

Example:
  go run ./cmd/streakboard test-db`,
	RunE: runTestDB,
}

func init() {
	rootCmd.AddCommand(testDBCmd)
}

// requiredTables must exist (migrations/001_streakboard.sql)
var requiredTables = []string{
	"data.trading_calendar",
	"data.stock_pool_snapshots",
}

func runTestDB(cmd *cobra.Command, args []string) error {
	fmt.Println("=== Streakboard Database Connection Test ===")

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("❌ Failed to load config: %w", err)
	}
	fmt.Printf("✅ Config loaded (ENV: %s)\n", cfg.Env)
	fmt.Printf("   Database URL: %s\n\n", maskPassword(cfg.Database.URL))

	db, err := database.New(cfg)
	if err != nil {
		return fmt.Errorf("❌ Failed to connect to database: %w", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	status, err := db.HealthCheck(ctx)
	if err != nil {
		return fmt.Errorf("❌ Health check failed: %w", err)
	}
	PrintSuccess(fmt.Sprintf("Ping successful (%v)", status.ResponseTime))

	fmt.Println("\nChecking schema...")
	missing := 0
	for _, table := range requiredTables {
		var exists bool
		if err := db.Pool.QueryRow(ctx, `SELECT to_regclass($1) IS NOT NULL`, table).Scan(&exists); err != nil {
			return fmt.Errorf("❌ Schema check failed: %w", err)
		}
		if exists {
			PrintSuccess(table)
		} else {
			PrintError(table + " (run migrations/001_streakboard.sql)")
			missing++
		}
	}

	fmt.Println("\n📊 Connection Pool Statistics:")
	PrintKeyValue("Max Connections", fmt.Sprint(status.Stats.MaxConns), 20)
	PrintKeyValue("Total Connections", fmt.Sprint(status.Stats.TotalConns), 20)
	PrintKeyValue("Acquired", fmt.Sprint(status.Stats.AcquiredConns), 20)
	PrintKeyValue("Idle", fmt.Sprint(status.Stats.IdleConns), 20)
	PrintKeyValue("Acquire Count", fmt.Sprint(status.Stats.AcquireCount), 20)

	if missing > 0 {
		return fmt.Errorf("%d table(s) missing", missing)
	}

	fmt.Println("\n✅ All tests passed!")
	return nil
}

// maskPassword hides the password of a database URL for display
func maskPassword(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return "***"
	}
	return u.Redacted()
}
