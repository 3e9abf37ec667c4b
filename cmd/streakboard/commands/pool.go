package commands

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/wonny/streakboard/internal/contracts"
	"github.com/wonny/streakboard/internal/stockpool"
)

// poolCmd represents the pool command
var poolCmd = &cobra.Command{
	Use:   "pool",
	Short: "상한가/하한가 풀 관리",
	Long: `일일 풀 데이터를 수집하고 저장 현황을 조회합니다.

Pools: zt (상한가), dt (하한가), yesterday_zt (전일 상한가),
       broken_zt (상한가 이탈), super_stock (강세주)

Example:
  go run ./cmd/streakboard pool sync
  go run ./cmd/streakboard pool sync zt --date 2025-01-03
  go run ./cmd/streakboard pool status --date 2025-01-03`,
}

var (
	poolSyncCmd = &cobra.Command{
		Use:   "sync [pool]",
		Short: "풀 동기화 (기본: 활성화된 전체 풀)",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runPoolSync,
	}

	poolStatusCmd = &cobra.Command{
		Use:   "status",
		Short: "풀별 저장 건수 조회",
		RunE:  runPoolStatus,
	}

	poolDate string
)

func init() {
	rootCmd.AddCommand(poolCmd)
	poolCmd.AddCommand(poolSyncCmd)
	poolCmd.AddCommand(poolStatusCmd)

	poolCmd.PersistentFlags().StringVar(&poolDate, "date", "", "기준일 YYYY-MM-DD (기본: 오늘)")
}

func runPoolSync(cmd *cobra.Command, args []string) error {
	date, err := dateFlag(poolDate)
	if err != nil {
		return err
	}

	var poolType contracts.PoolType
	if len(args) == 1 {
		if poolType, err = contracts.ParsePoolType(args[0]); err != nil {
			return err
		}
	}

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, cancel := interruptContext()
	defer cancel()

	var results []stockpool.SyncResult
	var syncErr error
	if poolType != "" {
		res, err := a.syncer.Sync(ctx, date, poolType)
		if err != nil {
			return err
		}
		results = append(results, *res)
	} else {
		results, syncErr = a.syncer.SyncAll(ctx, date)
	}

	widths := []int{14, 10, 8, 8}
	PrintTableHeader([]string{"Pool", "Trade date", "Fetched", "Inserted"}, widths)
	for _, r := range results {
		PrintTableRow([]string{
			string(r.PoolType),
			contracts.DateKey(r.TradeDate),
			strconv.Itoa(r.Fetched),
			strconv.FormatInt(r.Inserted, 10),
		}, widths)
	}

	if syncErr != nil {
		// errors.Join 결과를 풀 단위로 출력
		var joined interface{ Unwrap() []error }
		if errors.As(syncErr, &joined) {
			for _, e := range joined.Unwrap() {
				PrintError(e.Error())
			}
		} else {
			PrintError(syncErr.Error())
		}
		return fmt.Errorf("pool sync incomplete")
	}

	PrintSuccess(fmt.Sprintf("%d pool(s) synced", len(results)))
	return nil
}

func runPoolStatus(cmd *cobra.Command, args []string) error {
	date, err := dateFlag(poolDate)
	if err != nil {
		return err
	}

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, cancel := interruptContext()
	defer cancel()

	tradeDate, err := a.resolver.ResolveValidTradingDay(ctx, date)
	if err != nil {
		return fmt.Errorf("resolve %s: %w", contracts.DateKey(date), err)
	}

	counts, err := a.poolRepo.CountByDate(ctx, tradeDate)
	if err != nil {
		return fmt.Errorf("count pools: %w", err)
	}

	PrintHeader(fmt.Sprintf("Stored pools for %s", contracts.DateKey(tradeDate)))
	for _, p := range contracts.AllPoolTypes() {
		PrintKeyValue(string(p), strconv.Itoa(counts[p]), 14)
	}
	return nil
}
