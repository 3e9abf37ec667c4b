package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/streakboard/internal/contracts"
)

// ladderCmd represents the ladder command
var ladderCmd = &cobra.Command{
	Use:   "ladder",
	Short: "연판 승급 사다리 출력",
	Long: `지정한 날짜(또는 직전 거래일)의 승급 사다리를 계산합니다.
데이터가 없으면 풀을 한 번 동기화한 뒤 다시 계산합니다.

Example:
  go run ./cmd/streakboard ladder
  go run ./cmd/streakboard ladder --date 2025-01-03 --exclude-st`,
	RunE: runLadder,
}

var (
	ladderDate      string
	ladderExcludeST bool
)

func init() {
	rootCmd.AddCommand(ladderCmd)

	ladderCmd.Flags().StringVar(&ladderDate, "date", "", "기준일 YYYY-MM-DD (기본: 오늘)")
	ladderCmd.Flags().BoolVar(&ladderExcludeST, "exclude-st", false, "ST 종목 제외")
}

func runLadder(cmd *cobra.Command, args []string) error {
	date, err := dateFlag(ladderDate)
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

	report, err := a.service.Ladder(ctx, date, ladderExcludeST)
	if err != nil {
		return fmt.Errorf("build ladder: %w", err)
	}

	PrintHeader(fmt.Sprintf("Promotion ladder %s (requested %s)",
		contracts.DateKey(report.TradeDate), contracts.DateKey(report.RequestedDate)))

	if len(report.Rungs) == 0 {
		PrintWarning("No ladder data for this trade date")
		return nil
	}

	widths := []int{8, 10, 9, 14}
	for _, rung := range report.Rungs {
		ratio := "-"
		if rung.ChanceRatio != nil {
			ratio = formatPercent(*rung.ChanceRatio)
		}
		fmt.Printf("\n▶ %s  (chance %s, %d stocks)\n", rung.Title, ratio, len(rung.Members))
		PrintTableHeader([]string{"Code", "Name", "Change", "Outcome"}, widths)
		for _, m := range rung.Members {
			PrintTableRow([]string{
				m.StockCode,
				m.StockName,
				formatPercent(m.ChangePercent),
				m.Outcome.String(),
			}, widths)
		}
	}

	return nil
}

// dateFlag parses a --date value, defaulting to today's exchange date
func dateFlag(value string) (time.Time, error) {
	if value == "" {
		return contracts.MarketDate(time.Now()), nil
	}
	return contracts.ParseDate(value)
}
