package commands

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/streakboard/internal/contracts"
)

// calendarCmd represents the calendar command
var calendarCmd = &cobra.Command{
	Use:   "calendar",
	Short: "거래일 캘린더 관리",
	Long: `거래일 캘린더를 동기화하고 조회합니다.

Subcommands:
  sync     - 휴일 API에서 연간 캘린더 동기화
  show     - 연간 캘린더의 휴일/보충 근무일 표시
  resolve  - 날짜의 유효 거래일 계산

Example:
  go run ./cmd/streakboard calendar sync 2025
  go run ./cmd/streakboard calendar show 2025
  go run ./cmd/streakboard calendar resolve 2025-01-01`,
}

var (
	calendarSyncCmd = &cobra.Command{
		Use:   "sync [year]",
		Short: "연간 캘린더 동기화 (기본: 올해)",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runCalendarSync,
	}

	calendarShowCmd = &cobra.Command{
		Use:   "show [year]",
		Short: "연간 캘린더 조회 (기본: 올해)",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runCalendarShow,
	}

	calendarResolveCmd = &cobra.Command{
		Use:   "resolve [YYYY-MM-DD]",
		Short: "유효 거래일 계산 (기본: 오늘)",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runCalendarResolve,
	}

	// Show flags
	calendarShowAll bool
)

func init() {
	rootCmd.AddCommand(calendarCmd)
	calendarCmd.AddCommand(calendarSyncCmd)
	calendarCmd.AddCommand(calendarShowCmd)
	calendarCmd.AddCommand(calendarResolveCmd)

	calendarShowCmd.Flags().BoolVar(&calendarShowAll, "all", false, "평일 포함 모든 날짜 표시")
}

func runCalendarSync(cmd *cobra.Command, args []string) error {
	year, err := yearArg(args)
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

	start := time.Now()
	y, err := a.calendarStore.Sync(ctx, year)
	if err != nil {
		PrintError(fmt.Sprintf("Calendar sync %d failed", year))
		return err
	}

	PrintSuccess(fmt.Sprintf("Calendar %d synced in %.2fs: %d days, %d trading days",
		year, time.Since(start).Seconds(), y.Len(), y.TradingDays()))
	return nil
}

func runCalendarShow(cmd *cobra.Command, args []string) error {
	year, err := yearArg(args)
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

	y, err := a.calendarStore.GetYear(ctx, year)
	if err != nil {
		return fmt.Errorf("load calendar %d: %w", year, err)
	}

	PrintHeader(fmt.Sprintf("Trading calendar %d", year))
	PrintKeyValue("Days", strconv.Itoa(y.Len()), 12)
	PrintKeyValue("Trading days", strconv.Itoa(y.TradingDays()), 12)
	fmt.Println()

	widths := []int{10, 4, 8, 8, 20}
	PrintTableHeader([]string{"Date", "Day", "Trading", "Kind", "Name"}, widths)
	for _, day := range y.Days() {
		kind := dayKind(day)
		if !calendarShowAll && kind == "" {
			continue
		}
		PrintTableRow([]string{
			contracts.DateKey(day.Date),
			day.Date.Weekday().String()[:3],
			strconv.FormatBool(day.IsTradingDay()),
			kind,
			day.Name,
		}, widths)
	}

	return nil
}

func runCalendarResolve(cmd *cobra.Command, args []string) error {
	date := contracts.MarketDate(time.Now())
	if len(args) == 1 {
		parsed, err := contracts.ParseDate(args[0])
		if err != nil {
			return err
		}
		date = parsed
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

	PrintKeyValue("Requested", contracts.DateKey(date), 10)
	PrintKeyValue("Trade date", contracts.DateKey(tradeDate), 10)
	if !tradeDate.Equal(date) {
		PrintWarning(fmt.Sprintf("%s is not a trading day", contracts.DateKey(date)))
	}
	return nil
}

// dayKind labels non-ordinary days; ordinary weekdays are empty
func dayKind(day contracts.CalendarDay) string {
	switch {
	case day.IsHoliday:
		return "holiday"
	case day.IsMakeupWorkday:
		return "makeup"
	case contracts.IsWeekend(day.Date):
		return "weekend"
	default:
		return ""
	}
}

func yearArg(args []string) (int, error) {
	if len(args) == 0 {
		return contracts.MarketDate(time.Now()).Year(), nil
	}
	year, err := strconv.Atoi(args[0])
	if err != nil || year < 1990 || year > 2100 {
		return 0, fmt.Errorf("invalid year %q", args[0])
	}
	return year, nil
}
