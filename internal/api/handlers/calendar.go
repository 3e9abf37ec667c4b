package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/wonny/streakboard/internal/calendar"
	"github.com/wonny/streakboard/internal/contracts"
	"github.com/wonny/streakboard/pkg/logger"
)

// CalendarStore is the part of calendar.Store the handler needs
type CalendarStore interface {
	GetYear(ctx context.Context, year int) (*calendar.YearCalendar, error)
	Sync(ctx context.Context, year int) (*calendar.YearCalendar, error)
}

// CalendarHandler handles trading calendar endpoints
// ⭐ SSOT: 캘린더 API 핸들러는 이 구조체에서만
type CalendarHandler struct {
	store    CalendarStore
	resolver contracts.TradingDayResolver
	logger   *logger.Logger
	now      func() time.Time
}

// NewCalendarHandler creates a new calendar handler
func NewCalendarHandler(store CalendarStore, resolver contracts.TradingDayResolver, log *logger.Logger) *CalendarHandler {
	return &CalendarHandler{
		store:    store,
		resolver: resolver,
		logger:   log,
		now:      time.Now,
	}
}

// YearResponse is one calendar year
type YearResponse struct {
	Year        int                     `json:"year"`
	TradingDays int                     `json:"trading_days"`
	Days        []contracts.CalendarDay `json:"days"`
}

func newYearResponse(y *calendar.YearCalendar) YearResponse {
	return YearResponse{
		Year:        y.Year(),
		TradingDays: y.TradingDays(),
		Days:        y.Days(),
	}
}

// GetYear returns every day of a year
// GET /api/calendar/{year}
func (h *CalendarHandler) GetYear(w http.ResponseWriter, r *http.Request) {
	year, ok := parseYear(w, r)
	if !ok {
		return
	}

	y, err := h.store.GetYear(r.Context(), year)
	if err != nil {
		h.logger.WithField("year", year).WithError(err).Error("Failed to load calendar")
		respondSourceError(w, err, "Failed to retrieve calendar")
		return
	}

	respondJSON(w, http.StatusOK, newYearResponse(y))
}

// ResolveResponse is the effective trading day for a requested date
type ResolveResponse struct {
	RequestedDate string `json:"requested_date"`
	TradeDate     string `json:"trade_date"`
	IsTradingDay  bool   `json:"is_trading_day"`
}

// Resolve returns the most recent trading day on or before ?date
// GET /api/calendar/resolve?date=YYYY-MM-DD
func (h *CalendarHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	date, err := parseDateParam(r, h.now)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid 'date' format (expected YYYY-MM-DD)")
		return
	}

	tradeDate, err := h.resolver.ResolveValidTradingDay(r.Context(), date)
	if err != nil {
		h.logger.WithDate("date", date).WithError(err).Error("Failed to resolve trading day")
		respondSourceError(w, err, "Failed to resolve trading day")
		return
	}

	respondJSON(w, http.StatusOK, ResolveResponse{
		RequestedDate: contracts.DateKey(date),
		TradeDate:     contracts.DateKey(tradeDate),
		IsTradingDay:  tradeDate.Equal(date),
	})
}

// Sync refreshes a year from the holiday source
// POST /api/calendar/sync/{year}
func (h *CalendarHandler) Sync(w http.ResponseWriter, r *http.Request) {
	year, ok := parseYear(w, r)
	if !ok {
		return
	}

	y, err := h.store.Sync(r.Context(), year)
	if err != nil {
		h.logger.WithField("year", year).WithError(err).Error("Calendar sync failed")
		respondSourceError(w, err, "Calendar sync failed")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":       "synced",
		"year":         y.Year(),
		"days":         y.Len(),
		"trading_days": y.TradingDays(),
	})
}

func parseYear(w http.ResponseWriter, r *http.Request) (int, bool) {
	year, err := strconv.Atoi(mux.Vars(r)["year"])
	if err != nil || year < 1990 || year > 2100 {
		respondError(w, http.StatusBadRequest, "Invalid year")
		return 0, false
	}
	return year, true
}

// respondSourceError maps upstream failures to 502, everything else to 500
func respondSourceError(w http.ResponseWriter, err error, message string) {
	if errors.Is(err, contracts.ErrSourceUnavailable) {
		respondError(w, http.StatusBadGateway, message)
		return
	}
	respondError(w, http.StatusInternalServerError, message)
}
