package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/wonny/streakboard/internal/contracts"
	"github.com/wonny/streakboard/internal/stockpool"
	"github.com/wonny/streakboard/pkg/logger"
)

// PoolService answers ladder and pool queries (stockpool.Service)
type PoolService interface {
	Ladder(ctx context.Context, date time.Time, excludeST bool) (*contracts.LadderReport, error)
	Pool(ctx context.Context, date time.Time, poolType contracts.PoolType, excludeST bool) (*contracts.PoolReport, error)
}

// PoolCounter reports stored rows per pool (stockpool.Repository)
type PoolCounter interface {
	CountByDate(ctx context.Context, tradeDate time.Time) (map[contracts.PoolType]int, error)
}

// PoolHandler handles stock pool endpoints
// ⭐ SSOT: 풀/사다리 API 핸들러는 이 구조체에서만
type PoolHandler struct {
	service  PoolService
	syncer   stockpool.PoolSyncer
	counter  PoolCounter
	resolver contracts.TradingDayResolver
	logger   *logger.Logger
	now      func() time.Time
}

// NewPoolHandler creates a new pool handler
func NewPoolHandler(
	service PoolService,
	syncer stockpool.PoolSyncer,
	counter PoolCounter,
	resolver contracts.TradingDayResolver,
	log *logger.Logger,
) *PoolHandler {
	return &PoolHandler{
		service:  service,
		syncer:   syncer,
		counter:  counter,
		resolver: resolver,
		logger:   log,
		now:      time.Now,
	}
}

// GetLadder returns the promotion ladder
// GET /api/pool/ladder?date=YYYY-MM-DD&exclude_st=true
func (h *PoolHandler) GetLadder(w http.ResponseWriter, r *http.Request) {
	date, excludeST, ok := h.parseQuery(w, r)
	if !ok {
		return
	}

	report, err := h.service.Ladder(r.Context(), date, excludeST)
	if err != nil {
		h.logger.WithDate("date", date).WithError(err).Error("Failed to build ladder")
		respondSourceError(w, err, "Failed to build ladder")
		return
	}

	respondJSON(w, http.StatusOK, report)
}

// QueryPool returns one pool grouped by streak
// GET /api/pool/query?date=YYYY-MM-DD&pool_type=zt&exclude_st=true
func (h *PoolHandler) QueryPool(w http.ResponseWriter, r *http.Request) {
	date, excludeST, ok := h.parseQuery(w, r)
	if !ok {
		return
	}

	poolType, err := contracts.ParsePoolType(r.URL.Query().Get("pool_type"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid 'pool_type'")
		return
	}

	report, err := h.service.Pool(r.Context(), date, poolType, excludeST)
	if err != nil {
		h.logger.WithDate("date", date).WithField("pool_type", string(poolType)).WithError(err).Error("Failed to query pool")
		respondSourceError(w, err, "Failed to query pool")
		return
	}

	respondJSON(w, http.StatusOK, report)
}

// SyncPool pulls one pool for a date
// POST /api/pool/sync/{poolType}?date=YYYY-MM-DD
func (h *PoolHandler) SyncPool(w http.ResponseWriter, r *http.Request) {
	date, err := parseDateParam(r, h.now)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid 'date' format (expected YYYY-MM-DD)")
		return
	}

	poolType, err := contracts.ParsePoolType(mux.Vars(r)["poolType"])
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid pool type")
		return
	}

	result, err := h.syncer.Sync(r.Context(), date, poolType)
	if err != nil {
		h.logger.WithDate("date", date).WithField("pool_type", string(poolType)).WithError(err).Error("Pool sync failed")
		respondSourceError(w, err, "Pool sync failed")
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// SyncAllResponse reports a sync of every enabled pool
type SyncAllResponse struct {
	Status  string                 `json:"status"`
	Results []stockpool.SyncResult `json:"results"`
	Error   string                 `json:"error,omitempty"`
}

// SyncAll pulls every enabled pool for a date
// POST /api/pool/sync?date=YYYY-MM-DD
func (h *PoolHandler) SyncAll(w http.ResponseWriter, r *http.Request) {
	date, err := parseDateParam(r, h.now)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid 'date' format (expected YYYY-MM-DD)")
		return
	}

	results, err := h.syncer.SyncAll(r.Context(), date)
	if err != nil {
		h.logger.WithDate("date", date).WithError(err).Error("Pool sync incomplete")
		if len(results) == 0 {
			respondSourceError(w, err, "Pool sync failed")
			return
		}
		// 일부 성공: 성공분은 반환
		respondJSON(w, http.StatusMultiStatus, SyncAllResponse{
			Status:  "partial",
			Results: results,
			Error:   "Some pools failed to sync",
		})
		return
	}

	respondJSON(w, http.StatusOK, SyncAllResponse{Status: "synced", Results: results})
}

// StatusResponse lists stored rows per pool for a trade date
type StatusResponse struct {
	RequestedDate string         `json:"requested_date"`
	TradeDate     string         `json:"trade_date"`
	Counts        map[string]int `json:"counts"`
}

// Status reports how many rows each pool holds for the effective trade date
// GET /api/pool/status?date=YYYY-MM-DD
func (h *PoolHandler) Status(w http.ResponseWriter, r *http.Request) {
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

	counts, err := h.counter.CountByDate(r.Context(), tradeDate)
	if err != nil {
		h.logger.WithDate("trade_date", tradeDate).WithError(err).Error("Failed to count pools")
		respondError(w, http.StatusInternalServerError, "Failed to retrieve pool status")
		return
	}

	out := make(map[string]int, len(contracts.AllPoolTypes()))
	for _, p := range contracts.AllPoolTypes() {
		out[string(p)] = counts[p]
	}

	respondJSON(w, http.StatusOK, StatusResponse{
		RequestedDate: contracts.DateKey(date),
		TradeDate:     contracts.DateKey(tradeDate),
		Counts:        out,
	})
}

func (h *PoolHandler) parseQuery(w http.ResponseWriter, r *http.Request) (time.Time, bool, bool) {
	date, err := parseDateParam(r, h.now)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid 'date' format (expected YYYY-MM-DD)")
		return time.Time{}, false, false
	}

	excludeST, err := parseBoolParam(r, "exclude_st")
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid 'exclude_st' (expected true or false)")
		return time.Time{}, false, false
	}

	return date, excludeST, true
}
