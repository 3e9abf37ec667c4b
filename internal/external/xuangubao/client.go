package xuangubao

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/tidwall/gjson"
	"golang.org/x/time/rate"

	"github.com/wonny/streakboard/internal/contracts"
	"github.com/wonny/streakboard/internal/sourceconfig"
	"github.com/wonny/streakboard/pkg/httputil"
	"github.com/wonny/streakboard/pkg/logger"
)

// Client fetches daily limit pools from the xuangubao flash API
// ⭐ SSOT: 풀 API 호출은 이 클라이언트에서만
type Client struct {
	httpClient *httputil.Client
	logger     *logger.Logger
	baseURL    string
	source     sourceconfig.PoolSource
	limiter    *rate.Limiter
	now        func() time.Time
}

// NewClient creates a new pool client paced at ratePerSec requests per second
func NewClient(httpClient *httputil.Client, log *logger.Logger, baseURL string, source sourceconfig.PoolSource, ratePerSec int) *Client {
	if source.Referer != "" {
		httpClient.WithHeader("Referer", source.Referer)
	}
	return &Client{
		httpClient: httpClient,
		logger:     log,
		baseURL:    strings.TrimRight(baseURL, "/"),
		source:     source,
		limiter:    rate.NewLimiter(rate.Limit(ratePerSec), 1),
		now:        time.Now,
	}
}

// FetchPool returns one pool for one trade date as typed snapshots
func (c *Client) FetchPool(ctx context.Context, tradeDate time.Time, poolType contracts.PoolType) ([]contracts.StockPoolSnapshot, error) {
	endpoint, ok := c.source.Endpoint(poolType)
	if !ok || !endpoint.Enabled {
		return nil, fmt.Errorf("%w: %q not enabled", contracts.ErrInvalidPoolType, poolType)
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("pool rate limit: %w", err)
	}

	tradeDate = contracts.DateOf(tradeDate)
	body, err := c.httpClient.GetBody(ctx, c.buildURL(endpoint, tradeDate))
	if err != nil {
		return nil, fmt.Errorf("%w: pool %s %s: %v", contracts.ErrSourceUnavailable, poolType, contracts.DateKey(tradeDate), err)
	}

	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("%w: pool %s: malformed response", contracts.ErrSourceUnavailable, poolType)
	}
	if code := gjson.GetBytes(body, "code"); int(code.Int()) != c.source.SuccessCode {
		return nil, fmt.Errorf("%w: pool %s: code=%s message=%q",
			contracts.ErrSourceUnavailable, poolType, code.Raw, gjson.GetBytes(body, "message").String())
	}

	data := gjson.GetBytes(body, "data")
	if !data.IsArray() {
		c.logger.WithFields(map[string]interface{}{
			"pool_type":  poolType,
			"trade_date": contracts.DateKey(tradeDate),
		}).Info("Pool returned no data")
		return nil, nil
	}

	rows := data.Array()
	snapshots := make([]contracts.StockPoolSnapshot, 0, len(rows))
	for _, row := range rows {
		s, ok := convertRow(row, endpoint, tradeDate)
		if !ok {
			continue
		}
		snapshots = append(snapshots, s)
	}

	c.logger.WithFields(map[string]interface{}{
		"pool_type":  poolType,
		"trade_date": contracts.DateKey(tradeDate),
		"rows":       len(rows),
		"snapshots":  len(snapshots),
	}).Debug("Fetched pool")

	return snapshots, nil
}

func (c *Client) buildURL(endpoint sourceconfig.PoolEndpoint, tradeDate time.Time) string {
	params := url.Values{}
	params.Set("pool_name", endpoint.Upstream)

	// 당일 조회는 date 파라미터 생략
	today := contracts.MarketDate(c.now())
	if !tradeDate.Equal(today) {
		params.Set("date", contracts.DateKey(tradeDate))
	}

	return fmt.Sprintf("%s%s?%s", c.baseURL, c.source.Path, params.Encode())
}
