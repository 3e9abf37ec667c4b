package timor

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/wonny/streakboard/internal/contracts"
	"github.com/wonny/streakboard/internal/sourceconfig"
	"github.com/wonny/streakboard/pkg/httputil"
	"github.com/wonny/streakboard/pkg/logger"
)

// Client fetches holiday markings from the timor.tech year API
// ⭐ SSOT: 휴일 API 호출은 이 클라이언트에서만
type Client struct {
	httpClient *httputil.Client
	logger     *logger.Logger
	baseURL    string
	source     sourceconfig.HolidaySource
}

// NewClient creates a new holiday client
func NewClient(httpClient *httputil.Client, log *logger.Logger, baseURL string, source sourceconfig.HolidaySource) *Client {
	return &Client{
		httpClient: httpClient,
		logger:     log,
		baseURL:    strings.TrimRight(baseURL, "/"),
		source:     source,
	}
}

// FetchYear returns every marked day of the year.
// 비즈니스 코드 실패, 전송 오류, 빈 데이터 → ErrSourceUnavailable
func (c *Client) FetchYear(ctx context.Context, year int) ([]contracts.HolidayEntry, error) {
	path := strings.ReplaceAll(c.source.PathTemplate, "{year}", strconv.Itoa(year))
	url := c.baseURL + path

	body, err := c.httpClient.GetBody(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("%w: holiday %d: %v", contracts.ErrSourceUnavailable, year, err)
	}

	entries, err := c.parse(body, year)
	if err != nil {
		return nil, err
	}

	c.logger.WithFields(map[string]interface{}{
		"year":    year,
		"entries": len(entries),
	}).Info("Fetched holiday markings")

	return entries, nil
}

func (c *Client) parse(body []byte, year int) ([]contracts.HolidayEntry, error) {
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("%w: holiday %d: malformed response", contracts.ErrSourceUnavailable, year)
	}

	code := gjson.GetBytes(body, "code")
	if !code.Exists() || int(code.Int()) != c.source.SuccessCode {
		msg := gjson.GetBytes(body, "msg").String()
		return nil, fmt.Errorf("%w: holiday %d: code=%s msg=%q", contracts.ErrSourceUnavailable, year, code.Raw, msg)
	}

	holidays := gjson.GetBytes(body, "holiday")
	if !holidays.IsObject() {
		return nil, fmt.Errorf("%w: holiday %d: no holiday data", contracts.ErrSourceUnavailable, year)
	}

	var entries []contracts.HolidayEntry
	var parseErrs []error
	holidays.ForEach(func(key, value gjson.Result) bool {
		dateStr := value.Get("date").String()
		if dateStr == "" {
			c.logger.WithField("key", key.String()).Warn("Holiday entry without date, skipping")
			return true
		}

		date, err := contracts.ParseDate(dateStr)
		if err != nil {
			parseErrs = append(parseErrs, err)
			return true
		}
		if date.Year() != year {
			return true
		}

		isHoliday := value.Get("holiday").Bool()
		entries = append(entries, contracts.HolidayEntry{
			Date:            date,
			Name:            value.Get("name").String(),
			IsHoliday:       isHoliday,
			IsMakeupWorkday: !isHoliday || value.Get("type").String() == c.source.MakeupType,
		})
		return true
	})

	if len(parseErrs) > 0 {
		c.logger.WithError(errors.Join(parseErrs...)).Warn("Skipped malformed holiday entries")
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("%w: holiday %d: empty holiday data", contracts.ErrSourceUnavailable, year)
	}

	return entries, nil
}
