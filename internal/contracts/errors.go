package contracts

import "errors"

// ⭐ SSOT: 도메인 sentinel 에러는 여기서만 정의
var (
	// ErrSourceUnavailable is returned when an upstream source fails, times out,
	// answers with a non-success business code or returns no usable data.
	ErrSourceUnavailable = errors.New("source unavailable")

	// ErrInvalidPoolType is returned for an unknown pool key
	ErrInvalidPoolType = errors.New("invalid pool type")

	// ErrInvalidDate is returned for a date that is not YYYY-MM-DD
	ErrInvalidDate = errors.New("invalid date")
)
