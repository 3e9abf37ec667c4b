package sourceconfig

import (
	"fmt"
	"strings"

	"github.com/wonny/streakboard/internal/contracts"
)

// ValidationError 검증 실패 (프로그램 중단)
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validate checks all required constraints
func Validate(cfg *Config) error {
	if cfg.Version != 1 {
		return ValidationError{"version", "must be 1"}
	}

	// === Holiday ===
	if !strings.Contains(cfg.Holiday.PathTemplate, "{year}") {
		return ValidationError{"holiday.path_template", "must contain {year}"}
	}

	// === Pool ===
	if !strings.HasPrefix(cfg.Pool.Path, "/") {
		return ValidationError{"pool.path", "must start with /"}
	}
	if len(cfg.Pool.Pools) == 0 {
		return ValidationError{"pool.pools", "at least one pool required"}
	}

	seen := make(map[contracts.PoolType]bool)
	for i, p := range cfg.Pool.Pools {
		field := fmt.Sprintf("pool.pools[%d]", i)
		if _, err := contracts.ParsePoolType(string(p.Key)); err != nil {
			return ValidationError{field + ".key", err.Error()}
		}
		if seen[p.Key] {
			return ValidationError{field + ".key", fmt.Sprintf("duplicate pool %q", p.Key)}
		}
		seen[p.Key] = true

		if p.Upstream == "" {
			return ValidationError{field + ".upstream", "required"}
		}
		if p.StreakField == "" && p.Key != contracts.PoolBrokenLimitUp {
			return ValidationError{field + ".streak_field", "required except for broken_zt"}
		}
	}

	return nil
}
