package sourceconfig

import "github.com/wonny/streakboard/internal/contracts"

// Config is the upstream endpoint registry
// ⭐ SSOT: 외부 소스 엔드포인트/필드 매핑은 여기서만
type Config struct {
	Version int           `yaml:"version" json:"version"`
	Holiday HolidaySource `yaml:"holiday" json:"holiday"`
	Pool    PoolSource    `yaml:"pool" json:"pool"`
}

// HolidaySource describes the holiday calendar endpoint
type HolidaySource struct {
	// PathTemplate contains a {year} placeholder
	PathTemplate string `yaml:"path_template" json:"path_template"`
	SuccessCode  int    `yaml:"success_code" json:"success_code"`
	MakeupType   string `yaml:"makeup_type" json:"makeup_type"` // type 값이 이것이면 보충 근무일
}

// PoolSource describes the limit pool endpoint
type PoolSource struct {
	Path        string         `yaml:"path" json:"path"`
	SuccessCode int            `yaml:"success_code" json:"success_code"`
	Referer     string         `yaml:"referer" json:"referer"`
	Pools       []PoolEndpoint `yaml:"pools" json:"pools"`
}

// PoolEndpoint maps a pool key to its upstream name and streak field
type PoolEndpoint struct {
	Key      contracts.PoolType `yaml:"key" json:"key"`
	Upstream string             `yaml:"upstream" json:"upstream"`
	// StreakField is the upstream row field holding the streak; empty forces 1
	StreakField string `yaml:"streak_field" json:"streak_field"`
	Enabled     bool   `yaml:"enabled" json:"enabled"`
}

// Endpoint returns the registry entry of a pool
func (p PoolSource) Endpoint(key contracts.PoolType) (PoolEndpoint, bool) {
	for _, e := range p.Pools {
		if e.Key == key {
			return e, true
		}
	}
	return PoolEndpoint{}, false
}

// EnabledPools returns enabled pool keys in registry order
func (p PoolSource) EnabledPools() []contracts.PoolType {
	var out []contracts.PoolType
	for _, e := range p.Pools {
		if e.Enabled {
			out = append(out, e.Key)
		}
	}
	return out
}

// Defaults is the built-in registry used when no file is configured
func Defaults() *Config {
	return &Config{
		Version: 1,
		Holiday: HolidaySource{
			PathTemplate: "/api/holiday/year/{year}",
			SuccessCode:  0,
			MakeupType:   "补班",
		},
		Pool: PoolSource{
			Path:        "/api/pool/detail",
			SuccessCode: 20000,
			Referer:     "https://xuangubao.com.cn",
			Pools: []PoolEndpoint{
				{Key: contracts.PoolLimitUp, Upstream: "limit_up", StreakField: "limit_up_days", Enabled: true},
				{Key: contracts.PoolLimitDown, Upstream: "limit_down", StreakField: "limit_down_days", Enabled: true},
				{Key: contracts.PoolYesterdayLimitUp, Upstream: "yesterday_limit_up", StreakField: "yesterday_limit_up_days", Enabled: true},
				{Key: contracts.PoolBrokenLimitUp, Upstream: "limit_up_broken", StreakField: "", Enabled: true},
				{Key: contracts.PoolStrong, Upstream: "super_stock", StreakField: "limit_up_days", Enabled: true},
			},
		},
	}
}
