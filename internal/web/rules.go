package web

import (
	"gopkg.in/yaml.v3"

	"github.com/benbenpetit/Seeet/internal/config"
)

// RulesInfo is the JSON representation of the active rules for /api/rules.
type RulesInfo struct {
	InitialBoardSize int    `json:"initialBoardSize"`
	ReplenishCount   int    `json:"replenishCount"`
	MaxBoardSize     int    `json:"maxBoardSize"`
	AutoReplenish    bool   `json:"autoReplenish"`
	SuccessDelay     string `json:"successDelay"`
	FailDelay        string `json:"failDelay"`
}

func rulesInfo(r config.Rules) RulesInfo {
	return RulesInfo{
		InitialBoardSize: r.InitialBoardSize,
		ReplenishCount:   r.ReplenishCount,
		MaxBoardSize:     r.MaxBoardSize,
		AutoReplenish:    r.AutoReplenish,
		SuccessDelay:     r.SuccessDelay,
		FailDelay:        r.FailDelay,
	}
}

// encodeRulesYAML renders the rules in the config file format, so they can
// be saved and passed back with --config.
func encodeRulesYAML(r config.Rules) ([]byte, error) {
	return yaml.Marshal(map[string]config.Rules{"rules": r})
}
