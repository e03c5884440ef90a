package config

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
)

// Ruleset holds the table rules applied between rounds.
type Ruleset struct {
	StartingScore int `json:"starting_score"`
	ReturnScore   int `json:"return_score"`
	// TobiEnabled ends the session as soon as any score goes negative.
	TobiEnabled bool `json:"tobi_enabled"`
}

var (
	cfg      *Ruleset
	loadOnce sync.Once
	loadErr  error
)

func standardRuleset() Ruleset {
	return Ruleset{
		StartingScore: 25000,
		ReturnScore:   30000,
		TobiEnabled:   true,
	}
}

// LoadRuleset loads the ruleset from the given path. Missing fields keep
// their standard values.
func LoadRuleset(path string) error {
	loadOnce.Do(func() {
		data, err := os.ReadFile(path)
		if err != nil {
			loadErr = fmt.Errorf("failed to read ruleset: %w", err)
			return
		}

		c := standardRuleset()
		if err := json.Unmarshal(data, &c); err != nil {
			loadErr = fmt.Errorf("failed to unmarshal ruleset: %w", err)
			return
		}
		cfg = &c
	})
	return loadErr
}

// GetRuleset returns the loaded ruleset, or the standard defaults when no
// file was loaded.
func GetRuleset() Ruleset {
	if cfg == nil {
		return standardRuleset()
	}
	return *cfg
}
