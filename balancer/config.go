package balancer

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Policy holds the engine's tunables. Window and Ratio are the usual
// operator knobs; the remaining thresholds are empirical constants
// inherited from the stock automover, kept as data rather than
// re-derived.
type Policy struct {
	// Window is the rolling history length in ticks and the warm-up
	// threshold after every (re)connection.
	Window int `yaml:"window"`
	// Ratio is the maximum youngest/oldest smoothed-age ratio below
	// which a page move is proposed.
	Ratio float64 `yaml:"ratio"`
	// FreeChunkMultiplier flags a class as wasteful when its free
	// chunk count exceeds multiplier * chunks_per_page.
	FreeChunkMultiplier float64 `yaml:"free_chunk_multiplier"`
	// ShareThreshold marks a class as persistently evicting when its
	// mean eviction share over the window exceeds this fraction.
	ShareThreshold float64 `yaml:"share_threshold"`
	// PersistenceDivisor marks a class as persistently evicting when
	// it evicted in more than window/divisor ticks.
	PersistenceDivisor float64 `yaml:"persistence_divisor"`
	// MinSourcePages keeps classes at or below this page count from
	// ever being chosen as a move source.
	MinSourcePages int64 `yaml:"min_source_pages"`
}

// DefaultPolicy returns the stock automover constants.
func DefaultPolicy() Policy {
	return Policy{
		Window:              30,
		Ratio:               0.8,
		FreeChunkMultiplier: 2.5,
		ShareThreshold:      0.25,
		PersistenceDivisor:  2,
		MinSourcePages:      2,
	}
}

// LoadPolicy reads a YAML policy file over the defaults: keys absent
// from the file keep their default values.
func LoadPolicy(path string) (Policy, error) {
	p := DefaultPolicy()
	data, err := os.ReadFile(path)
	if err != nil {
		return p, fmt.Errorf("read policy file: %w", err)
	}
	if err := yaml.Unmarshal(data, &p); err != nil {
		return p, fmt.Errorf("parse policy file %s: %w", path, err)
	}
	if err := p.Validate(); err != nil {
		return p, fmt.Errorf("policy file %s: %w", path, err)
	}
	return p, nil
}

// Validate rejects values the engine cannot work with.
func (p Policy) Validate() error {
	if p.Window < 1 {
		return fmt.Errorf("window must be >= 1, got %d", p.Window)
	}
	if p.Ratio <= 0 {
		return fmt.Errorf("ratio must be > 0, got %g", p.Ratio)
	}
	if p.FreeChunkMultiplier <= 0 {
		return fmt.Errorf("free_chunk_multiplier must be > 0, got %g", p.FreeChunkMultiplier)
	}
	if p.ShareThreshold <= 0 {
		return fmt.Errorf("share_threshold must be > 0, got %g", p.ShareThreshold)
	}
	if p.PersistenceDivisor <= 0 {
		return fmt.Errorf("persistence_divisor must be > 0, got %g", p.PersistenceDivisor)
	}
	if p.MinSourcePages < 0 {
		return fmt.Errorf("min_source_pages must be >= 0, got %d", p.MinSourcePages)
	}
	return nil
}
