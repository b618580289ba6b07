package rain

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
)

// ResetPolicy controls when a trail draws a fresh delay.
type ResetPolicy int

const (
	// ResetOnWrap redraws the delay only when a trail wraps back to row 0.
	ResetOnWrap ResetPolicy = iota
	// ResetEveryFire redraws the delay after every fire.
	ResetEveryFire
	// NoGating ignores timers: every trail fires on each update with a
	// positive delta.
	NoGating
)

var policyNames = map[ResetPolicy]string{
	ResetOnWrap:    "on-wrap",
	ResetEveryFire: "every-fire",
	NoGating:       "none",
}

func (p ResetPolicy) String() string {
	if name, ok := policyNames[p]; ok {
		return name
	}
	return fmt.Sprintf("ResetPolicy(%d)", int(p))
}

// ParseResetPolicy resolves a policy by name. Empty means ResetOnWrap.
func ParseResetPolicy(s string) (ResetPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "on-wrap", "wrap":
		return ResetOnWrap, nil
	case "every-fire", "always":
		return ResetEveryFire, nil
	case "none", "no-gating":
		return NoGating, nil
	}
	return 0, fmt.Errorf("unknown reset policy %q", s)
}

// ErrInvalidParams is wrapped by every Params validation failure.
var ErrInvalidParams = errors.New("invalid rain params")

// Params holds the tunables shared by every column of a grid.
type Params struct {
	CellSize int // glyph box edge, in surface units

	MinDelay time.Duration
	MaxDelay time.Duration

	MinFactor float64 // damping applied to the sampled color for the floor
	MaxFactor float64 // amplification applied for the bright ceiling

	MinColor   uint8
	MaxColor   uint8
	DeltaColor uint8 // per-frame decay step

	Alphabet []rune

	MinTrails int
	MaxTrails int

	Policy ResetPolicy
}

// DefaultParams returns the classic tuning.
func DefaultParams() Params {
	return Params{
		CellSize:   8,
		MinDelay:   0,
		MaxDelay:   384 * time.Millisecond,
		MinFactor:  0.75,
		MaxFactor:  2.75,
		MinColor:   0,
		MaxColor:   255,
		DeltaColor: 7,
		Alphabet:   Katakana(),
		MinTrails:  1,
		MaxTrails:  2,
		Policy:     ResetOnWrap,
	}
}

// Validate reports the first field that cannot drive a grid.
func (p Params) Validate() error {
	switch {
	case p.CellSize < 1:
		return fmt.Errorf("%w: cell size %d", ErrInvalidParams, p.CellSize)
	case p.MinDelay < 0 || p.MaxDelay < p.MinDelay:
		return fmt.Errorf("%w: delay range [%v, %v)", ErrInvalidParams, p.MinDelay, p.MaxDelay)
	case !finite(p.MinFactor) || !finite(p.MaxFactor):
		return fmt.Errorf("%w: color factors %v, %v not finite", ErrInvalidParams, p.MinFactor, p.MaxFactor)
	case p.MinFactor < 0 || p.MaxFactor < 0:
		return fmt.Errorf("%w: negative color factor", ErrInvalidParams)
	case p.MinColor > p.MaxColor:
		return fmt.Errorf("%w: min color %d above max color %d", ErrInvalidParams, p.MinColor, p.MaxColor)
	case len(p.Alphabet) == 0:
		return fmt.Errorf("%w: empty alphabet", ErrInvalidParams)
	case p.MinTrails < 1 || p.MaxTrails < p.MinTrails:
		return fmt.Errorf("%w: trails range [%d, %d]", ErrInvalidParams, p.MinTrails, p.MaxTrails)
	}
	if _, ok := policyNames[p.Policy]; !ok {
		return fmt.Errorf("%w: %v", ErrInvalidParams, p.Policy)
	}
	for _, r := range p.Alphabet {
		if r == 0 {
			return fmt.Errorf("%w: alphabet contains NUL", ErrInvalidParams)
		}
	}
	return nil
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
