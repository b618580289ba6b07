package rain

import "math"

// RGB is an 8-bit-per-channel color.
type RGB struct {
	R, G, B uint8
}

// scaled multiplies a channel by f, rounding half to even. The product is
// clamped to [0, 255] before conversion so huge factors saturate.
func scaled(v uint8, f float64) int {
	x := math.Min(math.Max(float64(v)*f, 0), 255)
	return int(math.RoundToEven(x))
}

func clampChannel(v int) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}

func minChannel(a, b uint8) uint8 {
	if a < b {
		return a
	}
	return b
}

// Ceiling returns the bright color for a sampled base: each channel
// amplified by MaxFactor and capped at MaxColor.
func (p *Params) Ceiling(base RGB) RGB {
	ceil := func(v uint8) uint8 {
		return clampChannel(min(scaled(v, p.MaxFactor), int(p.MaxColor)))
	}
	return RGB{ceil(base.R), ceil(base.G), ceil(base.B)}
}

// Floor returns the dim limit for a sampled base: each channel damped by
// MinFactor and raised to at least MinColor.
func (p *Params) Floor(base RGB) RGB {
	floor := func(v uint8) uint8 {
		return clampChannel(max(scaled(v, p.MinFactor), int(p.MinColor)))
	}
	return RGB{floor(base.R), floor(base.G), floor(base.B)}
}

// decayToward lowers each channel by step without going below limit.
func decayToward(c RGB, step uint8, limit RGB) RGB {
	down := func(v, lim uint8) uint8 {
		return uint8(max(int(v)-int(step), int(lim)))
	}
	return RGB{down(c.R, limit.R), down(c.G, limit.G), down(c.B, limit.B)}
}

// clampBelow caps each channel of c at the matching channel of ceil.
func clampBelow(c, ceil RGB) RGB {
	return RGB{minChannel(c.R, ceil.R), minChannel(c.G, ceil.G), minChannel(c.B, ceil.B)}
}
