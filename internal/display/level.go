package display

import (
	"fmt"
	"math"
)

// Level is a presentation band for a used percentage.
type Level int

const (
	LevelNominal Level = iota
	LevelElevated
	LevelHigh
	LevelCritical
)

// Thresholds are the lower bounds (used %) of the elevated, high and critical bands.
var Thresholds = [3]float64{40, 70, 90}

// LevelFor maps a used percentage onto a band.
func LevelFor(usedPct float64) Level {
	switch {
	case usedPct >= Thresholds[2]:
		return LevelCritical
	case usedPct >= Thresholds[1]:
		return LevelHigh
	case usedPct >= Thresholds[0]:
		return LevelElevated
	default:
		return LevelNominal
	}
}

func (l Level) String() string {
	switch l {
	case LevelNominal:
		return "nominal"
	case LevelElevated:
		return "elevated"
	case LevelHigh:
		return "high"
	case LevelCritical:
		return "critical"
	default:
		return fmt.Sprintf("level(%d)", int(l))
	}
}

func (l Level) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

func (l *Level) UnmarshalText(b []byte) error {
	for c := LevelNominal; c <= LevelCritical; c++ {
		if c.String() == string(b) {
			*l = c
			return nil
		}
	}
	return fmt.Errorf("unknown level %q", b)
}

// Crossed reports an upward move into the high or critical band.
func Crossed(prev, cur Level) bool {
	return cur >= LevelHigh && cur > prev
}

// UsedPercent converts a remaining percentage into a used percentage in [0, 100].
func UsedPercent(remaining float64) float64 {
	if math.IsNaN(remaining) {
		return 0
	}
	return math.Min(100, math.Max(0, 100-remaining))
}
