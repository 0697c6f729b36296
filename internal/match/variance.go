package match

import (
	"os"
	"regexp"
	"strconv"
	"strings"
)

// DefaultToleranceSeconds is applied when no flag, config value, or
// environment variable resolves to a tolerance amount.
const DefaultToleranceSeconds = 3.0

// Environment overrides consumed by [Resolve].
const (
	EnvVarianceAmount = "SP2YT_DURATION_VARIANCE"
	EnvVarianceUnit   = "SP2YT_DURATION_VARIANCE_UNIT"
)

// Unit is the measurement unit of a duration tolerance.
type Unit int

const (
	Seconds Unit = iota
	Percent
)

func (u Unit) String() string {
	if u == Percent {
		return "percent"
	}
	return "seconds"
}

// VarianceSpec is the allowed discrepancy between source and destination
// durations. Enabled is false when no amount was supplied, which disables
// duration checking entirely.
type VarianceSpec struct {
	Amount  float64
	Unit    Unit
	Enabled bool
}

// Longest alternatives first so the anchored match prefers whole suffixes.
var varianceRegex = regexp.MustCompile(`^([0-9]+(?:\.[0-9]+)?)\s*(seconds|second|secs|sec|s|percent|perc|%)?$`)

// Parse turns a user-supplied tolerance string into a VarianceSpec.
//
// Accepts a non-negative decimal optionally followed by a unit suffix:
// s/sec/secs/second/seconds or %/percent/perc. No suffix means seconds.
// Empty or malformed input yields a disabled spec, never an error.
func Parse(raw string) VarianceSpec {
	raw = strings.ToLower(strings.TrimSpace(raw))
	if raw == "" {
		return VarianceSpec{Unit: Seconds}
	}

	m := varianceRegex.FindStringSubmatch(raw)
	if m == nil {
		return VarianceSpec{Unit: Seconds}
	}

	amount, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return VarianceSpec{Unit: Seconds}
	}

	return VarianceSpec{Amount: amount, Unit: parseUnit(m[2], Seconds), Enabled: true}
}

// parseUnit maps a suffix to its Unit, falling back when unrecognized.
func parseUnit(suffix string, fallback Unit) Unit {
	switch strings.ToLower(strings.TrimSpace(suffix)) {
	case "s", "sec", "secs", "second", "seconds":
		return Seconds
	case "%", "percent", "perc":
		return Percent
	default:
		return fallback
	}
}

// WithUnitOverride forces the unit when raw names a recognized one.
// The amount is unaffected; unrecognized values are ignored.
func (v VarianceSpec) WithUnitOverride(raw string) VarianceSpec {
	v.Unit = parseUnit(raw, v.Unit)
	return v
}

// Resolve builds the per-run VarianceSpec from a flag/config value and the
// environment. Precedence for the amount: flag value, then
// SP2YT_DURATION_VARIANCE, then the 3-second default, so checking is always
// on in practice. SP2YT_DURATION_VARIANCE_UNIT, when set and recognized,
// overrides the unit regardless of where the amount came from.
func Resolve(raw string) VarianceSpec {
	spec := Parse(raw)
	if !spec.Enabled {
		spec = Parse(os.Getenv(EnvVarianceAmount))
	}
	if !spec.Enabled {
		spec = VarianceSpec{Amount: DefaultToleranceSeconds, Unit: Seconds, Enabled: true}
	}
	return spec.WithUnitOverride(os.Getenv(EnvVarianceUnit))
}
