package match

import "math"

// Verdict classifies the outcome of a duration comparison.
type Verdict int

const (
	Agree Verdict = iota
	Mismatch
	Skipped
)

func (v Verdict) String() string {
	switch v {
	case Mismatch:
		return "mismatch"
	case Skipped:
		return "skipped"
	default:
		return "agree"
	}
}

// Skip reasons reported when one side lacks a usable duration.
const (
	ReasonMissingSource = "missing source duration"
	ReasonMissingDest   = "missing destination duration"
)

// DurationResult is the outcome of evaluating one source/destination pair.
// DiffSec is the absolute difference in seconds, populated for Agree and
// Mismatch verdicts.
type DurationResult struct {
	Verdict Verdict
	DiffSec float64
	Reason  string
}

// Evaluate compares a source duration (milliseconds) against a destination
// duration (whole seconds) under the given tolerance.
//
// A zero or negative value on either side is treated as an absent duration
// and yields a Skipped verdict; the source side is checked first. A disabled
// tolerance always reports Agree, which matches checking being switched off
// entirely.
func Evaluate(sourceMS, destSec int, spec VarianceSpec) DurationResult {
	if !spec.Enabled {
		return DurationResult{Verdict: Agree}
	}
	if sourceMS <= 0 {
		return DurationResult{Verdict: Skipped, Reason: ReasonMissingSource}
	}
	if destSec <= 0 {
		return DurationResult{Verdict: Skipped, Reason: ReasonMissingDest}
	}

	sourceSec := float64(sourceMS) / 1000.0
	diff := math.Abs(sourceSec - float64(destSec))

	switch spec.Unit {
	case Percent:
		// A non-positive source duration cannot reach this branch today,
		// but the guard mirrors the documented "never mismatches" edge.
		diffPct := 0.0
		if sourceSec > 0 {
			diffPct = diff / sourceSec * 100.0
		}
		if diffPct > spec.Amount {
			return DurationResult{Verdict: Mismatch, DiffSec: diff}
		}
	default:
		if diff > spec.Amount {
			return DurationResult{Verdict: Mismatch, DiffSec: diff}
		}
	}

	return DurationResult{Verdict: Agree, DiffSec: diff}
}
