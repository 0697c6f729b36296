// Package match implements the track-matching and duration-reconciliation
// engine: tolerance parsing, duration comparison, and selection of the best
// destination candidate for a source track.
package match
