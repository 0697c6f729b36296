package match

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"sp2yt/internal/services"
)

// searchLimit caps how many ranked results are requested per track.
const searchLimit = 5

// resultTypeSong is the only result kind eligible for matching; albums,
// artists, videos and podcasts are skipped.
const resultTypeSong = "song"

// Defaults substituted when the destination omits display fields.
const (
	UnknownTitle  = "Unknown Title"
	UnknownArtist = "Unknown Artist"
)

// Candidate is a destination-side match for a source track. DurationSec is
// zero when the destination omitted or mangled the duration text.
type Candidate struct {
	VideoID     string
	Title       string
	Artist      string
	DurationSec int
}

// FindBestMatch searches the destination for "{trackName} {artistName}" and
// returns the first song-typed result in rank order, or nil when no result
// qualifies. There is no fallback query.
func FindBestMatch(ctx context.Context, search services.SearchCapability, trackName, artistName string) (*Candidate, error) {
	query := fmt.Sprintf("%s %s", trackName, artistName)

	results, err := search.Search(ctx, query, searchLimit)
	if err != nil {
		return nil, err
	}

	for _, result := range results {
		if result.ResultType != resultTypeSong {
			continue
		}
		return newCandidate(result), nil
	}

	return nil, nil
}

// newCandidate decodes a song-typed search result into a Candidate,
// substituting defaults for missing display fields.
func newCandidate(result services.SearchResult) *Candidate {
	candidate := &Candidate{
		VideoID:     result.VideoID,
		Title:       result.Title,
		Artist:      UnknownArtist,
		DurationSec: ParseClock(result.Duration),
	}

	if candidate.Title == "" {
		candidate.Title = UnknownTitle
	}
	if len(result.Artists) > 0 && result.Artists[0].Name != "" {
		candidate.Artist = result.Artists[0].Name
	}

	return candidate
}

// ParseClock converts a colon-delimited clock string (MM:SS or HH:MM:SS)
// into whole seconds. Malformed or empty input yields 0, never an error.
func ParseClock(clock string) int {
	clock = strings.TrimSpace(clock)
	if clock == "" {
		return 0
	}

	parts := strings.Split(clock, ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0
	}

	total := 0
	for _, part := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil || n < 0 {
			return 0
		}
		total = total*60 + n
	}

	return total
}
