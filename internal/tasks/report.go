package tasks

import (
	"sp2yt/internal/match"
	"sp2yt/internal/models"
)

// SkippedTrack records a track whose duration check could not run.
// The track is still transferred; the reason explains the missing data.
type SkippedTrack struct {
	Track  models.Track `json:"track"`
	Reason string       `json:"reason"`
}

// Mismatch records a matched track whose destination duration fell outside
// the configured variance. Mismatches are advisory and do not remove the
// track from the transfer.
type Mismatch struct {
	Track     models.Track    `json:"track"`
	Candidate match.Candidate `json:"candidate"`
	DiffSec   float64         `json:"diff_seconds"`
}

// FailedBatch records a batch of video IDs the destination rejected.
type FailedBatch struct {
	Index    int      `json:"index"`
	VideoIDs []string `json:"video_ids"`
	Error    string   `json:"error"`
}

// TransferReport contains all data from a full transfer operation.
type TransferReport struct {
	SourcePlaylist *models.PlaylistExport `json:"source_playlist,omitempty"`
	DestPlaylistID string                 `json:"dest_playlist_id,omitempty"`
	DestName       string                 `json:"dest_name,omitempty"`
	FromCache      bool                   `json:"from_cache"`

	Variance match.VarianceSpec `json:"variance"`

	AddedIDs      []string       `json:"added_ids"`      // Video IDs queued for the destination, source order
	Unmatched     []models.Track `json:"unmatched"`      // Tracks with no qualifying search result
	Skipped       []SkippedTrack `json:"skipped"`        // Duration check skipped (still transferred)
	Mismatches    []Mismatch     `json:"mismatches"`     // Duration outside variance (still transferred)
	Missing       []int          `json:"missing"`        // Positions of items with no track payload
	FailedBatches []FailedBatch  `json:"failed_batches"` // Add batches the destination rejected

	TotalTracks     int     `json:"total_tracks"`
	AddedCount      int     `json:"added_count"` // Tracks confirmed added to the destination
	MatchPercentage float64 `json:"match_percentage"`
}

func newTransferReport(spec match.VarianceSpec) *TransferReport {
	return &TransferReport{
		Variance:      spec,
		AddedIDs:      []string{},
		Unmatched:     []models.Track{},
		Skipped:       []SkippedTrack{},
		Mismatches:    []Mismatch{},
		Missing:       []int{},
		FailedBatches: []FailedBatch{},
	}
}

// MatchedCount is the number of source tracks that found a destination match.
func (r *TransferReport) MatchedCount() int {
	return len(r.AddedIDs)
}

func (r *TransferReport) finalize() {
	if r.TotalTracks > 0 {
		r.MatchPercentage = float64(len(r.AddedIDs)) / float64(r.TotalTracks) * 100
	}
}
