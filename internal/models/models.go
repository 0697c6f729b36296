package models

import (
	"fmt"
	"time"
)

// Playlist represents playlist metadata from either catalog.
type Playlist struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	TrackCount  int    `json:"track_count"`
	Public      bool   `json:"public"`
}

// Track represents a source-side track. DurationMS is the nominal playback
// duration in milliseconds; zero means the catalog omitted it.
type Track struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	Artist     string `json:"artist"`
	Album      string `json:"album,omitempty"`
	DurationMS int    `json:"duration_ms"`
	ISRC       string `json:"isrc,omitempty"`
}

// Label formats the track as "Title - Artist" for report lists.
func (t Track) Label() string {
	return fmt.Sprintf("%s - %s", t.Title, t.Artist)
}

// PlaylistItem is one entry of a fetched playlist. Track is nil when the
// catalog returned an item without an underlying track payload (removed or
// region-locked entries).
type PlaylistItem struct {
	AddedAt string `json:"added_at,omitempty"`
	Track   *Track `json:"track"`
}

// PlaylistExport bundles playlist metadata with its full ordered item list.
type PlaylistExport struct {
	Playlist Playlist       `json:"playlist"`
	Items    []PlaylistItem `json:"items"`
}

// Tracks returns the non-nil track payloads in source order.
func (e *PlaylistExport) Tracks() []Track {
	tracks := make([]Track, 0, len(e.Items))
	for _, item := range e.Items {
		if item.Track != nil {
			tracks = append(tracks, *item.Track)
		}
	}
	return tracks
}

// Model defines the base interface for all persistent entities.
type Model interface {
	ID() string           // ID returns the unique identifier for this model
	CreatedAt() time.Time // CreatedAt returns when this model was created
	UpdatedAt() time.Time // UpdatedAt returns when this model was last updated
	Validate() error      // Validate checks the model's data before persistence
}

// Repository defines the interface for data access operations.
type Repository[T Model] interface {
	Create(model T) error                      // Create inserts a new model into the database
	Get(id string) (T, error)                  // Get retrieves a model by its ID
	Update(model T) error                      // Update modifies an existing model
	Delete(id string) error                    // Delete soft-deletes a model by its ID
	List(criteria map[string]any) ([]T, error) // List retrieves models matching the criteria
}
