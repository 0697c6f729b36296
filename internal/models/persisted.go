package models

import (
	"fmt"
	"time"
)

// PersistedTrack is a catalog track cached in the local sqlite database.
//
// Rows are keyed by (service, service_id) so the same recording fetched from
// both catalogs stays distinct while remaining joinable through ISRC.
type PersistedTrack struct {
	id        string
	sequence  int
	service   string
	serviceID string
	track     Track
	createdAt time.Time
	updatedAt time.Time
	deletedAt *time.Time
}

// NewPersistedTrack wraps a Track DTO for persistence under the given service.
func NewPersistedTrack(sequence int, service, serviceID string, track Track) *PersistedTrack {
	now := time.Now()
	return &PersistedTrack{
		sequence:  sequence,
		service:   service,
		serviceID: serviceID,
		track:     track,
		createdAt: now,
		updatedAt: now,
	}
}

func (t *PersistedTrack) ID() string            { return t.id }
func (t *PersistedTrack) Sequence() int         { return t.sequence }
func (t *PersistedTrack) Service() string       { return t.service }
func (t *PersistedTrack) ServiceID() string     { return t.serviceID }
func (t *PersistedTrack) Title() string         { return t.track.Title }
func (t *PersistedTrack) Artist() string        { return t.track.Artist }
func (t *PersistedTrack) Album() string         { return t.track.Album }
func (t *PersistedTrack) DurationMS() int       { return t.track.DurationMS }
func (t *PersistedTrack) ISRC() string          { return t.track.ISRC }
func (t *PersistedTrack) Track() Track          { return t.track }
func (t *PersistedTrack) CreatedAt() time.Time  { return t.createdAt }
func (t *PersistedTrack) UpdatedAt() time.Time  { return t.updatedAt }
func (t *PersistedTrack) DeletedAt() *time.Time { return t.deletedAt }

func (t *PersistedTrack) SetID(id string)             { t.id = id }
func (t *PersistedTrack) SetUpdatedAt(ts time.Time)   { t.updatedAt = ts }
func (t *PersistedTrack) SetDeletedAt(ts *time.Time)  { t.deletedAt = ts }
func (t *PersistedTrack) SetCreatedAt(ts time.Time)   { t.createdAt = ts }
func (t *PersistedTrack) SetTrack(track Track)        { t.track = track }
func (t *PersistedTrack) SetSequence(sequence int)    { t.sequence = sequence }
func (t *PersistedTrack) SetServiceID(serviceID string) {
	t.serviceID = serviceID
}

// Validate checks the track's data before persistence.
func (t *PersistedTrack) Validate() error {
	if t.service == "" {
		return fmt.Errorf("track service is required")
	}
	if t.serviceID == "" {
		return fmt.Errorf("track service_id is required")
	}
	if t.track.Title == "" {
		return fmt.Errorf("track title is required")
	}
	return nil
}

// PersistedPlaylist is playlist metadata cached in the local sqlite database.
type PersistedPlaylist struct {
	id        string
	sequence  int
	service   string
	serviceID string
	playlist  Playlist
	createdAt time.Time
	updatedAt time.Time
	deletedAt *time.Time
}

// NewPersistedPlaylist wraps a Playlist DTO for persistence under the given service.
func NewPersistedPlaylist(sequence int, service, serviceID string, playlist Playlist) *PersistedPlaylist {
	now := time.Now()
	return &PersistedPlaylist{
		sequence:  sequence,
		service:   service,
		serviceID: serviceID,
		playlist:  playlist,
		createdAt: now,
		updatedAt: now,
	}
}

func (p *PersistedPlaylist) ID() string            { return p.id }
func (p *PersistedPlaylist) Sequence() int         { return p.sequence }
func (p *PersistedPlaylist) Service() string       { return p.service }
func (p *PersistedPlaylist) ServiceID() string     { return p.serviceID }
func (p *PersistedPlaylist) Name() string          { return p.playlist.Name }
func (p *PersistedPlaylist) Description() string   { return p.playlist.Description }
func (p *PersistedPlaylist) TrackCount() int       { return p.playlist.TrackCount }
func (p *PersistedPlaylist) Public() bool          { return p.playlist.Public }
func (p *PersistedPlaylist) Playlist() Playlist    { return p.playlist }
func (p *PersistedPlaylist) CreatedAt() time.Time  { return p.createdAt }
func (p *PersistedPlaylist) UpdatedAt() time.Time  { return p.updatedAt }
func (p *PersistedPlaylist) DeletedAt() *time.Time { return p.deletedAt }

func (p *PersistedPlaylist) SetID(id string)            { p.id = id }
func (p *PersistedPlaylist) SetUpdatedAt(ts time.Time)  { p.updatedAt = ts }
func (p *PersistedPlaylist) SetDeletedAt(ts *time.Time) { p.deletedAt = ts }
func (p *PersistedPlaylist) SetCreatedAt(ts time.Time)  { p.createdAt = ts }
func (p *PersistedPlaylist) SetSequence(sequence int)   { p.sequence = sequence }

// Validate checks the playlist's data before persistence.
func (p *PersistedPlaylist) Validate() error {
	if p.service == "" {
		return fmt.Errorf("playlist service is required")
	}
	if p.serviceID == "" {
		return fmt.Errorf("playlist service_id is required")
	}
	if p.playlist.Name == "" {
		return fmt.Errorf("playlist name is required")
	}
	return nil
}
