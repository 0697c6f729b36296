// Package models defines the domain entities for the sp2yt transfer tool.
//
// Two categories of types live here:
//
//  1. Data transfer objects describing catalog data in flight:
//     [Playlist], [PlaylistItem], [Track] and [PlaylistExport].
//  2. Persistent entities backed by the local sqlite catalog cache:
//     [PersistedTrack] and [PersistedPlaylist], each implementing [Model].
//
// The [Repository] interface defines standard CRUD operations for the
// persistence layer in internal/repositories.
package models
