// Package services contains clients for the two music catalogs.
//
// Spotify is the source catalog, reached directly over its Web API with
// OAuth2. YouTube Music is the destination catalog, reached through the
// FastAPI proxy wrapping ytmusicapi.
package services
