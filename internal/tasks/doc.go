// package tasks implements playlist transfer operations between music services.
//
// The core abstraction is TransferEngine, which orchestrates a full
// Spotify → YouTube Music playlist transfer: fetching (or cache-loading) the
// source playlist, matching each track against the destination catalog,
// reconciling durations, and adding matches in batches. Operations emit
// progress updates via channels for non-blocking status reporting to CLI/UI
// layers.
package tasks
