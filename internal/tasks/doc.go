// Package tasks runs the longer catalogue operations with real-time progress reporting.
//
// # Core Operations
//
// [CatalogueEngine] provides two operations:
//
//  1. [CatalogueEngine.Trailers] : Trailer digest for a watchlist
//     - Fetches the videos of every item through a bounded worker pool
//     - Requests are paced by a rate limiter
//     - Picks the best playable video (trailer, then teaser, then anything else)
//     - Keeps watchlist order; per-item failures are recorded, not fatal
//
//  2. [CatalogueEngine.Browse] : First page of every category plus the featured banner
//     - Categories are fetched in display order
//     - Failed categories are collected in the result instead of aborting
//
// # Progress Reporting
//
// All operations use non-blocking channels for progress updates.
//
// The [ProgressUpdate] struct contains phase, step counters, messages, and optional data for advanced UI rendering.
// Updates use select with default to prevent blocking.
package tasks
