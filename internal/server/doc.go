// Package server provides the local JSON API over the session and watchlist stores and the catalogue.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first), following the standard Go pattern.
//
// The [BasicRouter] implementation uses [http.ServeMux] method patterns, so path values ({id}) and
// 405 responses come from the mux.
//
// # Middleware
//
//   - [RequestID] : echoes X-Request-ID or generates a UUID
//   - [RecoverPanic] : converts panics into 500 responses
//   - [RequestLogger] : one structured log line per request
//   - [RequireSession] : 401 unless a session exists
//
// # Routes
//
//	POST   /api/session             authenticate {"email","password"}
//	GET    /api/session             current session (token omitted)
//	DELETE /api/session             end session
//	GET    /api/watchlist           list items in insertion order
//	POST   /api/watchlist           add a snapshot, or {"id": n} to snapshot from the catalogue
//	DELETE /api/watchlist/{id}      remove an item
//	GET    /api/categories          category names and labels
//	GET    /api/featured            popular movies with a backdrop
//	GET    /api/movies              ?category=&page=, results flagged in_watchlist
//	GET    /api/movies/{id}         details with in_watchlist
//	GET    /api/movies/{id}/videos  trailers first
//	GET    /api/search              ?q=&page=, results flagged in_watchlist
//	GET    /api/events              server-sent session and watchlist changes
//
// Watchlist, catalogue and event routes require a session.
//
// # Handler Interface
//
// Custom handlers implement the [Handler] interface, which wraps the stdlib handler interface and adds routes,
// allowing handlers to register multiple routes to encapsulate route definitions within the implementation.
package server
