// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI mirrors the catalogue pages:
//  1. [BrowseView] : featured banner (rotating every [FeaturedInterval]) above one category's movies
//  2. [DetailsView] : a movie's details and its best trailer
//  3. [WatchlistView] : the saved "watch later" movies
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern, receiving messages via the Msg union type.
// Watchlist and session changes arrive through store listeners feeding a channel, so edits made by
// the CLI or the local API while the TUI is open show up without a refresh.
//
// A session is required: [New] fails with [shared.ErrNotAuthenticated] without one, and the TUI quits when
// the session ends.
//
// Keyboard navigation uses vim-style bindings (j/k, enter, esc, tab, a/d, w, q) with contextual help displayed via charmbracelet/bubbles/help.
package ui
