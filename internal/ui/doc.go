// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI provides a small account workflow:
//  1. [LoginView] : Sign in or sign up with username and password
//  2. [FavoritesView] : Browse the logged-in user's favorites and toggle entries
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View
// pattern. Every account action goes through the session manager, so the
// list shown always reflects the last confirmed server state.
//
// Keyboard navigation uses vim-style bindings (j/k, enter, esc, q) with
// contextual help displayed via charmbracelet/bubbles/help.
package ui
