// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI provides a multi-view workflow for browsing the course catalog:
//  1. [TopicListView] : Browse topics with per-topic watch progress
//  2. [VideoListView] : Browse a topic's videos and toggle completion
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern.
// Completion toggles run as background commands so the list stays responsive while
// the spreadsheet write is in flight; the local watched store is updated alongside.
//
// Keyboard navigation uses vim-style bindings (j/k, enter, esc, space, r, q) with
// contextual help displayed via charmbracelet/bubbles/help.
package ui
