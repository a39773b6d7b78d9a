// Package tui provides a Bubble Tea terminal user interface for the
// wallpaper generator.
//
// The user types a Last.fm username, picks a chart period and a few
// rendering toggles, then watches the wallpapers being produced. The
// finished archive is exported into the directory given to Run.
package tui
