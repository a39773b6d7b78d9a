// Package model defines the core data structures used throughout
// the lastfm-wallpaper application.
//
// # Album
//
// Album is one entry of a user's top albums chart, with its cover art
// candidates ranked by ImageSize weight:
//
//	album := &model.Album{Name: "Title", Artist: "Artist", Images: candidates}
//	fmt.Println(album.FileName(".jpg")) // "Artist - Title.jpg"
//
// # Wallpaper pipeline values
//
//   - WallpaperJob: album + target Resolution + destination path
//   - ProducedFile: an encoded wallpaper on disk
//   - Archive: the zip bundling every ProducedFile of one request
//
// # File names
//
// File names are built from "<artist> - <album>", with characters that are
// invalid on common file systems replaced by underscores, and truncated to
// MaxFileNameLength runes. They are not guaranteed to be unique.
package model
