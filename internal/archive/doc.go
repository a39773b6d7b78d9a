// Package archive packs generated wallpapers into a zip file.
//
// Entries are deflate-compressed with klauspost/compress at a configurable
// level (DefaultLevel is 6) and stored flat, without directories. Loose
// wallpaper files are removed once they are in the archive so a job's
// scratch directory ends up holding only the zip.
package archive
