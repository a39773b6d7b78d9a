package model

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestAlbum_FileName(t *testing.T) {
	tests := []struct {
		name  string
		album Album
		ext   string
		want  string
	}{
		{
			name:  "plain",
			album: Album{Artist: "Radiohead", Name: "OK Computer"},
			ext:   ".jpg",
			want:  "Radiohead - OK Computer.jpg",
		},
		{
			name:  "path separators",
			album: Album{Artist: "AC/DC", Name: `Back\in\Black`},
			ext:   ".jpg",
			want:  "AC_DC - Back_in_Black.jpg",
		},
		{
			name:  "png extension",
			album: Album{Artist: "Boards of Canada", Name: "Geogaddi"},
			ext:   ".png",
			want:  "Boards of Canada - Geogaddi.png",
		},
		{
			name:  "empty names",
			album: Album{},
			ext:   ".jpg",
			want:  "-.jpg",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.album.FileName(tt.ext); got != tt.want {
				t.Errorf("FileName(%q) = %q, want %q", tt.ext, got, tt.want)
			}
		})
	}
}

func TestAlbum_FileNameTruncation(t *testing.T) {
	album := Album{Artist: strings.Repeat("é", 80), Name: strings.Repeat("x", 80)}

	got := album.FileName(".jpg")
	base := strings.TrimSuffix(got, ".jpg")

	if n := utf8.RuneCountInString(base); n != MaxFileNameLength {
		t.Errorf("base name has %d runes, want %d", n, MaxFileNameLength)
	}
	if !utf8.ValidString(got) {
		t.Errorf("FileName produced invalid UTF-8: %q", got)
	}
}

func TestAlbum_FileNameCollision(t *testing.T) {
	a := Album{Artist: "A/B", Name: "C"}
	b := Album{Artist: "A:B", Name: "C"}

	if a.FileName(".jpg") != b.FileName(".jpg") {
		t.Errorf("expected sanitized names to collide, got %q and %q", a.FileName(".jpg"), b.FileName(".jpg"))
	}
}

func TestAlbum_HasArtwork(t *testing.T) {
	none := Album{Images: []ImageCandidate{{Size: ImageSizeSmall, URL: ""}}}
	if none.HasArtwork() {
		t.Error("HasArtwork() should return false when every URL is empty")
	}

	some := Album{Images: []ImageCandidate{{Size: ImageSizeSmall, URL: ""}, {Size: ImageSizeLarge, URL: "https://example.com/a.png"}}}
	if !some.HasArtwork() {
		t.Error("HasArtwork() should return true when a URL is present")
	}
}

func TestImageSize_Weight(t *testing.T) {
	tests := []struct {
		size ImageSize
		want int
	}{
		{ImageSizeMega, 1200},
		{ImageSizeExtraLarge, 600},
		{ImageSizeLarge, 300},
		{ImageSizeMedium, 174},
		{ImageSizeSmall, 64},
		{ImageSize(""), 0},
		{ImageSize("huge"), 0},
	}

	for _, tt := range tests {
		t.Run(string(tt.size), func(t *testing.T) {
			if got := tt.size.Weight(); got != tt.want {
				t.Errorf("Weight() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestSizePriority_Descending(t *testing.T) {
	for i := 1; i < len(SizePriority); i++ {
		if SizePriority[i-1].Weight() <= SizePriority[i].Weight() {
			t.Errorf("SizePriority not descending at %d: %s(%d) <= %s(%d)",
				i, SizePriority[i-1], SizePriority[i-1].Weight(), SizePriority[i], SizePriority[i].Weight())
		}
	}
}

func TestArchiveName(t *testing.T) {
	if got := ArchiveName("demoUser"); got != "demoUser_wallpapers.zip" {
		t.Errorf("ArchiveName() = %q, want %q", got, "demoUser_wallpapers.zip")
	}
	if got := ArchiveName("../evil"); strings.Contains(got, "/") {
		t.Errorf("ArchiveName() = %q, must not contain a path separator", got)
	}
}

func TestResolution(t *testing.T) {
	r := Resolution{Width: 1920, Height: 1080}
	if r.String() != "1920x1080" {
		t.Errorf("String() = %q, want %q", r.String(), "1920x1080")
	}
	if !r.Valid() {
		t.Error("Valid() should be true for 1920x1080")
	}
	if (Resolution{Width: 0, Height: 1080}).Valid() {
		t.Error("Valid() should be false for zero width")
	}
}
