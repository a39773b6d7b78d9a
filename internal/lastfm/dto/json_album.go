package dto

import (
	"strings"

	"github.com/Ziad0dev/lastfm-wallpaper/internal/model"
)

// TopAlbumsResponse is the body of a user.gettopalbums call.
type TopAlbumsResponse struct {
	TopAlbums *JSONTopAlbums `json:"topalbums"`
}

// JSONTopAlbums wraps the album list and paging attributes.
type JSONTopAlbums struct {
	Albums []JSONAlbum `json:"album"`
	Attr   struct {
		User       string `json:"user"`
		Page       Count  `json:"page"`
		PerPage    Count  `json:"perPage"`
		TotalPages Count  `json:"totalPages"`
		Total      Count  `json:"total"`
	} `json:"@attr"`
}

// JSONAlbum is one entry of the top albums list.
type JSONAlbum struct {
	Name      string      `json:"name"`
	PlayCount Count       `json:"playcount"`
	MBID      string      `json:"mbid"`
	URL       string      `json:"url"`
	Artist    JSONArtist  `json:"artist"`
	Images    []JSONImage `json:"image"`
	Attr      struct {
		Rank Count `json:"rank"`
	} `json:"@attr"`
}

// JSONArtist identifies the album artist.
type JSONArtist struct {
	Name string `json:"name"`
	MBID string `json:"mbid"`
	URL  string `json:"url"`
}

// JSONImage is one sized rendition of the cover.
type JSONImage struct {
	Size string `json:"size"`
	URL  string `json:"#text"`
}

// ToAlbum converts JSONAlbum to a model.Album.
func (ja *JSONAlbum) ToAlbum() *model.Album {
	images := make([]model.ImageCandidate, 0, len(ja.Images))
	for _, img := range ja.Images {
		images = append(images, model.ImageCandidate{
			Size: model.ImageSize(strings.ToLower(img.Size)),
			URL:  strings.TrimSpace(img.URL),
		})
	}

	return &model.Album{
		Name:      strings.TrimSpace(ja.Name),
		Artist:    strings.TrimSpace(ja.Artist.Name),
		URL:       ja.URL,
		Rank:      int(ja.Attr.Rank),
		PlayCount: int(ja.PlayCount),
		Images:    images,
	}
}

// ToAlbums converts every entry, preserving order.
func (t *JSONTopAlbums) ToAlbums() []*model.Album {
	albums := make([]*model.Album, 0, len(t.Albums))
	for i := range t.Albums {
		albums = append(albums, t.Albums[i].ToAlbum())
	}
	return albums
}
