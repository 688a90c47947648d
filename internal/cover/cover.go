// Package cover hands a resolved track to whatever renders it: the cover
// record with its artwork upgraded, plus download and embedding helpers.
package cover

import (
	"fmt"
	"regexp"

	"coverwall/internal/metadata"
)

// DefaultSize is the edge length requested when upgrading artwork URLs.
const DefaultSize = 1000

// Apple artwork URLs carry their render size as a path segment like
// ".../100x100bb.jpg".
var appleSizeSegment = regexp.MustCompile(`100x100|60x60`)

// Cover is the record passed to the wallpaper renderer.
type Cover struct {
	TrackID        string `json:"track_id"`
	SongName       string `json:"song_name"`
	ArtistName     string `json:"artist_name"`
	AlbumCoverURL  string `json:"album_cover_url"`
	CollectionName string `json:"collection_name"`
}

// FromTrack builds the cover for t with its artwork upgraded to size pixels.
// A non-positive size means DefaultSize.
func FromTrack(t metadata.Track, size int) Cover {
	return Cover{
		TrackID:        t.ID,
		SongName:       t.Title,
		ArtistName:     t.Artist,
		AlbumCoverURL:  UpgradeArtworkURL(t.ArtworkURL, size),
		CollectionName: t.Album,
	}
}

// UpgradeArtworkURL rewrites the first low-resolution size segment of an
// artwork URL to size x size. URLs without one are returned unchanged.
func UpgradeArtworkURL(url string, size int) string {
	if size <= 0 {
		size = DefaultSize
	}
	loc := appleSizeSegment.FindStringIndex(url)
	if loc == nil {
		return url
	}
	return url[:loc[0]] + fmt.Sprintf("%dx%d", size, size) + url[loc[1]:]
}
