package metadata

import (
	"fmt"

	"go.senan.xyz/taglib"
)

// WriteTags writes the song fields of a resolved track to an audio file.
// Only non-empty fields are written; existing tags are kept.
func WriteTags(path string, t Track) error {
	tags := make(map[string][]string)

	if t.Title != "" {
		tags[taglib.Title] = []string{t.Title}
	}
	if t.Artist != "" {
		tags[taglib.Artist] = []string{t.Artist}
	}
	if t.Album != "" {
		tags[taglib.Album] = []string{t.Album}
	}
	if t.HasReleaseDate() {
		tags[taglib.Date] = []string{t.ReleaseDate.Format("2006-01-02")}
	}

	if err := taglib.WriteTags(path, tags, 0); err != nil {
		return fmt.Errorf("failed to write tags to %s: %w", path, err)
	}
	return nil
}

// WriteArtwork embeds artwork image data into an audio file.
func WriteArtwork(path string, imageData []byte) error {
	if len(imageData) == 0 {
		return nil
	}
	if err := taglib.WriteImage(path, imageData); err != nil {
		return fmt.Errorf("failed to write artwork to %s: %w", path, err)
	}
	return nil
}

// EmbedCover tags an audio file with the track's fields and its cover image.
func EmbedCover(path string, t Track, imageData []byte) error {
	if err := WriteTags(path, t); err != nil {
		return err
	}
	return WriteArtwork(path, imageData)
}
