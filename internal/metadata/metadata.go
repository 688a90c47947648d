package metadata

import (
	"context"
	"strings"
	"time"
)

// CollectionType classifies the release a track was published on.
type CollectionType int

const (
	CollectionOther CollectionType = iota
	CollectionAlbum
	CollectionSingle
	CollectionCompilation
)

func (c CollectionType) String() string {
	switch c {
	case CollectionAlbum:
		return "album"
	case CollectionSingle:
		return "single"
	case CollectionCompilation:
		return "compilation"
	default:
		return "other"
	}
}

// MarshalText encodes the collection type by name.
func (c CollectionType) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText decodes a collection type name.
func (c *CollectionType) UnmarshalText(text []byte) error {
	*c = ParseCollectionType(string(text))
	return nil
}

// ParseCollectionType maps a name to a CollectionType; unknown names are
// CollectionOther.
func ParseCollectionType(s string) CollectionType {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "album":
		return CollectionAlbum
	case "single":
		return CollectionSingle
	case "compilation":
		return CollectionCompilation
	default:
		return CollectionOther
	}
}

// Track is a single song record as returned by a search provider.
// Records are treated as read-only once received.
type Track struct {
	ID              string         `json:"id"`
	Title           string         `json:"title"`
	Artist          string         `json:"artist"`
	Album           string         `json:"album"`
	ArtworkURL      string         `json:"artwork_url,omitempty"` // lowest-resolution artwork; empty when absent
	CollectionType  CollectionType `json:"collection_type"`
	ReleaseDate     time.Time      `json:"release_date"` // zero when unknown
	TrackPrice      float64        `json:"track_price,omitempty"`
	CollectionPrice float64        `json:"collection_price,omitempty"`
	NotExplicit     bool           `json:"not_explicit,omitempty"`
	Source          string         `json:"source"` // provider that produced the record
}

// HasArtwork reports whether the record carries any artwork reference.
func (t Track) HasArtwork() bool {
	return strings.TrimSpace(t.ArtworkURL) != ""
}

// HasReleaseDate reports whether the release date is known.
func (t Track) HasReleaseDate() bool {
	return !t.ReleaseDate.IsZero()
}

// Key returns the record identity used for deduplication. Records without
// an ID fall back to their normalized title/artist/album triple.
func (t Track) Key() string {
	if t.ID != "" {
		return t.ID
	}
	return Normalize(t.Title) + "|" + Normalize(t.Artist) + "|" + Normalize(t.Album)
}

// Attribute narrows which field a search term is matched against.
type Attribute int

const (
	AttributeDefault Attribute = iota
	AttributeSongTerm
	AttributeArtistTerm
	AttributeTrackTerm
)

// Param returns the attribute as the search API expects it, or "" for the
// default (unqualified) search.
func (a Attribute) Param() string {
	switch a {
	case AttributeSongTerm:
		return "songTerm"
	case AttributeArtistTerm:
		return "allArtistTerm"
	case AttributeTrackTerm:
		return "allTrackTerm"
	default:
		return ""
	}
}

func (a Attribute) String() string {
	if p := a.Param(); p != "" {
		return p
	}
	return "default"
}

// SearchRequest is one parameterized query against a provider.
type SearchRequest struct {
	Term      string
	Country   string
	Attribute Attribute
	Limit     int
}

// Provider is the interface that song search providers must implement.
type Provider interface {
	Name() string
	Search(ctx context.Context, req SearchRequest) ([]Track, error)
}
