// Package catalog holds the static song knowledge used by query expansion
// and ranking: title aliases across scripts, recommended performing artists,
// and the mainstream-artist and popular-album lists.
//
// A Catalog is built once at startup and never mutated, so it is safe for
// concurrent use.
package catalog

import (
	"fmt"
	"sort"
	"strings"
	"unicode"

	"coverwall/internal/metadata"
)

// Song is the catalog knowledge for one song title.
type Song struct {
	Artist       string   `yaml:"artist,omitempty" toml:"artist,omitempty"`
	Translations []string `yaml:"translations,omitempty" toml:"translations,omitempty"`
}

// File is the on-disk catalog layout.
type File struct {
	Version           int             `yaml:"version" toml:"version"`
	MainstreamArtists []string        `yaml:"mainstream_artists" toml:"mainstream_artists"`
	PopularAlbums     []string        `yaml:"popular_albums" toml:"popular_albums"`
	Songs             map[string]Song `yaml:"songs" toml:"songs"`
}

// Catalog is an immutable, indexed view of a File.
type Catalog struct {
	version int
	artists []phrase
	albums  []phrase
	songs   map[string]Song // keyed by metadata.Normalize(title)
	titles  []title
}

type title struct {
	display    string
	normalized string
}

// phrase is a name split into normalized word tokens. Han names are compared
// as whole normalized strings since they carry no word boundaries.
type phrase struct {
	normalized string
	tokens     []string
	han        bool
}

// New indexes a catalog file. Song titles that normalize to the same key
// are rejected.
func New(f File) (*Catalog, error) {
	c := &Catalog{
		version: f.Version,
		songs:   make(map[string]Song, len(f.Songs)),
	}

	for _, name := range f.MainstreamArtists {
		if p, ok := newPhrase(name); ok {
			c.artists = append(c.artists, p)
		}
	}
	for _, name := range f.PopularAlbums {
		if p, ok := newPhrase(name); ok {
			c.albums = append(c.albums, p)
		}
	}

	for key, song := range f.Songs {
		norm := metadata.Normalize(key)
		if norm == "" {
			return nil, fmt.Errorf("song key %q has no searchable characters", key)
		}
		if _, dup := c.songs[norm]; dup {
			return nil, fmt.Errorf("duplicate song key %q", key)
		}
		song.Artist = strings.ToLower(strings.TrimSpace(song.Artist))
		translations := make([]string, 0, len(song.Translations))
		for _, t := range song.Translations {
			if t = strings.TrimSpace(t); t != "" {
				translations = append(translations, t)
			}
		}
		song.Translations = translations
		c.songs[norm] = song
		c.titles = append(c.titles, title{display: strings.TrimSpace(key), normalized: norm})
	}
	sort.Slice(c.titles, func(i, j int) bool { return c.titles[i].display < c.titles[j].display })

	return c, nil
}

// Version returns the catalog file version.
func (c *Catalog) Version() int { return c.version }

// Len returns the number of known song titles.
func (c *Catalog) Len() int { return len(c.songs) }

// Lookup returns the catalog entry for a query.
func (c *Catalog) Lookup(query string) (Song, bool) {
	song, ok := c.songs[metadata.Normalize(query)]
	return song, ok
}

// RecommendedArtist returns the known-correct performer for a query title,
// lower-cased, or "" when none is known.
func (c *Catalog) RecommendedArtist(query string) string {
	song, _ := c.Lookup(query)
	return song.Artist
}

// Translations returns the known aliases of a title in another script,
// in catalog order. The returned slice is a copy.
func (c *Catalog) Translations(query string) []string {
	song, ok := c.Lookup(query)
	if !ok || len(song.Translations) == 0 {
		return nil
	}
	out := make([]string, len(song.Translations))
	copy(out, song.Translations)
	return out
}

// IsMainstreamArtist reports whether the artist name contains, or is
// contained in, a known mainstream artist name.
func (c *Catalog) IsMainstreamArtist(name string) bool {
	p, ok := newPhrase(name)
	if !ok {
		return false
	}
	for _, a := range c.artists {
		if p.contains(a) || a.contains(p) {
			return true
		}
	}
	return false
}

// IsPopularAlbum reports whether the album name contains a known popular
// album name, e.g. "Justice (Triple Chucks Deluxe)" for "justice".
func (c *Catalog) IsPopularAlbum(album string) bool {
	p, ok := newPhrase(album)
	if !ok {
		return false
	}
	for _, a := range c.albums {
		if p.contains(a) {
			return true
		}
	}
	return false
}

func newPhrase(s string) (phrase, bool) {
	norm := metadata.Normalize(s)
	if norm == "" {
		return phrase{}, false
	}

	fields := strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		if t := metadata.Normalize(f); t != "" {
			tokens = append(tokens, t)
		}
	}

	return phrase{
		normalized: norm,
		tokens:     tokens,
		han:        metadata.ContainsHan(s),
	}, true
}

// contains reports whether other occurs in p as a contiguous run of words.
func (p phrase) contains(other phrase) bool {
	if p.han || other.han {
		return strings.Contains(p.normalized, other.normalized)
	}
	if len(other.tokens) == 0 || len(other.tokens) > len(p.tokens) {
		return false
	}
	for i := 0; i+len(other.tokens) <= len(p.tokens); i++ {
		match := true
		for j, tok := range other.tokens {
			if p.tokens[i+j] != tok {
				match = false
				break
			}
		}
		if match {
			return true
		}
	}
	return false
}
