package musicbrainz

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"coverwall/internal/metadata"
)

const (
	defaultLimit = 10
	maxRetryWait = 10 * time.Second
)

// Client is a MusicBrainz Web API client that implements metadata.Provider.
// Artwork comes from the Cover Art Archive front image of the chosen release.
type Client struct {
	httpClient *http.Client
	apiURL     string
	artURL     string
	limiter    *rate.Limiter
}

// New creates a new MusicBrainz client limited to one request per second.
func New() *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		apiURL:     "https://musicbrainz.org/ws/2",
		artURL:     "https://coverartarchive.org",
		limiter:    rate.NewLimiter(rate.Every(time.Second), 1),
	}
}

func (c *Client) Name() string { return "musicbrainz" }

// Search runs a free-text recording search. Country and attribute are ignored.
func (c *Client) Search(ctx context.Context, req metadata.SearchRequest) ([]metadata.Track, error) {
	q := strings.TrimSpace(req.Term)
	if q == "" {
		return nil, nil
	}

	limit := req.Limit
	if limit <= 0 || limit > 100 {
		limit = defaultLimit
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	reqURL := fmt.Sprintf("%s/recording?query=%s&fmt=json&limit=%d", c.apiURL, url.QueryEscape(q), limit)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create musicbrainz request: %w", err)
	}
	httpReq.Header.Set("User-Agent", "coverwall/1.0")
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.doWithRetry(ctx, httpReq)
	if err != nil {
		return nil, fmt.Errorf("musicbrainz search request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("musicbrainz search returned %d: %s", resp.StatusCode, body)
	}

	var searchResp searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&searchResp); err != nil {
		return nil, fmt.Errorf("failed to decode musicbrainz response: %w", err)
	}

	return c.parseRecordings(searchResp.Recordings), nil
}

// doWithRetry executes the request, retrying once on 429/503 after the
// server's Retry-After delay.
func (c *Client) doWithRetry(ctx context.Context, req *http.Request) (*http.Response, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusTooManyRequests && resp.StatusCode != http.StatusServiceUnavailable {
		return resp, nil
	}
	resp.Body.Close()

	wait := 2 * time.Second
	if ra := resp.Header.Get("Retry-After"); ra != "" {
		if secs, err := strconv.Atoi(ra); err == nil {
			wait = time.Duration(secs) * time.Second
		}
	}
	wait = min(wait, maxRetryWait)

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(wait):
	}
	return c.httpClient.Do(req.Clone(ctx))
}

func (c *Client) parseRecordings(recordings []recording) []metadata.Track {
	var results []metadata.Track
	for _, rec := range recordings {
		t := metadata.Track{
			Title:  rec.Title,
			Artist: joinArtistCredits(rec.ArtistCredit),
			Source: "musicbrainz",
		}
		if rec.ID != "" {
			t.ID = "musicbrainz:" + rec.ID
		}

		if len(rec.Releases) > 0 {
			rel := pickBestRelease(rec.Releases)
			t.Album = rel.Title
			t.ReleaseDate = parseDate(rel.Date)
			t.CollectionType = collectionType(rel.ReleaseGroup)
			if rel.ID != "" {
				t.ArtworkURL = fmt.Sprintf("%s/release/%s/front-500", c.artURL, rel.ID)
			}
		}

		results = append(results, t)
	}
	return results
}

func joinArtistCredits(credits []artistCredit) string {
	var b strings.Builder
	for _, ac := range credits {
		b.WriteString(ac.Name)
		if ac.Name == "" {
			b.WriteString(ac.Artist.Name)
		}
		b.WriteString(ac.JoinPhrase)
	}
	return strings.TrimSpace(b.String())
}

// pickBestRelease prefers official albums without secondary types, then the
// earliest date.
func pickBestRelease(releases []release) release {
	best := releases[0]
	bestScore := releaseScore(best)

	for _, rel := range releases[1:] {
		s := releaseScore(rel)
		if s > bestScore || (s == bestScore && rel.Date != "" && (best.Date == "" || rel.Date < best.Date)) {
			best = rel
			bestScore = s
		}
	}
	return best
}

func releaseScore(rel release) int {
	score := 0
	if rel.Status == "Official" {
		score += 4
	}
	if rel.ReleaseGroup.PrimaryType == "Album" {
		score += 2
	}
	if len(rel.ReleaseGroup.SecondaryTypes) == 0 {
		score++
	}
	return score
}

func collectionType(rg releaseGroup) metadata.CollectionType {
	for _, st := range rg.SecondaryTypes {
		if st == "Compilation" {
			return metadata.CollectionCompilation
		}
	}
	switch rg.PrimaryType {
	case "Album", "EP":
		return metadata.CollectionAlbum
	case "Single":
		return metadata.CollectionSingle
	default:
		return metadata.CollectionOther
	}
}

// parseDate accepts the partial dates MusicBrainz uses: YYYY, YYYY-MM and
// YYYY-MM-DD.
func parseDate(s string) time.Time {
	for _, layout := range []string{"2006-01-02", "2006-01", "2006"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

// MusicBrainz API response types

type searchResponse struct {
	Recordings []recording `json:"recordings"`
}

type recording struct {
	ID           string         `json:"id"`
	Title        string         `json:"title"`
	ArtistCredit []artistCredit `json:"artist-credit"`
	Releases     []release      `json:"releases"`
}

type artistCredit struct {
	Name       string     `json:"name"`
	JoinPhrase string     `json:"joinphrase"`
	Artist     artistInfo `json:"artist"`
}

type artistInfo struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type release struct {
	ID           string       `json:"id"`
	Title        string       `json:"title"`
	Status       string       `json:"status"`
	Date         string       `json:"date"`
	ReleaseGroup releaseGroup `json:"release-group"`
}

type releaseGroup struct {
	PrimaryType    string   `json:"primary-type"`
	SecondaryTypes []string `json:"secondary-types"`
}
