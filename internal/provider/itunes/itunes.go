package itunes

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

const defaultLimit = 25

// Client is an iTunes Search API client that implements metadata.Provider.
type Client struct {
	httpClient *http.Client
	apiURL     string
	limiter    *rate.Limiter
}

// New creates a new iTunes client. Requests wait on limiter when it is
// non-nil; the limiter may be shared with other clients.
func New(limiter *rate.Limiter) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		apiURL:     "https://itunes.apple.com/search",
		limiter:    limiter,
	}
}

// NewLimiter returns a limiter allowing perMinute requests with the given
// burst. A non-positive perMinute disables limiting.
func NewLimiter(perMinute, burst int) *rate.Limiter {
	if perMinute <= 0 {
		return rate.NewLimiter(rate.Inf, 0)
	}
	return rate.NewLimiter(rate.Limit(float64(perMinute)/60.0), max(burst, 1))
}

func (c *Client) Name() string { return "itunes" }

// Search queries the iTunes Search API for songs.
func (c *Client) Search(ctx context.Context, req metadata.SearchRequest) ([]metadata.Track, error) {
	term := strings.TrimSpace(req.Term)
	if term == "" {
		return nil, nil
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("itunes rate limit wait: %w", err)
		}
	}

	limit := req.Limit
	if limit <= 0 {
		limit = defaultLimit
	}

	params := url.Values{}
	params.Set("term", term)
	params.Set("media", "music")
	params.Set("entity", "song")
	params.Set("limit", strconv.Itoa(limit))
	if req.Country != "" {
		params.Set("country", req.Country)
	}
	if attr := req.Attribute.Param(); attr != "" {
		params.Set("attribute", attr)
	}

	reqURL := fmt.Sprintf("%s?%s", c.apiURL, params.Encode())
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create itunes request: %w", err)
	}
	httpReq.Header.Set("User-Agent", "coverwall/1.0")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("itunes search request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("itunes search returned %d: %s", resp.StatusCode, body)
	}

	var searchResp searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&searchResp); err != nil {
		return nil, fmt.Errorf("failed to decode itunes response: %w", err)
	}

	return parseResults(searchResp.Results), nil
}

func parseResults(items []resultItem) []metadata.Track {
	var results []metadata.Track
	for _, item := range items {
		if item.WrapperType != "" && item.WrapperType != "track" {
			continue
		}

		artworkURL := item.ArtworkURL100
		if artworkURL == "" {
			artworkURL = item.ArtworkURL60
		}

		t := metadata.Track{
			Title:           item.TrackName,
			Artist:          item.ArtistName,
			Album:           item.CollectionName,
			ArtworkURL:      artworkURL,
			CollectionType:  collectionType(item),
			TrackPrice:      item.TrackPrice,
			CollectionPrice: item.CollectionPrice,
			NotExplicit:     item.CollectionExplicitness == "notExplicit",
			Source:          "itunes",
		}
		if item.TrackID != 0 {
			t.ID = strconv.FormatInt(item.TrackID, 10)
		}
		if item.ReleaseDate != "" {
			if d, err := time.Parse(time.RFC3339, item.ReleaseDate); err == nil {
				t.ReleaseDate = d
			}
		}

		results = append(results, t)
	}
	return results
}

// collectionType classifies the release a song result belongs to. Song
// results rarely carry collectionType, so the collection name and track
// count are used as hints.
func collectionType(item resultItem) metadata.CollectionType {
	switch strings.ToLower(item.CollectionType) {
	case "album":
		return metadata.CollectionAlbum
	case "compilation":
		return metadata.CollectionCompilation
	}

	name := strings.TrimSpace(item.CollectionName)
	switch {
	case strings.HasSuffix(name, " - Single"), strings.HasSuffix(name, " - EP"):
		return metadata.CollectionSingle
	case item.CollectionArtistName == "Various Artists":
		return metadata.CollectionCompilation
	case item.TrackCount >= 1 && item.TrackCount <= 3:
		return metadata.CollectionSingle
	case item.TrackCount > 3:
		return metadata.CollectionAlbum
	}
	return metadata.CollectionOther
}

// iTunes Search API response types

type searchResponse struct {
	ResultCount int          `json:"resultCount"`
	Results     []resultItem `json:"results"`
}

type resultItem struct {
	WrapperType            string  `json:"wrapperType"`
	TrackID                int64   `json:"trackId"`
	TrackName              string  `json:"trackName"`
	ArtistName             string  `json:"artistName"`
	CollectionName         string  `json:"collectionName"`
	CollectionArtistName   string  `json:"collectionArtistName"`
	CollectionType         string  `json:"collectionType"`
	CollectionExplicitness string  `json:"collectionExplicitness"`
	TrackCount             int     `json:"trackCount"`
	ArtworkURL60           string  `json:"artworkUrl60"`
	ArtworkURL100          string  `json:"artworkUrl100"`
	ReleaseDate            string  `json:"releaseDate"`
	TrackPrice             float64 `json:"trackPrice"`
	CollectionPrice        float64 `json:"collectionPrice"`
}
