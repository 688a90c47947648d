package deezer

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

	"coverwall/internal/metadata"
)

const defaultLimit = 25

// Client is a Deezer API client that implements metadata.Provider. Deezer
// has a single global catalog, so request country and attribute are ignored.
type Client struct {
	httpClient *http.Client
	apiURL     string
}

// New creates a new Deezer client.
func New() *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		apiURL:     "https://api.deezer.com",
	}
}

func (c *Client) Name() string { return "deezer" }

// Search queries the Deezer search API and returns matching tracks.
func (c *Client) Search(ctx context.Context, req metadata.SearchRequest) ([]metadata.Track, error) {
	q := strings.TrimSpace(req.Term)
	if q == "" {
		return nil, nil
	}

	limit := req.Limit
	if limit <= 0 {
		limit = defaultLimit
	}

	reqURL := fmt.Sprintf("%s/search?q=%s&limit=%d", c.apiURL, url.QueryEscape(q), limit)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create deezer request: %w", err)
	}
	httpReq.Header.Set("User-Agent", "coverwall/1.0")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("deezer search request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("deezer search returned %d: %s", resp.StatusCode, body)
	}

	var searchResp searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&searchResp); err != nil {
		return nil, fmt.Errorf("failed to decode deezer response: %w", err)
	}

	if searchResp.Error != nil {
		return nil, fmt.Errorf("deezer API error: %s", searchResp.Error.Message)
	}

	return parseResults(searchResp.Data), nil
}

func parseResults(items []trackItem) []metadata.Track {
	var results []metadata.Track
	for _, item := range items {
		var artworkURL string
		if item.Album.CoverXL != "" {
			artworkURL = item.Album.CoverXL
		} else if item.Album.CoverBig != "" {
			artworkURL = item.Album.CoverBig
		}

		title := item.Title
		if title == "" {
			title = item.TitleShort
		}

		t := metadata.Track{
			Title:       title,
			Artist:      item.Artist.Name,
			Album:       item.Album.Title,
			ArtworkURL:  artworkURL,
			NotExplicit: !item.ExplicitLyrics,
			Source:      "deezer",
		}
		if item.ID != 0 {
			t.ID = "deezer:" + strconv.FormatInt(item.ID, 10)
		}
		results = append(results, t)
	}
	return results
}

// Deezer API response types

type searchResponse struct {
	Data  []trackItem `json:"data"`
	Error *apiError   `json:"error,omitempty"`
}

type apiError struct {
	Type    string `json:"type"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

type trackItem struct {
	ID             int64     `json:"id"`
	Title          string    `json:"title"`
	TitleShort     string    `json:"title_short"`
	ExplicitLyrics bool      `json:"explicit_lyrics"`
	Artist         artist    `json:"artist"`
	Album          albumInfo `json:"album"`
}

type artist struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type albumInfo struct {
	ID       int64  `json:"id"`
	Title    string `json:"title"`
	CoverBig string `json:"cover_big"`
	CoverXL  string `json:"cover_xl"`
}
