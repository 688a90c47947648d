package cover

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"time"

	"coverwall/internal/metadata"
	"coverwall/pkg/utils"
)

// maxImageBytes bounds a single artwork download.
const maxImageBytes = 20 << 20

// Fetcher downloads artwork images.
type Fetcher struct {
	httpClient *http.Client
	maxBytes   int64
}

// NewFetcher creates a Fetcher with the given per-download timeout.
func NewFetcher(timeout time.Duration) *Fetcher {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Fetcher{httpClient: &http.Client{Timeout: timeout}, maxBytes: maxImageBytes}
}

// Fetch downloads the image at url.
func (f *Fetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create artwork request: %w", err)
	}
	req.Header.Set("User-Agent", "coverwall/1.0")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("artwork download failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("artwork download returned %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read artwork: %w", err)
	}
	if int64(len(data)) > f.maxBytes {
		return nil, fmt.Errorf("artwork exceeds %d bytes", f.maxBytes)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("artwork download returned an empty body")
	}
	return data, nil
}

// Save downloads the cover into dir as "<artist> - <album>.jpg" and returns
// the written path.
func (f *Fetcher) Save(ctx context.Context, c Cover, dir string) (string, error) {
	data, err := f.Fetch(ctx, c.AlbumCoverURL)
	if err != nil {
		return "", err
	}

	path := filepath.Join(dir, utils.CoverFileName(c.ArtistName, c.CollectionName))
	if err := utils.WriteFileAtomic(path, data); err != nil {
		return "", fmt.Errorf("failed to save cover: %w", err)
	}
	return path, nil
}

// Embed downloads the cover and writes it, together with the title, artist
// and album tags, into the audio file at path.
func (f *Fetcher) Embed(ctx context.Context, c Cover, t metadata.Track, path string) error {
	if !utils.IsAudioFile(path) {
		return fmt.Errorf("unsupported audio file: %s", path)
	}
	if !utils.FileExists(path) {
		return fmt.Errorf("audio file not found: %s", path)
	}

	data, err := f.Fetch(ctx, c.AlbumCoverURL)
	if err != nil {
		return err
	}
	return metadata.EmbedCover(path, t, data)
}
