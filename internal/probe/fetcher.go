package probe

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/dgnsrekt/video_agent/internal/manifest"
)

// maxManifestBytes bounds how much manifest text gets read. Real manifests
// are a few KB; anything larger is cut off and parsed as-is.
const maxManifestBytes = 4 * 1024 * 1024

// Fetcher downloads and parses manifest documents and answers HEAD size
// requests.
type Fetcher struct {
	client *http.Client
}

func NewFetcher(client *http.Client) *Fetcher {
	if client == nil {
		client = &http.Client{Timeout: defaultTimeout}
	}
	return &Fetcher{client: client}
}

// Fetch GETs a manifest URL and parses the body by detected format. The
// second return value is false when the URL is unreachable or returned a
// non-success status.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (manifest.Descriptor, bool) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return manifest.Descriptor{}, false
	}

	resp, err := f.client.Do(req)
	if err != nil {
		slog.Debug("manifest fetch failed", "url", rawURL, "error", err)
		return manifest.Descriptor{}, false
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		slog.Debug("manifest fetch non-success", "url", rawURL, "status", resp.StatusCode)
		return manifest.Descriptor{}, false
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxManifestBytes))
	if err != nil {
		return manifest.Descriptor{}, false
	}

	return manifest.Parse(rawURL, string(body)), true
}

// Head issues a HEAD request and reports the content length. False when the
// request failed or the server did not declare a size.
func (f *Fetcher) Head(ctx context.Context, rawURL string) (float64, bool) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, rawURL, nil)
	if err != nil {
		return 0, false
	}

	resp, err := f.client.Do(req)
	if err != nil {
		slog.Debug("head probe failed", "url", rawURL, "error", err)
		return 0, false
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return 0, false
	}

	if resp.ContentLength >= 0 {
		return float64(resp.ContentLength), true
	}
	if v := resp.Header.Get("Content-Length"); v != "" {
		if n, err := strconv.ParseFloat(v, 64); err == nil {
			return n, true
		}
	}
	return 0, false
}
