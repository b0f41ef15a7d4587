package download

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Manager saves link URLs to disk under a base directory. Name collisions
// are uniquified rather than overwritten.
type Manager struct {
	client   *http.Client
	baseDir  string
	settings Settings
}

func NewManager(client *http.Client, baseDir string, settings Settings) *Manager {
	if client == nil {
		client = &http.Client{Timeout: 5 * time.Minute}
	}
	return &Manager{client: client, baseDir: baseDir, settings: settings}
}

// Settings returns the manager's save preferences.
func (m *Manager) Settings() Settings {
	return m.settings
}

// Save fetches a link URL and writes it under baseDir/subfolder. Returns the
// path written.
func (m *Manager) Save(ctx context.Context, rawURL string) (string, error) {
	req := RequestFor(rawURL, m.settings)

	target := filepath.Join(m.baseDir, filepath.FromSlash(req.Filename))
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return "", fmt.Errorf("download: mkdir: %w", err)
	}
	target = uniquify(target)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, req.URL, nil)
	if err != nil {
		return "", fmt.Errorf("download: build request: %w", err)
	}

	resp, err := m.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("download: fetch %s: %w", req.URL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("download: fetch %s: status %d", req.URL, resp.StatusCode)
	}

	f, err := os.Create(target)
	if err != nil {
		return "", fmt.Errorf("download: create %s: %w", target, err)
	}
	defer f.Close()

	written, err := io.Copy(f, resp.Body)
	if err != nil {
		return "", fmt.Errorf("download: write %s: %w", target, err)
	}

	slog.Info("link saved", "url", req.URL, "path", target, "bytes", written)
	return target, nil
}

// uniquify appends " (n)" before the extension until the path is free.
func uniquify(target string) string {
	if _, err := os.Stat(target); os.IsNotExist(err) {
		return target
	}
	ext := filepath.Ext(target)
	stem := strings.TrimSuffix(target, ext)
	for i := 1; ; i++ {
		candidate := fmt.Sprintf("%s (%d)%s", stem, i, ext)
		if _, err := os.Stat(candidate); os.IsNotExist(err) {
			return candidate
		}
	}
}
