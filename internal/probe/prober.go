// Package probe performs the lightweight network checks the discovery engine
// schedules: existence/signature probes of candidate manifest URLs, full
// manifest fetches, and HEAD size lookups. Failures are evidence of absence,
// not errors; every entry point degrades to "no result".
package probe

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/dgnsrekt/video_agent/internal/manifest"
)

// Empirical tuning values; recalibrate here, not in the logic.
const (
	// MaxCandidates caps the probe fan-out per batch.
	MaxCandidates = 20
	// rangeBytes is how much of a candidate body gets fetched.
	rangeBytes = 4096
	// sniffBytes is how much of the body prefix is inspected for signatures.
	sniffBytes = 2048

	scoreReachable     = 40
	scoreHLSSignature  = 45
	scoreDASHSignature = 45
	scoreManifestName  = 10

	defaultTimeout = 10 * time.Second
)

var manifestNameRe = regexp.MustCompile(`(?i)master|playlist|manifest|index|stream`)

// Hit is a probe result for one candidate URL.
type Hit struct {
	URL     string          `json:"url"`
	Type    manifest.Format `json:"type"`
	Score   int             `json:"score"`
	Reasons []string        `json:"reasons"`
}

// Prober checks candidate manifest URLs for existence and format signatures.
type Prober struct {
	client *http.Client
}

func NewProber(client *http.Client) *Prober {
	if client == nil {
		client = &http.Client{Timeout: defaultTimeout}
	}
	return &Prober{client: client}
}

// ProbeAll probes a deduplicated, capped candidate set. Failed probes are
// dropped silently; results come back sorted by descending score.
func (p *Prober) ProbeAll(ctx context.Context, urls []string) []Hit {
	seen := make(map[string]struct{}, len(urls))
	var unique []string
	for _, u := range urls {
		if _, ok := seen[u]; ok {
			continue
		}
		seen[u] = struct{}{}
		unique = append(unique, u)
		if len(unique) >= MaxCandidates {
			break
		}
	}

	var hits []Hit
	for _, u := range unique {
		if hit := p.probe(ctx, u); hit != nil {
			hits = append(hits, *hit)
		}
	}

	sort.SliceStable(hits, func(i, j int) bool { return hits[i].Score > hits[j].Score })
	return hits
}

// probe issues a partial-range GET and scores the response. Nil means the
// candidate is unreachable or shows no manifest signature.
func (p *Prober) probe(ctx context.Context, rawURL string) *Hit {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil
	}
	req.Header.Set("Range", fmt.Sprintf("bytes=0-%d", rangeBytes-1))

	resp, err := p.client.Do(req)
	if err != nil {
		slog.Debug("probe failed", "url", rawURL, "error", err)
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil
	}

	// Servers may ignore the Range header; cap the read regardless.
	prefix, _ := io.ReadAll(io.LimitReader(resp.Body, rangeBytes))
	body := strings.ToLower(string(prefix))
	if len(body) > sniffBytes {
		body = body[:sniffBytes]
	}

	contentType := strings.ToLower(resp.Header.Get("Content-Type"))
	lowerURL := strings.ToLower(rawURL)

	hasHLSSig := strings.Contains(lowerURL, ".m3u8") ||
		strings.Contains(contentType, "mpegurl") ||
		strings.HasPrefix(body, "#extm3u")
	hasDASHSig := strings.Contains(lowerURL, ".mpd") ||
		strings.Contains(contentType, "dash+xml") ||
		strings.Contains(body, "<mpd")

	if !hasHLSSig && !hasDASHSig {
		return nil
	}

	score := scoreReachable
	reasons := []string{"reachable"}
	if hasHLSSig {
		score += scoreHLSSignature
		reasons = append(reasons, "hls-signature")
	}
	if hasDASHSig {
		score += scoreDASHSignature
		reasons = append(reasons, "dash-signature")
	}
	if manifestNameRe.MatchString(lowerURL) {
		score += scoreManifestName
		reasons = append(reasons, "manifest-like-name")
	}

	// HLS wins the reported type when both signatures somehow fire.
	hitType := manifest.FormatDASH
	if hasHLSSig {
		hitType = manifest.FormatHLS
	}

	return &Hit{URL: rawURL, Type: hitType, Score: score, Reasons: reasons}
}
