package engine

import (
	"context"

	"github.com/dgnsrekt/video_agent/internal/manifest"
	"github.com/dgnsrekt/video_agent/internal/probe"
)

// ManifestFetcher downloads and parses a manifest document. ok=false means
// no enrichment is available for that URL; the engine treats it as routine.
type ManifestFetcher interface {
	Fetch(ctx context.Context, url string) (manifest.Descriptor, bool)
}

// SizeProber answers HEAD content-length lookups for progressive files.
type SizeProber interface {
	Head(ctx context.Context, url string) (float64, bool)
}

// CandidateProber checks inferred manifest candidates for signatures.
type CandidateProber interface {
	ProbeAll(ctx context.Context, urls []string) []probe.Hit
}

// Services are the network collaborators the engine schedules background
// work on. All calls run outside the engine loop and may take arbitrary
// time; completions are folded back in as tasks.
type Services struct {
	Manifests ManifestFetcher
	Sizes     SizeProber
	Probes    CandidateProber
}

// Sink receives link lifecycle notifications from inside the engine loop.
// Implementations must not block.
type Sink interface {
	LinkUpserted(sessionID string, link LinkView, inserted bool)
}
