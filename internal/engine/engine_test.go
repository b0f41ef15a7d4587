package engine

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/dgnsrekt/video_agent/internal/manifest"
	"github.com/dgnsrekt/video_agent/internal/media"
	"github.com/dgnsrekt/video_agent/internal/probe"
)

type fakeManifests struct {
	mu    sync.Mutex
	descs map[string]manifest.Descriptor
	calls int
}

func (f *fakeManifests) Fetch(ctx context.Context, url string) (manifest.Descriptor, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	desc, ok := f.descs[url]
	return desc, ok
}

type fakeSizes struct {
	mu    sync.Mutex
	sizes map[string]float64
}

func (f *fakeSizes) Head(ctx context.Context, url string) (float64, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	size, ok := f.sizes[url]
	return size, ok
}

type fakeProbes struct {
	mu    sync.Mutex
	hits  []probe.Hit
	calls int
}

func (f *fakeProbes) ProbeAll(ctx context.Context, urls []string) []probe.Hit {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.hits
}

func (f *fakeProbes) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func newTestEngine() (*Engine, *fakeManifests, *fakeSizes, *fakeProbes) {
	manifests := &fakeManifests{descs: make(map[string]manifest.Descriptor)}
	sizes := &fakeSizes{sizes: make(map[string]float64)}
	probes := &fakeProbes{}
	e := New(Services{Manifests: manifests, Sizes: sizes, Probes: probes})
	return e, manifests, sizes, probes
}

func TestAddLinkMergeFillsGapsOnly(t *testing.T) {
	e, _, _, _ := newTestEngine()
	s := e.ensureSession("s1", "https://page.test/watch")

	dur := 90.0
	e.addLink(s, "https://cdn.test/v/movie.mp4", linkPatch{source: "media-src", duration: &dur})
	if len(s.links) != 1 {
		t.Fatalf("len(links) = %d, want 1", len(s.links))
	}

	otherDur := 200.0
	bw := 2_000_000.0
	e.addLink(s, "https://cdn.test/v/movie.mp4", linkPatch{source: "net", duration: &otherDur, bandwidth: &bw})
	if len(s.links) != 1 {
		t.Fatalf("len(links) after re-add = %d, want 1", len(s.links))
	}

	link := s.links["https://cdn.test/v/movie.mp4"]
	if link.Source != "media-src" {
		t.Fatalf("Source = %q, want original media-src", link.Source)
	}
	if *link.Duration != 90 {
		t.Fatalf("Duration = %v, want original 90", *link.Duration)
	}
	if link.Bandwidth == nil || *link.Bandwidth != 2_000_000 {
		t.Fatalf("Bandwidth = %v, want filled 2e6", link.Bandwidth)
	}
}

func TestAddLinkClassifies(t *testing.T) {
	e, _, _, _ := newTestEngine()
	s := e.ensureSession("s1", "")

	e.addLink(s, "https://cdn.test/v/master.m3u8", linkPatch{source: "net"})
	link := s.links["https://cdn.test/v/master.m3u8"]
	if link.Category != media.CategoryHLS {
		t.Fatalf("Category = %q, want hls", link.Category)
	}
	if link.Label != "HLS" {
		t.Fatalf("Label = %q, want HLS", link.Label)
	}
}

func TestSegmentCapRejectsOverflow(t *testing.T) {
	e, _, _, _ := newTestEngine()
	s := e.ensureSession("s1", "")

	for i := 0; i < MaxSegmentsPerSession+1; i++ {
		e.addLink(s, fmt.Sprintf("https://cdn.test/v/seg-%03d.ts", i), linkPatch{source: "net"})
	}
	if got := s.countCategory(media.CategorySegment); got != MaxSegmentsPerSession {
		t.Fatalf("segment count = %d, want %d", got, MaxSegmentsPerSession)
	}
	if _, ok := s.links["https://cdn.test/v/seg-030.ts"]; ok {
		t.Fatal("31st segment was inserted past the cap")
	}
}

func TestTotalCapEvictsOldestBatch(t *testing.T) {
	e, _, _, _ := newTestEngine()
	s := e.ensureSession("s1", "")

	for i := 0; i < MaxLinksPerSession; i++ {
		e.addLink(s, fmt.Sprintf("https://cdn.test/r/%03d", i), linkPatch{source: "net"})
	}
	if len(s.links) != MaxLinksPerSession {
		t.Fatalf("len(links) = %d, want %d", len(s.links), MaxLinksPerSession)
	}

	e.addLink(s, "https://cdn.test/r/overflow", linkPatch{source: "net"})
	if len(s.links) != MaxLinksPerSession-evictBatch+1 {
		t.Fatalf("len(links) = %d, want %d", len(s.links), MaxLinksPerSession-evictBatch+1)
	}
	for i := 0; i < evictBatch; i++ {
		if _, ok := s.links[fmt.Sprintf("https://cdn.test/r/%03d", i)]; ok {
			t.Fatalf("oldest link %d survived eviction", i)
		}
	}
	if _, ok := s.links[fmt.Sprintf("https://cdn.test/r/%03d", evictBatch)]; !ok {
		t.Fatalf("link %d should have survived eviction", evictBatch)
	}
	if _, ok := s.links["https://cdn.test/r/overflow"]; !ok {
		t.Fatal("overflow link missing after eviction")
	}
}

func TestApplyManifestHLSVariants(t *testing.T) {
	e, _, _, _ := newTestEngine()
	s := e.ensureSession("s1", "")
	e.addLink(s, "https://cdn.test/v/master.m3u8", linkPatch{source: "media-src"})

	bwLow, bwHigh := 1_000_000.0, 4_000_000.0
	dur := 120.0
	desc := manifest.Descriptor{
		Format:   manifest.FormatHLS,
		Master:   true,
		DRM:      true,
		Duration: &dur,
		Variants: []manifest.Variant{
			{URL: "https://cdn.test/v/low.m3u8", Resolution: "640x360", Bandwidth: &bwLow},
			{URL: "https://cdn.test/v/high.m3u8", Resolution: "1920x1080", Bandwidth: &bwHigh},
		},
	}
	e.applyManifest("s1", "https://cdn.test/v/master.m3u8", desc)

	master := s.links["https://cdn.test/v/master.m3u8"]
	if !master.Master || !master.DRM {
		t.Fatalf("master flags = master:%v drm:%v", master.Master, master.DRM)
	}
	if master.Duration == nil || *master.Duration != 120 {
		t.Fatalf("master Duration = %v", master.Duration)
	}

	low := s.links["https://cdn.test/v/low.m3u8"]
	if low == nil {
		t.Fatal("low variant not materialized")
	}
	if low.Category != media.CategoryHLSVariant {
		t.Fatalf("variant Category = %q", low.Category)
	}
	if !low.DRM {
		t.Fatal("variant did not inherit DRM flag")
	}
	if low.Resolution != "640x360" {
		t.Fatalf("variant Resolution = %q", low.Resolution)
	}
	if low.Size == nil || *low.Size != 120*1_000_000/8 {
		t.Fatalf("variant Size = %v, want estimated 15000000", low.Size)
	}
}

func TestVariantResolutionBreaksBandwidthTies(t *testing.T) {
	e, _, _, _ := newTestEngine()
	s := e.ensureSession("s1", "")
	e.addLink(s, "https://cdn.test/v/master.m3u8", linkPatch{source: "media-src"})

	// Same declared bandwidth; only the resolution can order these.
	bw := 2_000_000.0
	desc := manifest.Descriptor{
		Format: manifest.FormatHLS,
		Master: true,
		Variants: []manifest.Variant{
			{URL: "https://cdn.test/v/high.m3u8", Resolution: "1920x1080", Bandwidth: &bw},
			{URL: "https://cdn.test/v/low.m3u8", Resolution: "640x360", Bandwidth: &bw},
		},
	}
	e.applyManifest("s1", "https://cdn.test/v/master.m3u8", desc)

	high := s.links["https://cdn.test/v/high.m3u8"]
	if high.Width == nil || high.Height == nil || *high.Width != 1920 || *high.Height != 1080 {
		t.Fatalf("variant dims = %v x %v, want 1920 x 1080", high.Width, high.Height)
	}

	got := s.sortedLinks()
	want := []string{
		"https://cdn.test/v/master.m3u8",
		"https://cdn.test/v/low.m3u8",
		"https://cdn.test/v/high.m3u8",
	}
	if len(got) != len(want) {
		t.Fatalf("sortedLinks len = %d, want %d", len(got), len(want))
	}
	for i, url := range want {
		if got[i].URL != url {
			t.Fatalf("sortedLinks[%d] = %q, want %q", i, got[i].URL, url)
		}
	}
}

func TestApplyManifestDASHQualities(t *testing.T) {
	e, _, _, _ := newTestEngine()
	s := e.ensureSession("s1", "")
	e.addLink(s, "https://cdn.test/v/stream.mpd", linkPatch{source: "net"})

	w, h, bw := 1920.0, 1080.0, 4_800_000.0
	desc := manifest.Descriptor{
		Format: manifest.FormatDASH,
		Representations: []manifest.Representation{
			{ID: "v1", Width: &w, Height: &h, Bandwidth: &bw},
		},
	}
	e.applyManifest("s1", "https://cdn.test/v/stream.mpd", desc)

	link := s.links["https://cdn.test/v/stream.mpd"]
	if len(link.Qualities) != 1 {
		t.Fatalf("Qualities = %v, want one entry", link.Qualities)
	}
	if link.Qualities[0] != "1920x1080 4.80 Mbps" {
		t.Fatalf("Qualities[0] = %q", link.Qualities[0])
	}
}

func TestApplyManifestGoneSession(t *testing.T) {
	e, _, _, _ := newTestEngine()
	// Must not panic or create state for a session that never existed.
	e.applyManifest("ghost", "https://cdn.test/v/master.m3u8", manifest.Descriptor{Format: manifest.FormatHLS})
	if len(e.sessions) != 0 {
		t.Fatal("applyManifest resurrected a session")
	}
}

func TestDurationPropagationRetroactiveSize(t *testing.T) {
	e, _, _, _ := newTestEngine()
	s := e.ensureSession("s1", "")

	bw := 2_000_000.0
	e.addLink(s, "https://cdn.test/v/low.m3u8", linkPatch{
		category:  media.CategoryHLSVariant,
		label:     "HLS",
		source:    "hls-variant",
		bandwidth: &bw,
	})
	if s.links["https://cdn.test/v/low.m3u8"].Size != nil {
		t.Fatal("size known before any duration")
	}

	dur := 120.0
	e.handleObservation(Observation{Kind: KindMediaMeta, SessionHint: "s1", Duration: &dur})

	link := s.links["https://cdn.test/v/low.m3u8"]
	if link.Duration == nil || *link.Duration != 120 {
		t.Fatalf("Duration = %v, want propagated 120", link.Duration)
	}
	if link.Size == nil || *link.Size != 30_000_000 {
		t.Fatalf("Size = %v, want retroactive 30000000", link.Size)
	}
}

func TestSegmentInferenceMemoizedPerBase(t *testing.T) {
	e, _, _, _ := newTestEngine()
	s := e.ensureSession("s1", "")

	e.requestInference(s, "https://cdn.test/v/seg-001.ts")
	e.requestInference(s, "https://cdn.test/v/seg-002.ts")
	e.requestInference(s, "https://cdn.test/other/seg-001.ts")

	if len(s.probedBases) != 2 {
		t.Fatalf("len(probedBases) = %d, want 2", len(s.probedBases))
	}
}

func TestSinkNotifications(t *testing.T) {
	manifests := &fakeManifests{descs: make(map[string]manifest.Descriptor)}
	sizes := &fakeSizes{sizes: make(map[string]float64)}
	probes := &fakeProbes{}
	sink := &recordingSink{}
	e := New(Services{Manifests: manifests, Sizes: sizes, Probes: probes}, sink)
	s := e.ensureSession("s1", "")

	e.addLink(s, "https://cdn.test/v/movie.mp4", linkPatch{source: "net"})
	e.addLink(s, "https://cdn.test/v/movie.mp4", linkPatch{source: "media-src"})

	if len(sink.events) != 2 {
		t.Fatalf("len(events) = %d, want 2", len(sink.events))
	}
	if !sink.events[0].inserted || sink.events[1].inserted {
		t.Fatalf("events = %+v, want insert then update", sink.events)
	}
	if sink.events[0].sessionID != "s1" {
		t.Fatalf("sessionID = %q", sink.events[0].sessionID)
	}
}

type sinkEvent struct {
	sessionID string
	link      LinkView
	inserted  bool
}

type recordingSink struct {
	mu     sync.Mutex
	events []sinkEvent
}

func (r *recordingSink) LinkUpserted(sessionID string, link LinkView, inserted bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, sinkEvent{sessionID: sessionID, link: link, inserted: inserted})
}

func TestDisplayOrdering(t *testing.T) {
	e, _, _, _ := newTestEngine()
	s := e.ensureSession("s1", "")

	bwHigh, bwLow := 4_000_000.0, 1_000_000.0
	e.addLink(s, "https://cdn.test/r/app", linkPatch{source: "net"})
	e.addLink(s, "https://cdn.test/v/seg-1.ts", linkPatch{source: "net"})
	e.addLink(s, "https://cdn.test/v/movie.mp4", linkPatch{source: "net"})
	e.addLink(s, "https://cdn.test/v/stream.mpd", linkPatch{source: "net"})
	e.addLink(s, "https://cdn.test/v/high.m3u8", linkPatch{source: "hls-variant", category: media.CategoryHLSVariant, label: "HLS", bandwidth: &bwHigh})
	e.addLink(s, "https://cdn.test/v/master.m3u8", linkPatch{source: "media-src"})
	e.addLink(s, "https://cdn.test/v/low.m3u8", linkPatch{source: "hls-variant", category: media.CategoryHLSVariant, label: "HLS", bandwidth: &bwLow})

	got := s.sortedLinks()
	wantOrder := []string{
		"https://cdn.test/v/master.m3u8", // hls group, no bandwidth sorts lowest
		"https://cdn.test/v/low.m3u8",
		"https://cdn.test/v/high.m3u8",
		"https://cdn.test/v/stream.mpd",
		"https://cdn.test/v/movie.mp4",
		"https://cdn.test/v/seg-1.ts",
		"https://cdn.test/r/app",
	}
	if len(got) != len(wantOrder) {
		t.Fatalf("len(sorted) = %d, want %d", len(got), len(wantOrder))
	}
	for i, want := range wantOrder {
		if got[i].URL != want {
			t.Fatalf("sorted[%d] = %q, want %q", i, got[i].URL, want)
		}
	}
}

func TestMediaMetaRegistersSource(t *testing.T) {
	e, _, _, _ := newTestEngine()

	dur := 60.0
	e.handleObservation(Observation{
		Kind:        KindMediaMeta,
		SessionHint: "s1",
		URL:         "https://cdn.test/v/movie.mp4",
		Duration:    &dur,
	})

	s := e.sessions["s1"]
	if s == nil {
		t.Fatal("session not created by media-meta")
	}
	if _, ok := s.sources["https://cdn.test/v/movie.mp4"]; !ok {
		t.Fatal("currentSrc not recorded as a session source")
	}
	if s.Duration == nil || *s.Duration != 60 {
		t.Fatalf("session Duration = %v, want 60", s.Duration)
	}
	if e.lastActive != "s1" {
		t.Fatalf("lastActive = %q, want s1", e.lastActive)
	}
}
