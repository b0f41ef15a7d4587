// Package engine is the stream-link discovery core: it attributes raw page
// observations to video sessions, classifies and aggregates discovered URLs
// into bounded per-session link tables, and enriches manifest links with
// parsed metadata. All state mutation happens on a single task loop;
// network requests run as fire-and-forget goroutines whose completions are
// folded back in as tasks.
package engine

import (
	"context"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/dgnsrekt/video_agent/internal/infer"
	"github.com/dgnsrekt/video_agent/internal/manifest"
	"github.com/dgnsrekt/video_agent/internal/media"
)

// Capacity limits per session. Segments are capped harder than the total
// because chunked playback would otherwise flood the table.
const (
	MaxLinksPerSession    = 120
	MaxSegmentsPerSession = 30
	evictBatch            = 5

	taskBufferSize = 1024
)

// Engine owns every mutable aggregate: the session table, the global
// manifest fetch memo and the parsed-descriptor cache.
type Engine struct {
	svc   Services
	sinks []Sink

	tasks chan func()
	done  chan struct{}

	sessions   map[string]*Session
	order      []string // session creation order, for deterministic iteration
	lastActive string
	urlOwner   map[string]string // exact URL -> owning session from a prior attribution

	manifestRequested map[string]struct{}
	manifestCache     map[string]manifest.Descriptor

	seq uint64
}

func New(svc Services, sinks ...Sink) *Engine {
	return &Engine{
		svc:               svc,
		sinks:             sinks,
		tasks:             make(chan func(), taskBufferSize),
		done:              make(chan struct{}),
		sessions:          make(map[string]*Session),
		urlOwner:          make(map[string]string),
		manifestRequested: make(map[string]struct{}),
		manifestCache:     make(map[string]manifest.Descriptor),
	}
}

// Start launches the task loop. The loop drains until Close.
func (e *Engine) Start() {
	go e.run()
}

func (e *Engine) Close() {
	close(e.done)
}

func (e *Engine) run() {
	for {
		select {
		case task := <-e.tasks:
			task()
		case <-e.done:
			return
		}
	}
}

// enqueue hands a closure to the loop. The observation pipeline must never
// block; when the buffer is full the task is dropped.
func (e *Engine) enqueue(task func()) {
	select {
	case e.tasks <- task:
	case <-e.done:
	default:
		slog.Warn("engine task buffer full, dropping task")
	}
}

// EnsureSession registers a session for a newly observed video element.
func (e *Engine) EnsureSession(id, pageURL string) {
	e.enqueue(func() { e.ensureSession(id, pageURL) })
}

func (e *Engine) ensureSession(id, pageURL string) *Session {
	if s, ok := e.sessions[id]; ok {
		return s
	}
	s := newSession(id, pageURL)
	e.sessions[id] = s
	e.order = append(e.order, id)
	slog.Info("session registered", "session_id", id, "page_url", pageURL)
	return s
}

// Observe feeds one raw observation into the engine. Non-blocking.
func (e *Engine) Observe(obs Observation) {
	e.enqueue(func() { e.handleObservation(obs) })
}

func (e *Engine) handleObservation(obs Observation) {
	obs.URL = strings.TrimSpace(obs.URL)

	switch obs.Kind {
	case KindMediaPlay:
		if obs.SessionHint == "" {
			return
		}
		e.ensureSession(obs.SessionHint, "")
		e.lastActive = obs.SessionHint

	case KindMediaMeta:
		if obs.SessionHint == "" {
			return
		}
		s := e.ensureSession(obs.SessionHint, "")
		e.lastActive = obs.SessionHint
		if obs.Duration != nil && isFinite(*obs.Duration) {
			s.Duration = obs.Duration
			e.propagateDuration(s)
		}
		if obs.URL != "" {
			s.sources[obs.URL] = struct{}{}
			e.addLink(s, obs.URL, linkPatch{source: "media-meta"})
		}

	case KindMediaSrc:
		if obs.SessionHint == "" || obs.URL == "" {
			return
		}
		s := e.ensureSession(obs.SessionHint, "")
		e.lastActive = obs.SessionHint
		s.sources[obs.URL] = struct{}{}
		e.addLink(s, obs.URL, linkPatch{source: "media-src"})

	case KindNetRequest:
		if obs.URL == "" {
			return
		}
		id := e.attribute(obs.URL, obs.SessionHint)
		if id == "" {
			slog.Debug("observation unattributable, dropped", "url", obs.URL)
			return
		}
		e.addLink(e.sessions[id], obs.URL, linkPatch{source: "net", initiatorType: obs.InitiatorType})
	}
}

// addLink classifies a URL and either merges it into the session's existing
// record or inserts a new one under the capacity rules.
func (e *Engine) addLink(s *Session, rawURL string, patch linkPatch) {
	if rawURL == "" {
		return
	}

	if patch.category == "" {
		cls := media.Classify(rawURL)
		patch.category = cls.Category
		patch.label = cls.Label
	}

	if existing, ok := s.links[rawURL]; ok {
		existing.merge(patch)
		e.notify(s.ID, existing, false)
		return
	}

	if patch.category == media.CategorySegment &&
		s.countCategory(media.CategorySegment) >= MaxSegmentsPerSession {
		return
	}
	if len(s.links) >= MaxLinksPerSession {
		s.evictOldest(evictBatch)
	}

	e.seq++
	link := &Link{
		URL:           rawURL,
		Category:      patch.category,
		Label:         patch.label,
		Source:        patch.source,
		InitiatorType: patch.initiatorType,
		AddedAt:       time.Now().UTC(),
		Duration:      patch.duration,
		Size:          patch.size,
		Bandwidth:     patch.bandwidth,
		Resolution:    patch.resolution,
		Width:         patch.width,
		Height:        patch.height,
		Codecs:        patch.codecs,
		Score:         patch.score,
		Reasons:       patch.reasons,
		seq:           e.seq,
	}
	if link.Source == "" {
		link.Source = "unknown"
	}
	if link.Duration == nil {
		link.Duration = s.Duration
	}
	s.links[rawURL] = link
	e.notify(s.ID, link, true)

	switch link.Category {
	case media.CategoryHLS, media.CategoryDASH:
		e.requestManifest(s.ID, rawURL)
	case media.CategoryFile:
		e.requestHeadSize(s.ID, rawURL)
	case media.CategorySegment:
		e.requestInference(s, rawURL)
	}
}

// requestManifest schedules a fetch-and-parse for a manifest link. Fetches
// are deduplicated globally and parsed results cached for the lifetime of
// the engine.
func (e *Engine) requestManifest(sessionID, url string) {
	if desc, ok := e.manifestCache[url]; ok {
		e.applyManifest(sessionID, url, desc)
		return
	}
	if _, inflight := e.manifestRequested[url]; inflight {
		return
	}
	e.manifestRequested[url] = struct{}{}

	go func() {
		desc, ok := e.svc.Manifests.Fetch(context.Background(), url)
		e.enqueue(func() {
			if !ok {
				// Leave the memo set: a dead manifest URL stays dead.
				return
			}
			e.manifestCache[url] = desc
			e.applyManifest(sessionID, url, desc)
		})
	}()
}

// applyManifest folds a parsed descriptor back into the owning session. A
// vanished session is a no-op.
func (e *Engine) applyManifest(sessionID, url string, desc manifest.Descriptor) {
	s, ok := e.sessions[sessionID]
	if !ok {
		return
	}

	if link, ok := s.links[url]; ok {
		link.DRM = desc.DRM
		link.Live = desc.Live
		link.Master = desc.Master
		if link.Duration == nil {
			link.Duration = desc.Duration
		}
		if desc.Format == manifest.FormatDASH && len(desc.Representations) > 0 {
			link.Qualities = qualityStrings(desc.Representations)
		}
		e.notify(s.ID, link, false)
	}

	if desc.Format == manifest.FormatHLS {
		for _, variant := range desc.Variants {
			e.addVariant(s, variant, desc)
		}
	}
}

// addVariant materializes an HLS variant as its own link, inheriting the
// parent manifest's DRM/live flags and estimating a size when possible.
func (e *Engine) addVariant(s *Session, v manifest.Variant, desc manifest.Descriptor) {
	if v.URL == "" {
		return
	}

	duration := desc.Duration
	if duration == nil {
		duration = s.Duration
	}

	patch := linkPatch{
		category:   media.CategoryHLSVariant,
		label:      "HLS",
		source:     "hls-variant",
		resolution: v.Resolution,
		bandwidth:  v.Bandwidth,
		codecs:     v.Codecs,
		duration:   duration,
	}
	if w, h, ok := media.ParseResolution(v.Resolution); ok {
		patch.width = &w
		patch.height = &h
	}
	if duration != nil && v.Bandwidth != nil {
		if size, ok := media.EstimateSize(*duration, *v.Bandwidth); ok {
			patch.size = &size
		}
	}

	e.addLink(s, v.URL, patch)

	if link, ok := s.links[v.URL]; ok {
		link.DRM = desc.DRM
		link.Live = desc.Live
		e.notify(s.ID, link, false)
	}
}

// requestHeadSize schedules a content-length lookup for a progressive file.
func (e *Engine) requestHeadSize(sessionID, url string) {
	go func() {
		size, ok := e.svc.Sizes.Head(context.Background(), url)
		if !ok {
			return
		}
		e.enqueue(func() {
			s, alive := e.sessions[sessionID]
			if !alive {
				return
			}
			link, found := s.links[url]
			if !found || link.Size != nil {
				return
			}
			link.Size = &size
			e.notify(s.ID, link, false)
		})
	}()
}

// requestInference derives candidate manifest URLs for a segment and probes
// them. The per-directory base key memo keeps each segment directory from
// being probed more than once per session.
func (e *Engine) requestInference(s *Session, segmentURL string) {
	key := infer.BaseKey(segmentURL)
	if key == "" {
		return
	}
	if _, done := s.probedBases[key]; done {
		return
	}
	s.probedBases[key] = struct{}{}

	candidates := infer.Candidates(segmentURL)
	if len(candidates) == 0 {
		return
	}
	sessionID := s.ID

	go func() {
		hits := e.svc.Probes.ProbeAll(context.Background(), candidates)
		if len(hits) == 0 {
			return
		}
		e.enqueue(func() {
			sess, alive := e.sessions[sessionID]
			if !alive {
				return
			}
			for _, hit := range hits {
				score := hit.Score
				e.addLink(sess, hit.URL, linkPatch{
					source:  "segment-infer",
					score:   &score,
					reasons: hit.Reasons,
				})
			}
		})
	}()
}

// propagateDuration gives the session's media duration to every link that
// lacks one and retroactively estimates sizes for links with a known
// bitrate.
func (e *Engine) propagateDuration(s *Session) {
	if s.Duration == nil {
		return
	}
	for _, link := range s.links {
		changed := false
		if link.Duration == nil {
			link.Duration = s.Duration
			changed = true
		}
		if link.Size == nil && link.Bandwidth != nil && link.Duration != nil {
			if size, ok := media.EstimateSize(*link.Duration, *link.Bandwidth); ok {
				link.Size = &size
				changed = true
			}
		}
		if changed {
			e.notify(s.ID, link, false)
		}
	}
}

func (e *Engine) notify(sessionID string, link *Link, inserted bool) {
	if len(e.sinks) == 0 {
		return
	}
	view := viewOf(link)
	for _, sink := range e.sinks {
		sink.LinkUpserted(sessionID, view, inserted)
	}
}

func qualityStrings(reps []manifest.Representation) []string {
	var out []string
	for _, rep := range reps {
		var parts []string
		if rep.Width != nil && rep.Height != nil {
			parts = append(parts, media.FormatResolution(*rep.Width, *rep.Height))
		}
		if rep.Bandwidth != nil {
			parts = append(parts, media.FormatBandwidth(*rep.Bandwidth))
		}
		if len(parts) > 0 {
			out = append(out, strings.Join(parts, " "))
		}
	}
	return out
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
