package engine

import (
	"sort"
	"time"

	"github.com/dgnsrekt/video_agent/internal/media"
)

// Session is the aggregation scope for one observed video element. It lives
// for the page's lifetime and is mutated only inside the engine loop.
type Session struct {
	ID        string
	PageURL   string
	CreatedAt time.Time
	Duration  *float64

	sources     map[string]struct{} // known media src URLs, used for attribution
	links       map[string]*Link
	probedBases map[string]struct{} // segment directories already sent to inference
}

func newSession(id, pageURL string) *Session {
	return &Session{
		ID:          id,
		PageURL:     pageURL,
		CreatedAt:   time.Now().UTC(),
		sources:     make(map[string]struct{}),
		links:       make(map[string]*Link),
		probedBases: make(map[string]struct{}),
	}
}

func (s *Session) countCategory(cat media.Category) int {
	n := 0
	for _, l := range s.links {
		if l.Category == cat {
			n++
		}
	}
	return n
}

// evictOldest removes the n oldest-by-insertion links.
func (s *Session) evictOldest(n int) {
	victims := make([]*Link, 0, len(s.links))
	for _, l := range s.links {
		victims = append(victims, l)
	}
	sort.Slice(victims, func(i, j int) bool { return victims[i].seq < victims[j].seq })
	if n > len(victims) {
		n = len(victims)
	}
	for _, l := range victims[:n] {
		delete(s.links, l.URL)
	}
}

// Display group order. The HLS group collects both manifests and their
// materialized variants.
var categoryGroup = map[media.Category]int{
	media.CategoryHLS:        0,
	media.CategoryHLSVariant: 0,
	media.CategoryDASH:       1,
	media.CategoryFile:       2,
	media.CategorySegment:    3,
	media.CategoryBlob:       4,
	media.CategoryManifest:   5,
	media.CategoryOther:      6,
}

// sortedLinks returns the session's links in display order: grouped by
// category priority; the HLS group ascending by bitrate, pixel count,
// variant flag and insertion order so the lowest-quality rendition surfaces
// first; every other group newest first.
func (s *Session) sortedLinks() []*Link {
	out := make([]*Link, 0, len(s.links))
	for _, l := range s.links {
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		ga, gb := categoryGroup[a.Category], categoryGroup[b.Category]
		if ga != gb {
			return ga < gb
		}
		if ga == 0 {
			if ba, bb := bandwidthOf(a), bandwidthOf(b); ba != bb {
				return ba < bb
			}
			if pa, pb := pixelsOf(a), pixelsOf(b); pa != pb {
				return pa < pb
			}
			va := a.Category == media.CategoryHLSVariant
			vb := b.Category == media.CategoryHLSVariant
			if va != vb {
				return !va
			}
			return a.seq < b.seq
		}
		return a.seq > b.seq
	})
	return out
}

func bandwidthOf(l *Link) float64 {
	if l.Bandwidth == nil {
		return 0
	}
	return *l.Bandwidth
}

func pixelsOf(l *Link) float64 {
	if l.Width != nil && l.Height != nil {
		return *l.Width * *l.Height
	}
	return 0
}
