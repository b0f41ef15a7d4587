package engine

import (
	"strings"
	"time"

	"github.com/dgnsrekt/video_agent/internal/media"
)

// Kind labels a raw observation event.
type Kind string

const (
	KindMediaPlay  Kind = "media-play"
	KindMediaMeta  Kind = "media-meta"
	KindMediaSrc   Kind = "media-src"
	KindNetRequest Kind = "net-request"
)

// Observation is one raw event from the page: a network request, a media
// element gaining metadata, a src assignment, or a play interaction.
type Observation struct {
	Kind          Kind
	SessionHint   string
	URL           string
	Duration      *float64
	InitiatorType string
}

// Link is one distinct URL discovered for a session. URL is the unique key;
// once a field holds data it is never replaced by an empty value.
type Link struct {
	URL           string         `json:"url"`
	Category      media.Category `json:"category"`
	Label         string         `json:"label"`
	Source        string         `json:"source"`
	InitiatorType string         `json:"initiator_type,omitempty"`
	AddedAt       time.Time      `json:"added_at"`
	DRM           bool           `json:"drm"`
	Live          bool           `json:"live"`
	Master        bool           `json:"master"`
	Duration      *float64       `json:"duration,omitempty"`
	Size          *float64       `json:"size,omitempty"`
	Bandwidth     *float64       `json:"bandwidth,omitempty"`
	Resolution    string         `json:"resolution,omitempty"`
	Width         *float64       `json:"width,omitempty"`
	Height        *float64       `json:"height,omitempty"`
	Codecs        string         `json:"codecs,omitempty"`
	Qualities     []string       `json:"qualities,omitempty"`
	Score         *int           `json:"score,omitempty"`
	Reasons       []string       `json:"reasons,omitempty"`

	seq uint64 // monotonic insertion order, drives recency ranking and eviction
}

// linkPatch carries optional fields from a new observation of an existing
// URL. Merging fills gaps only; it never erases known data.
type linkPatch struct {
	category      media.Category
	label         string
	source        string
	initiatorType string
	duration      *float64
	size          *float64
	bandwidth     *float64
	resolution    string
	width         *float64
	height        *float64
	codecs        string
	score         *int
	reasons       []string
}

func (l *Link) merge(p linkPatch) {
	if l.Category == "" {
		l.Category = p.category
	}
	if l.Label == "" {
		l.Label = p.label
	}
	if l.Source == "" {
		l.Source = p.source
	}
	if l.InitiatorType == "" {
		l.InitiatorType = p.initiatorType
	}
	if l.Duration == nil {
		l.Duration = p.duration
	}
	if l.Size == nil {
		l.Size = p.size
	}
	if l.Bandwidth == nil {
		l.Bandwidth = p.bandwidth
	}
	if l.Resolution == "" {
		l.Resolution = p.resolution
	}
	if l.Width == nil {
		l.Width = p.width
	}
	if l.Height == nil {
		l.Height = p.height
	}
	if l.Codecs == "" {
		l.Codecs = p.codecs
	}
	if l.Score == nil {
		l.Score = p.score
	}
	if l.Reasons == nil {
		l.Reasons = p.reasons
	}
}

// LinkView is the consumer-facing shape of a link: the record plus the same
// display strings the on-page overlay used to render.
type LinkView struct {
	Link
	DisplayLabel string `json:"display_label"`
	Meta         string `json:"meta"`
}

func viewOf(l *Link) LinkView {
	return LinkView{Link: *l, DisplayLabel: buildLabel(l), Meta: buildMeta(l)}
}

func buildLabel(l *Link) string {
	parts := []string{}
	if l.Label != "" {
		parts = append(parts, l.Label)
	} else if l.Category != "" {
		parts = append(parts, string(l.Category))
	} else {
		parts = append(parts, "LINK")
	}
	if l.Resolution != "" {
		parts = append(parts, l.Resolution)
	} else if l.Width != nil && l.Height != nil {
		parts = append(parts, media.FormatResolution(*l.Width, *l.Height))
	}
	if l.Bandwidth != nil {
		parts = append(parts, media.FormatBandwidth(*l.Bandwidth))
	}
	if l.Category == media.CategoryBlob {
		parts = append(parts, "local")
	}
	return strings.Join(parts, " · ")
}

func buildMeta(l *Link) string {
	var meta []string
	if l.Duration != nil {
		meta = append(meta, "Duration: "+media.FormatDuration(*l.Duration))
	}
	if l.Size != nil {
		meta = append(meta, "Size: "+media.FormatBytes(*l.Size))
	}
	if len(l.Qualities) > 0 {
		meta = append(meta, "Qualities: "+strings.Join(l.Qualities, ", "))
	}
	if l.InitiatorType != "" {
		meta = append(meta, "Source: "+l.InitiatorType)
	}
	if len(meta) == 0 {
		return "—"
	}
	return strings.Join(meta, " | ")
}
