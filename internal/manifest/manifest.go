// Package manifest parses the two text formats that describe adaptive
// streams: HLS extended M3U playlists and DASH MPD documents. Parsing is
// best-effort: malformed input degrades to a partial descriptor, never an
// error.
package manifest

// Format identifies a manifest grammar.
type Format string

const (
	FormatHLS     Format = "hls"
	FormatDASH    Format = "dash"
	FormatUnknown Format = "unknown"
)

// Variant is one encoded rendition referenced by an HLS master playlist.
type Variant struct {
	URL        string   `json:"url"`
	Resolution string   `json:"resolution,omitempty"`
	Bandwidth  *float64 `json:"bandwidth,omitempty"`
	Codecs     string   `json:"codecs,omitempty"`
}

// Representation is one encoded rendition declared by a DASH MPD. Unlike an
// HLS variant it does not carry a directly downloadable URL.
type Representation struct {
	ID        string   `json:"id,omitempty"`
	Width     *float64 `json:"width,omitempty"`
	Height    *float64 `json:"height,omitempty"`
	Bandwidth *float64 `json:"bandwidth,omitempty"`
}

// Descriptor is the parsed result of fetching a manifest.
type Descriptor struct {
	Format          Format           `json:"format"`
	Variants        []Variant        `json:"variants,omitempty"`
	Representations []Representation `json:"representations,omitempty"`
	Duration        *float64         `json:"duration,omitempty"`
	DRM             bool             `json:"drm"`
	Live            bool             `json:"live"`
	Master          bool             `json:"master"`
}
