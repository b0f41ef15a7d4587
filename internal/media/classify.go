package media

import (
	"math"
	"regexp"
	"strings"
)

// Category is the format bucket a discovered URL falls into.
type Category string

const (
	CategoryHLS        Category = "hls"
	CategoryHLSVariant Category = "hls-variant"
	CategoryDASH       Category = "dash"
	CategoryFile       Category = "file"
	CategorySegment    Category = "segment"
	CategoryBlob       Category = "blob"
	CategoryManifest   Category = "manifest"
	CategoryOther      Category = "other"
)

// Classification pairs a category with its display label.
type Classification struct {
	Category Category
	Label    string
}

var (
	fileExtRe    = regexp.MustCompile(`\.(mp4|webm|mkv|mov|m4v)$`)
	segmentExtRe = regexp.MustCompile(`\.(ts|m4s|aac|mp3|cmfv|cmfa)$`)
	videoLikeRe  = regexp.MustCompile(`\.(mp4|webm|mkv|mov|m4v|ts|m4s|aac|mp3)(\?|$)`)
)

// Classify buckets a URL by format. It is case-insensitive and never fails:
// anything without a recognizable signal lands in CategoryOther. Extension
// checks run against the path with query and fragment stripped.
func Classify(rawURL string) Classification {
	lower := strings.ToLower(rawURL)
	stripped := lower
	if i := strings.IndexByte(stripped, '?'); i >= 0 {
		stripped = stripped[:i]
	}
	if i := strings.IndexByte(stripped, '#'); i >= 0 {
		stripped = stripped[:i]
	}

	switch {
	case strings.HasPrefix(lower, "blob:"):
		return Classification{CategoryBlob, "BLOB"}
	case strings.Contains(lower, ".m3u8"):
		return Classification{CategoryHLS, "HLS"}
	case strings.Contains(lower, ".mpd"):
		return Classification{CategoryDASH, "DASH"}
	case fileExtRe.MatchString(stripped):
		return Classification{CategoryFile, "FILE"}
	case segmentExtRe.MatchString(stripped):
		return Classification{CategorySegment, "SEGMENT"}
	case strings.Contains(lower, "manifest") || strings.Contains(lower, "playlist"):
		return Classification{CategoryManifest, "MANIFEST"}
	default:
		return Classification{CategoryOther, "OTHER"}
	}
}

// VideoLikeURL reports whether a network URL carries any streaming-video
// signal at all. Used to prefilter the request firehose before observations
// reach the engine.
func VideoLikeURL(rawURL string) bool {
	if rawURL == "" {
		return false
	}
	lower := strings.ToLower(rawURL)
	return strings.Contains(lower, ".m3u8") ||
		strings.Contains(lower, ".mpd") ||
		videoLikeRe.MatchString(lower) ||
		strings.Contains(lower, "manifest") ||
		strings.Contains(lower, "playlist")
}

// EstimateSize derives a byte size from duration and bitrate. The second
// return value is false when either input is not a finite number.
func EstimateSize(durationSec, bitrateBps float64) (float64, bool) {
	if !isFinite(durationSec) || !isFinite(bitrateBps) {
		return 0, false
	}
	bytes := durationSec * bitrateBps / 8
	if !isFinite(bytes) {
		return 0, false
	}
	return bytes, true
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
