package manifest

import "strings"

// DetectFormat decides which grammar a fetched body uses, from the URL
// extension or a textual signature (#EXTM3U for HLS, <MPD for DASH).
func DetectFormat(rawURL, body string) Format {
	lowerURL := strings.ToLower(rawURL)
	switch {
	case strings.Contains(lowerURL, ".m3u8") || strings.Contains(body, "#EXTM3U"):
		return FormatHLS
	case strings.Contains(lowerURL, ".mpd") || strings.Contains(body, "<MPD"):
		return FormatDASH
	default:
		return FormatUnknown
	}
}

// Parse routes body text to the parser DetectFormat picked. Unknown formats
// yield a format-only descriptor.
func Parse(rawURL, body string) Descriptor {
	switch DetectFormat(rawURL, body) {
	case FormatHLS:
		return ParseHLS(body, rawURL)
	case FormatDASH:
		return ParseDASH(body)
	default:
		return Descriptor{Format: FormatUnknown}
	}
}
