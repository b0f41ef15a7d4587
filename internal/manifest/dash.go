package manifest

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	dashDRMRe        = regexp.MustCompile(`(?i)ContentProtection|cenc:pssh`)
	representationRe = regexp.MustCompile(`<Representation\b([^>]+)>`)
	isoDurationRe    = regexp.MustCompile(`PT(?:(\d+)H)?(?:(\d+)M)?(?:(\d+(?:\.\d+)?)S)?`)
)

// ParseDASH parses a DASH MPD document with lightweight regex scanning; it
// tolerates arbitrary input and yields whatever it can recognize.
func ParseDASH(text string) Descriptor {
	desc := Descriptor{Format: FormatDASH}
	desc.DRM = dashDRMRe.MatchString(text)
	desc.Duration = ParseISODuration(extractAttribute(text, "mediaPresentationDuration"))

	for _, m := range representationRe.FindAllStringSubmatch(text, -1) {
		attrs := m[1]
		desc.Representations = append(desc.Representations, Representation{
			ID:        extractAttribute(attrs, "id"),
			Width:     toNumber(extractAttribute(attrs, "width")),
			Height:    toNumber(extractAttribute(attrs, "height")),
			Bandwidth: toNumber(extractAttribute(attrs, "bandwidth")),
		})
	}
	return desc
}

// ParseISODuration parses the PT[nH][nM][n(.n)S] grammar used by MPD
// duration attributes. Missing components count as zero; fractional seconds
// are allowed. Returns nil for empty or unrecognizable input.
func ParseISODuration(value string) *float64 {
	if value == "" {
		return nil
	}
	m := isoDurationRe.FindStringSubmatch(value)
	if m == nil {
		return nil
	}
	hours, _ := strconv.ParseFloat(zeroIfEmpty(m[1]), 64)
	minutes, _ := strconv.ParseFloat(zeroIfEmpty(m[2]), 64)
	seconds, _ := strconv.ParseFloat(zeroIfEmpty(m[3]), 64)
	total := hours*3600 + minutes*60 + seconds
	return &total
}

// extractAttribute reads a double-quoted XML attribute value by name,
// case-insensitively. Returns "" when absent.
func extractAttribute(text, name string) string {
	re, err := regexp.Compile(`(?i)` + regexp.QuoteMeta(name) + `="([^"]+)"`)
	if err != nil {
		return ""
	}
	m := re.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	return m[1]
}

func toNumber(value string) *float64 {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	n, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return nil
	}
	return &n
}

func zeroIfEmpty(s string) string {
	if s == "" {
		return "0"
	}
	return s
}
