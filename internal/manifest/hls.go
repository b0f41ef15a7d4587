package manifest

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"
)

var (
	extinfRe    = regexp.MustCompile(`#EXTINF:([0-9.]+)`)
	hlsAttrRe   = regexp.MustCompile(`([A-Z0-9-]+)=(("[^"]+")|[^,]+)`)
	lineSplitRe = regexp.MustCompile(`\r?\n`)
)

// ParseHLS parses an extended M3U playlist. Relative variant URIs are
// resolved against baseURL. A playlist is a master iff it declares at least
// one variant; it is live iff it has no end-list tag and zero accumulated
// segment duration.
func ParseHLS(text, baseURL string) Descriptor {
	desc := Descriptor{Format: FormatHLS}

	var (
		duration   float64
		hasEndList bool
		pending    *Variant
	)

	for _, line := range lineSplitRe.Split(text, -1) {
		switch {
		case strings.HasPrefix(line, "#EXT-X-KEY"):
			desc.DRM = true
		case strings.HasPrefix(line, "#EXT-X-ENDLIST"):
			hasEndList = true
		case strings.HasPrefix(line, "#EXTINF:"):
			if m := extinfRe.FindStringSubmatch(line); m != nil {
				if v, err := strconv.ParseFloat(m[1], 64); err == nil {
					duration += v
				}
			}
		case strings.HasPrefix(line, "#EXT-X-STREAM-INF"):
			v := parseStreamInf(line)
			pending = &v
			continue
		}

		// A STREAM-INF stanza binds to exactly the next URI line.
		if pending != nil && line != "" && !strings.HasPrefix(line, "#") {
			pending.URL = resolveURL(line, baseURL)
			desc.Variants = append(desc.Variants, *pending)
			pending = nil
		}
	}

	desc.Master = len(desc.Variants) > 0
	desc.Live = !hasEndList && duration == 0
	if duration != 0 {
		desc.Duration = &duration
	}
	return desc
}

// parseStreamInf extracts RESOLUTION, BANDWIDTH and CODECS from a
// #EXT-X-STREAM-INF line. Attribute values are either quoted strings or
// unquoted runs up to the next comma; malformed lists yield empty fields.
func parseStreamInf(line string) Variant {
	var v Variant
	idx := strings.Index(line, ":")
	if idx < 0 {
		return v
	}
	for _, m := range hlsAttrRe.FindAllStringSubmatch(line[idx+1:], -1) {
		key, value := m[1], m[2]
		if strings.HasPrefix(value, `"`) && strings.HasSuffix(value, `"`) && len(value) >= 2 {
			value = value[1 : len(value)-1]
		}
		switch key {
		case "RESOLUTION":
			v.Resolution = value
		case "BANDWIDTH":
			if n, err := strconv.ParseFloat(value, 64); err == nil {
				v.Bandwidth = &n
			}
		case "CODECS":
			v.Codecs = value
		}
	}
	return v
}

func resolveURL(ref, base string) string {
	b, err := url.Parse(base)
	if err != nil {
		return ref
	}
	r, err := url.Parse(strings.TrimSpace(ref))
	if err != nil {
		return ref
	}
	return b.ResolveReference(r).String()
}
