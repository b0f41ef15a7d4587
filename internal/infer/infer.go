// Package infer guesses manifest locations from media-segment URLs. Adaptive
// players often fetch segments without the page ever exposing the manifest;
// segment naming conventions usually place the playlist in the same or a
// nearby directory. Everything here is deterministic string work; probing the
// guesses is the caller's job.
package infer

import (
	"net/url"
	stdpath "path"
	"regexp"
	"strings"
)

const (
	// MaxCandidates bounds the guess fan-out, matching the prober's cap.
	MaxCandidates = 20
	// parentLevels is how many directories above the segment to try.
	parentLevels = 2
)

// Conventional filenames streaming packagers use for their entry manifest.
var manifestNames = []string{
	"master.m3u8",
	"index.m3u8",
	"playlist.m3u8",
	"manifest.m3u8",
	"stream.m3u8",
	"dash.mpd",
	"manifest.mpd",
}

// segmentIndexRe strips a trailing segment/chunk counter from a filename
// stem: an optional separator plus seg/segment/chunk/frag/part and digits, or
// a bare 2-6 digit numeric index. Best-effort; unusual naming schemes may
// under- or over-strip.
var segmentIndexRe = regexp.MustCompile(`(?i)(?:[-_.]?(?:seg|segment|chunk|frag|part)\d+|[-_.]\d{2,6}|\d{2,6})$`)

// Candidates derives a bounded, deduplicated set of likely manifest URLs for
// a segment URL. No network I/O.
func Candidates(segmentURL string) []string {
	u, err := url.Parse(strings.TrimSpace(segmentURL))
	if err != nil || u.Host == "" || u.Scheme == "" {
		return nil
	}

	origin := u.Scheme + "://" + u.Host
	bases := parentBases(stdpath.Dir(u.Path))

	var names []string
	names = append(names, manifestNames...)
	if stem := stemGuess(stdpath.Base(u.Path)); stem != "" {
		names = append(names, stem+".m3u8", stem+".mpd")
	}

	seen := make(map[string]struct{})
	var out []string
	for _, base := range bases {
		for _, name := range names {
			candidate := origin + stdpath.Join(base, name)
			if candidate == segmentURL {
				continue
			}
			if _, ok := seen[candidate]; ok {
				continue
			}
			seen[candidate] = struct{}{}
			out = append(out, candidate)
			if len(out) >= MaxCandidates {
				return out
			}
		}
	}
	return out
}

// BaseKey identifies a segment's directory (origin + path) so a session can
// remember which directories it already probed. Empty for unparseable URLs.
func BaseKey(segmentURL string) string {
	u, err := url.Parse(strings.TrimSpace(segmentURL))
	if err != nil || u.Host == "" || u.Scheme == "" {
		return ""
	}
	return u.Scheme + "://" + u.Host + stdpath.Dir(u.Path)
}

// parentBases returns the segment's own directory plus up to parentLevels
// ancestors, stopping at the root.
func parentBases(dir string) []string {
	if dir == "" || dir == "." {
		dir = "/"
	}
	bases := []string{dir}
	for i := 0; i < parentLevels; i++ {
		parent := stdpath.Dir(bases[len(bases)-1])
		if parent == bases[len(bases)-1] {
			break
		}
		bases = append(bases, parent)
	}
	return bases
}

// stemGuess strips the extension and any trailing chunk index from a segment
// filename, leaving the stream name the manifest is likely named after.
func stemGuess(filename string) string {
	stem := strings.TrimSuffix(filename, stdpath.Ext(filename))
	stem = segmentIndexRe.ReplaceAllString(stem, "")
	stem = strings.Trim(stem, "-_.")
	return stem
}
