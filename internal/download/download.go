// Package download derives safe save targets for discovered links and
// performs the save itself. Filename and subfolder derivation are pure
// string functions; the fetch-to-disk half lives in Manager.
package download

import (
	"net/url"
	stdpath "path"
	"regexp"
	"strings"
)

// Settings are collaborator-owned preferences, read-only here.
type Settings struct {
	Subfolder        string
	PromptBeforeSave bool
}

var (
	illegalCharRe = regexp.MustCompile(`[\\/:*?"<>|]|[\x00-\x1f]`)
	whitespaceRe  = regexp.MustCompile(`\s+`)
)

// SafeFilename derives a filesystem-safe filename from a link URL: the
// basename of the URL path with illegal characters replaced, falling back to
// an .m3u8 name when the basename carries no extension.
func SafeFilename(rawURL string) string {
	name := "stream"
	if u, err := url.Parse(strings.TrimSpace(rawURL)); err == nil {
		base := stdpath.Base(u.Path)
		if base != "" && base != "." && base != "/" {
			name = base
		}
	}
	name = illegalCharRe.ReplaceAllString(name, "_")
	if stdpath.Ext(name) == "" {
		name += ".m3u8"
	}
	return name
}

// NormalizeSubfolder sanitizes a user-configured subfolder path: backslashes
// become slashes, leading/trailing slashes are trimmed, ".." segments are
// stripped and whitespace is collapsed.
func NormalizeSubfolder(s string) string {
	s = strings.ReplaceAll(s, "\\", "/")
	s = whitespaceRe.ReplaceAllString(s, " ")
	parts := strings.Split(s, "/")
	kept := parts[:0]
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" || part == ".." {
			continue
		}
		kept = append(kept, part)
	}
	return strings.Join(kept, "/")
}

// Request is a fully derived save instruction for one link.
type Request struct {
	URL      string `json:"url"`
	Filename string `json:"filename"`
	SaveAs   bool   `json:"save_as"`
}

// RequestFor builds the save instruction for a link URL under the given
// settings. The subfolder joins in front of the derived filename.
func RequestFor(rawURL string, settings Settings) Request {
	filename := SafeFilename(rawURL)
	if sub := NormalizeSubfolder(settings.Subfolder); sub != "" {
		filename = sub + "/" + filename
	}
	return Request{URL: rawURL, Filename: filename, SaveAs: settings.PromptBeforeSave}
}
