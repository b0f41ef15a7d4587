package engine

import (
	"net/url"
	"strings"
)

// Attribution scoring weights. Empirical tuning values; an observation
// scoring below the threshold against every session is dropped rather than
// guessed.
const (
	scoreExactSource     = 100
	scoreExactLink       = 90
	scoreHostSource      = 30
	scoreHostLink        = 25
	scoreOriginMatch     = 20
	attributionThreshold = 25
)

// attribute resolves which session an observed URL belongs to. Resolution
// order: explicit hint, previously recorded owner of the exact URL, the sole
// or most recently active session, then host/origin scoring against every
// session's sources and links. Every successful attribution records the
// owner so the URL stays with that session on later sightings. Empty result
// means the observation is unattributable.
func (e *Engine) attribute(obsURL, hint string) string {
	if hint != "" {
		if _, ok := e.sessions[hint]; ok {
			e.urlOwner[obsURL] = hint
			return hint
		}
	}

	if owner, ok := e.urlOwner[obsURL]; ok {
		if _, alive := e.sessions[owner]; alive {
			return owner
		}
	}

	if len(e.order) == 1 {
		e.urlOwner[obsURL] = e.order[0]
		return e.order[0]
	}
	if e.lastActive != "" {
		if _, ok := e.sessions[e.lastActive]; ok {
			e.urlOwner[obsURL] = e.lastActive
			return e.lastActive
		}
	}

	host, origin := hostAndOrigin(obsURL)
	if host == "" {
		return ""
	}

	bestID := ""
	bestScore := 0
	for _, id := range e.order {
		score := sessionScore(e.sessions[id], obsURL, host, origin)
		if score > bestScore {
			bestScore = score
			bestID = id
		}
	}

	if bestScore < attributionThreshold {
		return ""
	}
	e.urlOwner[obsURL] = bestID
	return bestID
}

// sessionScore is the best match between the observed URL and any of the
// session's known source URLs or existing links.
func sessionScore(s *Session, obsURL, host, origin string) int {
	best := 0
	take := func(score int) {
		if score > best {
			best = score
		}
	}

	for src := range s.sources {
		if src == obsURL {
			take(scoreExactSource)
			continue
		}
		srcHost, srcOrigin := hostAndOrigin(src)
		if srcHost != "" && srcHost == host {
			take(scoreHostSource)
		} else if srcOrigin != "" && srcOrigin == origin {
			take(scoreOriginMatch)
		}
	}

	for linkURL := range s.links {
		if linkURL == obsURL {
			take(scoreExactLink)
			continue
		}
		linkHost, linkOrigin := hostAndOrigin(linkURL)
		if linkHost != "" && linkHost == host {
			take(scoreHostLink)
		} else if linkOrigin != "" && linkOrigin == origin {
			take(scoreOriginMatch)
		}
	}

	return best
}

func hostAndOrigin(rawURL string) (host, origin string) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || u.Host == "" {
		return "", ""
	}
	return u.Host, u.Scheme + "://" + u.Host
}
