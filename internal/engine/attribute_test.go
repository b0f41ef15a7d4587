package engine

import "testing"

func TestAttributeExplicitHint(t *testing.T) {
	e, _, _, _ := newTestEngine()
	e.ensureSession("a", "")
	e.ensureSession("b", "")

	if got := e.attribute("https://cdn.test/v/seg.ts", "b"); got != "b" {
		t.Fatalf("attribute with hint = %q, want b", got)
	}
	// The hint records ownership for later hint-less observations.
	if got := e.attribute("https://cdn.test/v/seg.ts", ""); got != "b" {
		t.Fatalf("attribute after recorded owner = %q, want b", got)
	}
}

func TestAttributeStaleHintIgnored(t *testing.T) {
	e, _, _, _ := newTestEngine()
	e.ensureSession("a", "")

	if got := e.attribute("https://cdn.test/v/seg.ts", "ghost"); got != "a" {
		t.Fatalf("attribute with unknown hint = %q, want sole session a", got)
	}
}

func TestAttributeSingleSession(t *testing.T) {
	e, _, _, _ := newTestEngine()
	e.ensureSession("only", "")

	if got := e.attribute("https://anything.test/x.ts", ""); got != "only" {
		t.Fatalf("attribute = %q, want only", got)
	}
}

func TestAttributeSoleSessionOwnershipSticks(t *testing.T) {
	e, _, _, _ := newTestEngine()
	e.ensureSession("first", "")

	if got := e.attribute("https://cdn.test/v/seg.ts", ""); got != "first" {
		t.Fatalf("attribute = %q, want sole session first", got)
	}

	// A later session becoming active must not steal a URL that was
	// already attributed while "first" was alone.
	e.ensureSession("second", "")
	e.handleObservation(Observation{Kind: KindMediaPlay, SessionHint: "second"})

	if got := e.attribute("https://cdn.test/v/seg.ts", ""); got != "first" {
		t.Fatalf("attribute = %q, want recorded owner first", got)
	}
}

func TestAttributeLastActiveOwnershipSticks(t *testing.T) {
	e, _, _, _ := newTestEngine()
	e.ensureSession("a", "")
	e.ensureSession("b", "")
	e.handleObservation(Observation{Kind: KindMediaPlay, SessionHint: "b"})

	if got := e.attribute("https://cdn.test/v/seg.ts", ""); got != "b" {
		t.Fatalf("attribute = %q, want last active b", got)
	}

	e.handleObservation(Observation{Kind: KindMediaPlay, SessionHint: "a"})
	if got := e.attribute("https://cdn.test/v/seg.ts", ""); got != "b" {
		t.Fatalf("attribute = %q, want recorded owner b after activity shift", got)
	}
}

func TestAttributeLastActive(t *testing.T) {
	e, _, _, _ := newTestEngine()
	e.ensureSession("a", "")
	e.ensureSession("b", "")
	e.handleObservation(Observation{Kind: KindMediaPlay, SessionHint: "b"})

	if got := e.attribute("https://cdn.test/v/seg.ts", ""); got != "b" {
		t.Fatalf("attribute = %q, want last active b", got)
	}
}

func TestAttributeExactSourceMatch(t *testing.T) {
	e, _, _, _ := newTestEngine()
	a := e.ensureSession("a", "")
	e.ensureSession("b", "")
	a.sources["https://cdn.test/v/movie.mp4"] = struct{}{}

	if got := e.attribute("https://cdn.test/v/movie.mp4", ""); got != "a" {
		t.Fatalf("attribute = %q, want a", got)
	}
}

func TestAttributeHostMatch(t *testing.T) {
	e, _, _, _ := newTestEngine()
	a := e.ensureSession("a", "")
	b := e.ensureSession("b", "")
	a.sources["https://cdn-a.test/v/movie.mp4"] = struct{}{}
	b.sources["https://cdn-b.test/v/other.mp4"] = struct{}{}

	if got := e.attribute("https://cdn-a.test/live/seg-1.ts", ""); got != "a" {
		t.Fatalf("attribute = %q, want host match a", got)
	}
	if got := e.attribute("https://cdn-b.test/live/seg-1.ts", ""); got != "b" {
		t.Fatalf("attribute = %q, want host match b", got)
	}
}

func TestAttributeLinkBeatsNothing(t *testing.T) {
	e, _, _, _ := newTestEngine()
	a := e.ensureSession("a", "")
	e.ensureSession("b", "")
	e.addLink(a, "https://cdn.test/v/master.m3u8", linkPatch{source: "net"})

	if got := e.attribute("https://cdn.test/v/master.m3u8", ""); got != "a" {
		t.Fatalf("attribute = %q, want exact link owner a", got)
	}
}

func TestAttributeBelowThresholdDrops(t *testing.T) {
	e, _, _, _ := newTestEngine()
	a := e.ensureSession("a", "")
	e.ensureSession("b", "")
	a.sources["https://cdn-a.test/v/movie.mp4"] = struct{}{}

	if got := e.attribute("https://unrelated.test/seg.ts", ""); got != "" {
		t.Fatalf("attribute = %q, want unattributable", got)
	}
}

func TestAttributeNoSessions(t *testing.T) {
	e, _, _, _ := newTestEngine()
	if got := e.attribute("https://cdn.test/v/seg.ts", ""); got != "" {
		t.Fatalf("attribute = %q, want empty with no sessions", got)
	}
}

func TestNetRequestDroppedWhenUnattributable(t *testing.T) {
	e, _, _, _ := newTestEngine()
	a := e.ensureSession("a", "")
	e.ensureSession("b", "")
	a.sources["https://cdn-a.test/v/movie.mp4"] = struct{}{}

	e.handleObservation(Observation{Kind: KindNetRequest, URL: "https://unrelated.test/seg.ts"})
	if len(a.links) != 0 {
		t.Fatal("unattributable request reached session a")
	}
	if len(e.sessions["b"].links) != 0 {
		t.Fatal("unattributable request reached session b")
	}
}
