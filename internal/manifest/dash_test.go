package manifest

import "testing"

const sampleMPD = `<?xml version="1.0" encoding="UTF-8"?>
<MPD xmlns="urn:mpeg:dash:schema:mpd:2011" type="static" mediaPresentationDuration="PT1H2M3.5S">
  <Period>
    <AdaptationSet mimeType="video/mp4">
      <Representation id="video-1080" width="1920" height="1080" bandwidth="4800000">
      </Representation>
      <Representation id="video-480" width="854" height="480" bandwidth="1400000">
      </Representation>
    </AdaptationSet>
    <AdaptationSet mimeType="audio/mp4">
      <Representation id="audio" bandwidth="128000">
      </Representation>
    </AdaptationSet>
  </Period>
</MPD>
`

func TestParseDASH(t *testing.T) {
	desc := ParseDASH(sampleMPD)

	if desc.Format != FormatDASH {
		t.Fatalf("Format = %q, want %q", desc.Format, FormatDASH)
	}
	if desc.Duration == nil || *desc.Duration != 3723.5 {
		t.Fatalf("Duration = %v, want 3723.5", desc.Duration)
	}
	if desc.DRM {
		t.Fatal("clear MPD marked DRM")
	}
	if len(desc.Representations) != 3 {
		t.Fatalf("len(Representations) = %d, want 3", len(desc.Representations))
	}

	r0 := desc.Representations[0]
	if r0.ID != "video-1080" {
		t.Fatalf("rep 0 ID = %q", r0.ID)
	}
	if r0.Width == nil || *r0.Width != 1920 || r0.Height == nil || *r0.Height != 1080 {
		t.Fatalf("rep 0 dimensions = %v x %v", r0.Width, r0.Height)
	}
	if r0.Bandwidth == nil || *r0.Bandwidth != 4800000 {
		t.Fatalf("rep 0 Bandwidth = %v", r0.Bandwidth)
	}

	audio := desc.Representations[2]
	if audio.Width != nil || audio.Height != nil {
		t.Fatal("audio rep should have nil dimensions")
	}
}

func TestParseDASHDRM(t *testing.T) {
	mpd := `<MPD><Period><AdaptationSet>
<ContentProtection schemeIdUri="urn:mpeg:dash:mp4protection:2011" value="cenc"/>
<Representation id="v" bandwidth="1000"></Representation>
</AdaptationSet></Period></MPD>`
	if !ParseDASH(mpd).DRM {
		t.Fatal("ContentProtection element not detected")
	}
	if !ParseDASH(`<MPD><cenc:pssh>AAAA</cenc:pssh></MPD>`).DRM {
		t.Fatal("cenc:pssh element not detected")
	}
}

func TestParseDASHMalformed(t *testing.T) {
	desc := ParseDASH("this is not xml")
	if desc.Format != FormatDASH {
		t.Fatalf("Format = %q", desc.Format)
	}
	if desc.Duration != nil || len(desc.Representations) != 0 || desc.DRM {
		t.Fatal("garbage input should yield an empty descriptor")
	}
}

func TestParseISODuration(t *testing.T) {
	tests := []struct {
		value string
		want  *float64
	}{
		{"PT1H2M3.5S", f(3723.5)},
		{"PT30M", f(1800)},
		{"PT45S", f(45)},
		{"PT2H", f(7200)},
		{"PT0S", f(0)},
		{"", nil},
	}
	for _, tt := range tests {
		got := ParseISODuration(tt.value)
		switch {
		case tt.want == nil && got != nil:
			t.Errorf("ParseISODuration(%q) = %v, want nil", tt.value, *got)
		case tt.want != nil && got == nil:
			t.Errorf("ParseISODuration(%q) = nil, want %v", tt.value, *tt.want)
		case tt.want != nil && got != nil && *got != *tt.want:
			t.Errorf("ParseISODuration(%q) = %v, want %v", tt.value, *got, *tt.want)
		}
	}
}

func f(v float64) *float64 { return &v }

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		name string
		url  string
		body string
		want Format
	}{
		{"m3u8 url", "https://x.test/a.m3u8", "", FormatHLS},
		{"extm3u body", "https://x.test/api/manifest", "#EXTM3U\n", FormatHLS},
		{"mpd url", "https://x.test/a.mpd", "", FormatDASH},
		{"mpd body", "https://x.test/api/manifest", `<MPD type="static">`, FormatDASH},
		{"neither", "https://x.test/a.bin", "junk", FormatUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DetectFormat(tt.url, tt.body); got != tt.want {
				t.Fatalf("DetectFormat = %q, want %q", got, tt.want)
			}
		})
	}
}
