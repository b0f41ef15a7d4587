package media

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// FormatDuration renders seconds as h:mm:ss or m:ss.
func FormatDuration(seconds float64) string {
	if !isFinite(seconds) {
		return "—"
	}
	sec := int(math.Round(seconds))
	h := sec / 3600
	m := (sec % 3600) / 60
	s := sec % 60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}

// FormatBytes renders a byte count with a binary unit suffix.
func FormatBytes(bytes float64) string {
	if !isFinite(bytes) {
		return "—"
	}
	units := []string{"B", "KB", "MB", "GB", "TB"}
	value := bytes
	unit := 0
	for value >= 1024 && unit < len(units)-1 {
		value /= 1024
		unit++
	}
	if value >= 10 {
		return fmt.Sprintf("%.0f %s", value, units[unit])
	}
	return fmt.Sprintf("%.1f %s", value, units[unit])
}

// FormatResolution renders width x height pixel dimensions.
func FormatResolution(width, height float64) string {
	return fmt.Sprintf("%dx%d", int(width), int(height))
}

// ParseResolution reads a "WxH" dimension string back into pixel counts.
func ParseResolution(s string) (width, height float64, ok bool) {
	w, h, found := strings.Cut(strings.TrimSpace(s), "x")
	if !found {
		return 0, 0, false
	}
	wv, errW := strconv.ParseFloat(w, 64)
	hv, errH := strconv.ParseFloat(h, 64)
	if errW != nil || errH != nil || wv <= 0 || hv <= 0 {
		return 0, 0, false
	}
	return wv, hv, true
}

// FormatBandwidth renders bits/sec as Mbps or Kbps.
func FormatBandwidth(bps float64) string {
	if !isFinite(bps) {
		return "—"
	}
	mbps := bps / 1_000_000
	if mbps >= 1 {
		return fmt.Sprintf("%.2f Mbps", mbps)
	}
	return fmt.Sprintf("%d Kbps", int(math.Round(bps/1000)))
}
