// Package capture translates raw CDP events into engine observations:
// network requests from the Network domain, and media-element events
// reported by the injected page observer through a Runtime binding.
package capture

import (
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/chromedp/cdproto/runtime"
	"github.com/dgnsrekt/video_agent/internal/engine"
	"github.com/google/uuid"
)

// BindingName is the page-exposed function the injected observer calls.
const BindingName = "__videoAgentEmit"

// Observer is the engine-facing half of the capture pipeline.
type Observer interface {
	EnsureSession(id, pageURL string)
	Observe(obs engine.Observation)
}

// mediaEvent is the JSON payload the injected page script emits.
type mediaEvent struct {
	Type       string   `json:"type"` // "play", "meta" or "src"
	ID         string   `json:"id"`   // per-page video element ID
	URL        string   `json:"url"`
	CurrentSrc string   `json:"currentSrc"`
	Duration   *float64 `json:"duration"`
}

// MediaObserver turns binding calls from the page observer into media
// observations. Page-local video IDs are mapped to stable session IDs so
// sessions stay unique across tabs.
type MediaObserver struct {
	obs Observer

	mu       sync.Mutex
	sessions map[string]string // tabID+"/"+videoID -> session ID
}

func NewMediaObserver(obs Observer) *MediaObserver {
	return &MediaObserver{obs: obs, sessions: make(map[string]string)}
}

// OnBindingCalled handles one Runtime.bindingCalled event from a tab.
func (m *MediaObserver) OnBindingCalled(tabID, pageURL string, ev *runtime.EventBindingCalled) {
	if ev.Name != BindingName {
		return
	}

	var evt mediaEvent
	if err := json.Unmarshal([]byte(ev.Payload), &evt); err != nil {
		slog.Debug("media event payload unreadable", "tab_id", tabID, "error", err)
		return
	}
	if evt.ID == "" {
		return
	}

	sessionID := m.sessionFor(tabID, evt.ID, pageURL)

	switch evt.Type {
	case "play":
		m.obs.Observe(engine.Observation{Kind: engine.KindMediaPlay, SessionHint: sessionID})
	case "meta":
		m.obs.Observe(engine.Observation{
			Kind:        engine.KindMediaMeta,
			SessionHint: sessionID,
			URL:         evt.CurrentSrc,
			Duration:    evt.Duration,
		})
	case "src":
		if evt.URL == "" {
			return
		}
		m.obs.Observe(engine.Observation{
			Kind:        engine.KindMediaSrc,
			SessionHint: sessionID,
			URL:         evt.URL,
		})
	default:
		slog.Debug("unknown media event type", "type", evt.Type, "tab_id", tabID)
	}
}

func (m *MediaObserver) sessionFor(tabID, videoID, pageURL string) string {
	key := tabID + "/" + videoID
	m.mu.Lock()
	defer m.mu.Unlock()
	if id, ok := m.sessions[key]; ok {
		return id
	}
	id := uuid.NewString()
	m.sessions[key] = id
	m.obs.EnsureSession(id, pageURL)
	slog.Info("video element discovered", "session_id", id, "tab_id", tabID, "video_id", videoID)
	return id
}
