package storage

import (
	"log/slog"
	"sync"
	"time"

	"github.com/dgnsrekt/video_agent/internal/engine"
)

// linkRecord is the persisted shape of one link upsert.
type linkRecord struct {
	Timestamp time.Time       `json:"timestamp"`
	Event     string          `json:"event"` // "insert" or "update"
	SessionID string          `json:"session_id"`
	Link      engine.LinkView `json:"link"`
}

// LinkLog persists link upserts as JSONL, one writer per session. It
// implements engine.Sink.
type LinkLog struct {
	baseDir    string
	bufferSize int
	maxSizeMB  int

	mu      sync.Mutex
	writers map[string]*JSONLWriter // session ID -> writer
}

func NewLinkLog(baseDir string, bufferSize, maxSizeMB int) *LinkLog {
	return &LinkLog{
		baseDir:    baseDir,
		bufferSize: bufferSize,
		maxSizeMB:  maxSizeMB,
		writers:    make(map[string]*JSONLWriter),
	}
}

// LinkUpserted implements engine.Sink.
func (l *LinkLog) LinkUpserted(sessionID string, link engine.LinkView, inserted bool) {
	event := "update"
	if inserted {
		event = "insert"
	}
	record := linkRecord{
		Timestamp: time.Now().UTC(),
		Event:     event,
		SessionID: sessionID,
		Link:      link,
	}
	if err := l.writerFor(sessionID).Write(record); err != nil {
		slog.Debug("link record dropped", "session_id", sessionID, "error", err)
	}
}

func (l *LinkLog) writerFor(sessionID string) *JSONLWriter {
	l.mu.Lock()
	defer l.mu.Unlock()
	if w, ok := l.writers[sessionID]; ok {
		return w
	}
	w := NewJSONLWriter(l.baseDir, "links", sessionID, l.bufferSize, l.maxSizeMB)
	l.writers[sessionID] = w
	slog.Info("created link writer", "session_id", sessionID)
	return w
}

// Close closes all session writers.
func (l *LinkLog) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	var lastErr error
	for id, w := range l.writers {
		if err := w.Close(); err != nil {
			slog.Error("failed to close link writer", "session_id", id, "error", err)
			lastErr = err
		}
	}
	l.writers = make(map[string]*JSONLWriter)
	return lastErr
}
