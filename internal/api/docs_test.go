package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dgnsrekt/video_agent/internal/engine"
	"github.com/dgnsrekt/video_agent/internal/probe"
	"github.com/dgnsrekt/video_agent/internal/service"
)

type stubService struct{}

func (s *stubService) ListSessions(ctx context.Context) ([]engine.SessionView, error) {
	return []engine.SessionView{}, nil
}
func (s *stubService) GetSession(ctx context.Context, id string) (engine.SessionView, error) {
	return engine.SessionView{ID: id}, nil
}
func (s *stubService) GetSessionLinks(ctx context.Context, id string) ([]engine.LinkView, error) {
	return []engine.LinkView{}, nil
}
func (s *stubService) ProbeCandidates(ctx context.Context, urls []string) ([]probe.Hit, error) {
	return []probe.Hit{}, nil
}
func (s *stubService) InferManifests(ctx context.Context, segmentURL string) (service.InferResult, error) {
	return service.InferResult{SegmentURL: segmentURL}, nil
}
func (s *stubService) Download(ctx context.Context, rawURL string) (service.DownloadResult, error) {
	return service.DownloadResult{URL: rawURL}, nil
}

func TestDocsDarkMode(t *testing.T) {
	h := NewServer(&stubService{}, nil)
	req := httptest.NewRequest(http.MethodGet, "/docs", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	body := w.Body.String()
	if !strings.Contains(body, `data-theme="dark"`) {
		t.Fatalf("docs missing dark theme marker")
	}
}

func TestHealthEndpoint(t *testing.T) {
	h := NewServer(&stubService{}, nil)
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if !strings.Contains(w.Body.String(), `"ok"`) {
		t.Fatalf("health body = %q, want ok status", w.Body.String())
	}
}

func TestListSessionsEndpoint(t *testing.T) {
	h := NewServer(&stubService{}, nil)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/sessions", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if !strings.Contains(w.Body.String(), `"sessions"`) {
		t.Fatalf("sessions body = %q, want sessions field", w.Body.String())
	}
}
