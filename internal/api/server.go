package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/dgnsrekt/video_agent/internal/engine"
	"github.com/dgnsrekt/video_agent/internal/probe"
	"github.com/dgnsrekt/video_agent/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

type Service interface {
	ListSessions(ctx context.Context) ([]engine.SessionView, error)
	GetSession(ctx context.Context, id string) (engine.SessionView, error)
	GetSessionLinks(ctx context.Context, id string) ([]engine.LinkView, error)
	ProbeCandidates(ctx context.Context, urls []string) ([]probe.Hit, error)
	InferManifests(ctx context.Context, segmentURL string) (service.InferResult, error)
	Download(ctx context.Context, rawURL string) (service.DownloadResult, error)
}

// NewServer builds the REST router. feed, when non-nil, is mounted at
// /ws/links for live link-event subscribers.
func NewServer(svc Service, feed http.Handler) http.Handler {
	router := chi.NewMux()
	router.Use(middleware.RequestID)
	router.Use(requestLogger)
	router.Use(middleware.Recoverer)

	cfg := huma.DefaultConfig("Video Sniffer API", "1.0.0")
	cfg.DocsPath = ""
	api := humachi.New(router, cfg)

	router.Get("/docs", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		if _, err := w.Write([]byte(docsHTML)); err != nil {
			slog.Debug("docs response write failed", "error", err)
		}
	})

	if feed != nil {
		router.Get("/docs/feed", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "text/html")
			if _, err := w.Write([]byte(docsFeedHTML)); err != nil {
				slog.Debug("feed docs response write failed", "error", err)
			}
		})
		router.Get("/ws/links", feed.ServeHTTP)
	}

	registerSessionHandlers(api, svc)
	registerMediaHandlers(api, svc)

	return router
}

func mapErr(err error) error {
	if err == nil {
		return nil
	}
	var coded *service.CodedError
	if errors.As(err, &coded) {
		switch coded.Code {
		case service.CodeValidation:
			return huma.Error400BadRequest(coded.Message)
		case service.CodeSessionNotFound:
			return huma.Error404NotFound(coded.Message)
		case service.CodeDownloadFailed:
			return huma.Error502BadGateway(coded.Message)
		default:
			return huma.Error500InternalServerError(fmt.Sprintf("%s: %s", coded.Code, coded.Message))
		}
	}
	return huma.Error500InternalServerError(err.Error())
}
