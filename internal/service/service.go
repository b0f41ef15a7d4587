package service

import (
	"context"
	"fmt"

	"github.com/dgnsrekt/video_agent/internal/download"
	"github.com/dgnsrekt/video_agent/internal/engine"
	"github.com/dgnsrekt/video_agent/internal/infer"
	"github.com/dgnsrekt/video_agent/internal/probe"
)

const (
	CodeValidation      = "VALIDATION"
	CodeSessionNotFound = "SESSION_NOT_FOUND"
	CodeDownloadFailed  = "DOWNLOAD_FAILED"
)

// CodedError is a typed error used for stable API mapping.
type CodedError struct {
	Code    string
	Message string
	Cause   error
}

func (e *CodedError) Error() string {
	if e.Cause == nil {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
}

func (e *CodedError) Unwrap() error { return e.Cause }

func newError(code, msg string, cause error) error {
	return &CodedError{Code: code, Message: msg, Cause: cause}
}

// Service answers API requests against the engine's snapshots and runs
// the on-demand probe and download helpers.
type Service struct {
	engine    *engine.Engine
	prober    *probe.Prober
	downloads *download.Manager
}

func New(eng *engine.Engine, prober *probe.Prober, downloads *download.Manager) *Service {
	return &Service{engine: eng, prober: prober, downloads: downloads}
}

// InferResult carries the candidate manifest URLs derived from a segment
// URL together with the probe hits among them.
type InferResult struct {
	SegmentURL string      `json:"segment_url"`
	Candidates []string    `json:"candidates"`
	Hits       []probe.Hit `json:"hits"`
}

// DownloadResult reports where a link was saved.
type DownloadResult struct {
	URL      string `json:"url"`
	Path     string `json:"path"`
	Filename string `json:"filename"`
}

func (s *Service) ListSessions(ctx context.Context) ([]engine.SessionView, error) {
	return s.engine.Sessions(), nil
}

func (s *Service) GetSession(ctx context.Context, id string) (engine.SessionView, error) {
	if id == "" {
		return engine.SessionView{}, newError(CodeValidation, "session id is required", nil)
	}
	view, ok := s.engine.Session(id)
	if !ok {
		return engine.SessionView{}, newError(CodeSessionNotFound, fmt.Sprintf("session %s not found", id), nil)
	}
	return view, nil
}

func (s *Service) GetSessionLinks(ctx context.Context, id string) ([]engine.LinkView, error) {
	view, err := s.GetSession(ctx, id)
	if err != nil {
		return nil, err
	}
	return view.Links, nil
}

func (s *Service) ProbeCandidates(ctx context.Context, urls []string) ([]probe.Hit, error) {
	if len(urls) == 0 {
		return nil, newError(CodeValidation, "at least one url is required", nil)
	}
	return s.prober.ProbeAll(ctx, urls), nil
}

func (s *Service) InferManifests(ctx context.Context, segmentURL string) (InferResult, error) {
	if segmentURL == "" {
		return InferResult{}, newError(CodeValidation, "segment_url is required", nil)
	}
	candidates := infer.Candidates(segmentURL)
	result := InferResult{SegmentURL: segmentURL, Candidates: candidates}
	if len(candidates) > 0 {
		result.Hits = s.prober.ProbeAll(ctx, candidates)
	}
	return result, nil
}

func (s *Service) Download(ctx context.Context, rawURL string) (DownloadResult, error) {
	if rawURL == "" {
		return DownloadResult{}, newError(CodeValidation, "url is required", nil)
	}
	path, err := s.downloads.Save(ctx, rawURL)
	if err != nil {
		return DownloadResult{}, newError(CodeDownloadFailed, fmt.Sprintf("download %s failed", rawURL), err)
	}
	req := download.RequestFor(rawURL, s.downloads.Settings())
	return DownloadResult{URL: rawURL, Path: path, Filename: req.Filename}, nil
}
