package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/dgnsrekt/video_agent/internal/engine"
)

type sessionIDInput struct {
	SessionID string `path:"session_id"`
}

func registerSessionHandlers(api huma.API, svc Service) {
	type healthOutput struct {
		Body struct {
			Status string `json:"status"`
		}
	}
	huma.Register(api, huma.Operation{OperationID: "health", Method: http.MethodGet, Path: "/health", Summary: "Health check", Tags: []string{"Health"}},
		func(ctx context.Context, input *struct{}) (*healthOutput, error) {
			out := &healthOutput{}
			out.Body.Status = "ok"
			return out, nil
		})

	type sessionListOutput struct {
		Body struct {
			Sessions []engine.SessionView `json:"sessions"`
			Count    int                  `json:"count"`
		}
	}
	huma.Register(api, huma.Operation{OperationID: "list-sessions", Method: http.MethodGet, Path: "/api/v1/sessions", Summary: "List video sessions with their discovered links", Tags: []string{"Sessions"}},
		func(ctx context.Context, input *struct{}) (*sessionListOutput, error) {
			sessions, err := svc.ListSessions(ctx)
			if err != nil {
				return nil, mapErr(err)
			}
			out := &sessionListOutput{}
			out.Body.Sessions = sessions
			out.Body.Count = len(sessions)
			return out, nil
		})

	type sessionOutput struct {
		Body engine.SessionView
	}
	huma.Register(api, huma.Operation{OperationID: "get-session", Method: http.MethodGet, Path: "/api/v1/sessions/{session_id}", Summary: "Get one video session", Tags: []string{"Sessions"}},
		func(ctx context.Context, input *sessionIDInput) (*sessionOutput, error) {
			view, err := svc.GetSession(ctx, input.SessionID)
			if err != nil {
				return nil, mapErr(err)
			}
			out := &sessionOutput{}
			out.Body = view
			return out, nil
		})

	type linkListOutput struct {
		Body struct {
			Links []engine.LinkView `json:"links"`
			Count int               `json:"count"`
		}
	}
	huma.Register(api, huma.Operation{OperationID: "get-session-links", Method: http.MethodGet, Path: "/api/v1/sessions/{session_id}/links", Summary: "Get a session's links in display order", Tags: []string{"Sessions"}},
		func(ctx context.Context, input *sessionIDInput) (*linkListOutput, error) {
			links, err := svc.GetSessionLinks(ctx, input.SessionID)
			if err != nil {
				return nil, mapErr(err)
			}
			out := &linkListOutput{}
			out.Body.Links = links
			out.Body.Count = len(links)
			return out, nil
		})
}
