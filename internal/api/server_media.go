package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/dgnsrekt/video_agent/internal/probe"
	"github.com/dgnsrekt/video_agent/internal/service"
)

func registerMediaHandlers(api huma.API, svc Service) {
	type probeInput struct {
		Body struct {
			URLs []string `json:"urls" doc:"Candidate manifest URLs to probe, at most 20 are checked"`
		}
	}
	type probeOutput struct {
		Body struct {
			Hits  []probe.Hit `json:"hits"`
			Count int         `json:"count"`
		}
	}
	huma.Register(api, huma.Operation{OperationID: "probe-manifests", Method: http.MethodPost, Path: "/api/v1/probe", Summary: "Probe candidate URLs for reachable manifests", Tags: []string{"Media"}},
		func(ctx context.Context, input *probeInput) (*probeOutput, error) {
			hits, err := svc.ProbeCandidates(ctx, input.Body.URLs)
			if err != nil {
				return nil, mapErr(err)
			}
			out := &probeOutput{}
			out.Body.Hits = hits
			out.Body.Count = len(hits)
			return out, nil
		})

	type inferInput struct {
		Body struct {
			SegmentURL string `json:"segment_url" doc:"Media segment URL to derive manifest locations from"`
		}
	}
	type inferOutput struct {
		Body service.InferResult
	}
	huma.Register(api, huma.Operation{OperationID: "infer-manifests", Method: http.MethodPost, Path: "/api/v1/infer", Summary: "Infer and probe manifest locations for a segment URL", Tags: []string{"Media"}},
		func(ctx context.Context, input *inferInput) (*inferOutput, error) {
			result, err := svc.InferManifests(ctx, input.Body.SegmentURL)
			if err != nil {
				return nil, mapErr(err)
			}
			out := &inferOutput{}
			out.Body = result
			return out, nil
		})

	type downloadInput struct {
		Body struct {
			URL string `json:"url" doc:"Link URL to save to the download directory"`
		}
	}
	type downloadOutput struct {
		Body service.DownloadResult
	}
	huma.Register(api, huma.Operation{OperationID: "download-link", Method: http.MethodPost, Path: "/api/v1/download", Summary: "Download a discovered link to disk", Tags: []string{"Media"}},
		func(ctx context.Context, input *downloadInput) (*downloadOutput, error) {
			result, err := svc.Download(ctx, input.Body.URL)
			if err != nil {
				return nil, mapErr(err)
			}
			out := &downloadOutput{}
			out.Body = result
			return out, nil
		})
}
