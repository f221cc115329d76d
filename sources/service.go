// Package sources is the client for the source ingestion and extraction endpoints.
package sources

import (
	"context"
	"net/http"
	"net/url"

	"github.com/jrsteele09/go-auth-client/apiclient"
)

// ExtractMode selects what /extract returns.
type ExtractMode string

const (
	ExtractText    ExtractMode = "text"
	ExtractSummary ExtractMode = "summary"
)

type UploadRequest struct {
	FileName string `json:"file_name"`
	FileType string `json:"file_type"`
	Content  string `json:"content"`
}

type DownloadFromURLRequest struct {
	URL string `json:"url"`
}

type ExtractRequest struct {
	FileID string      `json:"file_id"`
	Mode   ExtractMode `json:"mode,omitempty"` // the server defaults to text
}

type VideoToTextRequest struct {
	Source string `json:"source"`
}

type AIAssistRequest struct {
	Prompt        string `json:"prompt"`
	APIKeyEnabled bool   `json:"api_key_enabled"`
}

// Requester performs API requests. *apiclient.Client satisfies it.
type Requester interface {
	Request(ctx context.Context, path string, opts apiclient.RequestOptions) apiclient.Result
}

// Service issues resource requests. Every method returns the normalized Result; use
// Result.Decode to read the data.
type Service struct {
	client Requester
}

func NewService(client Requester) *Service {
	return &Service{client: client}
}

func (s *Service) Health(ctx context.Context) apiclient.Result {
	return s.get(ctx, "/health")
}

func (s *Service) Upload(ctx context.Context, req UploadRequest) apiclient.Result {
	return s.post(ctx, "/upload", req)
}

func (s *Service) DownloadFromURL(ctx context.Context, req DownloadFromURLRequest) apiclient.Result {
	return s.post(ctx, "/download-from-url", req)
}

func (s *Service) Extract(ctx context.Context, req ExtractRequest) apiclient.Result {
	return s.post(ctx, "/extract", req)
}

func (s *Service) ListSources(ctx context.Context) apiclient.Result {
	return s.get(ctx, "/sources")
}

// GetSource fetches one source by file id. The id is path escaped.
func (s *Service) GetSource(ctx context.Context, fileID string) apiclient.Result {
	return s.get(ctx, "/source/"+url.PathEscape(fileID))
}

func (s *Service) VideoToText(ctx context.Context, req VideoToTextRequest) apiclient.Result {
	return s.post(ctx, "/video-to-text", req)
}

func (s *Service) AIAssist(ctx context.Context, req AIAssistRequest) apiclient.Result {
	return s.post(ctx, "/ai-assist", req)
}

func (s *Service) get(ctx context.Context, path string) apiclient.Result {
	return s.client.Request(ctx, path, apiclient.RequestOptions{Method: http.MethodGet})
}

func (s *Service) post(ctx context.Context, path string, body any) apiclient.Result {
	return s.client.Request(ctx, path, apiclient.RequestOptions{Method: http.MethodPost, Body: body})
}
