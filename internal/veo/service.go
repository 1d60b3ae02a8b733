// Package veo adapts the Google GenAI SDK to the generation.Service
// interface and provides the HTTP transport used to download produced clips.
package veo

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"google.golang.org/genai"

	"github.com/maauso/veo-studio/internal/generation"
	"github.com/maauso/veo-studio/internal/video"
)

// numberOfVideos is the number of clips requested per submission.
const numberOfVideos = 1

// ErrNilOperation is returned when the SDK returns no operation.
var ErrNilOperation = errors.New("veo: service returned no operation")

// Factory builds genai-backed services. It implements generation.ServiceFactory.
type Factory struct {
	baseURL    string
	httpClient *http.Client
}

// FactoryOption configures a Factory.
type FactoryOption func(*Factory)

// WithBaseURL overrides the Gemini API endpoint.
func WithBaseURL(url string) FactoryOption {
	return func(f *Factory) {
		f.baseURL = url
	}
}

// WithHTTPClient sets the HTTP client used by the SDK.
func WithHTTPClient(c *http.Client) FactoryOption {
	return func(f *Factory) {
		f.httpClient = c
	}
}

// NewFactory creates a Factory.
func NewFactory(opts ...FactoryOption) *Factory {
	f := &Factory{}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Compile-time checks.
var (
	_ generation.ServiceFactory = (*Factory)(nil)
	_ generation.Service        = (*Service)(nil)
)

// NewService constructs a new SDK client bound to apiKey.
func (f *Factory) NewService(ctx context.Context, apiKey string) (generation.Service, error) {
	cfg := &genai.ClientConfig{
		APIKey:     apiKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: f.httpClient,
	}
	if f.baseURL != "" {
		cfg.HTTPOptions = genai.HTTPOptions{BaseURL: f.baseURL}
	}
	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("veo: create client: %w", err)
	}
	return &Service{client: client}, nil
}

// Service submits and polls Veo video jobs.
type Service struct {
	client *genai.Client
}

// Start submits req as a GenerateVideos job.
func (s *Service) Start(ctx context.Context, req video.Request) (generation.Operation, error) {
	op, err := s.client.Models.GenerateVideos(ctx, req.Model.ID(), req.Prompt, nil, videosConfig(req))
	if err != nil {
		return generation.Operation{}, wrapAPIError("generate videos", err)
	}
	if op == nil {
		return generation.Operation{}, ErrNilOperation
	}
	return operationFrom(op), nil
}

// Refresh fetches the latest state of op.
func (s *Service) Refresh(ctx context.Context, op generation.Operation) (generation.Operation, error) {
	latest, err := s.client.Operations.GetVideosOperation(ctx, &genai.GenerateVideosOperation{Name: op.Name}, nil)
	if err != nil {
		return generation.Operation{}, wrapAPIError("get videos operation", err)
	}
	if latest == nil {
		return generation.Operation{}, ErrNilOperation
	}
	return operationFrom(latest), nil
}

func videosConfig(req video.Request) *genai.GenerateVideosConfig {
	return &genai.GenerateVideosConfig{
		NumberOfVideos: numberOfVideos,
		Resolution:     string(req.Resolution),
		AspectRatio:    string(req.AspectRatio),
		NegativePrompt: req.NegativePrompt,
	}
}

// operationFrom maps the SDK operation to the service-neutral shape.
func operationFrom(op *genai.GenerateVideosOperation) generation.Operation {
	out := generation.Operation{
		Name:     op.Name,
		Done:     op.Done,
		Metadata: op.Metadata,
	}
	if op.Error != nil {
		out.Failed = true
		if msg, ok := op.Error["message"].(string); ok {
			out.ErrorMessage = msg
		}
	}
	if op.Response != nil {
		for _, gv := range op.Response.GeneratedVideos {
			if gv == nil || gv.Video == nil || gv.Video.URI == "" {
				continue
			}
			out.VideoURIs = append(out.VideoURIs, gv.Video.URI)
		}
		out.FilteredReasons = op.Response.RAIMediaFilteredReasons
	}
	return out
}

// wrapAPIError marks authorization failures with generation.ErrUnauthorized.
func wrapAPIError(action string, err error) error {
	if code, ok := apiErrorCode(err); ok && (code == http.StatusUnauthorized || code == http.StatusForbidden) {
		return fmt.Errorf("veo: %s: %w: %w", action, generation.ErrUnauthorized, err)
	}
	return fmt.Errorf("veo: %s: %w", action, err)
}

func apiErrorCode(err error) (int, bool) {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code, true
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) && apiErrPtr != nil {
		return apiErrPtr.Code, true
	}
	return 0, false
}
