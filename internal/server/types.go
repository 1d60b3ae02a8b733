// Package server provides the HTTP server for the Veo Studio API.
// It includes handlers, middleware, routes, and DTOs separated from domain types.
package server

import (
	"time"

	"github.com/maauso/veo-studio/internal/generation"
	"github.com/maauso/veo-studio/internal/video"
)

// GenerateRequest is the HTTP request body for starting a generation.
type GenerateRequest struct {
	// Prompt is the text description of the clip.
	Prompt string `json:"prompt" validate:"required"`
	// AspectRatio is "16:9" or "9:16".
	AspectRatio string `json:"aspect_ratio" validate:"required,oneof=16:9 9:16"`
	// Resolution is "720p" or "1080p".
	Resolution string `json:"resolution" validate:"required,oneof=720p 1080p"`
	// Model is "fast" or "quality".
	Model string `json:"model" validate:"required,oneof=fast quality"`
	// NegativePrompt optionally describes what to avoid.
	NegativePrompt string `json:"negative_prompt,omitempty" validate:"max=2000"`
}

func (r GenerateRequest) toVideoRequest() video.Request {
	return video.Request{
		Prompt:         r.Prompt,
		AspectRatio:    video.AspectRatio(r.AspectRatio),
		Resolution:     video.Resolution(r.Resolution),
		Model:          video.Model(r.Model),
		NegativePrompt: r.NegativePrompt,
	}
}

// PhaseResponse is the HTTP response describing the current generation phase.
type PhaseResponse struct {
	// Status is one of idle, generating, polling, downloading, completed, error.
	Status string `json:"status"`
	// Generating is true while a cycle is in flight.
	Generating bool `json:"generating"`
	// ProgressMessage is shown while a cycle is active.
	ProgressMessage string `json:"progress_message,omitempty"`
	// Error is the display message of a failed cycle.
	Error string `json:"error,omitempty"`
	// ErrorKind classifies a failed cycle.
	ErrorKind string `json:"error_kind,omitempty"`
	// VideoID is the result produced by a completed cycle.
	VideoID string `json:"video_id,omitempty"`
	// UpdatedAt is the time of the last transition.
	UpdatedAt time.Time `json:"updated_at"`
}

func newPhaseResponse(p generation.Phase) PhaseResponse {
	return PhaseResponse{
		Status:          string(p.Status),
		Generating:      p.Status.IsActive(),
		ProgressMessage: p.ProgressMessage,
		Error:           p.Error,
		ErrorKind:       string(p.ErrorKind),
		VideoID:         p.ResultID,
		UpdatedAt:       p.UpdatedAt,
	}
}

// VideoResponse is the HTTP representation of a generated clip.
type VideoResponse struct {
	ID             string    `json:"id"`
	Prompt         string    `json:"prompt"`
	NegativePrompt string    `json:"negative_prompt,omitempty"`
	AspectRatio    string    `json:"aspect_ratio"`
	Resolution     string    `json:"resolution"`
	Model          string    `json:"model"`
	ModelLabel     string    `json:"model_label"`
	FileName       string    `json:"file_name"`
	MIMEType       string    `json:"mime_type"`
	Size           int64     `json:"size"`
	CreatedAt      time.Time `json:"created_at"`
	// ContentURL is where the bytes can be fetched from this API.
	ContentURL string `json:"content_url"`
	// PublicURL is the S3 URL when the clip was published.
	PublicURL       string  `json:"public_url,omitempty"`
	DurationSeconds float64 `json:"duration_seconds,omitempty"`
	Width           int     `json:"width,omitempty"`
	Height          int     `json:"height,omitempty"`
	Active          bool    `json:"active"`
}

func newVideoResponse(r video.Result, activeID string) VideoResponse {
	return VideoResponse{
		ID:              r.ID,
		Prompt:          r.Request.Prompt,
		NegativePrompt:  r.Request.NegativePrompt,
		AspectRatio:     string(r.Request.AspectRatio),
		Resolution:      string(r.Request.Resolution),
		Model:           string(r.Request.Model),
		ModelLabel:      r.Request.Model.Label(),
		FileName:        r.FileName,
		MIMEType:        r.MIMEType,
		Size:            r.Size,
		CreatedAt:       r.CreatedAt,
		ContentURL:      "/videos/" + r.ID + "/content",
		PublicURL:       r.Content.URL,
		DurationSeconds: r.DurationSeconds,
		Width:           r.Width,
		Height:          r.Height,
		Active:          r.ID == activeID,
	}
}

// VideoListResponse is the HTTP response for the session history.
type VideoListResponse struct {
	// Videos are ordered newest first.
	Videos []VideoResponse `json:"videos"`
	// ActiveID is the id of the clip on display, empty when there is none.
	ActiveID string `json:"active_id,omitempty"`
}

// CredentialRequest is the HTTP request body for setting the API key.
type CredentialRequest struct {
	APIKey string `json:"api_key" validate:"required"`
}

// CredentialResponse reports the credential state.
type CredentialResponse struct {
	Present        bool `json:"present"`
	PromptRequired bool `json:"prompt_required"`
}

// ErrorResponse is the standard error response format.
type ErrorResponse struct {
	// Error is the human-readable error message.
	Error string `json:"error"`
	// Code is the error code for programmatic handling.
	Code string `json:"code"`
}

// HealthResponse is the HTTP response for the health check endpoint.
type HealthResponse struct {
	// Status is the health status of the service.
	Status string `json:"status"`
}
