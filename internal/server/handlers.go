package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"

	"github.com/maauso/veo-studio/internal/credential"
	"github.com/maauso/veo-studio/internal/generation"
	"github.com/maauso/veo-studio/internal/studio"
	"github.com/maauso/veo-studio/internal/video"
)

// Controller is the application surface the handlers drive.
// *studio.Studio implements it.
type Controller interface {
	Submit(ctx context.Context, req video.Request) (generation.Phase, error)
	Phase() generation.Phase
	History() ([]video.Result, string)
	Video(id string) (video.Result, bool)
	Select(id string) (video.Result, bool)
	OpenVideo(ctx context.Context, id string) (io.ReadCloser, video.Result, error)
	Poster(ctx context.Context, id string) ([]byte, error)
	CredentialStatus() credential.Status
	SetCredential(key string) error
	PromptForCredential(ctx context.Context)
}

// Compile-time check that *studio.Studio implements Controller.
var _ Controller = (*studio.Studio)(nil)

// Handlers contains the HTTP handlers for the API.
type Handlers struct {
	studio    Controller
	validator *validator.Validate
	logger    *slog.Logger
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(ctrl Controller, logger *slog.Logger) *Handlers {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handlers{
		studio:    ctrl,
		validator: validator.New(),
		logger:    logger,
	}
}

// Health handles GET /health requests.
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
}

// CreateGeneration handles POST /generations requests.
func (h *Handlers) CreateGeneration(w http.ResponseWriter, r *http.Request) {
	var req GenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("failed to decode request body",
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusBadRequest, "invalid JSON body", "INVALID_JSON")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		h.logger.Warn("request validation failed",
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusBadRequest, err.Error(), "VALIDATION_ERROR")
		return
	}

	phase, err := h.studio.Submit(r.Context(), req.toVideoRequest())
	switch {
	case errors.Is(err, video.ErrInvalidRequest):
		writeError(w, http.StatusBadRequest, err.Error(), "VALIDATION_ERROR")
		return
	case errors.Is(err, generation.ErrBusy):
		writeError(w, http.StatusConflict, err.Error(), "GENERATION_IN_PROGRESS")
		return
	case err != nil:
		h.logger.Error("failed to start generation",
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to start generation", "GENERATION_START_FAILED")
		return
	}

	writeJSON(w, http.StatusAccepted, newPhaseResponse(phase))
}

// GetGeneration handles GET /generation requests.
func (h *Handlers) GetGeneration(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, newPhaseResponse(h.studio.Phase()))
}

// ListVideos handles GET /videos requests.
func (h *Handlers) ListVideos(w http.ResponseWriter, r *http.Request) {
	results, activeID := h.studio.History()

	resp := VideoListResponse{
		Videos:   make([]VideoResponse, 0, len(results)),
		ActiveID: activeID,
	}
	for _, res := range results {
		resp.Videos = append(resp.Videos, newVideoResponse(res, activeID))
	}

	writeJSON(w, http.StatusOK, resp)
}

// GetVideo handles GET /videos/{id} requests.
func (h *Handlers) GetVideo(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	result, ok := h.studio.Video(id)
	if !ok {
		writeError(w, http.StatusNotFound, "video not found", "VIDEO_NOT_FOUND")
		return
	}

	_, activeID := h.studio.History()
	writeJSON(w, http.StatusOK, newVideoResponse(result, activeID))
}

// SelectVideo handles POST /videos/{id}/select requests.
func (h *Handlers) SelectVideo(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	result, ok := h.studio.Select(id)
	if !ok {
		writeError(w, http.StatusNotFound, "video not found", "VIDEO_NOT_FOUND")
		return
	}

	writeJSON(w, http.StatusOK, newVideoResponse(result, result.ID))
}

// GetVideoContent handles GET /videos/{id}/content requests. Published clips
// redirect to their public URL; others are streamed from local storage.
func (h *Handlers) GetVideoContent(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	result, ok := h.studio.Video(id)
	if !ok {
		writeError(w, http.StatusNotFound, "video not found", "VIDEO_NOT_FOUND")
		return
	}

	if result.Content.URL != "" {
		http.Redirect(w, r, result.Content.URL, http.StatusTemporaryRedirect)
		return
	}

	rc, result, err := h.studio.OpenVideo(r.Context(), id)
	if err != nil {
		if errors.Is(err, studio.ErrVideoNotFound) {
			writeError(w, http.StatusNotFound, "video not found", "VIDEO_NOT_FOUND")
			return
		}
		h.logger.Error("failed to open video",
			slog.String("video_id", id),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to read video", "VIDEO_READ_FAILED")
		return
	}
	defer func() { _ = rc.Close() }()

	w.Header().Set("Content-Type", result.MIMEType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": result.FileName}))

	// Seekable content gets range support, which video players rely on.
	if rs, ok := rc.(io.ReadSeeker); ok {
		http.ServeContent(w, r, result.FileName, result.CreatedAt, rs)
		return
	}

	if result.Size > 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(result.Size, 10))
	}
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, rc); err != nil {
		h.logger.Warn("failed to stream video",
			slog.String("video_id", id),
			slog.String("error", err.Error()),
		)
	}
}

// GetVideoPoster handles GET /videos/{id}/poster requests.
func (h *Handlers) GetVideoPoster(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	poster, err := h.studio.Poster(r.Context(), id)
	switch {
	case errors.Is(err, studio.ErrVideoNotFound):
		writeError(w, http.StatusNotFound, "video not found", "VIDEO_NOT_FOUND")
		return
	case errors.Is(err, studio.ErrPosterUnavailable), errors.Is(err, studio.ErrContentUnavailable):
		writeError(w, http.StatusNotImplemented, err.Error(), "POSTER_UNAVAILABLE")
		return
	case err != nil:
		h.logger.Error("failed to extract poster",
			slog.String("video_id", id),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to extract poster", "POSTER_FAILED")
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(len(poster)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(poster)
}

// GetCredential handles GET /credential requests.
func (h *Handlers) GetCredential(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, newCredentialResponse(h.studio.CredentialStatus()))
}

// PutCredential handles PUT /credential requests.
func (h *Handlers) PutCredential(w http.ResponseWriter, r *http.Request) {
	var req CredentialRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body", "INVALID_JSON")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), "VALIDATION_ERROR")
		return
	}

	if err := h.studio.SetCredential(req.APIKey); err != nil {
		if errors.Is(err, credential.ErrEmptyKey) {
			writeError(w, http.StatusBadRequest, err.Error(), "VALIDATION_ERROR")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to set credential", "CREDENTIAL_UPDATE_FAILED")
		return
	}

	h.logger.Info("credential updated")
	writeJSON(w, http.StatusOK, newCredentialResponse(h.studio.CredentialStatus()))
}

// PromptCredential handles POST /credential/prompt requests.
func (h *Handlers) PromptCredential(w http.ResponseWriter, r *http.Request) {
	h.studio.PromptForCredential(r.Context())
	writeJSON(w, http.StatusOK, newCredentialResponse(h.studio.CredentialStatus()))
}

func newCredentialResponse(s credential.Status) CredentialResponse {
	return CredentialResponse{Present: s.Present, PromptRequired: s.PromptRequired}
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to encode JSON response", slog.String("error", err.Error()))
	}
}

// writeError writes an error response in the standard format.
func writeError(w http.ResponseWriter, status int, message, code string) {
	writeJSON(w, status, ErrorResponse{
		Error: message,
		Code:  code,
	})
}
