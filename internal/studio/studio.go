// Package studio is the application controller. It owns the credential, the
// single in-flight generation phase and the session history, and exposes the
// commands a view issues against them.
package studio

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/maauso/veo-studio/internal/credential"
	"github.com/maauso/veo-studio/internal/generation"
	"github.com/maauso/veo-studio/internal/history"
	"github.com/maauso/veo-studio/internal/media"
	"github.com/maauso/veo-studio/internal/storage"
	"github.com/maauso/veo-studio/internal/video"
)

var (
	// ErrVideoNotFound is returned when no result has the requested id.
	ErrVideoNotFound = errors.New("video not found")
	// ErrContentUnavailable is returned when a result has no local content.
	ErrContentUnavailable = errors.New("video content is not stored locally")
	// ErrPosterUnavailable is returned when posters cannot be extracted.
	ErrPosterUnavailable = errors.New("poster extraction is not configured")
	// ErrClosed is returned by a cycle that finishes after Close started.
	ErrClosed = errors.New("studio is closed")
)

// Generator produces clip bytes for a request. *generation.Client
// implements it.
type Generator interface {
	Generate(ctx context.Context, req video.Request, obs generation.Observer) (*generation.Video, error)
}

// CredentialStore is a credential.Provider that can also be changed.
type CredentialStore interface {
	credential.Provider
	Set(key string) error
	Reset()
	Status() credential.Status
}

// Studio coordinates generation cycles and the history they produce.
type Studio struct {
	creds     CredentialStore
	generator Generator
	storage   storage.Storage
	inspector media.Inspector
	tracker   *generation.Tracker
	history   *history.Store
	logger    *slog.Logger
	now       func() time.Time

	publish     bool
	synchronous bool

	wg     sync.WaitGroup
	mu     sync.Mutex
	paths  []string
	closed bool
}

// Option configures a Studio.
type Option func(*Studio)

// WithInspector enables ffprobe inspection and poster extraction.
func WithInspector(inspector media.Inspector) Option {
	return func(s *Studio) {
		s.inspector = inspector
	}
}

// WithPublish uploads every clip through storage.Publish when the storage
// supports it.
func WithPublish(enabled bool) Option {
	return func(s *Studio) {
		s.publish = enabled
	}
}

// WithSynchronous runs cycles on the caller's goroutine. Submit then returns
// only after the cycle reached a terminal phase.
func WithSynchronous(enabled bool) Option {
	return func(s *Studio) {
		s.synchronous = enabled
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Studio) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithClock overrides the time source used for result timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Studio) {
		if now != nil {
			s.now = now
		}
	}
}

// New creates a Studio in the idle phase with an empty history.
func New(creds CredentialStore, generator Generator, store storage.Storage, opts ...Option) *Studio {
	s := &Studio{
		creds:     creds,
		generator: generator,
		storage:   store,
		logger:    slog.Default(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.tracker = generation.NewTracker(s.logger)
	s.history = history.NewStore()
	return s
}

// Submit validates req and starts a generation cycle. It returns
// video.ErrInvalidRequest without touching the phase, and generation.ErrBusy
// while another cycle is in flight.
//
// The cycle is detached from ctx's cancellation: a finished HTTP request must
// not abort the generation it started.
func (s *Studio) Submit(ctx context.Context, req video.Request) (generation.Phase, error) {
	if err := req.Validate(); err != nil {
		return s.tracker.Snapshot(), err
	}

	if err := s.tracker.Begin(); err != nil {
		return s.tracker.Snapshot(), err
	}

	s.logger.Info("generation submitted",
		slog.String("model", req.Model.ID()),
		slog.String("aspect_ratio", string(req.AspectRatio)),
		slog.String("resolution", string(req.Resolution)),
	)

	if s.synchronous {
		s.run(ctx, req)
		return s.tracker.Snapshot(), nil
	}

	phase := s.tracker.Snapshot()
	s.wg.Add(1)
	go func(ctx context.Context, req video.Request) {
		defer s.wg.Done()
		s.run(ctx, req)
	}(context.WithoutCancel(ctx), req)

	return phase, nil
}

func (s *Studio) run(ctx context.Context, req video.Request) {
	clip, err := s.generator.Generate(ctx, req, s.tracker)
	if err != nil {
		s.fail(err)
		return
	}

	result, err := s.keep(ctx, req, clip)
	if err != nil {
		s.fail(&generation.Error{Kind: generation.KindUnexpected, Err: err})
		return
	}

	s.history.Record(result)
	if err := s.tracker.Complete(result.ID); err != nil {
		s.logger.Error("failed to complete phase",
			slog.String("video_id", result.ID),
			slog.String("error", err.Error()),
		)
		return
	}

	s.logger.Info("generation completed",
		slog.String("video_id", result.ID),
		slog.String("file_name", result.FileName),
		slog.Int64("size", result.Size),
	)
}

func (s *Studio) fail(err error) {
	kind := generation.KindOf(err)
	s.logger.Error("generation failed",
		slog.String("kind", string(kind)),
		slog.String("error", err.Error()),
	)

	if kind.ResetsCredential() {
		s.creds.Reset()
		s.logger.Warn("credential reset, a new API key is required")
	}

	if terr := s.tracker.Fail(err); terr != nil {
		s.logger.Error("failed to record phase failure", slog.String("error", terr.Error()))
	}
}

// keep stores the clip bytes and builds the Result describing them.
func (s *Studio) keep(ctx context.Context, req video.Request, clip *generation.Video) (video.Result, error) {
	createdAt := s.now()
	name := video.FileName(createdAt)

	path, err := s.storage.SaveVideo(ctx, name, bytes.NewReader(clip.Data))
	if err != nil {
		return video.Result{}, fmt.Errorf("save video: %w", err)
	}
	s.mu.Lock()
	closed := s.closed
	if !closed {
		s.paths = append(s.paths, path)
	}
	s.mu.Unlock()
	if closed {
		if err := s.storage.Cleanup(context.WithoutCancel(ctx), []string{path}); err != nil {
			s.logger.Warn("failed to remove video stored after close", slog.String("error", err.Error()))
		}
		return video.Result{}, ErrClosed
	}

	result := video.NewResult(req, video.Content{Path: path}, int64(len(clip.Data)), createdAt)
	if clip.MIMEType != "" {
		result.MIMEType = clip.MIMEType
	}

	if s.publish && s.storage.PublishEnabled() {
		key := result.ID + "/" + result.FileName
		url, err := s.storage.Publish(ctx, key, result.MIMEType, bytes.NewReader(clip.Data))
		if err != nil {
			// The local copy still serves the clip.
			s.logger.Warn("failed to publish video",
				slog.String("video_id", result.ID),
				slog.String("error", err.Error()),
			)
		} else {
			result.Content.URL = url
		}
	}

	if s.inspector != nil {
		info, err := s.inspector.Probe(ctx, path)
		if err != nil {
			s.logger.Warn("failed to inspect video",
				slog.String("video_id", result.ID),
				slog.String("error", err.Error()),
			)
		} else {
			result.DurationSeconds = info.Duration
			result.Width = info.Width
			result.Height = info.Height
		}
	}

	return result, nil
}

// Phase returns the current generation phase.
func (s *Studio) Phase() generation.Phase {
	return s.tracker.Snapshot()
}

// Select makes the result with id active. Unknown ids leave the active
// result unchanged and report false.
func (s *Studio) Select(id string) (video.Result, bool) {
	result, ok := s.history.Select(id)
	if ok {
		s.logger.Debug("video selected", slog.String("video_id", id))
	}
	return result, ok
}

// History returns every result, newest first, and the active id.
func (s *Studio) History() ([]video.Result, string) {
	return s.history.List(), s.history.ActiveID()
}

// Active returns the active result, if any.
func (s *Studio) Active() (video.Result, bool) {
	return s.history.Active()
}

// Video returns the result with id.
func (s *Studio) Video(id string) (video.Result, bool) {
	return s.history.Get(id)
}

// OpenVideo opens the locally stored bytes of the result with id.
func (s *Studio) OpenVideo(ctx context.Context, id string) (io.ReadCloser, video.Result, error) {
	result, ok := s.history.Get(id)
	if !ok {
		return nil, video.Result{}, ErrVideoNotFound
	}
	if result.Content.Path == "" {
		return nil, result, ErrContentUnavailable
	}
	rc, err := s.storage.OpenVideo(ctx, result.Content.Path)
	if err != nil {
		return nil, result, err
	}
	return rc, result, nil
}

// Poster returns the first frame of the result with id as PNG.
func (s *Studio) Poster(ctx context.Context, id string) ([]byte, error) {
	if s.inspector == nil {
		return nil, ErrPosterUnavailable
	}
	result, ok := s.history.Get(id)
	if !ok {
		return nil, ErrVideoNotFound
	}
	if result.Content.Path == "" {
		return nil, ErrContentUnavailable
	}
	return s.inspector.ExtractPoster(ctx, result.Content.Path)
}

// CredentialStatus reports whether a key is held and whether the view
// should ask for one.
func (s *Studio) CredentialStatus() credential.Status {
	return s.creds.Status()
}

// SetCredential stores a new access key.
func (s *Studio) SetCredential(key string) error {
	return s.creds.Set(key)
}

// PromptForCredential asks the view to collect a key.
func (s *Studio) PromptForCredential(ctx context.Context) {
	s.creds.PromptForCredential(ctx)
}

// Close waits for an in-flight cycle, bounded by ctx, then removes every
// stored clip file. A cycle still running when ctx expires removes its own
// file and fails with ErrClosed.
func (s *Studio) Close(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		s.logger.Warn("closing with a generation still in flight")
	}

	s.mu.Lock()
	s.closed = true
	paths := s.paths
	s.paths = nil
	s.mu.Unlock()

	if len(paths) == 0 {
		return nil
	}

	// Cleanup honours ctx; a fresh context lets removal finish after a timeout.
	if err := s.storage.Cleanup(context.WithoutCancel(ctx), paths); err != nil {
		return fmt.Errorf("cleanup videos: %w", err)
	}
	s.logger.Info("removed stored videos", slog.Int("count", len(paths)))
	return nil
}
