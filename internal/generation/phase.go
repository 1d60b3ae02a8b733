// Package generation drives one video generation request from submission to
// downloaded bytes and tracks its progress through a small state machine.
package generation

import (
	"errors"
	"log/slog"
	"sync"
	"time"
)

// Status is the lifecycle state of the current generation cycle.
type Status string

const (
	// StatusIdle means nothing has been submitted yet.
	StatusIdle Status = "idle"
	// StatusGenerating means a submission started and the job is being created.
	StatusGenerating Status = "generating"
	// StatusPolling means the job was accepted and is being polled.
	StatusPolling Status = "polling"
	// StatusDownloading means the job finished and content is being fetched.
	StatusDownloading Status = "downloading"
	// StatusCompleted means the clip was downloaded.
	StatusCompleted Status = "completed"
	// StatusError means the cycle failed.
	StatusError Status = "error"
)

// Progress messages shown while a cycle is active.
const (
	MessageGenerating  = "Initializing Veo model..."
	MessagePolling     = "Dreaming up your video (this may take 1-2 mins)..."
	MessageDownloading = "Finalizing video..."
)

var (
	// ErrInvalidTransition is returned when a transition is not allowed.
	ErrInvalidTransition = errors.New("invalid phase transition")
	// ErrBusy is returned by Begin while a cycle is in flight.
	ErrBusy = errors.New("a generation is already in progress")
)

// validTransitions defines which phase transitions are allowed.
var validTransitions = map[Status][]Status{
	StatusIdle:        {StatusGenerating},
	StatusGenerating:  {StatusPolling, StatusError},
	StatusPolling:     {StatusDownloading, StatusError},
	StatusDownloading: {StatusCompleted, StatusError},
	StatusCompleted:   {StatusGenerating},
	StatusError:       {StatusGenerating},
}

func canTransition(from, to Status) bool {
	for _, s := range validTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// IsActive returns true while a cycle is in flight.
func (s Status) IsActive() bool {
	return s == StatusGenerating || s == StatusPolling || s == StatusDownloading
}

// IsTerminal returns true for completed and error.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusError
}

// Phase is the observable state of the current cycle.
type Phase struct {
	Status          Status    `json:"status"`
	ProgressMessage string    `json:"progress_message,omitempty"`
	Error           string    `json:"error,omitempty"`
	ErrorKind       Kind      `json:"error_kind,omitempty"`
	ResultID        string    `json:"result_id,omitempty"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// Observer is notified by the Client as the cycle moves forward.
type Observer interface {
	Advance(status Status, message string) error
}

// Tracker holds the single current Phase. Each Begin supersedes the
// previous cycle.
type Tracker struct {
	mu     sync.RWMutex
	phase  Phase
	logger *slog.Logger
}

// Compile-time check that Tracker implements Observer.
var _ Observer = (*Tracker)(nil)

// NewTracker creates a Tracker in the idle phase.
func NewTracker(logger *slog.Logger) *Tracker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Tracker{
		phase:  Phase{Status: StatusIdle, UpdatedAt: time.Now()},
		logger: logger,
	}
}

// Begin starts a new cycle. It returns ErrBusy if one is already active.
func (t *Tracker) Begin() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.phase.Status.IsActive() {
		return ErrBusy
	}
	return t.transitionLocked(Phase{Status: StatusGenerating, ProgressMessage: MessageGenerating})
}

// Advance moves the cycle to status with a progress message.
func (t *Tracker) Advance(status Status, message string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.transitionLocked(Phase{Status: status, ProgressMessage: message})
}

// Complete ends the cycle successfully with the identifier of the new result.
func (t *Tracker) Complete(resultID string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.transitionLocked(Phase{Status: StatusCompleted, ResultID: resultID})
}

// Fail ends the cycle with err. Any active phase may fail.
func (t *Tracker) Fail(err error) error {
	msg := "An unexpected error occurred during video generation."
	if err != nil {
		msg = err.Error()
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.transitionLocked(Phase{Status: StatusError, Error: msg, ErrorKind: KindOf(err)})
}

// Snapshot returns a copy of the current phase.
func (t *Tracker) Snapshot() Phase {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.phase
}

func (t *Tracker) transitionLocked(next Phase) error {
	from := t.phase.Status
	if !canTransition(from, next.Status) {
		return ErrInvalidTransition
	}
	next.UpdatedAt = time.Now()
	t.phase = next
	t.logger.Info("generation phase changed",
		slog.String("from", string(from)),
		slog.String("to", string(next.Status)),
	)
	return nil
}
