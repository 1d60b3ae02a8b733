package generation

import (
	"errors"
	"fmt"
)

// Kind classifies a generation failure so callers can branch on it instead of
// inspecting message text.
type Kind string

const (
	// KindCredentialMissing means no access key was available.
	KindCredentialMissing Kind = "CREDENTIAL_MISSING"
	// KindCredentialRejected means the service or transport refused the key.
	KindCredentialRejected Kind = "CREDENTIAL_REJECTED"
	// KindGenerationFailed means the job finished with a service-reported error.
	KindGenerationFailed Kind = "GENERATION_FAILED"
	// KindNoResultProduced means the job finished without a video URI.
	KindNoResultProduced Kind = "NO_RESULT_PRODUCED"
	// KindDownloadFailed means fetching the video content failed.
	KindDownloadFailed Kind = "DOWNLOAD_FAILED"
	// KindTimedOut means the configured maximum wait elapsed while polling.
	KindTimedOut Kind = "TIMED_OUT"
	// KindUnexpected covers everything else.
	KindUnexpected Kind = "UNEXPECTED"
)

// ResetsCredential reports whether a failure of this kind should drop the
// cached credential so the next submission prompts for a new one.
func (k Kind) ResetsCredential() bool {
	return k == KindCredentialMissing || k == KindCredentialRejected
}

// Sentinel values for errors.Is comparisons against a kind.
var (
	ErrCredentialMissing  = &Error{Kind: KindCredentialMissing}
	ErrCredentialRejected = &Error{Kind: KindCredentialRejected}
	ErrGenerationFailed   = &Error{Kind: KindGenerationFailed}
	ErrNoResultProduced   = &Error{Kind: KindNoResultProduced}
	ErrDownloadFailed     = &Error{Kind: KindDownloadFailed}
	ErrTimedOut           = &Error{Kind: KindTimedOut}
	ErrUnexpected         = &Error{Kind: KindUnexpected}
)

// ErrUnauthorized is wrapped by Service implementations when the
// remote side rejects the access key.
var ErrUnauthorized = errors.New("generation: credential rejected")

// Error is the typed failure returned by Client.Generate.
type Error struct {
	Kind   Kind
	Reason string
	Err    error
}

func newError(kind Kind, reason string, err error) *Error {
	return &Error{Kind: kind, Reason: reason, Err: err}
}

// Error returns a display-ready message.
func (e *Error) Error() string {
	switch e.Kind {
	case KindCredentialMissing:
		return "API key not found. Please select an API key."
	case KindCredentialRejected:
		return e.withReason("API key was rejected")
	case KindGenerationFailed:
		reason := e.Reason
		if reason == "" {
			reason = "Unknown error"
		}
		return "Generation failed: " + reason
	case KindNoResultProduced:
		return e.withReason("Generation completed but no video URI was returned.")
	case KindDownloadFailed:
		return "Failed to download video content: " + e.Reason
	case KindTimedOut:
		return e.withReason("Generation did not finish in time")
	default:
		return e.withReason("An unexpected error occurred during video generation")
	}
}

func (e *Error) withReason(msg string) string {
	switch {
	case e.Reason != "":
		return fmt.Sprintf("%s: %s", msg, e.Reason)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", msg, e.Err)
	default:
		return msg
	}
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error of the same kind, so errors.Is(err, ErrDownloadFailed)
// holds regardless of reason.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// KindOf returns the kind of err, KindUnexpected for untyped errors and the
// empty kind for nil.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var gerr *Error
	if errors.As(err, &gerr) {
		return gerr.Kind
	}
	return KindUnexpected
}
