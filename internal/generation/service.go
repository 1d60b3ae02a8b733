package generation

import (
	"context"
	"fmt"

	"github.com/maauso/veo-studio/internal/video"
)

// Operation is a snapshot of an asynchronous generation job.
type Operation struct {
	// Name identifies the job on the service.
	Name string
	// Done is true once the job reached a terminal state.
	Done bool
	// Failed is true when the finished job carries an error.
	Failed bool
	// ErrorMessage is the service-reported failure message.
	ErrorMessage string
	// VideoURIs lists the produced clips in service order.
	VideoURIs []string
	// FilteredReasons explains clips withheld by safety filters.
	FilteredReasons []string
	// Metadata is the raw progress metadata, used for logging only.
	Metadata map[string]any
}

// VideoURI returns the first produced clip or "".
func (o Operation) VideoURI() string {
	if len(o.VideoURIs) == 0 {
		return ""
	}
	return o.VideoURIs[0]
}

// Service talks to the external generation service.
type Service interface {
	// Start submits req and returns the job handle.
	Start(ctx context.Context, req video.Request) (Operation, error)
	// Refresh fetches the latest state of op.
	Refresh(ctx context.Context, op Operation) (Operation, error)
}

// ServiceFactory builds a Service bound to an access key. A new Service is
// built for every submission so key changes apply immediately.
type ServiceFactory interface {
	NewService(ctx context.Context, apiKey string) (Service, error)
}

// ServiceFactoryFunc adapts a function to ServiceFactory.
type ServiceFactoryFunc func(ctx context.Context, apiKey string) (Service, error)

// NewService calls f.
func (f ServiceFactoryFunc) NewService(ctx context.Context, apiKey string) (Service, error) {
	return f(ctx, apiKey)
}

// Fetcher downloads produced content.
type Fetcher interface {
	// Fetch returns the bytes at uri, authorizing with apiKey.
	Fetch(ctx context.Context, uri, apiKey string) ([]byte, error)
}

// DownloadStatusError is returned by a Fetcher when the transport answers with a
// non-success status.
type DownloadStatusError struct {
	StatusCode int
	StatusText string
}

func (e *DownloadStatusError) Error() string {
	return fmt.Sprintf("unexpected status %d %s", e.StatusCode, e.StatusText)
}
