package generation

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/maauso/veo-studio/internal/credential"
	"github.com/maauso/veo-studio/internal/video"
)

// DefaultPollInterval is the fixed delay between job status checks.
const DefaultPollInterval = 8 * time.Second

// Video is the downloaded clip.
type Video struct {
	Data     []byte
	MIMEType string
	URI      string
}

// Client submits a request, polls the job until it finishes and downloads
// the produced clip. It performs no retries and holds no per-call state, so
// callers must not run two submissions that share an Observer.
type Client struct {
	credentials  credential.Provider
	services     ServiceFactory
	fetcher      Fetcher
	pollInterval time.Duration
	maxWait      time.Duration
	logger       *slog.Logger
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithPollInterval sets the delay between status checks.
func WithPollInterval(d time.Duration) ClientOption {
	return func(c *Client) {
		if d > 0 {
			c.pollInterval = d
		}
	}
}

// WithMaxWait bounds the total time spent on one submission. Zero, the
// default, polls until the service reports completion.
func WithMaxWait(d time.Duration) ClientOption {
	return func(c *Client) {
		if d >= 0 {
			c.maxWait = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewClient creates a Client.
func NewClient(creds credential.Provider, services ServiceFactory, fetcher Fetcher, opts ...ClientOption) *Client {
	c := &Client{
		credentials:  creds,
		services:     services,
		fetcher:      fetcher,
		pollInterval: DefaultPollInterval,
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Generate runs one submission and returns the downloaded clip. obs, if not
// nil, is advanced to polling once the job is accepted and to downloading
// once a result URI is available. Every failure is an *Error.
func (c *Client) Generate(ctx context.Context, req video.Request, obs Observer) (*Video, error) {
	if obs == nil {
		obs = nopObserver{}
	}

	key, err := c.credentials.Credential(ctx)
	if err != nil || key == "" {
		return nil, newError(KindCredentialMissing, "", err)
	}

	svc, err := c.services.NewService(ctx, key)
	if err != nil {
		return nil, c.classify(err)
	}

	if c.maxWait > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.maxWait)
		defer cancel()
	}

	op, err := svc.Start(ctx, req)
	if err != nil {
		return nil, c.classify(err)
	}
	c.logger.Info("video generation initiated",
		slog.String("operation", op.Name),
		slog.String("model", req.Model.ID()),
	)

	if err := obs.Advance(StatusPolling, MessagePolling); err != nil {
		return nil, newError(KindUnexpected, "", err)
	}

	for !op.Done {
		if err := c.wait(ctx); err != nil {
			return nil, c.classify(err)
		}
		op, err = svc.Refresh(ctx, op)
		if err != nil {
			return nil, c.classify(err)
		}
		c.logger.Debug("polling video status",
			slog.String("operation", op.Name),
			slog.Bool("done", op.Done),
			slog.Any("metadata", op.Metadata),
		)
	}

	if op.Failed || op.ErrorMessage != "" {
		return nil, newError(KindGenerationFailed, op.ErrorMessage, nil)
	}

	uri := op.VideoURI()
	if uri == "" {
		return nil, newError(KindNoResultProduced, strings.Join(op.FilteredReasons, "; "), nil)
	}

	if err := obs.Advance(StatusDownloading, MessageDownloading); err != nil {
		return nil, newError(KindUnexpected, "", err)
	}

	data, err := c.fetcher.Fetch(ctx, uri, key)
	if err != nil {
		return nil, c.classifyFetch(err)
	}

	c.logger.Info("video downloaded",
		slog.String("operation", op.Name),
		slog.Int("bytes", len(data)),
	)

	return &Video{Data: data, MIMEType: video.DefaultMIMEType, URI: uri}, nil
}

// wait blocks for one poll interval or until ctx ends.
func (c *Client) wait(ctx context.Context) error {
	timer := time.NewTimer(c.pollInterval)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (c *Client) classify(err error) error {
	var gerr *Error
	switch {
	case errors.As(err, &gerr):
		return gerr
	case errors.Is(err, credential.ErrCredentialMissing):
		return newError(KindCredentialMissing, "", err)
	case errors.Is(err, ErrUnauthorized):
		return newError(KindCredentialRejected, "", err)
	case c.maxWait > 0 && errors.Is(err, context.DeadlineExceeded):
		return newError(KindTimedOut, c.maxWait.String(), err)
	default:
		return newError(KindUnexpected, "", err)
	}
}

func (c *Client) classifyFetch(err error) error {
	var serr *DownloadStatusError
	if errors.As(err, &serr) {
		return newError(KindDownloadFailed, serr.StatusText, err)
	}
	if c.maxWait > 0 && errors.Is(err, context.DeadlineExceeded) {
		return newError(KindTimedOut, c.maxWait.String(), err)
	}
	return newError(KindDownloadFailed, err.Error(), err)
}

type nopObserver struct{}

func (nopObserver) Advance(Status, string) error { return nil }
