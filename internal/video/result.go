package video

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// DefaultMIMEType is the content type of downloaded clips.
const DefaultMIMEType = "video/mp4"

// Content is the opaque handle to downloaded clip bytes. At least one of
// Path or URL is set.
type Content struct {
	// Path is the local file holding the bytes.
	Path string `json:"-"`
	// URL is the public location after an upload, if any.
	URL string `json:"url,omitempty"`
}

// Result is a generated clip. It is created once a request completes
// successfully and is not modified afterwards.
type Result struct {
	ID        string    `json:"id"`
	Content   Content   `json:"content"`
	Request   Request   `json:"request"`
	CreatedAt time.Time `json:"created_at"`
	FileName  string    `json:"file_name"`
	MIMEType  string    `json:"mime_type"`
	Size      int64     `json:"size"`

	// Populated when the clip was inspected with ffprobe.
	DurationSeconds float64 `json:"duration_seconds,omitempty"`
	Width           int     `json:"width,omitempty"`
	Height          int     `json:"height,omitempty"`
}

// NewResult builds a Result for req with a fresh identifier and a suggested
// download file name derived from createdAt.
func NewResult(req Request, content Content, size int64, createdAt time.Time) Result {
	return Result{
		ID:        NewID(),
		Content:   content,
		Request:   req,
		CreatedAt: createdAt,
		FileName:  FileName(createdAt),
		MIMEType:  DefaultMIMEType,
		Size:      size,
	}
}

// NewID returns a new random result identifier.
func NewID() string {
	return uuid.NewString()
}

// FileName returns the suggested download name for a clip created at t.
// Format: veo-gen-<unix millis>.mp4
func FileName(t time.Time) string {
	return fmt.Sprintf("veo-gen-%d.mp4", t.UnixMilli())
}
