// Package media inspects downloaded clips with the ffmpeg toolchain.
package media

import "context"

// Info describes a clip as reported by ffprobe.
type Info struct {
	Duration float64 // seconds
	Width    int
	Height   int
}

// Inspector reads metadata and stills from clips on local disk.
type Inspector interface {
	// Probe returns the duration and the dimensions of the first video stream.
	Probe(ctx context.Context, path string) (Info, error)

	// ExtractPoster returns the first frame of the clip as PNG bytes.
	ExtractPoster(ctx context.Context, videoPath string) ([]byte, error)
}
