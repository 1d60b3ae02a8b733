package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// Static errors for media operations.
var (
	// ErrFFprobeExecution is returned when ffprobe command fails.
	ErrFFprobeExecution = errors.New("ffprobe execution failed")
	// ErrNoVideoStream is returned when a file carries no video stream.
	ErrNoVideoStream = errors.New("no video stream found")
	// ErrEmptyFrame is returned when ffmpeg produced no image data.
	ErrEmptyFrame = errors.New("ffmpeg produced an empty frame")
)

// Compile-time check that FFmpegInspector implements Inspector.
var _ Inspector = (*FFmpegInspector)(nil)

// FFmpegInspector implements Inspector using the ffmpeg and ffprobe CLIs.
type FFmpegInspector struct {
	ffmpegPath  string
	ffprobePath string
}

// NewFFmpegInspector creates a new FFmpegInspector.
// Empty paths default to "ffmpeg" and "ffprobe" (found via PATH).
func NewFFmpegInspector(ffmpegPath, ffprobePath string) *FFmpegInspector {
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	if ffprobePath == "" {
		ffprobePath = "ffprobe"
	}
	return &FFmpegInspector{ffmpegPath: ffmpegPath, ffprobePath: ffprobePath}
}

// Available reports whether both binaries can be found.
func (p *FFmpegInspector) Available() bool {
	if _, err := exec.LookPath(p.ffmpegPath); err != nil {
		return false
	}
	_, err := exec.LookPath(p.ffprobePath)
	return err == nil
}

// Probe returns the duration and dimensions of a clip.
func (p *FFmpegInspector) Probe(ctx context.Context, path string) (Info, error) {
	duration, err := p.GetMediaDuration(ctx, path)
	if err != nil {
		return Info{}, err
	}

	out, err := p.runFFprobe(ctx,
		"-v", "error",
		"-select_streams", "v:0",
		"-show_entries", "stream=width,height",
		"-of", "csv=s=x:p=0",
		path,
	)
	if err != nil {
		return Info{}, err
	}

	w, h, err := parseDimensions(out)
	if err != nil {
		return Info{}, err
	}

	return Info{Duration: duration, Width: w, Height: h}, nil
}

// GetMediaDuration returns the duration in seconds of a media file.
func (p *FFmpegInspector) GetMediaDuration(ctx context.Context, path string) (float64, error) {
	out, err := p.runFFprobe(ctx,
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path,
	)
	if err != nil {
		return 0, err
	}

	duration, err := strconv.ParseFloat(strings.TrimSpace(out), 64)
	if err != nil {
		return 0, fmt.Errorf("parse duration: %w", err)
	}

	return duration, nil
}

// ExtractPoster returns the first frame of the clip encoded as PNG.
func (p *FFmpegInspector) ExtractPoster(ctx context.Context, videoPath string) ([]byte, error) {
	args := []string{
		"-v", "error",
		"-i", videoPath,
		"-frames:v", "1",
		"-f", "image2pipe",
		"-vcodec", "png",
		"-",
	}

	// #nosec G204 - ffmpegPath is set by the application, not user input
	cmd := exec.CommandContext(ctx, p.ffmpegPath, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("ffmpeg cancelled: %w", ctx.Err())
		}
		return nil, &FFmpegError{Args: args, Stderr: stderr.String(), Err: err}
	}

	if stdout.Len() == 0 {
		return nil, ErrEmptyFrame
	}

	return stdout.Bytes(), nil
}

func (p *FFmpegInspector) runFFprobe(ctx context.Context, args ...string) (string, error) {
	// #nosec G204 - ffprobePath is set by the application, not user input
	cmd := exec.CommandContext(ctx, p.ffprobePath, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return "", fmt.Errorf("ffprobe cancelled: %w", ctx.Err())
		}
		return "", fmt.Errorf("%w: %w, stderr: %s", ErrFFprobeExecution, err, stderr.String())
	}

	return stdout.String(), nil
}

// parseDimensions reads "WxH" as printed by ffprobe's csv writer.
func parseDimensions(out string) (int, int, error) {
	line := strings.TrimSpace(out)
	if line == "" {
		return 0, 0, ErrNoVideoStream
	}
	// Multiple streams print one line each; the first is v:0.
	if i := strings.IndexByte(line, '\n'); i >= 0 {
		line = strings.TrimSpace(line[:i])
	}

	ws, hs, ok := strings.Cut(line, "x")
	if !ok {
		return 0, 0, fmt.Errorf("parse dimensions %q: missing separator", line)
	}
	w, err := strconv.Atoi(ws)
	if err != nil {
		return 0, 0, fmt.Errorf("parse width %q: %w", ws, err)
	}
	h, err := strconv.Atoi(strings.TrimSuffix(hs, "x"))
	if err != nil {
		return 0, 0, fmt.Errorf("parse height %q: %w", hs, err)
	}
	return w, h, nil
}

// FFmpegError represents an error from running ffmpeg, including the stderr output.
type FFmpegError struct {
	Args   []string
	Stderr string
	Err    error
}

func (e *FFmpegError) Error() string {
	return fmt.Sprintf("ffmpeg error: %v\nargs: %v\nstderr: %s", e.Err, e.Args, e.Stderr)
}

func (e *FFmpegError) Unwrap() error {
	return e.Err
}
