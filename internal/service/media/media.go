package media

import (
	"context"
)

// Gateway defines media manipulation operations for the pipeline
type Gateway interface {
	// ExtractAudio extracts the audio track of a video as mono 16kHz WAV
	ExtractAudio(ctx context.Context, inputPath, outputPath string) error
	// ExtractSubrange cuts the [startSeconds, endSeconds] window into a new video file
	ExtractSubrange(ctx context.Context, inputPath string, startSeconds, endSeconds float64, outputPath string) error
	// ProbeDuration returns the container duration of a media file in seconds
	ProbeDuration(ctx context.Context, inputPath string) (float64, error)
	// ComposeScenes renders an ordered scene list into a single video on the given canvas
	ComposeScenes(ctx context.Context, scenes []Scene, canvas Canvas, bgmPath, outputPath string) error
}

// Scene is one entry of a composition: a local asset shown for a fixed
// duration with an optional caption burned in
type Scene struct {
	AssetPath       string
	DurationSeconds float64
	Caption         string
}

// Canvas is the output frame size for scene composition
type Canvas struct {
	Width  int
	Height int
}

// DefaultCanvas returns the vertical short-form canvas (1080x1920)
func DefaultCanvas() Canvas {
	return Canvas{Width: 1080, Height: 1920}
}
