package media

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	apperrors "github.com/team-mirai-volunteer/video-processor-sub003/internal/errors"
	"github.com/team-mirai-volunteer/video-processor-sub003/internal/service/common"
)

// ffmpegGateway implements Gateway using the ffmpeg and ffprobe CLIs
type ffmpegGateway struct {
	cmdRunner   common.CmdRunner
	ffmpegPath  string
	ffprobePath string
}

// NewFFmpegGateway creates a new Gateway with default CmdRunner and tool paths
func NewFFmpegGateway() Gateway {
	return &ffmpegGateway{
		cmdRunner:   common.NewCmdRunner(),
		ffmpegPath:  "ffmpeg",
		ffprobePath: "ffprobe",
	}
}

// NewFFmpegGatewayWithCmdRunner creates a new Gateway with custom CmdRunner (for testing)
func NewFFmpegGatewayWithCmdRunner(cmdRunner common.CmdRunner, ffmpegPath, ffprobePath string) Gateway {
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	if ffprobePath == "" {
		ffprobePath = "ffprobe"
	}
	return &ffmpegGateway{
		cmdRunner:   cmdRunner,
		ffmpegPath:  ffmpegPath,
		ffprobePath: ffprobePath,
	}
}

// ExtractAudio extracts the audio track of a video as mono 16kHz WAV
func (g *ffmpegGateway) ExtractAudio(ctx context.Context, inputPath, outputPath string) error {
	if inputPath == "" {
		return apperrors.New(apperrors.CodeValidation, "input path is required")
	}
	if outputPath == "" {
		return apperrors.New(apperrors.CodeValidation, "output path is required")
	}

	args := []string{
		"-y",
		"-i", inputPath,
		"-vn",
		"-ac", "1",
		"-ar", "16000",
		"-f", "wav",
		outputPath,
	}
	if _, err := g.cmdRunner.Run(ctx, g.ffmpegPath, args...); err != nil {
		return apperrors.Wrap(err, apperrors.CodeExternal, g.formatFFmpegError("extract audio", err))
	}
	return nil
}

// ExtractSubrange cuts the [startSeconds, endSeconds] window into a new video file.
// Seeking happens before the input is opened so long sources cut quickly; the
// window is re-encoded so the output starts on a clean frame.
func (g *ffmpegGateway) ExtractSubrange(ctx context.Context, inputPath string, startSeconds, endSeconds float64, outputPath string) error {
	if inputPath == "" {
		return apperrors.New(apperrors.CodeValidation, "input path is required")
	}
	if outputPath == "" {
		return apperrors.New(apperrors.CodeValidation, "output path is required")
	}
	if startSeconds < 0 || endSeconds <= startSeconds {
		return apperrors.Newf(apperrors.CodeValidation, "invalid time range: start=%s end=%s", fmtSeconds(startSeconds), fmtSeconds(endSeconds))
	}

	args := []string{
		"-y",
		"-ss", fmtSeconds(startSeconds),
		"-to", fmtSeconds(endSeconds),
		"-i", inputPath,
		"-c:v", "libx264",
		"-preset", "veryfast",
		"-crf", "18",
		"-c:a", "aac",
		"-b:a", "192k",
		outputPath,
	}
	if _, err := g.cmdRunner.Run(ctx, g.ffmpegPath, args...); err != nil {
		return apperrors.Wrap(err, apperrors.CodeExternal, g.formatFFmpegError("extract subrange", err))
	}
	return nil
}

// ProbeDuration returns the container duration of a media file in seconds
func (g *ffmpegGateway) ProbeDuration(ctx context.Context, inputPath string) (float64, error) {
	if inputPath == "" {
		return 0, apperrors.New(apperrors.CodeValidation, "input path is required")
	}

	args := []string{
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		inputPath,
	}
	out, err := g.cmdRunner.Run(ctx, g.ffprobePath, args...)
	if err != nil {
		return 0, apperrors.Wrap(err, apperrors.CodeExternal, g.formatFFprobeError(err))
	}
	s := strings.TrimSpace(string(out))
	seconds, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, apperrors.Wrap(err, apperrors.CodeParse, fmt.Sprintf("could not parse duration %q from ffprobe output", s))
	}
	return seconds, nil
}

// ComposeScenes renders an ordered scene list into a single video on the given
// canvas. Each scene is rendered to an intermediate segment with identical
// encoding settings, the segments are joined with the concat demuxer, and an
// optional background music track is mixed over the result.
func (g *ffmpegGateway) ComposeScenes(ctx context.Context, scenes []Scene, canvas Canvas, bgmPath, outputPath string) error {
	if len(scenes) == 0 {
		return apperrors.New(apperrors.CodeValidation, "at least one scene is required")
	}
	if outputPath == "" {
		return apperrors.New(apperrors.CodeValidation, "output path is required")
	}
	if canvas.Width <= 0 || canvas.Height <= 0 {
		canvas = DefaultCanvas()
	}

	tempDir, err := os.MkdirTemp("", "videoproc-compose-*")
	if err != nil {
		return apperrors.Wrap(err, apperrors.CodeInternal, "failed to create temp directory")
	}
	defer os.RemoveAll(tempDir)

	var list strings.Builder
	for i, scene := range scenes {
		segmentPath := filepath.Join(tempDir, fmt.Sprintf("scene_%03d.mp4", i))
		if err := g.renderScene(ctx, scene, canvas, segmentPath); err != nil {
			return err
		}
		fmt.Fprintf(&list, "file '%s'\n", segmentPath)
	}

	listPath := filepath.Join(tempDir, "scenes.txt")
	if err := os.WriteFile(listPath, []byte(list.String()), 0o644); err != nil {
		return apperrors.Wrap(err, apperrors.CodeInternal, "failed to write concat list")
	}

	concatOut := outputPath
	if bgmPath != "" {
		concatOut = filepath.Join(tempDir, "concat.mp4")
	}

	// Segments share encoding settings, so the concat step is a stream copy.
	args := []string{
		"-y",
		"-f", "concat",
		"-safe", "0",
		"-i", listPath,
		"-c", "copy",
		concatOut,
	}
	if _, err := g.cmdRunner.Run(ctx, g.ffmpegPath, args...); err != nil {
		return apperrors.Wrap(err, apperrors.CodeExternal, g.formatFFmpegError("concat scenes", err))
	}

	if bgmPath == "" {
		return nil
	}
	return g.mixBackgroundMusic(ctx, concatOut, bgmPath, outputPath)
}

// renderScene produces one canvas-sized segment with a silent audio track so
// every segment is concat-compatible regardless of the source asset
func (g *ffmpegGateway) renderScene(ctx context.Context, scene Scene, canvas Canvas, outputPath string) error {
	if scene.AssetPath == "" {
		return apperrors.New(apperrors.CodeValidation, "scene asset path is required")
	}
	if scene.DurationSeconds <= 0 {
		return apperrors.Newf(apperrors.CodeValidation, "scene duration must be positive, got %s", fmtSeconds(scene.DurationSeconds))
	}

	duration := fmtSeconds(scene.DurationSeconds)
	args := []string{"-y"}
	if isImageAsset(scene.AssetPath) {
		args = append(args, "-loop", "1", "-framerate", "30")
	}
	args = append(args,
		"-t", duration,
		"-i", scene.AssetPath,
		"-f", "lavfi",
		"-t", duration,
		"-i", "anullsrc=channel_layout=stereo:sample_rate=44100",
		"-filter_complex", sceneFilter(scene, canvas),
		"-map", "[v]",
		"-map", "1:a",
		"-c:v", "libx264",
		"-preset", "veryfast",
		"-crf", "18",
		"-pix_fmt", "yuv420p",
		"-c:a", "aac",
		"-b:a", "192k",
		"-shortest",
		outputPath,
	)
	if _, err := g.cmdRunner.Run(ctx, g.ffmpegPath, args...); err != nil {
		return apperrors.Wrap(err, apperrors.CodeExternal, g.formatFFmpegError("render scene", err))
	}
	return nil
}

// mixBackgroundMusic lays the music track under the composed video, looping it
// to cover the full length and keeping the video stream untouched
func (g *ffmpegGateway) mixBackgroundMusic(ctx context.Context, inputPath, bgmPath, outputPath string) error {
	args := []string{
		"-y",
		"-i", inputPath,
		"-stream_loop", "-1",
		"-i", bgmPath,
		"-filter_complex", "[1:a]volume=0.25[bgm];[0:a][bgm]amix=inputs=2:duration=first:dropout_transition=2[a]",
		"-map", "0:v",
		"-map", "[a]",
		"-c:v", "copy",
		"-c:a", "aac",
		"-b:a", "192k",
		"-shortest",
		outputPath,
	}
	if _, err := g.cmdRunner.Run(ctx, g.ffmpegPath, args...); err != nil {
		return apperrors.Wrap(err, apperrors.CodeExternal, g.formatFFmpegError("mix background music", err))
	}
	return nil
}

// sceneFilter scales and pads the asset onto the canvas and optionally burns
// the caption near the bottom edge
func sceneFilter(scene Scene, canvas Canvas) string {
	w, h := canvas.Width, canvas.Height
	filter := fmt.Sprintf(
		"[0:v]scale=%d:%d:force_original_aspect_ratio=decrease,pad=%d:%d:(ow-iw)/2:(oh-ih)/2:color=black,setsar=1,fps=30",
		w, h, w, h,
	)
	if caption := strings.TrimSpace(scene.Caption); caption != "" {
		filter += fmt.Sprintf(
			",drawtext=text='%s':fontcolor=white:fontsize=64:borderw=3:bordercolor=black:x=(w-text_w)/2:y=h-text_h-160",
			escapeFilterText(caption),
		)
	}
	return filter + "[v]"
}

// formatFFmpegError provides user-friendly error messages for ffmpeg failures
func (g *ffmpegGateway) formatFFmpegError(operation string, err error) string {
	errMsg := err.Error()
	switch {
	case strings.Contains(errMsg, "executable file not found"):
		return fmt.Sprintf("%s is not installed or not on PATH", g.ffmpegPath)
	case strings.Contains(errMsg, "No such file or directory"):
		return fmt.Sprintf("ffmpeg %s failed: input file not found", operation)
	default:
		if detail := stderrTail(err); detail != "" {
			return fmt.Sprintf("ffmpeg %s failed: %s", operation, detail)
		}
		return fmt.Sprintf("ffmpeg %s failed: %s", operation, errMsg)
	}
}

func (g *ffmpegGateway) formatFFprobeError(err error) string {
	if strings.Contains(err.Error(), "executable file not found") {
		return fmt.Sprintf("%s is not installed or not on PATH", g.ffprobePath)
	}
	if detail := stderrTail(err); detail != "" {
		return fmt.Sprintf("ffprobe failed: %s", detail)
	}
	return fmt.Sprintf("ffprobe failed: %s", err.Error())
}

// stderrTail extracts the end of the captured stderr from a failed command.
// ffmpeg prints the failure reason last, so the tail is what matters.
func stderrTail(err error) string {
	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) || len(exitErr.Stderr) == 0 {
		return ""
	}
	s := strings.TrimSpace(string(exitErr.Stderr))
	const limit = 400
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return string(r[len(r)-limit:])
}

func fmtSeconds(seconds float64) string {
	return strconv.FormatFloat(seconds, 'f', 3, 64)
}

func escapeFilterText(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, ":", "\\:")
	s = strings.ReplaceAll(s, "'", "\\\\\\'")
	s = strings.ReplaceAll(s, "%", "\\%")
	return s
}

func isImageAsset(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg", ".png", ".webp", ".bmp":
		return true
	default:
		return false
	}
}
