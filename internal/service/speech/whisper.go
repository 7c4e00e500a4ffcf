package speech

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	apperrors "github.com/team-mirai-volunteer/video-processor-sub003/internal/errors"
	"github.com/team-mirai-volunteer/video-processor-sub003/internal/model"
	"github.com/team-mirai-volunteer/video-processor-sub003/internal/service/common"
)

type workDirKey struct{}

// WithWorkDir returns a context that directs TranscribeLong to write its
// output files into dir instead of a fresh temp directory. The caller owns
// the directory's lifecycle.
func WithWorkDir(ctx context.Context, dir string) context.Context {
	return context.WithValue(ctx, workDirKey{}, dir)
}

// whisperTranscriber implements Transcriber using the Whisper CLI
type whisperTranscriber struct {
	cmdRunner common.CmdRunner
	bin       string
	model     string // model size: tiny, base, small, medium, large
}

// NewWhisperTranscriber creates a new Transcriber with default CmdRunner
func NewWhisperTranscriber(bin, model string) Transcriber {
	return NewWhisperTranscriberWithCmdRunner(common.NewCmdRunner(), bin, model)
}

// NewWhisperTranscriberWithCmdRunner creates a new Transcriber with custom CmdRunner (for testing)
func NewWhisperTranscriberWithCmdRunner(cmdRunner common.CmdRunner, bin, model string) Transcriber {
	if bin == "" {
		bin = "whisper"
	}
	if model == "" {
		model = "large"
	}
	return &whisperTranscriber{
		cmdRunner: cmdRunner,
		bin:       bin,
		model:     model,
	}
}

// whisperOutput mirrors the JSON file Whisper writes with --output_format json
type whisperOutput struct {
	Text     string           `json:"text"`
	Language string           `json:"language"`
	Segments []whisperSegment `json:"segments"`
}

type whisperSegment struct {
	ID         int     `json:"id"`
	Start      float64 `json:"start"`
	End        float64 `json:"end"`
	Text       string  `json:"text"`
	AvgLogprob float64 `json:"avg_logprob"`
}

// TranscribeLong transcribes an audio file using the Whisper CLI
func (s *whisperTranscriber) TranscribeLong(ctx context.Context, audioPath string, language string) (Result, error) {
	if audioPath == "" {
		return Result{}, apperrors.New(apperrors.CodeValidation, "audio path is required")
	}

	// Output directory: the caller's work dir when set, a temp dir otherwise
	tempDir, _ := ctx.Value(workDirKey{}).(string)
	if tempDir == "" {
		var err error
		tempDir, err = os.MkdirTemp("", "videoproc-whisper-*")
		if err != nil {
			return Result{}, apperrors.Wrap(err, apperrors.CodeInternal, "failed to create temp directory")
		}
		defer os.RemoveAll(tempDir)
	}

	args := []string{
		audioPath,
		"--model", s.model,
		"--output_format", "json",
		"--output_dir", tempDir,
		"--temperature", "0",
	}

	// Add language parameter only if not auto-detection
	if language != "" && language != "auto" {
		args = append(args, "--language", language)
	}

	if _, err := s.cmdRunner.Run(ctx, s.bin, args...); err != nil {
		return Result{}, apperrors.Wrap(err, apperrors.CodeExternal, s.formatWhisperError(err, audioPath, language))
	}

	// Whisper names the output file after the input audio
	baseName := filepath.Base(audioPath)
	baseName = strings.TrimSuffix(baseName, filepath.Ext(baseName))
	jsonPath := filepath.Join(tempDir, baseName+".json")

	jsonData, err := os.ReadFile(jsonPath)
	if err != nil {
		return Result{}, apperrors.Wrap(err, apperrors.CodeInternal, "failed to read whisper output")
	}

	var out whisperOutput
	if err := json.Unmarshal(jsonData, &out); err != nil {
		return Result{}, apperrors.Wrap(err, apperrors.CodeParse, "failed to parse whisper output")
	}

	return toResult(out), nil
}

// toResult maps Whisper's JSON shape onto the engine-agnostic Result
func toResult(out whisperOutput) Result {
	segments := make([]model.TranscriptSegment, 0, len(out.Segments))
	var duration float64
	for _, seg := range out.Segments {
		segments = append(segments, model.TranscriptSegment{
			Text:         strings.TrimSpace(seg.Text),
			StartSeconds: seg.Start,
			EndSeconds:   seg.End,
			Confidence:   seg.AvgLogprob,
		})
		if seg.End > duration {
			duration = seg.End
		}
	}
	return Result{
		Text:            strings.TrimSpace(out.Text),
		LanguageCode:    out.Language,
		DurationSeconds: duration,
		Segments:        segments,
	}
}

// formatWhisperError provides user-friendly error messages for Whisper failures
func (s *whisperTranscriber) formatWhisperError(err error, audioPath, language string) string {
	errMsg := err.Error()

	switch {
	case strings.Contains(errMsg, "executable file not found"):
		return "Whisper is not installed. Please install OpenAI Whisper: pip install openai-whisper"
	case strings.Contains(errMsg, "No module named"):
		return "Whisper dependencies missing. Please reinstall: pip install --upgrade openai-whisper"
	case strings.Contains(errMsg, "CUDA"):
		return "GPU/CUDA error detected. Whisper will fallback to CPU processing (this may be slower)"
	case strings.Contains(errMsg, "not enough memory") || strings.Contains(errMsg, "OutOfMemoryError"):
		return fmt.Sprintf("insufficient memory for model '%s'. Try using a smaller model (tiny, base, small)", s.model)
	case strings.Contains(errMsg, "Invalid language"):
		return fmt.Sprintf("unsupported language '%s'. Use language codes like 'en', 'ja', 'es' or 'auto'", language)
	case strings.Contains(errMsg, "Invalid model"):
		return fmt.Sprintf("unsupported model '%s'. Available models: tiny, base, small, medium, large", s.model)
	case strings.Contains(errMsg, "Could not load model"):
		return fmt.Sprintf("failed to load Whisper model '%s'. The model may need to be downloaded on first use", s.model)
	case strings.Contains(errMsg, "File not found") || strings.Contains(errMsg, "No such file"):
		return fmt.Sprintf("audio file not found: %s", filepath.Base(audioPath))
	case strings.Contains(errMsg, "Unsupported format") || strings.Contains(errMsg, "format not supported"):
		return fmt.Sprintf("unsupported audio format: %s", filepath.Ext(audioPath))
	case strings.Contains(errMsg, "exit status 2"):
		return fmt.Sprintf("Whisper processing failed. This may be due to corrupted audio or unsupported format (%s)", filepath.Ext(audioPath))
	default:
		return fmt.Sprintf("transcription failed with model '%s' - %s", s.model, errMsg)
	}
}
