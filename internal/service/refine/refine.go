package refine

import (
	"context"
	"strings"

	apperrors "github.com/team-mirai-volunteer/video-processor-sub003/internal/errors"
	"github.com/team-mirai-volunteer/video-processor-sub003/internal/logging"
	"github.com/team-mirai-volunteer/video-processor-sub003/internal/model"
	transcriptionrepo "github.com/team-mirai-volunteer/video-processor-sub003/internal/repository/transcription"
	"github.com/team-mirai-volunteer/video-processor-sub003/internal/service/textgen"
)

// Service produces the dictionary-corrected, sentence-level rendering of a
// transcription and persists it, replacing any previous refined version.
type Service interface {
	Refine(ctx context.Context, transcription model.Transcription) (model.RefinedTranscription, error)
}

type refineService struct {
	generator textgen.Generator
	refined   transcriptionrepo.RefinedRepository
	dict      Dictionary
	chunkSize int
	overlap   int
	logger    logging.Logger
}

// NewService creates a refinement service. A non-positive chunkSize or a
// negative overlap falls back to the defaults.
func NewService(generator textgen.Generator, refined transcriptionrepo.RefinedRepository, dict Dictionary, chunkSize, overlap int, logger logging.Logger) Service {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	if overlap < 0 {
		overlap = DefaultOverlap
	}
	return &refineService{
		generator: generator,
		refined:   refined,
		dict:      dict,
		chunkSize: chunkSize,
		overlap:   overlap,
		logger:    logger,
	}
}

// Refine splits the transcript into overlapping chunks, sends each through
// the text generator, merges the per-chunk sentences, and stores the result.
func (s *refineService) Refine(ctx context.Context, transcription model.Transcription) (model.RefinedTranscription, error) {
	if len(transcription.Segments) == 0 {
		return model.RefinedTranscription{}, apperrors.New(apperrors.CodeValidation, "transcription has no segments to refine")
	}

	chunks, err := SplitIntoChunks(len(transcription.Segments), s.chunkSize, s.overlap)
	if err != nil {
		return model.RefinedTranscription{}, err
	}

	s.logger.Info().
		Str("transcription_id", transcription.ID).
		Int("segments", len(transcription.Segments)).
		Int("chunks", len(chunks)).
		Str("dictionary_version", s.dict.Version).
		Msg("starting transcript refinement")

	results := make([][]model.RefinedSentence, len(chunks))
	prevTail := ""
	for _, chunk := range chunks {
		sentences, err := s.refineChunk(ctx, chunk, transcription.Segments, prevTail)
		if err != nil {
			return model.RefinedTranscription{}, err
		}
		results[chunk.Index] = sentences
		prevTail = tailText(sentences, promptTailRunes)
	}

	merged, err := MergeChunkSentences(chunks, results, transcription.Segments)
	if err != nil {
		return model.RefinedTranscription{}, err
	}

	refined := model.NewRefinedTranscription(transcription.ID, joinSentences(transcription.LanguageCode, merged), merged, s.dict.Version)
	if err := s.refined.Replace(ctx, refined); err != nil {
		return model.RefinedTranscription{}, err
	}

	s.logger.Info().
		Str("transcription_id", transcription.ID).
		Int("sentences", len(merged)).
		Msg("transcript refinement completed")

	return refined, nil
}

// refineChunk sends one chunk through the generator. A response that fails
// validation gets one retry before the run is aborted.
func (s *refineService) refineChunk(ctx context.Context, chunk Chunk, segments []model.TranscriptSegment, prevTail string) ([]model.RefinedSentence, error) {
	prompt := BuildChunkPrompt(chunk, segments, s.dict, prevTail)

	var lastErr error
	for attempt := 1; attempt <= 2; attempt++ {
		raw, err := s.generator.Generate(ctx, prompt)
		if err != nil {
			return nil, err
		}

		sentences, err := ParseChunkResponse(raw, chunk, segments)
		if err == nil {
			return sentences, nil
		}
		lastErr = err

		s.logger.Warn().
			Err(err).
			Int("chunk", chunk.Index+1).
			Int("total", chunk.Total).
			Int("attempt", attempt).
			Msg("chunk response failed validation")
	}
	return nil, lastErr
}

// joinSentences renders the refined full text. Japanese and Chinese join
// without a separator; other languages get a space between sentences.
func joinSentences(languageCode string, sentences []model.RefinedSentence) string {
	texts := make([]string, len(sentences))
	for i, s := range sentences {
		texts[i] = s.Text
	}

	sep := " "
	switch strings.ToLower(languageCode) {
	case "ja", "zh":
		sep = ""
	}
	return strings.Join(texts, sep)
}
