package refine

import (
	apperrors "github.com/team-mirai-volunteer/video-processor-sub003/internal/errors"
	"github.com/team-mirai-volunteer/video-processor-sub003/internal/model"
)

// MergeChunkSentences reconciles per-chunk sentence lists into one ordered
// list that covers every segment index exactly once. Inside an overlap window
// the later chunk's sentences win, since that chunk saw more trailing
// context. The exception is a bridging sentence from the earlier chunk that
// starts before the window and reaches into it: the bridge is kept whole, and
// the later chunk's sentences are dropped or index-trimmed until they clear
// the indices the bridge consumed.
func MergeChunkSentences(chunks []Chunk, results [][]model.RefinedSentence, segments []model.TranscriptSegment) ([]model.RefinedSentence, error) {
	if len(chunks) != len(results) {
		return nil, apperrors.Newf(apperrors.CodeValidation,
			"chunk count %d does not match result count %d", len(chunks), len(results))
	}
	if len(chunks) == 0 {
		return []model.RefinedSentence{}, nil
	}

	merged := append([]model.RefinedSentence(nil), results[0]...)
	for i := 1; i < len(chunks); i++ {
		overlapStart := chunks[i].Start

		for len(merged) > 0 {
			last := merged[len(merged)-1]
			if last.OriginalSegmentIndices[0] >= overlapStart {
				merged = merged[:len(merged)-1]
				continue
			}
			break
		}

		watermark := overlapStart - 1
		if len(merged) > 0 {
			tail := merged[len(merged)-1].OriginalSegmentIndices
			if last := tail[len(tail)-1]; last > watermark {
				watermark = last
			}
		}

		for _, s := range results[i] {
			first := s.OriginalSegmentIndices[0]
			last := s.OriginalSegmentIndices[len(s.OriginalSegmentIndices)-1]
			switch {
			case last <= watermark:
				// Consumed entirely by a bridging sentence.
			case first > watermark:
				merged = append(merged, s)
			default:
				merged = append(merged, trimSentence(s, watermark, segments))
			}
		}
	}

	next := chunks[0].Start
	for _, s := range merged {
		for _, idx := range s.OriginalSegmentIndices {
			if idx != next {
				return nil, apperrors.Newf(apperrors.CodeParse,
					"merged sentences skip segment index %d", next)
			}
			next++
		}
	}
	if want := chunks[len(chunks)-1].End; next != want {
		return nil, apperrors.Newf(apperrors.CodeParse,
			"merged sentences cover segment indices up to %d, want %d", next, want)
	}

	return merged, nil
}

// trimSentence drops the indices a bridging sentence already consumed and
// moves the start time to the first index that survives. The text stays
// whole; only the index accounting and timing shift.
func trimSentence(s model.RefinedSentence, watermark int, segments []model.TranscriptSegment) model.RefinedSentence {
	kept := s.OriginalSegmentIndices
	for len(kept) > 0 && kept[0] <= watermark {
		kept = kept[1:]
	}

	trimmed := s
	trimmed.OriginalSegmentIndices = append([]int(nil), kept...)
	trimmed.StartSeconds = segments[kept[0]].StartSeconds
	return trimmed
}
