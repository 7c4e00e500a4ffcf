package refine

import (
	"encoding/json"
	"strconv"
	"strings"

	apperrors "github.com/team-mirai-volunteer/video-processor-sub003/internal/errors"
	"github.com/team-mirai-volunteer/video-processor-sub003/internal/model"
	"github.com/team-mirai-volunteer/video-processor-sub003/internal/service/textgen"
)

// chunkResponse mirrors the JSON contract the prompt asks the model for.
type chunkResponse struct {
	Sentences []chunkSentence `json:"sentences"`
}

type chunkSentence struct {
	Text           string `json:"text"`
	SegmentIndices []int  `json:"segment_indices"`
}

// ParseChunkResponse validates one model response against the chunk's window
// and converts it into refined sentences, with timestamps taken from the
// referenced segments. The response must assign every index in
// [chunk.Start, chunk.End) to exactly one sentence, in ascending order.
func ParseChunkResponse(raw string, chunk Chunk, segments []model.TranscriptSegment) ([]model.RefinedSentence, error) {
	payload, err := textgen.ExtractJSONPayload(raw)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeParse,
			sentenceErrPrefix(chunk)+"response contains no JSON")
	}

	var resp chunkResponse
	if err := json.Unmarshal([]byte(payload), &resp); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeParse,
			sentenceErrPrefix(chunk)+"malformed sentence JSON")
	}
	if len(resp.Sentences) == 0 {
		return nil, apperrors.New(apperrors.CodeParse,
			sentenceErrPrefix(chunk)+"response contains no sentences")
	}

	sentences := make([]model.RefinedSentence, 0, len(resp.Sentences))
	next := chunk.Start
	for i, s := range resp.Sentences {
		text := strings.TrimSpace(s.Text)
		if text == "" {
			return nil, apperrors.Newf(apperrors.CodeParse,
				sentenceErrPrefix(chunk)+"sentence %d has empty text", i)
		}
		if len(s.SegmentIndices) == 0 {
			return nil, apperrors.Newf(apperrors.CodeParse,
				sentenceErrPrefix(chunk)+"sentence %d references no segments", i)
		}
		for _, idx := range s.SegmentIndices {
			if idx != next {
				return nil, apperrors.Newf(apperrors.CodeParse,
					sentenceErrPrefix(chunk)+"sentence %d expected segment index %d, got %d", i, next, idx)
			}
			next++
		}

		first := s.SegmentIndices[0]
		last := s.SegmentIndices[len(s.SegmentIndices)-1]
		sentences = append(sentences, model.RefinedSentence{
			Text:                   ensureSentenceEnd(text),
			StartSeconds:           segments[first].StartSeconds,
			EndSeconds:             segments[last].EndSeconds,
			OriginalSegmentIndices: append([]int(nil), s.SegmentIndices...),
		})
	}
	if next != chunk.End {
		return nil, apperrors.Newf(apperrors.CodeParse,
			sentenceErrPrefix(chunk)+"segment indices %d-%d left unassigned", next, chunk.End-1)
	}

	return sentences, nil
}

func sentenceErrPrefix(chunk Chunk) string {
	return "chunk " + strconv.Itoa(chunk.Index+1) + "/" + strconv.Itoa(chunk.Total) + ": "
}

// ensureSentenceEnd appends a Japanese full stop when the model dropped the
// closing punctuation. Closing quotes and brackets after a terminator are
// fine as they are, e.g. 「…です。」.
func ensureSentenceEnd(text string) string {
	runes := []rune(text)
	i := len(runes) - 1
	for i > 0 && strings.ContainsRune("」』）)】》”’\"'", runes[i]) {
		i--
	}
	if strings.ContainsRune("。!?.!?", runes[i]) {
		return text
	}
	return text + "。"
}
