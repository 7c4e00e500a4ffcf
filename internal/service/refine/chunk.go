package refine

import (
	apperrors "github.com/team-mirai-volunteer/video-processor-sub003/internal/errors"
)

const (
	// DefaultChunkSize is the number of segments sent to the model per request.
	DefaultChunkSize = 500
	// DefaultOverlap is the number of segments shared between adjacent chunks
	// so sentences spanning a chunk boundary can be reconciled.
	DefaultOverlap = 100
)

// Chunk is one window over the transcript's segment list. Start and End are
// absolute segment indices; End is exclusive.
type Chunk struct {
	Index int
	Total int
	Start int
	End   int
}

// SplitIntoChunks divides segmentCount segments into overlapping windows of
// at most chunkSize segments. Each window after the first starts overlap
// segments before the previous window's end. A transcript that fits in a
// single window produces exactly one chunk with no overlap.
func SplitIntoChunks(segmentCount, chunkSize, overlap int) ([]Chunk, error) {
	if chunkSize <= 0 {
		return nil, apperrors.Newf(apperrors.CodeValidation, "chunk size must be positive, got %d", chunkSize)
	}
	if overlap < 0 || overlap >= chunkSize {
		return nil, apperrors.Newf(apperrors.CodeValidation, "overlap must be smaller than chunk size %d, got %d", chunkSize, overlap)
	}
	if segmentCount <= 0 {
		return []Chunk{}, nil
	}
	if segmentCount <= chunkSize {
		return []Chunk{{Index: 0, Total: 1, Start: 0, End: segmentCount}}, nil
	}

	stride := chunkSize - overlap
	total := 1 + (segmentCount-chunkSize+stride-1)/stride
	chunks := make([]Chunk, 0, total)
	for i := 0; i < total; i++ {
		start := i * stride
		end := start + chunkSize
		if end > segmentCount {
			end = segmentCount
		}
		chunks = append(chunks, Chunk{Index: i, Total: total, Start: start, End: end})
	}
	return chunks, nil
}
