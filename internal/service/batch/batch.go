package batch

import (
	"context"
	"errors"

	"github.com/team-mirai-volunteer/video-processor-sub003/internal/logging"
)

// Summary reports the outcome of one batch run. Succeeded, Failed and
// Skipped always add up to the number of items the batch started with.
type Summary struct {
	Succeeded int
	Failed    int
	Skipped   int
	Errors    map[int]string
}

// Total returns the number of items the batch was started with.
func (s Summary) Total() int {
	return s.Succeeded + s.Failed + s.Skipped
}

type skipError struct {
	err error
}

func (e *skipError) Error() string {
	return "skipped: " + e.err.Error()
}

func (e *skipError) Unwrap() error {
	return e.err
}

// Skip marks an item as skipped rather than failed. It is meant for
// validation rejections raised before the item caused any side effect.
func Skip(err error) error {
	return &skipError{err: err}
}

// ForEach runs fn over items sequentially, isolating failures: an error on
// one item is logged and recorded but never aborts the remaining items.
// Cancellation is the exception; once ctx is done, every unprocessed item is
// counted as failed with the context error.
func ForEach[T any](ctx context.Context, logger logging.Logger, name string, items []T, fn func(ctx context.Context, index int, item T) error) Summary {
	summary := Summary{Errors: make(map[int]string)}

	for i, item := range items {
		if err := ctx.Err(); err != nil {
			for j := i; j < len(items); j++ {
				summary.Failed++
				summary.Errors[j] = err.Error()
			}
			logger.Warn().
				Err(err).
				Str("batch", name).
				Int("remaining", len(items)-i).
				Msg("batch aborted by context")
			break
		}

		err := fn(ctx, i, item)
		if err == nil {
			summary.Succeeded++
			continue
		}

		var skip *skipError
		if errors.As(err, &skip) {
			summary.Skipped++
			logger.Info().
				Str("batch", name).
				Int("index", i).
				Str("reason", skip.err.Error()).
				Msg("batch item skipped")
			continue
		}

		summary.Failed++
		summary.Errors[i] = err.Error()
		logger.Error().
			Err(err).
			Str("batch", name).
			Int("index", i).
			Msg("batch item failed")
	}

	logger.Info().
		Str("batch", name).
		Int("succeeded", summary.Succeeded).
		Int("failed", summary.Failed).
		Int("skipped", summary.Skipped).
		Msg("batch finished")

	return summary
}
