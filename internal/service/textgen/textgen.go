package textgen

import (
	"context"
	"strings"

	apperrors "github.com/team-mirai-volunteer/video-processor-sub003/internal/errors"
)

// Generator defines text generation operations for the pipeline
type Generator interface {
	// Generate sends a prompt to the model and returns its text response
	Generate(ctx context.Context, prompt string) (string, error)
}

// ExtractJSONPayload locates the JSON document in a model response. Models
// often wrap JSON in markdown code fences or surround it with prose; this
// strips both and returns the bare object or array.
func ExtractJSONPayload(raw string) (string, error) {
	t := strings.TrimSpace(raw)
	if t == "" {
		return "", apperrors.New(apperrors.CodeParse, "model response is empty")
	}

	// Strip markdown code fences.
	if strings.HasPrefix(t, "```") {
		// Remove opening fence line.
		if i := strings.Index(t, "\n"); i >= 0 {
			t = t[i+1:]
		}
		// Remove trailing fence.
		if j := strings.LastIndex(t, "```"); j >= 0 {
			t = t[:j]
		}
		t = strings.TrimSpace(t)
	}

	// Best-effort: take the outermost JSON object or array.
	objStart := strings.Index(t, "{")
	arrStart := strings.Index(t, "[")
	switch {
	case arrStart >= 0 && (objStart < 0 || arrStart < objStart):
		if end := strings.LastIndex(t, "]"); end > arrStart {
			return t[arrStart : end+1], nil
		}
	case objStart >= 0:
		if end := strings.LastIndex(t, "}"); end > objStart {
			return t[objStart : end+1], nil
		}
	}

	return "", apperrors.Newf(apperrors.CodeParse, "could not locate JSON payload in model response: %q", truncate(t, 200))
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
