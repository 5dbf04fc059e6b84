package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/outreachkit/prospector/internal/ai"
	"github.com/outreachkit/prospector/internal/utils"
	"go.uber.org/zap"
)

type contentGenerator interface {
	GenerateContent(ctx context.Context, prompt string) (string, error)
}

// Scorer asks Gemini for a JSON object {"reasoning": ..., "score": 0-100} and
// parses it into an ai.Assessment. Responses wrapped in fences or prose are
// tolerated; a failed call or malformed response is retried up to maxRetries
// times (once by default).
type Scorer struct {
	generator  contentGenerator
	maxRetries int
	maxLogLen  int
	logger     *zap.Logger

	// RetryDelay is the pause before each retry attempt.
	RetryDelay time.Duration
}

const (
	defaultMaxLogLength = 200
	defaultMaxRetries   = 1
	defaultRetryDelay   = time.Second
)

// NewScorer creates a Scorer over the provided generator. A non-positive
// maxRetries falls back to the default single retry.
func NewScorer(generator contentGenerator, maxRetries, maxLogLength int, logger *zap.Logger) *Scorer {
	if maxRetries <= 0 {
		maxRetries = defaultMaxRetries
	}
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Scorer{
		generator:  generator,
		maxRetries: maxRetries,
		maxLogLen:  maxLogLength,
		logger:     logger,
		RetryDelay: defaultRetryDelay,
	}
}

// Score implements ai.Scorer.
func (s *Scorer) Score(ctx context.Context, prompt string) (*ai.Assessment, error) {
	s.logger.Debug("gemini score request",
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("prompt_preview", utils.TruncateForLog(prompt, s.maxLogLen)),
	)

	var lastErr error
	for attempt := 0; attempt <= s.maxRetries; attempt++ {
		if attempt > 0 {
			if err := utils.WaitFor(ctx, s.RetryDelay); err != nil {
				return nil, err
			}
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		raw, err := s.generator.GenerateContent(ctx, prompt)
		if err != nil {
			lastErr = err
			continue
		}

		s.logger.Debug("gemini score response",
			zap.Int("attempt", attempt+1),
			zap.String("response_preview", utils.TruncateForLog(raw, s.maxLogLen)),
		)

		assessment, err := parseAssessment(raw)
		if err != nil {
			lastErr = err
			s.logger.Warn("unparseable score response",
				zap.Int("attempt", attempt+1),
				zap.Error(err),
			)
			continue
		}

		assessment.Raw = raw
		return assessment, nil
	}

	return nil, lastErr
}

func parseAssessment(raw string) (*ai.Assessment, error) {
	cleaned := ExtractJSONObject(raw)

	var data map[string]any
	if err := json.Unmarshal([]byte(cleaned), &data); err != nil {
		return nil, fmt.Errorf("parse score response: %w", err)
	}

	score := coerceFloat(data["score"])
	if math.IsNaN(score) {
		return nil, fmt.Errorf("score response is missing a numeric score field")
	}
	score = math.Min(100, math.Max(0, score))

	reasoning := coerceString(data["reasoning"])
	if reasoning == "" {
		reasoning = coerceString(data["reason"])
	}

	return &ai.Assessment{
		Score:     score,
		Reasoning: reasoning,
	}, nil
}

// ExtractJSONObject pulls the first JSON object out of a model response that
// may wrap it in code fences or surrounding prose.
func ExtractJSONObject(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```json")
		raw = strings.TrimPrefix(raw, "```")
		raw = strings.TrimSpace(raw)
		if idx := strings.LastIndex(raw, "```"); idx != -1 {
			raw = raw[:idx]
		}
	}
	raw = strings.Trim(raw, "`")
	raw = strings.TrimSpace(raw)

	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start != -1 && end > start {
		raw = raw[start : end+1]
	}

	return strings.TrimSpace(raw)
}

func coerceFloat(v any) float64 {
	switch val := v.(type) {
	case float64:
		return val
	case int:
		return float64(val)
	case string:
		trimmed := strings.TrimSpace(val)
		if trimmed == "" {
			return math.NaN()
		}
		f, err := strconv.ParseFloat(trimmed, 64)
		if err != nil {
			return math.NaN()
		}
		return f
	default:
		return math.NaN()
	}
}

func coerceString(v any) string {
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val)
	case fmt.Stringer:
		return strings.TrimSpace(val.String())
	default:
		if v == nil {
			return ""
		}
		bytes, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(bytes)
	}
}
