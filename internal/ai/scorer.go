package ai

import "context"

// Assessment is one model judgement of a candidate: a 0-100 score with the
// model's reasoning and the raw response kept for debugging.
type Assessment struct {
	Score     float64
	Reasoning string
	Raw       string
}

// Scorer turns a free-text prompt demanding a JSON object into an Assessment.
type Scorer interface {
	Score(ctx context.Context, prompt string) (*Assessment, error)
}
