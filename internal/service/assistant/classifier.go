package assistant

import (
	"context"
	"log/slog"
	"strings"
)

// Model is the narrow slice of the language model the chatbot needs.
type Model interface {
	Classify(ctx context.Context, text string) (bool, error)
	Complete(ctx context.Context, prompt string) (string, error)
}

type DecisionKind string

const (
	Found         DecisionKind = "found"
	ExternalYes   DecisionKind = "external_yes"
	ExternalNo    DecisionKind = "external_no"
	ExternalError DecisionKind = "external_error"
)

// Decision is the outcome of classifying one chat input.
type Decision struct {
	Kind DecisionKind
	// Input is the lowercased text that was classified.
	Input    string
	Category string
	Topic    string
	Answer   string
}

// Classifier decides whether chat input is educational.
type Classifier struct {
	prompts PromptTable
	model   Model
	logger  *slog.Logger
}

func NewClassifier(prompts PromptTable, model Model, logger *slog.Logger) *Classifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Classifier{prompts: prompts, model: model, logger: logger}
}

// Classify checks the prompt table first and only asks the model when nothing
// matches. Model failures are logged and treated as "not educational".
func (c *Classifier) Classify(ctx context.Context, input string) Decision {
	input = strings.ToLower(input)
	if category, topic, ok := c.prompts.Lookup(input); ok {
		return Decision{
			Kind:     Found,
			Input:    input,
			Category: category.Name,
			Topic:    topic.Name,
			Answer:   topic.Answer,
		}
	}

	educational, err := c.model.Classify(ctx, input)
	switch {
	case err != nil:
		c.logger.ErrorContext(ctx, "check educational topic failed", "error", err)
		return Decision{Kind: ExternalError, Input: input}
	case educational:
		return Decision{Kind: ExternalYes, Input: input}
	default:
		return Decision{Kind: ExternalNo, Input: input}
	}
}
