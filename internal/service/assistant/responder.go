package assistant

import (
	"context"
	"fmt"
	"log/slog"
)

const (
	answerPromptFormat = "Provide a concise educational answer (under 200 words) to: %s"

	ApologyResponse = "Sorry, I couldn't process your educational question at the moment."
	RefusalResponse = "This is an educational chatbot. Your question doesn't appear to be related to education."
)

// Responder turns a classification decision into the chatbot's reply.
type Responder struct {
	model  Model
	logger *slog.Logger
}

func NewResponder(model Model, logger *slog.Logger) *Responder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Responder{model: model, logger: logger}
}

// Generate never fails: model errors degrade to a fixed apology.
func (r *Responder) Generate(ctx context.Context, decision Decision) string {
	switch decision.Kind {
	case Found:
		return decision.Answer
	case ExternalYes:
		answer, err := r.model.Complete(ctx, fmt.Sprintf(answerPromptFormat, decision.Input))
		if err != nil {
			r.logger.ErrorContext(ctx, "generate response failed", "error", err)
			return ApologyResponse
		}
		return answer
	default:
		return RefusalResponse
	}
}
