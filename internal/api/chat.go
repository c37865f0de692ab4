package api

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"edubot/internal/auth"
	"edubot/internal/models"
	"edubot/internal/service/assistant"
)

type chatRequest struct {
	UserInput *string `json:"user_input"`
}

func (h *Handler) getResponse(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.UserInput == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	// a client disconnect must not abort the model call mid-flight
	ctx, cancel := context.WithTimeout(context.WithoutCancel(c.Request.Context()), h.modelTimeout)
	defer cancel()

	decision := h.classifier.Classify(ctx, *req.UserInput)
	h.metrics.classifications.WithLabelValues(string(decision.Kind)).Inc()
	reply := h.responder.Generate(ctx, decision)
	if decision.Kind == assistant.ExternalYes && reply == assistant.ApologyResponse {
		h.metrics.modelFailures.WithLabelValues("complete").Inc()
	}
	if decision.Kind == assistant.ExternalError {
		h.metrics.modelFailures.WithLabelValues("classify").Inc()
	}

	if session, ok := auth.SessionFromContext(c); ok {
		h.logger.DebugContext(ctx, "chat reply", "user_id", session.UserID, "decision", decision.Kind)
	}
	c.JSON(http.StatusOK, models.ChatExchange{
		UserInput: *req.UserInput,
		Response:  reply,
		Timestamp: h.now().Format(models.TimestampLayout),
	})
}
