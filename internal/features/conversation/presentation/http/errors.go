package http

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	openai "github.com/sashabaranov/go-openai"

	analyticsdomain "coldcall-sim/backend/internal/features/analytics/domain"
	"coldcall-sim/backend/internal/features/conversation/application"
	"coldcall-sim/backend/internal/features/conversation/infrastructure"
	personadomain "coldcall-sim/backend/internal/features/persona/domain"
	"coldcall-sim/backend/internal/retry"
)

// respondError writes err as a JSON error body.
func (h *ConversationHandler) respondError(c *gin.Context, err error) {
	c.JSON(h.errorBody(c, err))
}

// errorBody maps err for the client and logs the detail the client does not see.
func (h *ConversationHandler) errorBody(c *gin.Context, err error) (int, gin.H) {
	status, body := errorResponse(err)
	if status == http.StatusInternalServerError {
		h.log.WithError(err).WithField("path", c.FullPath()).Error("request failed")
	}
	return status, body
}

// errorResponse maps an error onto a status code and a user-visible body.
// Unclassified errors get a generic message.
func errorResponse(err error) (int, gin.H) {
	var (
		incomplete *personadomain.IncompletePersonaError
		transient  *retry.TransientFailure
		parseErr   *analyticsdomain.ParseError
		apiErr     *openai.APIError
	)
	switch {
	case errors.As(err, &incomplete):
		return http.StatusBadRequest, gin.H{
			"error":   "incomplete_persona",
			"message": incomplete.Error(),
			"missing": incomplete.Missing,
			"invalid": incomplete.Invalid,
		}
	case errors.Is(err, infrastructure.ErrMissingCredential):
		return http.StatusUnauthorized, gin.H{"error": "missing_credential", "message": infrastructure.ErrMissingCredential.Error()}
	case errors.As(err, &transient):
		return http.StatusBadGateway, gin.H{
			"error":   "transient_failure",
			"message": fmt.Sprintf("The language model could not be reached after %d attempts. Please try again.", transient.Attempts),
		}
	case errors.As(err, &parseErr):
		return http.StatusUnprocessableEntity, gin.H{"error": "parse_error", "message": parseErr.Error(), "field": parseErr.Field}
	case errors.Is(err, application.ErrSessionNotFound):
		return http.StatusNotFound, gin.H{"error": "not_found", "message": "Your session was not found"}
	case errors.Is(err, application.ErrAnalyticsReady), errors.Is(err, application.ErrStaleConversation):
		return http.StatusConflict, gin.H{"error": "conflict", "message": err.Error()}
	case errors.Is(err, application.ErrEmptyReply):
		return http.StatusBadGateway, gin.H{"error": "empty_reply", "message": "The home-owner did not answer. Please try again."}
	case errors.Is(err, application.ErrEmptyMessage):
		return http.StatusBadRequest, gin.H{"error": "invalid_request", "message": err.Error()}
	case errors.As(err, &apiErr):
		return http.StatusBadGateway, gin.H{"error": "remote_error", "message": "The language model rejected the request: " + apiErr.Message}
	default:
		return http.StatusInternalServerError, gin.H{"error": "internal", "message": "Something went wrong. Please try again."}
	}
}
