package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	analyticsapp "coldcall-sim/backend/internal/features/analytics/application"
	"coldcall-sim/backend/internal/features/conversation/application"
	"coldcall-sim/backend/internal/features/conversation/domain"
	personadomain "coldcall-sim/backend/internal/features/persona/domain"
)

// ConversationHandler holds the conversation service.
type ConversationHandler struct {
	conversationService application.ConversationService
	log                 logrus.FieldLogger
}

// NewConversationHandler creates a new ConversationHandler.
func NewConversationHandler(conversationService application.ConversationService, log logrus.FieldLogger) *ConversationHandler {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &ConversationHandler{
		conversationService: conversationService,
		log:                 log.WithField("component", "conversation-http"),
	}
}

// RegisterRoutes mounts the persona and conversation endpoints under r.
func (h *ConversationHandler) RegisterRoutes(r gin.IRouter) {
	r.GET("/persona/options", h.PersonaOptionsHandler)

	conversations := r.Group("/conversations")
	{
		conversations.POST("", h.StartConversationHandler)
		conversations.GET("/:id", h.GetConversationHandler)
		conversations.DELETE("/:id", h.DeleteConversationHandler)
		conversations.POST("/:id/messages", h.SendMessageHandler)
		conversations.POST("/:id/analytics", h.AnalyticsHandler)
		conversations.POST("/:id/reset", h.ResetHandler)
	}
}

// PersonaOptionsHandler returns the preset persona choices.
func (h *ConversationHandler) PersonaOptionsHandler(c *gin.Context) {
	c.JSON(http.StatusOK, personadomain.Options())
}

// StartConversationHandler handles the request to start a new conversation.
func (h *ConversationHandler) StartConversationHandler(c *gin.Context) {
	var req domain.StartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request", "message": err.Error()})
		return
	}

	session, err := h.conversationService.Start(c.Request.Context(), &req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, session)
}

// GetConversationHandler returns the current state of a conversation.
func (h *ConversationHandler) GetConversationHandler(c *gin.Context) {
	session, err := h.conversationService.Get(c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, session)
}

// DeleteConversationHandler drops a conversation.
func (h *ConversationHandler) DeleteConversationHandler(c *gin.Context) {
	if err := h.conversationService.Delete(c.Param("id")); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// SendMessageHandler streams the owner's reply as server-sent events: one
// "token" event per fragment, then "done" with the full reply. Event data is
// always JSON, since a client strips a leading space from raw data and fragments
// usually begin with one. Failures before the first fragment are plain JSON
// errors; later ones arrive as an "error" event.
func (h *ConversationHandler) SendMessageHandler(c *gin.Context) {
	var req domain.MessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request", "message": err.Error()})
		return
	}

	streaming := false
	begin := func() {
		if streaming {
			return
		}
		streaming = true
		c.Writer.Header().Set("Cache-Control", "no-cache")
		c.Writer.Header().Set("Connection", "keep-alive")
		c.Status(http.StatusOK)
	}

	session, reply, err := h.conversationService.SendMessage(c.Request.Context(), c.Param("id"), req.Message, func(fragment string) {
		begin()
		c.SSEvent("token", gin.H{"text": fragment})
		c.Writer.Flush()
	})
	if err != nil {
		if !streaming {
			h.respondError(c, err)
			return
		}
		_, body := h.errorBody(c, err)
		c.SSEvent("error", body)
		c.Writer.Flush()
		return
	}

	begin()
	c.SSEvent("done", gin.H{"reply": reply, "session": session})
	c.Writer.Flush()
}

// AnalyticsHandler analyses the conversation and returns the result with a Markdown report.
func (h *ConversationHandler) AnalyticsHandler(c *gin.Context) {
	session, err := h.conversationService.RequestAnalytics(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, domain.AnalyticsResponse{
		Session:   session,
		Analytics: session.Analytics,
		Report:    analyticsapp.FormatReport(session.Analytics),
	})
}

// ResetHandler starts a new conversation, clearing transcript and analytics.
func (h *ConversationHandler) ResetHandler(c *gin.Context) {
	session, err := h.conversationService.Reset(c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, session)
}
