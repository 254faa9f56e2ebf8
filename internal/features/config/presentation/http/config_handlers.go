package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"coldcall-sim/backend/internal/config"
	"coldcall-sim/backend/internal/features/config/domain"
)

// AppConfigHandler serves the app config over HTTP.
type AppConfigHandler struct {
	appConfigService config.AppConfigService
	log              logrus.FieldLogger
}

// NewAppConfigHandler creates a new AppConfigHandler.
func NewAppConfigHandler(appConfigService config.AppConfigService, log logrus.FieldLogger) *AppConfigHandler {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &AppConfigHandler{
		appConfigService: appConfigService,
		log:              log.WithField("component", "config-http"),
	}
}

// RegisterRoutes mounts GET and POST /config/app under r.
func (h *AppConfigHandler) RegisterRoutes(r gin.IRouter) {
	group := r.Group("/config")
	group.GET("/app", h.GetAppConfigHandler)
	group.POST("/app", h.SaveAppConfigHandler)
}

// GetAppConfigHandler returns the effective configuration: defaults, file and environment merged.
func (h *AppConfigHandler) GetAppConfigHandler(c *gin.Context) {
	appConfig, err := h.appConfigService.LoadAppConfig()
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, appConfig)
}

// SaveAppConfigHandler replaces the config file and echoes what was stored.
// Saved values take effect the next time the server starts.
func (h *AppConfigHandler) SaveAppConfigHandler(c *gin.Context) {
	var appConfig domain.AppConfig
	if err := c.ShouldBindJSON(&appConfig); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request", "message": err.Error()})
		return
	}
	if err := h.appConfigService.SaveAppConfig(&appConfig); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "App config saved; restart the server to apply it", "config": appConfig})
}

func (h *AppConfigHandler) fail(c *gin.Context, err error) {
	if errors.Is(err, domain.ErrInvalidConfig) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_config", "message": err.Error(), "fields": invalidFields(err)})
		return
	}
	h.log.WithError(err).WithField("path", c.FullPath()).Error("app config request failed")
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal", "message": "The app config could not be accessed."})
}

// invalidFields lists the dotted paths of the fields that failed validation, e.g. "AppConfig.Retry.MaxAttempts".
func invalidFields(err error) []string {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return nil
	}
	fields := make([]string, 0, len(validationErrors))
	for _, e := range validationErrors {
		fields = append(fields, e.StructNamespace())
	}
	return fields
}
