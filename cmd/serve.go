package cmd

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"coldcall-sim/backend/internal/config"
	config_http "coldcall-sim/backend/internal/features/config/presentation/http"
	"coldcall-sim/backend/internal/features/conversation/application"
	conversation_http "coldcall-sim/backend/internal/features/conversation/presentation/http"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		appConfigService, cfg, err := loadConfig()
		if err != nil {
			return err
		}

		r := newRouter(appConfigService, newConversationService(cfg, logger))
		logger.WithField("address", cfg.Server.Address).Info("starting server")
		return r.Run(cfg.Server.Address)
	},
}

func newRouter(appConfigService config.AppConfigService, conversationService application.ConversationService) *gin.Engine {
	r := gin.Default()

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
		})
	})

	api := r.Group("/api")
	conversation_http.NewConversationHandler(conversationService, logger).RegisterRoutes(api)
	config_http.NewAppConfigHandler(appConfigService, logger).RegisterRoutes(api)

	return r
}
