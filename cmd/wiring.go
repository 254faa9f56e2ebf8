package cmd

import (
	"os"

	"github.com/sirupsen/logrus"

	analyticsapp "coldcall-sim/backend/internal/features/analytics/application"
	"coldcall-sim/backend/internal/features/config/domain"
	"coldcall-sim/backend/internal/features/conversation/application"
	"coldcall-sim/backend/internal/features/conversation/infrastructure"
)

// clientConfig builds the OpenAI client settings for apiKey. OPENAI_BASE_URL
// points the client at a proxy or compatible server.
func clientConfig(apiKey string) infrastructure.ClientConfig {
	return infrastructure.ClientConfig{
		APIKey:  apiKey,
		BaseURL: os.Getenv("OPENAI_BASE_URL"),
	}
}

func streamerFactory(cfg *domain.AppConfig, log logrus.FieldLogger) application.StreamerFactory {
	return func(apiKey string) (infrastructure.ReplyStreamer, error) {
		client, err := infrastructure.NewOpenAIClient(clientConfig(apiKey))
		if err != nil {
			return nil, err
		}
		return infrastructure.NewReplyStreamer(client, cfg.ChatModel, cfg.Temperature, log), nil
	}
}

func analyzerFactory(cfg *domain.AppConfig, log logrus.FieldLogger) application.AnalyzerFactory {
	return func(apiKey string) (application.CallAnalyzer, error) {
		client, err := infrastructure.NewOpenAIClient(clientConfig(apiKey))
		if err != nil {
			return nil, err
		}
		return analyticsapp.NewAnalyzer(client, analyticsapp.Options{
			Model:  cfg.AnalysisModel,
			Policy: cfg.Retry.Policy(),
		}, log), nil
	}
}

// newConversationService wires the OpenAI-backed streamer and analyzer into a
// conversation service. Sessions without their own key use OPENAI_API_KEY.
func newConversationService(cfg *domain.AppConfig, log logrus.FieldLogger) application.ConversationService {
	return application.NewConversationService(
		streamerFactory(cfg, log),
		analyzerFactory(cfg, log),
		infrastructure.DefaultAPIKey(),
		log,
	)
}
