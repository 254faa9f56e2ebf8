package infrastructure

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	openai "github.com/sashabaranov/go-openai"
	"github.com/sirupsen/logrus"
)

// StreamClient is the part of *openai.Client used for live replies.
type StreamClient interface {
	CreateChatCompletionStream(ctx context.Context, request openai.ChatCompletionRequest) (*openai.ChatCompletionStream, error)
}

type openAIReplyStreamer struct {
	client      StreamClient
	model       string
	temperature float32
	log         logrus.FieldLogger
}

// NewReplyStreamer returns a ReplyStreamer backed by streaming chat completions.
func NewReplyStreamer(client StreamClient, model string, temperature float32, log logrus.FieldLogger) ReplyStreamer {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &openAIReplyStreamer{
		client:      client,
		model:       model,
		temperature: temperature,
		log:         log.WithField("component", "reply-streamer"),
	}
}

func (s *openAIReplyStreamer) Stream(ctx context.Context, prompt PromptContext, onToken func(string)) (string, error) {
	req := openai.ChatCompletionRequest{
		Model:       s.model,
		Messages:    ChatMessages(prompt),
		Temperature: Temperature(s.temperature),
		Stream:      true,
	}
	s.log.WithField("turns", len(prompt.History)).Debug("requesting owner reply")

	stream, err := s.client.CreateChatCompletionStream(ctx, req)
	if err != nil {
		return "", fmt.Errorf("failed to start chat stream: %w", err)
	}
	defer stream.Close()

	var reply strings.Builder
	for {
		chunk, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", fmt.Errorf("failed to receive chat stream: %w", err)
		}
		if len(chunk.Choices) == 0 {
			continue
		}
		fragment := chunk.Choices[0].Delta.Content
		if fragment == "" {
			continue
		}
		reply.WriteString(fragment)
		if onToken != nil {
			onToken(fragment)
		}
	}
	return reply.String(), nil
}
