package application

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	openai "github.com/sashabaranov/go-openai"
	"github.com/sirupsen/logrus"

	"coldcall-sim/backend/internal/features/analytics/domain"
	conversationdomain "coldcall-sim/backend/internal/features/conversation/domain"
	"coldcall-sim/backend/internal/features/conversation/infrastructure"
	"coldcall-sim/backend/internal/retry"
)

const analystInstructions = "You are an expert AI that analyzes call conversations between a real-estate agent and a home-owner, " +
	"where the agent is trying to set up an appointment with the owner to discuss details about the property. " +
	"Evaluate whether the agent succeeded, extract interesting insights and propose innovative and creative suggestions " +
	"for improvement. You are being used by the agent."

// noConversation stands in for an empty transcript.
const noConversation = "(no conversation took place)"

// DefaultModel is used when no analysis model is configured.
const DefaultModel = openai.GPT4

// CompletionClient is the part of *openai.Client the analyzer needs.
type CompletionClient interface {
	CreateChatCompletion(ctx context.Context, request openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// Options tune the analysis request.
type Options struct {
	Model  string
	Policy retry.Policy
}

// Analyzer scores finished conversations. It keeps no state between calls.
type Analyzer struct {
	client CompletionClient
	model  string
	policy retry.Policy
	log    logrus.FieldLogger
}

// NewAnalyzer creates a new Analyzer.
func NewAnalyzer(client CompletionClient, opts Options, log logrus.FieldLogger) *Analyzer {
	if opts.Model == "" {
		opts.Model = DefaultModel
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Analyzer{
		client: client,
		model:  opts.Model,
		policy: opts.Policy,
		log:    log.WithField("component", "call-analyzer"),
	}
}

// Analyze sends the transcript to the model once (plus retries on failure)
// and parses the forced analyze_call arguments.
func (a *Analyzer) Analyze(ctx context.Context, transcript []conversationdomain.Turn) (*domain.CallAnalytics, error) {
	conversation := RenderTranscript(transcript)
	if conversation == "" {
		// The API rejects a user message without content.
		conversation = noConversation
	}
	req := a.request(conversation)
	a.log.WithField("turns", len(transcript)).Info("generating conversation analytics")

	resp, err := retry.Do(ctx, a.policy, a.log, func(ctx context.Context) (openai.ChatCompletionResponse, error) {
		resp, err := a.client.CreateChatCompletion(ctx, req)
		if rejected(err) {
			return resp, retry.Permanent(err)
		}
		return resp, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to analyze conversation: %w", err)
	}

	analytics, err := ParseAnalytics(resp)
	if err != nil {
		a.log.WithError(err).Warn("analytics reply rejected")
		return nil, err
	}
	return analytics, nil
}

// rejected reports a client error the API will repeat on every attempt.
// Rate limiting and request timeouts are still worth retrying.
func rejected(err error) bool {
	var apiErr *openai.APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	status := apiErr.HTTPStatusCode
	return status >= 400 && status < 500 &&
		status != http.StatusTooManyRequests && status != http.StatusRequestTimeout
}

func (a *Analyzer) request(conversation string) openai.ChatCompletionRequest {
	return openai.ChatCompletionRequest{
		Model: a.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: analystInstructions},
			{Role: openai.ChatMessageRoleUser, Content: conversation},
		},
		Temperature: infrastructure.Temperature(0),
		Tools:       []openai.Tool{AnalyzeTool()},
		ToolChoice: openai.ToolChoice{
			Type:     openai.ToolTypeFunction,
			Function: openai.ToolFunction{Name: analyzeFunctionName},
		},
	}
}

// ParseAnalytics extracts CallAnalytics from a completion. Every field of the
// schema must be present; nothing is defaulted.
func ParseAnalytics(resp openai.ChatCompletionResponse) (*domain.CallAnalytics, error) {
	if len(resp.Choices) == 0 {
		return nil, &domain.ParseError{Reason: "reply has no choices"}
	}
	args, ok := functionArguments(resp.Choices[0].Message)
	if !ok {
		return nil, &domain.ParseError{Reason: "reply carries no " + analyzeFunctionName + " arguments"}
	}
	return parseArguments(args)
}

func functionArguments(msg openai.ChatCompletionMessage) (string, bool) {
	for _, call := range msg.ToolCalls {
		if call.Function.Name == analyzeFunctionName {
			return call.Function.Arguments, true
		}
	}
	if msg.FunctionCall != nil && msg.FunctionCall.Name == analyzeFunctionName {
		return msg.FunctionCall.Arguments, true
	}
	return "", false
}

func parseArguments(raw string) (*domain.CallAnalytics, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(raw), &fields); err != nil || fields == nil {
		reason := "arguments are not a JSON object"
		if err != nil {
			reason += ": " + err.Error()
		}
		return nil, &domain.ParseError{Reason: reason, Raw: raw}
	}
	for _, name := range analyticsSchema.Required {
		value, ok := fields[name]
		if !ok || string(value) == "null" {
			return nil, &domain.ParseError{Field: name, Reason: "missing", Raw: raw}
		}
	}

	var analytics domain.CallAnalytics
	if err := json.Unmarshal([]byte(raw), &analytics); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return nil, &domain.ParseError{Field: typeErr.Field, Reason: "expected " + typeErr.Type.String(), Raw: raw}
		}
		return nil, &domain.ParseError{Reason: err.Error(), Raw: raw}
	}
	return &analytics, nil
}
