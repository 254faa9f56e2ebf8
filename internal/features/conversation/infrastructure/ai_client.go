package infrastructure

import (
	"context"

	openai "github.com/sashabaranov/go-openai"

	"coldcall-sim/backend/internal/features/conversation/domain"
)

// PromptContext is everything the model sees for one owner reply.
type PromptContext struct {
	SystemPrompt string
	History      []domain.Turn // prior turns, oldest first
	Input        string        // the agent's new message
}

// ReplyStreamer produces the owner's next reply, reporting fragments as they arrive.
type ReplyStreamer interface {
	// Stream calls onToken for each fragment in order and returns the full reply.
	Stream(ctx context.Context, prompt PromptContext, onToken func(fragment string)) (string, error)
}

// ChatMessages converts a prompt context into the wire message list.
func ChatMessages(prompt PromptContext) []openai.ChatCompletionMessage {
	msgs := make([]openai.ChatCompletionMessage, 0, len(prompt.History)+2)
	msgs = append(msgs, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleSystem, Content: prompt.SystemPrompt})
	for _, turn := range prompt.History {
		role := openai.ChatMessageRoleAssistant
		if turn.Role == domain.RoleAgent {
			role = openai.ChatMessageRoleUser
		}
		msgs = append(msgs, openai.ChatCompletionMessage{Role: role, Content: turn.Content})
	}
	return append(msgs, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: prompt.Input})
}
