package application

import (
	"fmt"

	openai "github.com/sashabaranov/go-openai"
	"github.com/sashabaranov/go-openai/jsonschema"

	"coldcall-sim/backend/internal/features/analytics/domain"
)

const analyzeFunctionName = "analyze_call"

// analyticsSchema is derived once from the CallAnalytics struct tags.
var analyticsSchema = mustSchema()

func mustSchema() *jsonschema.Definition {
	schema, err := jsonschema.GenerateSchemaForType(domain.CallAnalytics{})
	if err != nil {
		panic(fmt.Sprintf("failed to generate analytics schema: %v", err))
	}
	return schema
}

// AnalyzeTool is the function the model is forced to call.
func AnalyzeTool() openai.Tool {
	return openai.Tool{
		Type: openai.ToolTypeFunction,
		Function: &openai.FunctionDefinition{
			Name:        analyzeFunctionName,
			Description: "Analyze a call conversation between a real-estate agent and home-owner",
			Parameters:  analyticsSchema,
		},
	}
}

// RequiredFields lists the fields every analytics reply must carry, in schema order.
func RequiredFields() []string {
	return append([]string(nil), analyticsSchema.Required...)
}
