package aitools

import (
	"github.com/anthropics/anthropic-sdk-go"
	"github.com/openai/openai-go"
)

// OpenAITools converts a manifest into Chat Completions tool params.
func OpenAITools(m *Manifest) []openai.ChatCompletionToolParam {
	tools := make([]openai.ChatCompletionToolParam, 0, m.Len())
	for _, entry := range m.Entries {
		tools = append(tools, openai.ChatCompletionToolParam{
			Type: "function",
			Function: openai.FunctionDefinitionParam{
				Name:        entry.Name,
				Description: openai.String(entry.Description),
				Parameters:  openai.FunctionParameters(entry.Parameters),
			},
		})
	}
	return tools
}

// AnthropicTools converts a manifest into Messages API tool params. The
// Anthropic input schema carries only properties and required fields.
func AnthropicTools(m *Manifest) []anthropic.ToolUnionParam {
	tools := make([]anthropic.ToolUnionParam, 0, m.Len())
	for _, entry := range m.Entries {
		properties, ok := entry.Parameters["properties"]
		if !ok {
			properties = map[string]any{}
		}

		toolParam := anthropic.ToolParam{
			Name:        entry.Name,
			Description: anthropic.String(entry.Description),
			InputSchema: anthropic.ToolInputSchemaParam{
				Properties: properties,
			},
		}
		toolParam.InputSchema.Required = requiredFields(entry.Parameters["required"])

		tools = append(tools, anthropic.ToolUnionParam{OfTool: &toolParam})
	}
	return tools
}

func requiredFields(v any) []string {
	switch t := v.(type) {
	case []string:
		return append([]string(nil), t...)
	case []any:
		out := make([]string, 0, len(t))
		for _, item := range t {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}
