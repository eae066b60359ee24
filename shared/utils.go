package shared

import (
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/sashabaranov/go-openai"
)

func ConvertToMcpTool(def openai.FunctionDefinition) (mcp.Tool, error) {
	data, err := json.Marshal(def.Parameters)
	if err != nil {
		return mcp.Tool{}, err
	}

	tool := mcp.NewToolWithRawSchema(def.Name, def.Description, data)
	return tool, nil
}

func ConvertToFunctionDefinition(tool mcp.Tool) openai.FunctionDefinition {
	def := openai.FunctionDefinition{
		Name:        tool.Name,
		Description: tool.Description,
	}
	if len(tool.RawInputSchema) != 0 {
		def.Parameters = tool.RawInputSchema
		return def
	}
	data, err := json.Marshal(tool.InputSchema)
	if err != nil {
		data = []byte(`{"type": "object", "properties": {}}`)
	}
	def.Parameters = json.RawMessage(data)
	return def
}
