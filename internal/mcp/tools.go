package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"threadqa/internal/rag"
)

// RegisterTools registers the question answering tools with the server.
func RegisterTools(server *mcpserver.MCPServer, engine rag.Engine, searcher Searcher) *Handlers {
	handlers := NewHandlers(engine, searcher)

	server.AddTool(mcp.Tool{
		Name:        "ask_subthreads",
		Description: "Answer a question from archived discussion threads. Returns the answer, the permalinks used as sources, and an error field when the language model was unreachable.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"question": map[string]interface{}{
					"type":        "string",
					"description": "The question to answer",
				},
				"image": map[string]interface{}{
					"type":        "string",
					"description": "Optional base64-encoded screenshot; its text is appended to the question",
				},
				"debug": map[string]interface{}{
					"type":        "boolean",
					"description": "Include retrieval details in the result",
					"default":     false,
				},
			},
			Required: []string{"question"},
		},
	}, handlers.AskSubthreads)

	server.AddTool(mcp.Tool{
		Name:        "search_subthreads",
		Description: "Rank archived discussion threads against a query without calling a language model.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"query": map[string]interface{}{
					"type":        "string",
					"description": "Search query",
				},
				"top_k": map[string]interface{}{
					"type":        "number",
					"description": "Maximum number of results to return (default: 5)",
					"default":     rag.DefaultTopK,
				},
			},
			Required: []string{"query"},
		},
	}, handlers.SearchSubthreads)

	return handlers
}
