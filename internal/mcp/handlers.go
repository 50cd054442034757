package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"threadqa/internal/contextutil"
	"threadqa/internal/rag"
)

// Searcher ranks subthreads against a query.
type Searcher interface {
	Retrieve(ctx context.Context, query string, topK int) ([]rag.Result, error)
}

// Handlers contains the handler functions for the MCP tools.
type Handlers struct {
	engine   rag.Engine
	searcher Searcher
}

// NewHandlers creates tool handlers backed by engine and searcher.
func NewHandlers(engine rag.Engine, searcher Searcher) *Handlers {
	return &Handlers{engine: engine, searcher: searcher}
}

// SearchHit is one ranked subthread in a search_subthreads result.
type SearchHit struct {
	Rank   int     `json:"rank"`
	ID     string  `json:"id"`
	Title  string  `json:"title,omitempty"`
	Source string  `json:"source,omitempty"`
	Score  float64 `json:"score"`
	Text   string  `json:"text"`
}

// AskSubthreads handles the ask_subthreads tool.
func (h *Handlers) AskSubthreads(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	question, err := request.RequireString("question")
	if err != nil {
		return mcp.NewToolResultError("question argument is required and must be a string"), nil
	}

	resp, err := h.engine.Ask(ctx, rag.AskRequest{
		Question: question,
		Image:    request.GetString("image", ""),
		Debug:    request.GetBool("debug", false),
	})
	if err != nil {
		if errors.Is(err, rag.ErrEmptyQuery) {
			return mcp.NewToolResultError("question must not be empty"), nil
		}
		contextutil.LoggerFromContext(ctx).ErrorContext(ctx, "ask_subthreads failed", "error", err)
		return mcp.NewToolResultError(fmt.Sprintf("failed to answer question: %v", err)), nil
	}
	if resp.Links == nil {
		resp.Links = []string{}
	}

	return jsonResult(resp)
}

// SearchSubthreads handles the search_subthreads tool.
func (h *Handlers) SearchSubthreads(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := request.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError("query argument is required and must be a string"), nil
	}
	topK := request.GetInt("top_k", rag.DefaultTopK)

	results, err := h.searcher.Retrieve(ctx, query, topK)
	if err != nil {
		switch {
		case errors.Is(err, rag.ErrEmptyQuery):
			return mcp.NewToolResultError("query must not be empty"), nil
		case errors.Is(err, rag.ErrInvalidTopK):
			return mcp.NewToolResultError("top_k must be at least 1"), nil
		}
		return mcp.NewToolResultError(fmt.Sprintf("search failed: %v", err)), nil
	}

	hits := make([]SearchHit, 0, len(results))
	for _, r := range results {
		hits = append(hits, SearchHit{
			Rank:   r.Rank,
			ID:     r.Subthread.ID,
			Title:  r.Subthread.Title,
			Source: r.Subthread.Source,
			Score:  rag.FiniteScore(r.Score),
			Text:   r.Subthread.Text,
		})
	}

	return jsonResult(map[string]any{
		"query":   query,
		"results": hits,
	})
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to encode result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}
