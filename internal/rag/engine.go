package rag

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_rag.go -package=mocks threadqa/internal/rag Engine,ChatModel,TextExtractor,QueryEncoder

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"threadqa/internal/contextutil"
	"threadqa/internal/llm"
)

const (
	// DefaultTopK is the number of subthreads retrieved per question.
	DefaultTopK = 5
	// DefaultTemperature is the sampling temperature sent to the model.
	DefaultTemperature = float32(0.7)

	systemPrompt = "You are a helpful TA. Answer clearly and cite relevant sources if provided."

	noResultsAnswer    = "I couldn't find any relevant discussions to answer this question."
	degradedAnswer     = "Language model request failed."
	extractedTextLabel = "\n\n[Extracted from image]:\n"
)

// Engine answers questions from the subthread corpus.
type Engine interface {
	// Ask answers a question by retrieving relevant subthreads and generating an answer.
	Ask(ctx context.Context, req AskRequest) (AskResponse, error)
}

// ChatModel generates a completion for a conversation.
type ChatModel interface {
	ChatWithMessages(ctx context.Context, messages []llm.Message, params llm.ChatParams) (string, error)
}

// TextExtractor pulls text out of an image.
type TextExtractor interface {
	ExtractText(ctx context.Context, image []byte) (string, error)
}

// EngineConfig holds generation settings for the engine.
type EngineConfig struct {
	// TopK is the number of subthreads to retrieve. Defaults to DefaultTopK.
	TopK int
	// Temperature is the sampling temperature. Defaults to DefaultTemperature.
	Temperature float32
	// Model overrides the chat client's default model when set.
	Model string
}

// ragEngine implements the Engine interface.
type ragEngine struct {
	retriever *Retriever
	builder   *ContextBuilder
	model     ChatModel
	extractor TextExtractor
	cfg       EngineConfig
}

// NewEngine creates a new engine. extractor may be nil, in which case image
// attachments are ignored.
func NewEngine(retriever *Retriever, builder *ContextBuilder, model ChatModel, extractor TextExtractor, cfg EngineConfig) Engine {
	if cfg.TopK < 1 {
		cfg.TopK = DefaultTopK
	}
	if cfg.Temperature == 0 {
		cfg.Temperature = DefaultTemperature
	}
	if builder == nil {
		builder = NewContextBuilder(0, TruncateSkip)
	}
	return &ragEngine{
		retriever: retriever,
		builder:   builder,
		model:     model,
		extractor: extractor,
		cfg:       cfg,
	}
}

// Ask answers a question. The only errors returned are input errors
// (ErrEmptyQuery) and retriever misconfiguration; a failed model call
// yields a StatusDegraded response instead.
func (e *ragEngine) Ask(ctx context.Context, req AskRequest) (AskResponse, error) {
	logger := contextutil.LoggerFromContext(ctx)
	start := time.Now()
	var timings phaseTimings

	question := strings.TrimSpace(req.Question)
	if question == "" {
		return AskResponse{}, ErrEmptyQuery
	}

	logger.InfoContext(ctx, "question received",
		"question_length", len(question),
		"has_image", req.Image != "",
		"top_k", e.cfg.TopK,
	)

	ocrStart := time.Now()
	extracted := e.extractImageText(ctx, req.Image)
	timings.ocr = time.Since(ocrStart)
	if extracted != "" {
		question += extractedTextLabel + extracted
	}

	retrievalStart := time.Now()
	results, err := e.retriever.Retrieve(ctx, question, e.cfg.TopK)
	if err != nil {
		logger.ErrorContext(ctx, "retrieval failed", "error", err)
		return AskResponse{}, fmt.Errorf("failed to retrieve subthreads: %w", err)
	}
	contextText, sources := e.builder.Build(results)
	timings.retrieval = time.Since(retrievalStart)

	logger.InfoContext(ctx, "context assembled",
		"results", len(results),
		"context_chars", len([]rune(contextText)),
		"sources", len(sources),
	)

	if len(results) == 0 {
		logger.InfoContext(ctx, "no relevant subthreads found")
		resp := AskResponse{
			Status: StatusOK,
			Answer: noResultsAnswer,
			Links:  []string{},
		}
		if req.Debug {
			timings.total = time.Since(start)
			resp.Debug = buildDebugInfo(question, extracted, results, contextText, timings)
		}
		return resp, nil
	}

	messages := []llm.Message{
		{Role: llm.RoleSystem, Content: systemPrompt},
		{Role: llm.RoleUser, Content: buildUserPrompt(contextText, question)},
	}

	generationStart := time.Now()
	answer, err := e.model.ChatWithMessages(ctx, messages, llm.ChatParams{
		Model:       e.cfg.Model,
		Temperature: e.cfg.Temperature,
	})
	timings.generation = time.Since(generationStart)

	var resp AskResponse
	if err != nil {
		logger.ErrorContext(ctx, "language model request failed", "error", err)
		resp = AskResponse{
			Status: StatusDegraded,
			Answer: degradedAnswer,
			Links:  sources,
			Error:  err.Error(),
		}
	} else {
		resp = AskResponse{
			Status: StatusOK,
			Answer: strings.TrimSpace(answer) + sourcesFooter(sources),
			Links:  sources,
		}
	}

	timings.total = time.Since(start)
	if req.Debug {
		resp.Debug = buildDebugInfo(question, extracted, results, contextText, timings)
	}

	logger.InfoContext(ctx, "question answered",
		"status", resp.Status,
		"answer_length", len(resp.Answer),
		"links", len(resp.Links),
		"total_ms", timings.total.Milliseconds(),
	)

	return resp, nil
}

// extractImageText decodes and OCRs an attached image. Failures are logged
// and yield "".
func (e *ragEngine) extractImageText(ctx context.Context, image string) string {
	if image == "" || e.extractor == nil {
		return ""
	}
	logger := contextutil.LoggerFromContext(ctx)

	data, err := DecodeImage(image)
	if err != nil {
		logger.WarnContext(ctx, "failed to decode image", "error", err)
		return ""
	}

	text, err := e.extractor.ExtractText(ctx, data)
	if err != nil {
		logger.WarnContext(ctx, "failed to extract text from image", "error", err)
		return ""
	}
	text = strings.TrimSpace(text)
	logger.DebugContext(ctx, "extracted text from image", "chars", len([]rune(text)))
	return text
}

// ErrEmptyImagePayload is returned by DecodeImage when there is no base64 payload.
var ErrEmptyImagePayload = errors.New("empty image payload")

// DecodeImage decodes a base64 image, accepting a data URL prefix and
// unpadded input.
func DecodeImage(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "data:") {
		if i := strings.Index(s, ","); i >= 0 {
			s = s[i+1:]
		}
	}
	if s == "" {
		return nil, ErrEmptyImagePayload
	}

	data, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		data, err = base64.RawStdEncoding.DecodeString(strings.TrimRight(s, "="))
		if err != nil {
			return nil, fmt.Errorf("invalid base64 image: %w", err)
		}
	}
	return data, nil
}

func buildUserPrompt(contextText, question string) string {
	var b strings.Builder
	b.WriteString("Use the context below to answer the question.\n\n")
	b.WriteString("Context:\n")
	b.WriteString(contextText)
	b.WriteString("\n\nQuestion: ")
	b.WriteString(question)
	b.WriteString("\nAnswer:")
	return b.String()
}

func sourcesFooter(sources []string) string {
	if len(sources) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("\n\nSources:")
	for _, src := range sources {
		b.WriteString("\n- ")
		b.WriteString(src)
	}
	return b.String()
}
