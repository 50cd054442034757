package rag

// Status reports whether an answer came from the language model.
type Status string

const (
	// StatusOK means the answer was produced normally.
	StatusOK Status = "ok"
	// StatusDegraded means the language model call failed; the response
	// still carries the sources gathered for the question.
	StatusDegraded Status = "degraded"
)

// AskRequest represents a question about the subthread corpus.
type AskRequest struct {
	// Question is the user's question to answer.
	Question string `json:"question"`
	// Image is an optional base64-encoded image whose text is appended to the question.
	// A data URL prefix ("data:image/png;base64,") is accepted.
	Image string `json:"image,omitempty"`
	// Debug enables debug mode, returning detailed retrieval information.
	Debug bool `json:"debug,omitempty"`
}

// AskResponse represents the outcome of a question.
type AskResponse struct {
	// Status is StatusOK or StatusDegraded.
	Status Status `json:"status"`
	// Answer is the generated answer, or a fixed message when degraded.
	Answer string `json:"answer"`
	// Links are the sources that contributed to the context, deduplicated.
	Links []string `json:"links"`
	// Error describes the model failure when Status is StatusDegraded.
	Error string `json:"error,omitempty"`
	// Debug contains debug information when debug mode is enabled.
	Debug *DebugInfo `json:"debug,omitempty"`
}

// DebugInfo contains detailed retrieval information for debugging and evaluation.
type DebugInfo struct {
	// Query is the question after image text was appended.
	Query string `json:"query"`
	// ExtractedTextChars is the size of the text extracted from the image, if any.
	ExtractedTextChars int `json:"extracted_text_chars"`
	// RetrievedResults contains all retrieved subthreads with scores and ranks.
	RetrievedResults []RetrievedResult `json:"retrieved_results"`
	// ContextChars is the size of the assembled context in characters.
	ContextChars int `json:"context_chars"`
	// Latency contains timing breakdown for each phase of the pipeline.
	Latency *LatencyBreakdown `json:"latency,omitempty"`
}

// RetrievedResult represents a retrieved subthread with scoring information.
type RetrievedResult struct {
	ID     string  `json:"id"`
	Title  string  `json:"title,omitempty"`
	Source string  `json:"source,omitempty"`
	Score  float64 `json:"score"`
	// Rank is the rank of this subthread in the retrieval results (1-based).
	Rank int `json:"rank"`
	// Text is the subthread body, shortened for display.
	Text string `json:"text"`
}

// LatencyBreakdown contains timing information in milliseconds.
type LatencyBreakdown struct {
	OCRMs        int64 `json:"ocr_ms"`
	RetrievalMs  int64 `json:"retrieval_ms"`
	GenerationMs int64 `json:"generation_ms"`
	TotalMs      int64 `json:"total_ms"`
}
