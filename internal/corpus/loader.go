package corpus

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// fileRecord is one entry of a corpus JSON file. Both "text" and "content"
// are accepted for the body, and both "url" and "source" for the permalink.
type fileRecord struct {
	ID         flexibleID `json:"id"`
	TopicTitle string     `json:"topic_title"`
	Title      string     `json:"title"`
	Text       string     `json:"text"`
	Content    string     `json:"content"`
	URL        string     `json:"url"`
	Source     string     `json:"source"`
	CreatedAt  string     `json:"created_at"`
	LikeCount  int        `json:"like_count"`
	Embedding  []float32  `json:"embedding"`
}

// flexibleID accepts both JSON strings and numbers.
type flexibleID string

func (f *flexibleID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = flexibleID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("id must be a string or number: %w", err)
	}
	*f = flexibleID(n.String())
	return nil
}

// LoadFile reads a corpus JSON file (an array of records) and returns the
// subthreads in file order. Records without an id get their 1-based
// position as id. Markdown bodies are flattened to plain text.
func LoadFile(path string) ([]Subthread, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read corpus file: %w", err)
	}
	subthreads, err := Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to parse corpus file %s: %w", path, err)
	}
	return subthreads, nil
}

// Parse decodes corpus JSON.
func Parse(raw []byte) ([]Subthread, error) {
	var records []fileRecord
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, err
	}

	subthreads := make([]Subthread, 0, len(records))
	for i, rec := range records {
		id := strings.TrimSpace(string(rec.ID))
		if id == "" {
			id = strconv.Itoa(i + 1)
		}

		body := rec.Text
		if body == "" {
			body = rec.Content
		}
		title := rec.TopicTitle
		if title == "" {
			title = rec.Title
		}
		source := rec.URL
		if source == "" {
			source = rec.Source
		}

		createdAt, err := parseTimestamp(rec.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}

		subthreads = append(subthreads, Subthread{
			ID:        id,
			Title:     strings.TrimSpace(title),
			Text:      PlainText(body),
			Source:    strings.TrimSpace(source),
			CreatedAt: createdAt,
			Likes:     rec.LikeCount,
			Embedding: rec.Embedding,
		})
	}
	return subthreads, nil
}

func parseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02 15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid created_at %q", s)
}
