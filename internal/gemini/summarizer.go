// Package gemini summarizes chapters with Google's Gemini models.
package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/nguyentantai21042004/chapter-digest/internal/summary"
)

var ErrMissingKey = errors.New("Gemini API key is not provided.")

const summaryPrompt = `You are an expert literary analyst. Read the following book chapter and summarize it. Extract the key takeaways as a list of bullet points and identify the most memorable quotes. Provide an inferred title for the chapter. Your response must be in JSON format matching the provided schema. Here is the chapter text:

---

%s`

var summarySchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"chapterTitle": {
			Type:        genai.TypeString,
			Description: "A concise, inferred title for the chapter based on its content.",
		},
		"takeaways": {
			Type:        genai.TypeArray,
			Items:       &genai.Schema{Type: genai.TypeString},
			Description: "Bullet points summarizing the main ideas and takeaways of the chapter.",
		},
		"quotes": {
			Type:        genai.TypeArray,
			Items:       &genai.Schema{Type: genai.TypeString},
			Description: "A list of memorable and impactful quotes from the chapter text.",
		},
	},
	Required:         []string{"chapterTitle", "takeaways", "quotes"},
	PropertyOrdering: []string{"chapterTitle", "takeaways", "quotes"},
}

func (s *implSummarizer) Summarize(ctx context.Context, chapterText, apiKey string) (summary.Draft, error) {
	if strings.TrimSpace(apiKey) == "" {
		return summary.Draft{}, ErrMissingKey
	}

	text, err := s.callGemini(ctx, chapterText, apiKey)
	if err != nil {
		return summary.Draft{}, fmt.Errorf("failed to summarize chapter: %w", err)
	}

	draft, err := parseDraft(text)
	if err != nil {
		s.logger.Error(ctx, "Unparseable Gemini response (%d bytes): %v", len(text), err)
		return summary.Draft{}, fmt.Errorf("failed to summarize chapter: %w", err)
	}
	return draft, nil
}

func (s *implSummarizer) callGemini(ctx context.Context, chapterText, apiKey string) (string, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return "", fmt.Errorf("create client: %w", err)
	}

	result, err := client.Models.GenerateContent(ctx, s.model, genai.Text(buildPrompt(chapterText)), &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   summarySchema,
	})
	if err != nil {
		return "", err
	}

	if result == nil || len(result.Candidates) == 0 || result.Candidates[0].Content == nil {
		return "", errors.New("empty response from Gemini")
	}

	var sb strings.Builder
	for _, part := range result.Candidates[0].Content.Parts {
		if part != nil && part.Text != "" {
			sb.WriteString(part.Text)
		}
	}
	return sb.String(), nil
}

func buildPrompt(chapterText string) string {
	return fmt.Sprintf(summaryPrompt, chapterText)
}

type response struct {
	ChapterTitle string   `json:"chapterTitle"`
	Takeaways    []string `json:"takeaways"`
	Quotes       []string `json:"quotes"`
}

// parseDraft decodes the model's JSON reply. Models occasionally wrap the
// object in a markdown fence even in JSON mode.
func parseDraft(text string) (summary.Draft, error) {
	text = stripFence(strings.TrimSpace(text))
	if text == "" {
		return summary.Draft{}, errors.New("empty response from Gemini")
	}

	var r response
	if err := json.Unmarshal([]byte(text), &r); err != nil {
		return summary.Draft{}, fmt.Errorf("decode response: %w", err)
	}

	title := strings.TrimSpace(r.ChapterTitle)
	if title == "" {
		return summary.Draft{}, errors.New("response has no chapter title")
	}

	return summary.Draft{
		ChapterTitle: title,
		Takeaways:    nonBlank(r.Takeaways),
		Quotes:       nonBlank(r.Quotes),
	}, nil
}

func stripFence(s string) string {
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

func nonBlank(lines []string) []string {
	out := make([]string, 0, len(lines))
	for _, l := range lines {
		if l = strings.TrimSpace(l); l != "" {
			out = append(out, l)
		}
	}
	return out
}
