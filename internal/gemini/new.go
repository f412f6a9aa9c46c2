package gemini

import (
	"github.com/nguyentantai21042004/chapter-digest/internal/generation"
	"github.com/nguyentantai21042004/chapter-digest/internal/logger"
)

const DefaultModel = "gemini-2.5-flash"

type implSummarizer struct {
	model  string
	logger logger.Logger
}

// New creates a Summarizer backed by the Gemini API. The key is supplied per
// call so a replaced credential takes effect on the next request.
func New(model string, log logger.Logger) generation.Summarizer {
	if model == "" {
		model = DefaultModel
	}
	return &implSummarizer{
		model:  model,
		logger: log,
	}
}
