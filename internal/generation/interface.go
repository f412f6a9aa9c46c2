package generation

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_summarizer.go -package=mocks github.com/nguyentantai21042004/chapter-digest/internal/generation Summarizer

import (
	"context"

	"github.com/nguyentantai21042004/chapter-digest/internal/summary"
)

// Summarizer turns chapter text into a summary draft using apiKey.
type Summarizer interface {
	Summarize(ctx context.Context, chapterText, apiKey string) (summary.Draft, error)
}

// CredentialSource supplies the current API key. It is read on every submit so
// the key can be replaced at runtime.
type CredentialSource interface {
	APIKey() (string, bool)
}
