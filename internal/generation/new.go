package generation

import (
	"github.com/nguyentantai21042004/chapter-digest/internal/logger"
)

// New creates an idle Lifecycle.
func New(summarizer Summarizer, creds CredentialSource, log logger.Logger) *Lifecycle {
	return &Lifecycle{
		summarizer: summarizer,
		creds:      creds,
		logger:     log,
	}
}
