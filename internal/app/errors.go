package app

import "errors"

var (
	ErrEmptyChapter = errors.New("Chapter text cannot be empty. Please paste or dictate some content before summarizing.")
	ErrNotFound     = errors.New("summary not found")
	ErrAmbiguousID  = errors.New("id prefix matches more than one summary")
	ErrUnknownVoice = errors.New("voice not found")
	ErrUnknownTheme = errors.New("theme must be light or dark")
)
