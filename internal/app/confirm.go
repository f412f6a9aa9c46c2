package app

// Prompts shown before destructive or interrupting actions.
const (
	PromptStopSpeaking = "Are you sure you want to stop reading aloud?"
	PromptChangeVoice  = "Changing the voice will stop the current speech. Continue?"
	PromptDelete       = "Are you sure you want to delete this summary? This action cannot be undone."
	PromptClearAll     = "Are you sure you want to clear all summaries? This action cannot be undone."
)

// Confirmer asks the user a yes/no question.
type Confirmer interface {
	Confirm(prompt string) bool
}

type ConfirmFunc func(prompt string) bool

func (f ConfirmFunc) Confirm(prompt string) bool {
	return f(prompt)
}

// AlwaysConfirm answers yes without asking.
var AlwaysConfirm Confirmer = ConfirmFunc(func(string) bool { return true })
