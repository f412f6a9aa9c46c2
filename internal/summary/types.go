// Package summary holds the chapter summary record and the bounded,
// most-recent-first collection of them.
package summary

// Summary is one persisted chapter summary. Takeaways and Quotes are ordered.
type Summary struct {
	ID           string   `json:"id"`
	ChapterTitle string   `json:"chapterTitle"`
	Takeaways    []string `json:"takeaways"`
	Quotes       []string `json:"quotes"`
}

// Draft is a summary that has not been assigned an id yet.
type Draft struct {
	ChapterTitle string   `json:"chapterTitle"`
	Takeaways    []string `json:"takeaways"`
	Quotes       []string `json:"quotes"`
}

func (s Summary) clone() Summary {
	s.Takeaways = cloneLines(s.Takeaways)
	s.Quotes = cloneLines(s.Quotes)
	return s
}

func cloneLines(in []string) []string {
	out := make([]string, len(in))
	copy(out, in)
	return out
}
