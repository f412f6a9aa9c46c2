package summary

import "strings"

// Narration is the text read aloud for s: title, then takeaways, then quotes.
func Narration(s Summary) string {
	lines := make([]string, 0, 3+len(s.Takeaways)+len(s.Quotes))
	lines = append(lines, "Chapter: "+s.ChapterTitle+".")
	lines = append(lines, "Key Takeaways.")
	lines = append(lines, s.Takeaways...)
	lines = append(lines, "Memorable Quotes.")
	lines = append(lines, s.Quotes...)
	return strings.Join(lines, "\n")
}

// ParseLines splits edited multi-line text into list items, one per
// non-blank line.
func ParseLines(text string) []string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			out = append(out, line)
		}
	}
	return out
}
