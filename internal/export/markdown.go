// Package export renders summaries for reading outside the app.
package export

import (
	"fmt"
	"strings"

	"github.com/nguyentantai21042004/chapter-digest/internal/summary"
)

const (
	TakeawaysHeading = "Key Takeaways"
	QuotesHeading    = "Memorable Quotes"
)

// Markdown renders s with the same sections as ToDocx.
func Markdown(s summary.Summary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", s.ChapterTitle)

	fmt.Fprintf(&b, "## %s\n\n", TakeawaysHeading)
	for i, t := range s.Takeaways {
		fmt.Fprintf(&b, "%d. %s\n", i+1, t)
	}
	if len(s.Takeaways) > 0 {
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "## %s\n\n", QuotesHeading)
	for i, q := range s.Quotes {
		fmt.Fprintf(&b, "%d. > %s\n", i+1, quote(q))
	}
	return b.String()
}

func quote(q string) string {
	q = strings.Trim(q, "\"“” ")
	return "“" + q + "”"
}
