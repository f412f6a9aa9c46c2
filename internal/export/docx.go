package export

import (
	"fmt"

	"github.com/gomutex/godocx"
	"github.com/gomutex/godocx/docx"

	"github.com/nguyentantai21042004/chapter-digest/internal/summary"
)

const (
	fontName    = "Times New Roman"
	fontSize    = 13
	titleSize   = 16
	sectionSize = 14
)

// ToDocx writes s to outputPath as a Word document: the chapter title, a
// numbered "Key Takeaways" list and a "Memorable Quotes" section.
func ToDocx(s summary.Summary, outputPath string) error {
	doc, err := godocx.NewDocument()
	if err != nil {
		return fmt.Errorf("create document: %w", err)
	}

	addStyledRun(doc.AddParagraph(""), s.ChapterTitle, true, titleSize)

	addStyledRun(doc.AddParagraph(""), TakeawaysHeading, true, sectionSize)
	for i, t := range s.Takeaways {
		addStyledRun(doc.AddParagraph(""), fmt.Sprintf("%d. %s", i+1, t), false, fontSize)
	}

	addStyledRun(doc.AddParagraph(""), QuotesHeading, true, sectionSize)
	for _, q := range s.Quotes {
		addStyledRun(doc.AddParagraph(""), quote(q), false, fontSize)
	}

	if err := doc.SaveTo(outputPath); err != nil {
		return fmt.Errorf("save %s: %w", outputPath, err)
	}
	return nil
}

func addStyledRun(p *docx.Paragraph, text string, bold bool, size uint64) {
	run := p.AddText(text).Font(fontName).Size(size).Color("000000")
	if bold {
		run.Bold(true)
	}
}
