// Package prompt assembles bounded generation requests from user input and
// extracted file content, and decides text-only vs. multimodal routing.
package prompt

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"studypilot/internal/extract"
)

// Per-call-site character bounds for file-derived text. These are a fixed
// external contract; each call site enforces exactly one bound.
const (
	ChatFileBound      = 15000
	QuizSourceBound    = 20000
	QuizReferenceBound = 5000
	SummaryBound       = 30000
)

// DefaultChatContent is substituted when a chat turn carries neither user
// text nor extracted file text. The assembler never sends an empty prompt.
const DefaultChatContent = "Analyze these files"

// FileContext is one attached file's contribution to a chat turn.
type FileContext struct {
	Text  string
	Image *extract.InlineImage
}

// Request is an assembled generation request. A non-empty Images slice routes
// the request to the multimodal generation path.
type Request struct {
	Prompt string
	Images []extract.InlineImage
}

// Multimodal reports whether any attached file produced image data.
func (r Request) Multimodal() bool {
	return len(r.Images) > 0
}

// Truncate caps s at bound bytes, backing the cut off to a rune boundary so
// the result is always valid UTF-8. Prompts travel as protobuf strings and
// titles land in text columns; neither tolerates a split rune.
func Truncate(s string, bound int) string {
	if len(s) <= bound {
		return s
	}
	for bound > 0 && !utf8.RuneStart(s[bound]) {
		bound--
	}
	return s[:bound]
}

// Chat combines the user's message with a numbered content block per attached
// file that produced text, and collects inline images for multimodal routing.
func Chat(userText string, files []FileContext) Request {
	var fileContext strings.Builder
	var images []extract.InlineImage

	n := 0
	for _, f := range files {
		if f.Text != "" {
			n++
			fmt.Fprintf(&fileContext, "\n\n[Content from file %d]\n%s\n", n, Truncate(f.Text, ChatFileBound))
		}
		if f.Image != nil {
			images = append(images, *f.Image)
		}
	}

	content := userText
	if content == "" && fileContext.Len() == 0 {
		content = DefaultChatContent
	}

	prompt := content
	if fileContext.Len() > 0 {
		if content == "" {
			content = "Please analyze the following files:"
		}
		prompt = content + "\n" + fileContext.String()
	}

	return Request{Prompt: prompt, Images: images}
}

// Summary wraps a single source document, bounded to SummaryBound, in the
// summarization instruction.
func Summary(docText string) string {
	return fmt.Sprintf(
		"Please provide a comprehensive summary of the following document:\n\n%s",
		Truncate(docText, SummaryBound),
	)
}

// Quiz builds the quiz-generation instruction around the bounded source text.
// When referenceText is non-empty it is included as a bounded
// previous-year-questions block and the model is asked to align question
// style to it. The instruction mandates a strict JSON array response.
func Quiz(sourceText, referenceText string) string {
	pyqContext := ""
	styleHint := ""
	if referenceText != "" {
		pyqContext = fmt.Sprintf(
			"\n\nPrevious Year Questions for reference:\n%s",
			Truncate(referenceText, QuizReferenceBound),
		)
		styleHint = "Use the PYQ patterns as reference for question styles."
	}

	return fmt.Sprintf(`Based on the following content, generate 10 quiz questions with multiple choice answers. %s%s

Content:
%s

Return a JSON array with this exact structure:
[
  {
    "question": "question text",
    "type": "multiple-choice",
    "options": ["option1", "option2", "option3", "option4"],
    "correctAnswer": "option1",
    "explanation": "explanation text"
  }
]

Only return the JSON array, no additional text.`,
		styleHint,
		pyqContext,
		Truncate(sourceText, QuizSourceBound),
	)
}
