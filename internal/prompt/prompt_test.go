package prompt

import (
	"strings"
	"testing"
	"unicode/utf8"

	"studypilot/internal/extract"

	"github.com/stretchr/testify/require"
)

func TestTruncate_CapsAtBound(t *testing.T) {
	long := strings.Repeat("a", 100)
	require.Len(t, Truncate(long, 40), 40)
	require.Equal(t, "short", Truncate("short", 40))
}

func TestTruncate_BacksOffToRuneBoundary(t *testing.T) {
	// 39 ASCII bytes followed by three 3-byte runes puts every cut in the
	// 40..47 range inside a rune.
	s := strings.Repeat("a", 39) + "日本語"
	for bound := 40; bound < len(s); bound++ {
		got := Truncate(s, bound)
		require.True(t, utf8.ValidString(got), "bound %d produced invalid UTF-8", bound)
		require.LessOrEqual(t, len(got), bound)
	}
	require.Equal(t, strings.Repeat("a", 39), Truncate(s, 40))
	require.Equal(t, strings.Repeat("a", 39)+"日", Truncate(s, 42))
}

func TestChat_TruncatedPromptIsValidUTF8(t *testing.T) {
	// The bound lands inside the first multi-byte rune.
	text := strings.Repeat("a", ChatFileBound-1) + "日本語"
	req := Chat("summarize", []FileContext{{Text: text}})
	require.True(t, utf8.ValidString(req.Prompt))
}

func TestSummary_TruncatedPromptIsValidUTF8(t *testing.T) {
	text := strings.Repeat("a", SummaryBound-1) + "日本語"
	require.True(t, utf8.ValidString(Summary(text)))
}

func TestQuiz_TruncatedPromptIsValidUTF8(t *testing.T) {
	source := strings.Repeat("a", QuizSourceBound-1) + "日本語"
	reference := strings.Repeat("b", QuizReferenceBound-1) + "日本語"
	require.True(t, utf8.ValidString(Quiz(source, reference)))
}

func TestChat_NumbersFileBlocks(t *testing.T) {
	req := Chat("summarize", []FileContext{
		{Text: "first document"},
		{Text: "second document"},
	})

	require.Contains(t, req.Prompt, "summarize")
	require.Contains(t, req.Prompt, "[Content from file 1]\nfirst document")
	require.Contains(t, req.Prompt, "[Content from file 2]\nsecond document")
	require.False(t, req.Multimodal())
}

func TestChat_SkipsEmptyTextInNumbering(t *testing.T) {
	req := Chat("look at this", []FileContext{
		{Image: &extract.InlineImage{Base64: "aGk=", MimeType: "image/png"}},
		{Text: "the only text"},
	})

	require.Contains(t, req.Prompt, "[Content from file 1]\nthe only text")
	require.NotContains(t, req.Prompt, "[Content from file 2]")
	require.True(t, req.Multimodal())
	require.Len(t, req.Images, 1)
}

func TestChat_BoundsEachFileContribution(t *testing.T) {
	long := strings.Repeat("x", ChatFileBound+500)
	req := Chat("", []FileContext{{Text: long}})

	require.NotContains(t, req.Prompt, strings.Repeat("x", ChatFileBound+1))
	require.Contains(t, req.Prompt, strings.Repeat("x", ChatFileBound))
}

func TestChat_PlaceholderWhenEmpty(t *testing.T) {
	req := Chat("", []FileContext{
		{Image: &extract.InlineImage{Base64: "aGk=", MimeType: "image/jpeg"}},
	})

	require.Equal(t, DefaultChatContent, req.Prompt)
	require.True(t, req.Multimodal())
}

func TestChat_FilesWithoutUserText(t *testing.T) {
	req := Chat("", []FileContext{{Text: "doc"}})

	require.True(t, strings.HasPrefix(req.Prompt, "Please analyze the following files:"))
	require.Contains(t, req.Prompt, "[Content from file 1]\ndoc")
}

func TestSummary_BoundsSource(t *testing.T) {
	long := strings.Repeat("s", SummaryBound+1000)
	p := Summary(long)

	require.True(t, strings.HasPrefix(p, "Please provide a comprehensive summary"))
	require.NotContains(t, p, strings.Repeat("s", SummaryBound+1))
}

func TestQuiz_WithoutReference(t *testing.T) {
	p := Quiz("course notes", "")

	require.Contains(t, p, "generate 10 quiz questions")
	require.Contains(t, p, "Content:\ncourse notes")
	require.Contains(t, p, "Only return the JSON array")
	require.NotContains(t, p, "Previous Year Questions")
	require.NotContains(t, p, "PYQ patterns")
}

func TestQuiz_ReferencePrecedesSource(t *testing.T) {
	p := Quiz("course notes", "old exam questions")

	require.Contains(t, p, "Use the PYQ patterns as reference for question styles.")
	require.Contains(t, p, "Previous Year Questions for reference:\nold exam questions")
	require.Less(t,
		strings.Index(p, "old exam questions"),
		strings.Index(p, "Content:\ncourse notes"))
}

func TestQuiz_BoundsBothSources(t *testing.T) {
	source := strings.Repeat("c", QuizSourceBound+100)
	reference := strings.Repeat("r", QuizReferenceBound+100)
	p := Quiz(source, reference)

	require.NotContains(t, p, strings.Repeat("c", QuizSourceBound+1))
	require.NotContains(t, p, strings.Repeat("r", QuizReferenceBound+1))
}
