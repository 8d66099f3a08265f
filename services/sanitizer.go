package services

import (
	"regexp"
	"strings"
)

// The generation prompt forbids markdown, but that instruction is a strong
// hint, not a guarantee: the model output is stripped defensively here.
// Rules run in a fixed order so constructs nested inside each other resolve
// correctly (fences before inline code, images before links, bold before
// italic), then residual emphasis markers are swept and whitespace collapsed.
var (
	codeFenceRegex      = regexp.MustCompile("(?m)^```[^\n]*$\n?")
	inlineCodeRegex     = regexp.MustCompile("`([^`]*)`")
	imageRegex          = regexp.MustCompile(`!\[([^\]]*)\]\([^)]*\)`)
	linkRegex           = regexp.MustCompile(`\[([^\]]+)\]\([^)]*\)`)
	headerRegex         = regexp.MustCompile(`(?m)^#{1,6}\s*`)
	boldRegex           = regexp.MustCompile(`\*\*([^*]+)\*\*|__([^_]+)__`)
	italicRegex         = regexp.MustCompile(`\*([^*]+)\*|\b_([^_]+)_\b`)
	horizontalRuleRegex = regexp.MustCompile(`(?m)^\s*([-*_]\s*){3,}$`)
	blockquoteRegex     = regexp.MustCompile(`(?m)^>\s?`)
	residualMarksRegex  = regexp.MustCompile("[*`]")
	blankRunRegex       = regexp.MustCompile(`\n{3,}`)
	spaceCollapseRegex  = regexp.MustCompile(`[ \t]{2,}`)
)

// SanitizeAnswer strips markdown artifacts from raw model output, collapses
// whitespace and guarantees terminal punctuation.
func SanitizeAnswer(text string) string {
	text = codeFenceRegex.ReplaceAllString(text, "")
	text = inlineCodeRegex.ReplaceAllString(text, "$1")
	text = imageRegex.ReplaceAllString(text, "$1")
	text = linkRegex.ReplaceAllString(text, "$1")
	text = horizontalRuleRegex.ReplaceAllString(text, "")
	text = headerRegex.ReplaceAllString(text, "")
	text = boldRegex.ReplaceAllString(text, "$1$2")
	text = italicRegex.ReplaceAllString(text, "$1$2")
	text = blockquoteRegex.ReplaceAllString(text, "")
	text = residualMarksRegex.ReplaceAllString(text, "")

	text = blankRunRegex.ReplaceAllString(text, "\n\n")
	text = spaceCollapseRegex.ReplaceAllString(text, " ")
	text = strings.TrimSpace(text)

	if text == "" {
		return text
	}
	if !strings.ContainsRune(".!?", rune(text[len(text)-1])) {
		text += "."
	}
	return text
}
