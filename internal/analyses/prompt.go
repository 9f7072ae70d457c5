package analyses

import (
	"strings"
	"unicode/utf8"
)

const truncationMarker = "\n\n[Resume truncated for analysis]"

// truncateResume keeps the first maxChars runes of text. maxChars <= 0
// disables truncation.
func truncateResume(text string, maxChars int) (string, bool) {
	if maxChars <= 0 || utf8.RuneCountInString(text) <= maxChars {
		return text, false
	}
	n := 0
	for i := range text {
		if n == maxChars {
			return text[:i] + truncationMarker, true
		}
		n++
	}
	return text, false
}

func buildUserMessage(prompt, resumeText string) string {
	var b strings.Builder
	b.WriteString(strings.TrimSpace(prompt))
	b.WriteString("\n\nResume Content:\n")
	b.WriteString(resumeText)
	return b.String()
}
