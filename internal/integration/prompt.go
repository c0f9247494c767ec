package integration

import (
	"fmt"
	"strings"
)

// BuildPrompt renders the revision request. The model is asked for the
// replacement lines only; everything else in the document stays as-is.
func BuildPrompt(excerpt string, lineStart, lineEnd int, feedback string, transcript []string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Here is a section from an engineering plan document (lines %d-%d):\n\n", lineStart, lineEnd)
	fmt.Fprintf(&b, "```markdown\n%s\n```\n\n", excerpt)
	fmt.Fprintf(&b, "User's comment: %q\n", feedback)

	if len(transcript) > 0 {
		b.WriteString("\nThe comment was discussed before being accepted. Discussion thread, oldest first:\n")
		for _, entry := range transcript {
			fmt.Fprintf(&b, "- %s\n", entry)
		}
	}

	b.WriteString(`
Please provide a revised version of these lines that addresses the user's comment.

Important:
- Only output the revised markdown content
- Do not include explanations, preambles, or additional commentary
- Maintain the same structure and formatting as the original
- Focus on addressing the specific issue raised in the comment
- Keep changes minimal and targeted`)

	return b.String()
}
