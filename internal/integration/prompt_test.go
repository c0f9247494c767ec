package integration

import (
	"strings"
	"testing"
)

func TestBuildPromptEmbedsExcerptAndFeedback(t *testing.T) {
	prompt := BuildPrompt("## Goals\nShip it.", 3, 4, "be more concrete", nil)

	for _, want := range []string{
		"lines 3-4",
		"```markdown\n## Goals\nShip it.\n```",
		`User's comment: "be more concrete"`,
		"Only output the revised markdown content",
	} {
		if !strings.Contains(prompt, want) {
			t.Fatalf("prompt missing %q:\n%s", want, prompt)
		}
	}
	if strings.Contains(prompt, "Discussion thread") {
		t.Fatal("prompt should not mention a discussion without transcript")
	}
}

func TestBuildPromptAppendsTranscriptInOrder(t *testing.T) {
	transcript := []string{
		"user-a: why this approach?",
		"user-b: it keeps the API stable",
	}
	prompt := BuildPrompt("Ship it.", 1, 1, "clarify", transcript)

	first := strings.Index(prompt, transcript[0])
	second := strings.Index(prompt, transcript[1])
	if first == -1 || second == -1 {
		t.Fatalf("transcript entries missing from prompt:\n%s", prompt)
	}
	if first > second {
		t.Fatal("transcript must keep chronological order")
	}
}
