package integration

import (
	"errors"
	"fmt"
	"strings"
)

var ErrRangeOutOfBounds = errors.New("line range outside document")

// ExtractLines returns lines start..end, 1-based inclusive.
func ExtractLines(content string, start, end int) (string, error) {
	if start < 1 || end < start {
		return "", fmt.Errorf("%w: %d-%d", ErrRangeOutOfBounds, start, end)
	}
	lines := strings.Split(content, "\n")
	if end > len(lines) {
		return "", fmt.Errorf("%w: %d-%d of %d lines", ErrRangeOutOfBounds, start, end, len(lines))
	}
	return strings.Join(lines[start-1:end], "\n"), nil
}

// ApplyReplacement splices replacement over lines start..end, 1-based
// inclusive. The replacement may hold more or fewer lines than the
// range it replaces. Out-of-range bounds are clamped to the document.
func ApplyReplacement(content, replacement string, start, end int) string {
	lines := strings.Split(content, "\n")
	startIdx := start - 1
	if startIdx < 0 {
		startIdx = 0
	}
	endIdx := end
	if endIdx > len(lines) {
		endIdx = len(lines)
	}
	if startIdx > len(lines) {
		startIdx = len(lines)
	}
	if endIdx < startIdx {
		endIdx = startIdx
	}

	newLines := strings.Split(replacement, "\n")
	out := make([]string, 0, len(lines)-(endIdx-startIdx)+len(newLines))
	out = append(out, lines[:startIdx]...)
	out = append(out, newLines...)
	out = append(out, lines[endIdx:]...)
	return strings.Join(out, "\n")
}
