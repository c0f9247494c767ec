package integration

import (
	"errors"
	"fmt"
	"strings"
)

var ErrInvalidOutput = errors.New("model output failed validation")

// ValidateReplacement sanity-checks the model text against the excerpt
// it is replacing. Empty output and gross size mismatches (more than
// 3x, or under a third of the excerpt length) are rejected. These are
// model quality failures, not transient faults, so they are never
// retried.
func ValidateReplacement(excerpt, output string) error {
	if strings.TrimSpace(output) == "" {
		return fmt.Errorf("%w: empty output", ErrInvalidOutput)
	}
	excerptLen := len(excerpt)
	if excerptLen == 0 {
		return nil
	}
	outLen := len(output)
	if outLen > 3*excerptLen {
		return fmt.Errorf("%w: output %d bytes exceeds 3x excerpt (%d bytes)", ErrInvalidOutput, outLen, excerptLen)
	}
	if outLen < excerptLen/3 {
		return fmt.Errorf("%w: output %d bytes under a third of excerpt (%d bytes)", ErrInvalidOutput, outLen, excerptLen)
	}
	return nil
}
