package launcher

import (
	"errors"
	"fmt"
	"strings"

	"github.com/alessio/shellescape"
)

// ErrUnsafeInput is returned when a path or filter cannot be placed in a
// shell command line even with quoting.
var ErrUnsafeInput = errors.New("input contains characters that cannot be passed to the shell")

// FollowScript builds the live monitoring pipeline: follow the file from its
// current end and keep only lines containing every filter, one fixed-string
// grep stage per filter.
func FollowScript(logPath string, filters []string) (string, error) {
	if err := checkOperand(logPath); err != nil {
		return "", fmt.Errorf("log path: %w", err)
	}
	var b strings.Builder
	b.WriteString("tail -F -- ")
	b.WriteString(shellescape.Quote(logPath))
	for _, f := range filters {
		if err := checkOperand(f); err != nil {
			return "", fmt.Errorf("filter %q: %w", f, err)
		}
		b.WriteString(" | grep --line-buffered -F -- ")
		b.WriteString(shellescape.Quote(f))
	}
	return b.String(), nil
}

// DumpScript prints the whole current content of the file.
func DumpScript(logPath string) (string, error) {
	if err := checkOperand(logPath); err != nil {
		return "", fmt.Errorf("log path: %w", err)
	}
	return "cat -- " + shellescape.Quote(logPath), nil
}

func checkOperand(s string) error {
	if strings.ContainsAny(s, "\x00\r\n") {
		return ErrUnsafeInput
	}
	return nil
}
