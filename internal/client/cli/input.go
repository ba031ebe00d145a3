package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

// GetMultiline prints prompt to w and reads lines until an empty line or
// EOF. Lines are joined with '\n' and the result is trimmed.
func GetMultiline(reader *bufio.Reader, prompt string, w io.Writer) (string, error) {
	if prompt != "" {
		if _, err := fmt.Fprint(w, prompt+"\n(press Enter on an empty line to finish)\n"); err != nil {
			return "", err
		}
	}

	var lines []string
	for {
		line, err := reader.ReadString('\n')
		line = strings.TrimRight(line, "\r\n")
		if line == "" && (err == nil || errors.Is(err, io.EOF)) {
			break
		}
		lines = append(lines, line)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", err
		}
	}

	return strings.TrimSpace(strings.Join(lines, "\n")), nil
}

// splitAssignment parses "key=value". The value may be empty.
func splitAssignment(s string) (string, string, error) {
	key, value, ok := strings.Cut(s, "=")
	if !ok || strings.TrimSpace(key) == "" {
		return "", "", fmt.Errorf("expected id=value, got %q", s)
	}
	return strings.TrimSpace(key), value, nil
}
