package extractor

import (
	"bufio"
	"bytes"
	"errors"
	"io"
	"strings"
)

const byteOrderMark = "\uFEFF"

// readWindow reads at most budget lines from r with line endings and a
// leading byte order mark removed. more reports whether r has data past the
// window.
func readWindow(r *bufio.Reader, budget int) (lines []string, more bool, err error) {
	for len(lines) < budget {
		line, err := r.ReadString('\n')
		if line != "" {
			line = strings.TrimSuffix(strings.TrimSuffix(line, "\n"), "\r")
			if len(lines) == 0 {
				line = strings.TrimPrefix(line, byteOrderMark)
			}
			lines = append(lines, line)
		}
		if errors.Is(err, io.EOF) {
			return lines, false, nil
		}
		if err != nil {
			return nil, false, err
		}
	}

	if _, err := r.Peek(1); err != nil {
		if errors.Is(err, io.EOF) {
			return lines, false, nil
		}
		return nil, false, err
	}
	return lines, true, nil
}

// containsToken streams r until token is found or r is exhausted.
func containsToken(r io.Reader, token string) (bool, error) {
	needle := []byte(token)
	buf := make([]byte, 32*1024)
	var carry []byte
	for {
		n, err := r.Read(buf)
		if n > 0 {
			chunk := append(carry, buf[:n]...)
			if bytes.Contains(chunk, needle) {
				return true, nil
			}
			keep := min(len(needle)-1, len(chunk))
			carry = append([]byte(nil), chunk[len(chunk)-keep:]...)
		}
		if errors.Is(err, io.EOF) {
			return false, nil
		}
		if err != nil {
			return false, err
		}
	}
}
