// Package export implements the one-shot copies of a log file: a raw dump to
// another file and a naive CSV conversion of bracketed log lines.
package export

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// ErrFileAccess marks a source that cannot be read or a destination that
// cannot be written.
var ErrFileAccess = errors.New("file access failed")

const maxLineSize = 1 << 20

// DumpFile copies the full content of src into dst, replacing dst.
func DumpFile(src, dst string) (int64, error) {
	if strings.TrimSpace(dst) == "" {
		return 0, fmt.Errorf("%w: destination is empty", ErrFileAccess)
	}
	in, err := os.Open(src)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrFileAccess, err)
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrFileAccess, err)
	}
	n, err := io.Copy(out, in)
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return n, fmt.Errorf("%w: copy %s to %s: %v", ErrFileAccess, src, dst, err)
	}
	return n, nil
}

// CSV converts bracketed lines of src into rows written to dst and returns
// the number of rows. See Row for the line format.
func CSV(src, dst string) (int, error) {
	if strings.TrimSpace(dst) == "" {
		return 0, fmt.Errorf("%w: destination is empty", ErrFileAccess)
	}
	in, err := os.Open(src)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrFileAccess, err)
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrFileAccess, err)
	}
	rows, err := WriteCSV(out, in)
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return rows, fmt.Errorf("%w: export %s: %v", ErrFileAccess, src, err)
	}
	return rows, nil
}

// WriteCSV scans r line by line and writes one row per convertible line.
func WriteCSV(w io.Writer, r io.Reader) (int, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	bw := bufio.NewWriter(w)

	rows := 0
	for sc.Scan() {
		row, ok := Row(strings.TrimSuffix(sc.Text(), "\r"))
		if !ok {
			continue
		}
		if _, err := bw.WriteString(row + "\n"); err != nil {
			return rows, err
		}
		rows++
	}
	if err := sc.Err(); err != nil {
		return rows, err
	}
	return rows, bw.Flush()
}

// Row converts one log line of the form `[a] [b] [c] "message"`.
// The line must start with '['; it is split on ']' and every segment is
// trimmed of brackets, spaces and double quotes. At least four segments are
// required; the result is `a,b,c,"message"`. Segments are not escaped.
func Row(line string) (string, bool) {
	if !strings.HasPrefix(line, "[") {
		return "", false
	}
	parts := strings.Split(line, "]")
	if len(parts) < 4 {
		return "", false
	}
	for i := range parts {
		parts[i] = strings.Trim(parts[i], `[ "`)
	}
	return strings.Join(parts[:3], ",") + `,"` + parts[3] + `"`, true
}
