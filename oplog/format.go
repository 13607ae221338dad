package oplog

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Save writes the log in its canonical text form, one operator per line.
// Comments and blank lines of a parsed log are not preserved.
func Save(w io.Writer, l *Log) error {
	bw := bufio.NewWriter(w)
	for _, r := range l.Records {
		if _, err := fmt.Fprintln(bw, r.Op.String()); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// String returns the canonical text form of the log.
func (l *Log) String() string {
	var sb strings.Builder
	_ = Save(&sb, l)
	return sb.String()
}

// SaveFile writes the log to path, creating parent directories as needed.
func SaveFile(path string, l *Log) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer f.Close()

	if err := Save(f, l); err != nil {
		return fmt.Errorf("failed to write log: %w", err)
	}
	return nil
}

// Canonical rewrites log source into canonical spelling. Unlike Save it
// keeps comments, and runs of blank lines shrink to one.
func Canonical(src []byte) ([]byte, error) {
	var out bytes.Buffer
	scanner := bufio.NewScanner(bytes.NewReader(src))
	lineNum := 0
	blank := false

	for scanner.Scan() {
		lineNum++
		text := scanner.Text()

		op, err := parseLine(text)
		if err != nil {
			return nil, &ParseError{Line: lineNum, Text: strings.TrimSpace(text), Err: err}
		}
		comment := ""
		if i := strings.IndexByte(text, '#'); i >= 0 {
			comment = strings.TrimSpace("# " + strings.TrimSpace(text[i+1:]))
		}
		if op == nil && comment == "" {
			blank = out.Len() > 0
			continue
		}

		if blank {
			out.WriteByte('\n')
			blank = false
		}
		if op != nil {
			out.WriteString(op.String())
			if comment != "" {
				out.WriteString("  ")
			}
		}
		out.WriteString(comment)
		out.WriteByte('\n')
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scanning log: %w", err)
	}
	return out.Bytes(), nil
}
