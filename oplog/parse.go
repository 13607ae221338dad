package oplog

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/spatial/r3"
)

var (
	ErrUnknownOperator = errors.New("unknown operator")
	ErrArity           = errors.New("wrong number of arguments")
	ErrBadToken        = errors.New("malformed token")
)

// ParseError reports the first malformed line of a log. Nothing is returned
// alongside it; a log is never partially loaded.
type ParseError struct {
	Line int
	Text string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d: %v: %q", e.Line, e.Err, e.Text)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Load parses a log from its text form.
func Load(r io.Reader) (*Log, error) {
	l := &Log{}
	scanner := bufio.NewScanner(r)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		text := scanner.Text()

		op, err := parseLine(text)
		if err != nil {
			return nil, &ParseError{Line: lineNum, Text: strings.TrimSpace(text), Err: err}
		}
		if op != nil {
			l.Records = append(l.Records, Record{Op: op, Line: lineNum})
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scanning log: %w", err)
	}

	return l, nil
}

// LoadString parses a log held in memory.
func LoadString(text string) (*Log, error) {
	return Load(strings.NewReader(text))
}

// LoadFile parses the log stored at path.
func LoadFile(path string) (*Log, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	l, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return l, nil
}

// parseLine returns nil for blank and comment-only lines.
func parseLine(line string) (Op, error) {
	if i := strings.IndexByte(line, '#'); i >= 0 {
		line = line[:i]
	}
	line = strings.NewReplacer("(", " ( ", ")", " ) ").Replace(line)
	toks := strings.Fields(line)
	if len(toks) == 0 {
		return nil, nil
	}

	c := &cursor{toks: toks[1:]}
	var op Op
	switch toks[0] {
	case "Mvfs":
		var o Mvfs
		o.P = c.vec()
		op = o
	case "Mve":
		var o Mve
		o.P = c.vec()
		o.V0 = c.index('v')
		o.F = c.index('f')
		op = o
	case "Mef":
		var o Mef
		o.V0 = c.index('v')
		o.V1 = c.index('v')
		o.F = c.index('f')
		op = o
	case "KeMr":
		var o KeMr
		o.E = c.index('e')
		o.F = c.index('f')
		op = o
	case "KfMrh":
		var o KfMrh
		o.F0 = c.index('f')
		o.F1 = c.index('f')
		op = o
	case "Sweep":
		var o Sweep
		o.F = c.index('f')
		o.D = c.vec()
		o.T = c.float()
		op = o
	default:
		return nil, fmt.Errorf("%w %q", ErrUnknownOperator, toks[0])
	}

	if c.err == nil && c.i != len(c.toks) {
		c.err = fmt.Errorf("%w: %d extra token(s) after %s", ErrArity, len(c.toks)-c.i, toks[0])
	}
	if c.err != nil {
		return nil, c.err
	}
	return op, nil
}

// cursor consumes tokens and keeps the first error it meets.
type cursor struct {
	toks []string
	i    int
	err  error
}

func (c *cursor) next() (string, bool) {
	if c.err != nil {
		return "", false
	}
	if c.i >= len(c.toks) {
		c.err = fmt.Errorf("%w: line ends early", ErrArity)
		return "", false
	}
	t := c.toks[c.i]
	c.i++
	return t, true
}

func (c *cursor) expect(want string) {
	t, ok := c.next()
	if ok && t != want {
		c.err = fmt.Errorf("%w: want %q, got %q", ErrBadToken, want, t)
	}
}

func (c *cursor) float() float64 {
	t, ok := c.next()
	if !ok {
		return 0
	}
	x, err := strconv.ParseFloat(t, 64)
	if err != nil || math.IsNaN(x) || math.IsInf(x, 0) {
		c.err = fmt.Errorf("%w: %q is not a finite number", ErrBadToken, t)
		return 0
	}
	return x
}

func (c *cursor) vec() r3.Vec {
	c.expect("(")
	p := r3.Vec{X: c.float(), Y: c.float(), Z: c.float()}
	c.expect(")")
	return p
}

// index reads a token such as v12 or f3.
func (c *cursor) index(prefix byte) int {
	t, ok := c.next()
	if !ok {
		return 0
	}
	if len(t) < 2 || t[0] != prefix {
		c.err = fmt.Errorf("%w: want %c<index>, got %q", ErrBadToken, prefix, t)
		return 0
	}
	n, err := strconv.ParseUint(t[1:], 10, 31)
	if err != nil {
		c.err = fmt.Errorf("%w: bad index %q", ErrBadToken, t)
		return 0
	}
	return int(n)
}
