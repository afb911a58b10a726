package gridlog

import (
	"bufio"
	"io"
	"strings"
)

// lineCursor is the single forward-only position shared by the marker scan
// and the row collector. It can push back exactly one line.
type lineCursor struct {
	r       *bufio.Reader
	pending string
	hasPend bool
	err     error
	read    int
}

func newLineCursor(r io.Reader) *lineCursor {
	return &lineCursor{r: bufio.NewReader(r)}
}

// Next returns the next line without its terminator. ok is false once the
// input is exhausted or a read error occurred; see Err.
func (c *lineCursor) Next() (string, bool) {
	if c.hasPend {
		c.hasPend = false
		return c.pending, true
	}
	if c.err != nil {
		return "", false
	}
	line, err := c.r.ReadString('\n')
	if err != nil {
		c.err = err
		if line == "" {
			return "", false
		}
	}
	c.read++
	return strings.TrimRight(line, "\r\n"), true
}

// Unread pushes line back so the next call to Next returns it again.
func (c *lineCursor) Unread(line string) {
	c.pending = line
	c.hasPend = true
}

// Err returns the first non-EOF read error.
func (c *lineCursor) Err() error {
	if c.err == io.EOF {
		return nil
	}
	return c.err
}

// LinesRead counts lines pulled from the underlying reader; re-reads after
// Unread are not counted twice.
func (c *lineCursor) LinesRead() int {
	return c.read
}
