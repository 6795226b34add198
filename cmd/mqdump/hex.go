package main

import (
	"bufio"
	"encoding/hex"
	"io"
)

// hexFilter passes hex digits through and drops whitespace and '#' comments,
// so `xxd -p` output and hand-written dumps decode alike.
type hexFilter struct {
	r *bufio.Reader
}

// newHexReader returns a reader of the bytes spelled by the hex text in r.
func newHexReader(r io.Reader) io.Reader {
	return hex.NewDecoder(&hexFilter{r: bufio.NewReader(r)})
}

func (f *hexFilter) Read(p []byte) (int, error) {
	n := 0
	for n < len(p) {
		// Return what we have instead of blocking on a slow source.
		if n > 0 && f.r.Buffered() == 0 {
			break
		}

		c, err := f.r.ReadByte()
		if err != nil {
			if n > 0 && err == io.EOF {
				return n, nil
			}
			return n, err
		}

		switch c {
		case ' ', '\t', '\r', '\n':
		case '#':
			if _, err := f.r.ReadString('\n'); err != nil && err != io.EOF {
				return n, err
			}
		default:
			p[n] = c
			n++
		}
	}
	return n, nil
}
