package transport

import (
	"bufio"
	"io"

	"github.com/pkg/errors"
)

const defaultMaxLineBytes = 8192

var errLineTooLong = errors.New("line too long")

// lineReader reads newline-terminated lines of at most max bytes. An
// over-long line is consumed up to its newline and reported as
// errLineTooLong, leaving the stream positioned at the next line.
type lineReader struct {
	r   *bufio.Reader
	max int
}

func newLineReader(r io.Reader, max int) *lineReader {
	if max <= 0 {
		max = defaultMaxLineBytes
	}
	return &lineReader{r: bufio.NewReaderSize(r, 4096), max: max}
}

func (lr *lineReader) next() (string, error) {
	var buf []byte
	for {
		chunk, isPrefix, err := lr.r.ReadLine()
		if err != nil {
			return "", err
		}
		if len(buf)+len(chunk) > lr.max {
			for isPrefix {
				if _, isPrefix, err = lr.r.ReadLine(); err != nil {
					return "", err
				}
			}
			return "", errLineTooLong
		}
		buf = append(buf, chunk...)
		if !isPrefix {
			return string(buf), nil
		}
	}
}
