package utils

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
)

const initialLineBuffer = 64 * 1024

// ErrLineTooLong reports a line that was longer than the limit. The line has
// already been consumed, so the next ReadLine starts on the following one.
var ErrLineTooLong = errors.New("line too long")

// LineReader splits r into lines of at most maxLine bytes.
type LineReader struct {
	r       *bufio.Reader
	maxLine int
	buf     []byte
}

func NewLineReader(r io.Reader, maxLine int) *LineReader {
	size := initialLineBuffer
	if maxLine < size {
		size = maxLine
	}
	return &LineReader{r: bufio.NewReaderSize(r, size), maxLine: maxLine}
}

// ReadLine returns the next line without its "\n" or "\r\n". The slice is
// only valid until the next call. An oversized line is skipped up to its
// newline and reported as ErrLineTooLong; the buffer never grows past the
// limit. io.EOF is returned once the input is exhausted.
func (lr *LineReader) ReadLine() ([]byte, error) {
	lr.buf = lr.buf[:0]
	tooLong := false
	for {
		chunk, err := lr.r.ReadSlice('\n')
		if !tooLong {
			lr.buf = append(lr.buf, chunk...)
			if len(trimEOL(lr.buf)) > lr.maxLine {
				tooLong = true
				lr.buf = lr.buf[:0]
			}
		}

		switch {
		case err == bufio.ErrBufferFull:
			continue
		case err == io.EOF:
			if tooLong {
				return nil, ErrLineTooLong
			}
			if len(lr.buf) == 0 {
				return nil, io.EOF
			}
			return trimEOL(lr.buf), nil
		case err != nil:
			return nil, err
		}
		if tooLong {
			return nil, ErrLineTooLong
		}
		return trimEOL(lr.buf), nil
	}
}

func trimEOL(line []byte) []byte {
	line = bytes.TrimSuffix(line, []byte("\n"))
	return bytes.TrimSuffix(line, []byte("\r"))
}

// ReadRequestBody reads at most limit bytes of the request body.
func ReadRequestBody(w http.ResponseWriter, r *http.Request, limit int64) ([]byte, error) {
	body := http.MaxBytesReader(w, r.Body, limit)
	defer body.Close()
	data, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("failed to read request body: %w", err)
	}
	return data, nil
}
