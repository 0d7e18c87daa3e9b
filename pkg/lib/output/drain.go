package output

import (
	"bufio"
	"bytes"
	"errors"
	"io"

	"github.com/Builtbyjb/tide/pkg/lib"
)

// MaxLineSize is the longest line Drain prints whole. Longer lines are
// printed in MaxLineSize pieces.
const MaxLineSize = 1024 * 1024

// Drain reads newline-delimited text from r until EOF and writes every line
// to c labeled with label. A trailing "\r" is dropped, as is the newline. Only
// a read error other than EOF is returned.
func Drain(r io.Reader, label string, stream lib.Stream, c *Console) error {
	br := bufio.NewReaderSize(r, 64*1024)
	var line []byte
	for {
		chunk, err := br.ReadSlice('\n')
		line = append(line, chunk...)

		if errors.Is(err, bufio.ErrBufferFull) {
			line = flushLong(line, label, stream, c)
			continue
		}
		if err == nil || len(line) > 0 {
			line = flushLong(trimEOL(line), label, stream, c)
			c.Line(label, stream, string(line))
			line = line[:0]
		}
		switch {
		case err == nil:
		case errors.Is(err, io.EOF):
			return nil
		default:
			return err
		}
	}
}

// flushLong prints MaxLineSize pieces while line is longer than that and
// returns the rest.
func flushLong(line []byte, label string, stream lib.Stream, c *Console) []byte {
	for len(line) > MaxLineSize {
		c.Line(label, stream, string(line[:MaxLineSize]))
		line = append(line[:0], line[MaxLineSize:]...)
	}
	return line
}

func trimEOL(line []byte) []byte {
	line = bytes.TrimSuffix(line, []byte("\n"))
	return bytes.TrimSuffix(line, []byte("\r"))
}
