package query

import (
	"bytes"
	"io"
	"strings"
)

// ReadUntil reads r one byte at a time until the data read so far ends
// with one of the terminators, or until r is exhausted. Empty terminators
// never match; without a usable terminator r is read to the end. Running
// out of input is not an error: the caller gets whatever was read.
func ReadUntil(r io.Reader, terminators ...[]byte) []byte {
	stops := make([][]byte, 0, len(terminators))
	for _, t := range terminators {
		if len(t) > 0 {
			stops = append(stops, t)
		}
	}

	buf := []byte{}
	b := make([]byte, 1)
	for {
		n, err := r.Read(b)
		if n > 0 {
			buf = append(buf, b[0])
			for _, stop := range stops {
				if bytes.HasSuffix(buf, stop) {
					return buf
				}
			}
		}
		// A terminal in non-canonical mode reports an expired VTIME as a
		// zero-length read
		if err != nil || n == 0 {
			return buf
		}
	}
}

// ReadRunesUntil is ReadUntil for character streams.
func ReadRunesUntil(r io.RuneReader, terminators ...string) string {
	stops := make([]string, 0, len(terminators))
	for _, t := range terminators {
		if len(t) > 0 {
			stops = append(stops, t)
		}
	}

	var sb strings.Builder
	for {
		c, _, err := r.ReadRune()
		if err != nil {
			return sb.String()
		}
		sb.WriteRune(c)
		str := sb.String()
		for _, stop := range stops {
			if strings.HasSuffix(str, stop) {
				return str
			}
		}
	}
}
