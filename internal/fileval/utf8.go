package fileval

import (
	"bufio"
	"errors"
	"io"
	"os"
	"unicode/utf8"
)

// FirstInvalidUTF8 scans at most maxBytes of the file at path and returns
// the offset of the first byte that does not start a valid UTF-8 sequence,
// or -1 when the scanned prefix is valid. A sequence cut off by the read
// limit counts as valid; one cut off by the end of the file does not.
func FirstInvalidUTF8(path string, maxBytes int64) (int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return 0, err
	}
	limited := info.Size() > maxBytes

	r := bufio.NewReader(io.LimitReader(f, maxBytes))
	var offset int64
	for {
		c, size, err := r.ReadRune()
		if errors.Is(err, io.EOF) {
			return -1, nil
		}
		if err != nil {
			return 0, err
		}
		if c == utf8.RuneError && size == 1 {
			if limited && offset > maxBytes-utf8.UTFMax {
				return -1, nil
			}
			return offset, nil
		}
		offset += int64(size)
	}
}
