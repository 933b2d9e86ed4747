// Package fileval checks source files before they are read and parsed, so
// minified bundles and binary blobs picked up by a glob fail fast with a
// clear message instead of a wall of parse errors.
package fileval

import (
	"fmt"
	"os"
)

// DefaultReadLimit bounds the UTF-8 scan when no maximum size is set.
const DefaultReadLimit = 1 << 20

// NotRegularError is returned for directories, devices and other
// non-regular files.
type NotRegularError struct {
	Path string
}

func (e *NotRegularError) Error() string {
	return "not a regular file"
}

// FileTooLargeError is returned when a file exceeds the configured maximum size.
type FileTooLargeError struct {
	Path    string
	Size    int64
	MaxSize int64
}

func (e *FileTooLargeError) Error() string {
	return fmt.Sprintf(
		"file too large (%d > %d bytes); raise [file-validation] max-file-size in .fnlint.toml or exclude the file",
		e.Size, e.MaxSize,
	)
}

// NotUTF8Error is returned when a file does not look like UTF-8 text.
type NotUTF8Error struct {
	Path   string
	Offset int64
}

func (e *NotUTF8Error) Error() string {
	return fmt.Sprintf("file does not appear to be UTF-8 text (invalid byte at offset %d)", e.Offset)
}

// ValidateFile runs the pre-parse checks on path. A maxSize of zero or
// less disables the size limit.
func ValidateFile(path string, maxSize int64) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if !info.Mode().IsRegular() {
		return &NotRegularError{Path: path}
	}

	if maxSize > 0 && info.Size() > maxSize {
		return &FileTooLargeError{Path: path, Size: info.Size(), MaxSize: maxSize}
	}

	readLimit := maxSize
	if readLimit <= 0 {
		readLimit = DefaultReadLimit
	}
	offset, err := FirstInvalidUTF8(path, readLimit)
	if err != nil {
		return err
	}
	if offset >= 0 {
		return &NotUTF8Error{Path: path, Offset: offset}
	}
	return nil
}
