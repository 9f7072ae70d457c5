package util

import (
	"errors"
	"path/filepath"
	"strings"
)

const maxFileNameLen = 255

// ErrInvalidFileName is returned for names that are empty after cleaning or
// try to traverse directories.
var ErrInvalidFileName = errors.New("invalid file name")

// SanitizeFileName keeps only the base name of an uploaded file, replacing
// path separators and control characters.
func SanitizeFileName(name string) (string, error) {
	if strings.Contains(name, "..") {
		return "", ErrInvalidFileName
	}
	s := strings.TrimSpace(name)
	s = strings.ReplaceAll(s, "\\", "/")
	s = filepath.Base(s)
	s = strings.Map(func(r rune) rune {
		if r < 0x20 || r == 0x7f {
			return -1
		}
		return r
	}, s)
	if s == "" || s == "." || s == "/" {
		return "", ErrInvalidFileName
	}
	if len(s) > maxFileNameLen {
		s = s[:maxFileNameLen]
	}
	return s, nil
}
