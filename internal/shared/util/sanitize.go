package util

import (
	"errors"
	"path"
	"strings"
	"unicode"
)

// ErrInvalidFileName is returned when nothing usable remains after sanitizing.
var ErrInvalidFileName = errors.New("invalid file name")

// SanitizeFileName reduces an uploaded name to a single safe path segment.
// Directory parts are dropped and characters outside letters, digits, '.', '-'
// and '_' become '_'. Leading dots are stripped so the result is never hidden
// or a traversal segment.
func SanitizeFileName(name string) (string, error) {
	s := strings.TrimSpace(strings.ReplaceAll(name, "\\", "/"))
	s = path.Base(s)
	if s == "." || s == "/" {
		return "", ErrInvalidFileName
	}

	var b strings.Builder
	for _, r := range s {
		switch {
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)):
			b.WriteRune(r)
		case r == '.' || r == '-' || r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	out := strings.TrimLeft(b.String(), ".")
	if strings.Trim(out, "_") == "" {
		return "", ErrInvalidFileName
	}
	return out, nil
}
