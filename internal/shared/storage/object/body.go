package object

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// sniffLen matches the window http.DetectContentType inspects.
const sniffLen = 512

// Body wraps an upload stream after its leading bytes were inspected.
// Reads replay the sniffed prefix first and N counts every byte handed out.
type Body struct {
	ContentType string
	N           int64

	r io.Reader
}

// Sniff detects the content type of r without consuming it.
func Sniff(r io.Reader) (*Body, error) {
	head := make([]byte, sniffLen)
	n, err := io.ReadFull(r, head)
	switch err {
	case nil, io.EOF, io.ErrUnexpectedEOF:
	default:
		return nil, fmt.Errorf("read sniff: %w", err)
	}
	head = head[:n]
	return &Body{
		ContentType: http.DetectContentType(head),
		r:           io.MultiReader(bytes.NewReader(head), r),
	}, nil
}

func (b *Body) Read(p []byte) (int, error) {
	n, err := b.r.Read(p)
	b.N += int64(n)
	return n, err
}

// JoinPrefix places key under a backend prefix, ignoring stray slashes.
func JoinPrefix(prefix, key string) string {
	prefix = strings.Trim(strings.TrimSpace(prefix), "/")
	key = strings.TrimLeft(key, "/")
	switch {
	case prefix == "":
		return key
	case key == "":
		return prefix
	default:
		return prefix + "/" + key
	}
}
