package fetch

import (
	"bytes"
	"strings"
)

// sniffContentType resolves the normalized content type: when the declared
// type is absent, octet-stream, or text/plain, peek the first 1KB for an
// HTML signature, PDF magic, or a JSON leading brace/bracket.
func sniffContentType(declared string, head []byte) string {
	mediaType := strings.ToLower(strings.TrimSpace(declared))
	if semi := strings.IndexByte(mediaType, ';'); semi >= 0 {
		mediaType = strings.TrimSpace(mediaType[:semi])
	}

	needsSniff := mediaType == "" || mediaType == "application/octet-stream" || mediaType == "text/plain"
	if !needsSniff {
		return declared
	}

	peek := head
	if len(peek) > 1024 {
		peek = peek[:1024]
	}
	lower := bytes.ToLower(peek)

	if bytes.HasPrefix(peek, []byte("%PDF-")) {
		return "application/pdf"
	}
	if bytes.Contains(lower, []byte("<!doctype html")) || bytes.Contains(lower, []byte("<html")) {
		return "text/html"
	}
	if mediaType == "text/plain" {
		trimmed := bytes.TrimLeft(peek, " \t\r\n")
		if len(trimmed) > 0 && (trimmed[0] == '{' || trimmed[0] == '[') {
			return "application/json"
		}
	}
	if declared == "" {
		return "application/octet-stream"
	}
	return declared
}
