package httpclient

import (
	"strconv"
	"strings"
)

// serialize converts a logical Request into its contiguous wire payload,
// per spec.md §4.5. Header names and values are written verbatim — no
// case normalization, no folding — the caller is responsible for valid
// bytes. If Body is non-empty, a Content-Length header is appended with
// the exact byte length (spec.md §3 invariant).
func serialize(req *Request) []byte {
	var b strings.Builder

	b.WriteString(req.Method)
	b.WriteByte(' ')
	b.WriteString(req.Target)
	b.WriteString(" HTTP/")
	b.WriteString(req.Version)
	b.WriteString("\r\n")

	for _, h := range req.Headers {
		b.WriteString(h.Name)
		b.WriteString(": ")
		b.WriteString(h.Value)
		b.WriteString("\r\n")
	}

	if len(req.Body) > 0 {
		b.WriteString("content-length: ")
		b.WriteString(strconv.Itoa(len(req.Body)))
		b.WriteString("\r\n")
	}

	b.WriteString("\r\n")

	out := make([]byte, 0, b.Len()+len(req.Body))
	out = append(out, b.String()...)
	out = append(out, req.Body...)
	return out
}
