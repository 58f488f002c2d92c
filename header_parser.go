package httpclient

import (
	"strconv"
	"strings"
	"time"
)

// BodyFraming is HeaderParser's verdict on how to consume bytes after the
// header block.
type BodyFraming int

const (
	// FramingLengthBased means exactly Size bytes follow.
	FramingLengthBased BodyFraming = iota
	// FramingChunked means the body arrives as chunked-transfer frames.
	FramingChunked
	// FramingWebSocketUpgrade means no body follows; the connection is
	// switching protocols and stream ownership is handed to the caller.
	FramingWebSocketUpgrade
)

// Framing is the body-framing decision plus its length-based size, if any.
type Framing struct {
	Kind BodyFraming
	Size int64
}

// Header is one (name, value) pair, preserved in wire order.
type Header struct {
	Name  string
	Value string
}

// PartialResponse is everything HeaderParser decodes before the body:
// status line plus the ordered header list.
type PartialResponse struct {
	Status  int
	Version string
	Headers []Header
}

const (
	httpVersion10 = "HTTP/1.0"
	httpVersion11 = "HTTP/1.1"
)

// parseHeaders reads the status line and header block for one response
// off buf (refilling via io as needed) and returns the partial response
// plus the body-framing decision.
//
// Per spec.md §4.3 step 6, the last framing header observed wins: a
// Transfer-Encoding/Upgrade seen after a Content-Length overrides it.
func parseHeaders(tio *timedIO, r ReadHalf, buf *ReadBuffer, budget time.Duration) (*PartialResponse, Framing, error) {
	statusLine, err := readUntilCRLF(tio, r, buf, budget, parseStatusLine)
	if err != nil {
		return nil, Framing{}, err
	}

	resp := &PartialResponse{Status: statusLine.status, Version: statusLine.version}
	framing := Framing{Kind: FramingLengthBased, Size: 0}

	for {
		line, err := readUntilCRLF(tio, r, buf, budget, func(b []byte) ([]byte, error) { return b, nil })
		if err != nil {
			return nil, Framing{}, err
		}
		if len(line) == 0 {
			break
		}
		h, err := parseHeaderLine(line)
		if err != nil {
			return nil, Framing{}, err
		}
		resp.Headers = append(resp.Headers, h)

		switch {
		case strings.EqualFold(h.Name, "Content-Length"):
			n, perr := strconv.ParseInt(strings.TrimSpace(h.Value), 10, 64)
			if perr != nil || n < 0 {
				return nil, Framing{}, invalidPayload("bad Content-Length %q", h.Value)
			}
			framing = Framing{Kind: FramingLengthBased, Size: n}
		case strings.EqualFold(h.Name, "Transfer-Encoding"):
			if strings.EqualFold(strings.TrimSpace(h.Value), "chunked") {
				framing = Framing{Kind: FramingChunked}
			}
		case strings.EqualFold(h.Name, "Upgrade"):
			if strings.EqualFold(strings.TrimSpace(h.Value), "websocket") {
				framing = Framing{Kind: FramingWebSocketUpgrade}
			}
		}
	}

	return resp, framing, nil
}

type statusLineTokens struct {
	version string
	status  int
}

func parseStatusLine(line []byte) (statusLineTokens, error) {
	s := string(line)
	first := strings.IndexByte(s, ' ')
	if first < 0 {
		return statusLineTokens{}, invalidPayload("malformed status line %q", s)
	}
	version := s[:first]
	if version != httpVersion10 && version != httpVersion11 {
		return statusLineTokens{}, invalidPayload("unsupported version token %q", version)
	}
	rest := strings.TrimLeft(s[first+1:], " ")
	second := strings.IndexByte(rest, ' ')
	codeStr := rest
	if second >= 0 {
		codeStr = rest[:second]
	}
	code, err := strconv.Atoi(codeStr)
	if err != nil {
		return statusLineTokens{}, invalidPayload("bad status code %q", codeStr)
	}
	return statusLineTokens{version: version, status: code}, nil
}

// parseHeaderLine splits on the first colon; name is taken verbatim
// (already UTF-8 since it arrived as bytes off the wire), value is
// trimmed of leading/trailing ASCII whitespace.
func parseHeaderLine(line []byte) (Header, error) {
	s := string(line)
	idx := strings.IndexByte(s, ':')
	if idx < 0 {
		return Header{}, invalidPayload("header line missing colon: %q", s)
	}
	name := s[:idx]
	value := strings.Trim(s[idx+1:], " \t")
	return Header{Name: name, Value: value}, nil
}
