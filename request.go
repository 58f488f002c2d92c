package httpclient

// Request is a logical HTTP/1.x request the caller builds and hands to
// Client.DoRequest.
type Request struct {
	Method  string
	Target  string // path + query string
	Version string // "1.0" or "1.1"
	Headers []Header
	Body    []byte
}

// NewRequest is a small convenience constructor; it always sets Version
// to "1.1".
func NewRequest(method, target string, headers []Header, body []byte) *Request {
	return &Request{Method: method, Target: target, Version: "1.1", Headers: headers, Body: body}
}
