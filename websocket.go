package httpclient

// websocketUpgrade is what ReadTask hands to the awaiter when a response
// switches protocols: the partial response (empty body) plus ownership of
// the read half. The write half is surrendered separately by the Client
// facade (spec.md §4.4, §4.9).
type websocketUpgrade struct {
	response *Response
	readHalf ReadHalf
}

// WebSocketUpgrade is returned to the caller of Client.DoRequest when a
// response switches protocols. Stream is the reunited duplex stream,
// handed back with full ownership; Disconnect fences a later teardown to
// this specific connection id.
type WebSocketUpgrade struct {
	Stream     DuplexStream
	Response   *Response
	Disconnect DisconnectHandle
}
