package httpclient

import (
	"sync"
	"time"
)

// connStateKind tags the single mutable state of the client (spec.md §3,
// §5, §9 "Single shared state variable").
type connStateKind int

const (
	stateDisconnected connStateKind = iota
	stateConnected
	stateUpgradedToWebSocket
	stateDisposed
)

// connectionContext is the Connected state's payload.
type connectionContext struct {
	connectionID int64
	writeHalf    WriteHalf // nil once surrendered on WebSocket upgrade
	readHalf     ReadHalf  // owned by ReadTask; handed to the caller on WebSocket upgrade

	mu              sync.Mutex
	queueToDeliver  []byte
	waitingUpgrade  bool // suppresses disconnect bookkeeping right after a handoff

	requestQueue *requestQueue

	sendTimeout time.Duration // budget for each WriteTask flush attempt
	readTimeout time.Duration // budget for each ReadTask read attempt
}

func newConnectionContext(id int64, stream DuplexStream, sendTimeout, readTimeout time.Duration) *connectionContext {
	return &connectionContext{
		connectionID: id,
		writeHalf:    stream,
		readHalf:     stream,
		requestQueue: &requestQueue{},
		sendTimeout:  sendTimeout,
		readTimeout:  readTimeout,
	}
}

// connState is the tagged-variant value every lifecycle transition
// atomically swaps (spec.md §9): exactly one of ctx is non-nil, and only
// when kind == stateConnected.
type connState struct {
	kind connStateKind
	ctx  *connectionContext
}
