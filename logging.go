package httpclient

import "github.com/sirupsen/logrus"

// debugTracer gates verbose per-event logging behind Connector.IsDebug(),
// the same switch the teacher's trc package used to gate client-trace
// callbacks, generalized here to structured logrus fields instead of a
// bag of optional hook functions.
type debugTracer struct {
	log    *logrus.Entry
	active bool
}

func newDebugTracer(log *logrus.Entry, clientName string, active bool) *debugTracer {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &debugTracer{log: log.WithField("client_name", clientName), active: active}
}

func (t *debugTracer) connecting(remote string) {
	if t.active {
		t.log.WithField("remote", remote).Debug("connecting")
	}
}

func (t *debugTracer) connected(connID int64) {
	if t.active {
		t.log.WithField("connection_id", connID).Debug("connected")
	}
}

func (t *debugTracer) disconnected(connID int64, err error) {
	if t.active {
		t.log.WithField("connection_id", connID).WithError(err).Debug("disconnected")
	}
}

func (t *debugTracer) upgraded(connID int64) {
	if t.active {
		t.log.WithField("connection_id", connID).Debug("upgraded to websocket")
	}
}

func (t *debugTracer) requestQueued(connID int64, method, target string) {
	if t.active {
		t.log.WithFields(logrus.Fields{"connection_id": connID, "method": method, "target": target}).Debug("request queued")
	}
}

func (t *debugTracer) responseDelivered(connID int64, status int) {
	if t.active {
		t.log.WithFields(logrus.Fields{"connection_id": connID, "status": status}).Debug("response delivered")
	}
}
