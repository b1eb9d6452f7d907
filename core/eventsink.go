package core

import "pkt.systems/nikiai/schema"

// EventSink receives session changes.
type EventSink interface {
	OnSessionEvent(event schema.SessionEvent)
}
