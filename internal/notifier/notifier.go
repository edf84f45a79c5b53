package notifier

// Broadcast kinds emitted by the core after a mutation commits.
const (
	KindEventsUpdated      = "eventsUpdated"
	KindItems              = "items"
	KindItemUpdated        = "itemUpdated"
	KindEventConfigUpdated = "eventConfigUpdated"
)

// GlobalRoom addresses every connected client, regardless of the event
// room it watches. Event ids start at 1, so 0 is free.
const GlobalRoom uint64 = 0

// Publisher decouples the core from the websocket transport. Publish must
// not block: it is called inside an event's critical section so that the
// order of broadcasts matches the commit order of the mutations that
// produced them.
type Publisher interface {
	Publish(eventID uint64, kind string, payload any)
}

// Message is the envelope written to websocket clients.
type Message struct {
	Kind    string `json:"type"`
	EventID uint64 `json:"event_id,omitempty"`
	Payload any    `json:"payload,omitempty"`
}
