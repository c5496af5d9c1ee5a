package eventbus

import (
	"encoding/json"
	"fmt"

	"github.com/barrickdigitalgold-web/barrickdigitalgold-web-sub000/pkg/domain/events"
)

// envelope is the wire form shared by the redis and kafka transports.
type envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

func encode(event events.Event) ([]byte, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("marshal %s: %w", event.Type(), err)
	}
	return json.Marshal(envelope{Type: event.Type(), Payload: data})
}

// decode rebuilds the typed event using the registry in events.EventTypes.
func decode(raw []byte) (events.Event, error) {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("unmarshal envelope: %w", err)
	}
	constructor, ok := events.EventTypes[env.Type]
	if !ok {
		return nil, fmt.Errorf("unknown event type %q", env.Type)
	}
	evt := constructor()
	if err := json.Unmarshal(env.Payload, evt); err != nil {
		return nil, fmt.Errorf("unmarshal %s payload: %w", env.Type, err)
	}
	return evt, nil
}

// deref turns the pointer a constructor returns back into the value type
// the producer emitted, so handlers can type-switch on events.Settled.
func deref(evt events.Event) events.Event {
	switch e := evt.(type) {
	case *events.Settled:
		return *e
	case *events.UserNotified:
		return *e
	}
	return evt
}
