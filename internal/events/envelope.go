package events

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/desertthunder/spt/internal/shared"
)

// Payload is the persisted form of a domain event: a closed tagged union
// keyed by event type name.
type Payload struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// Envelope wraps a domain event with its identity and versioning metadata.
// Envelopes are created once at append time and never modified.
type Envelope struct {
	SchemaVersion string    `json:"schema_version"`
	OriginID      string    `json:"origin_id"`
	EventID       string    `json:"event_id"`
	Timestamp     time.Time `json:"timestamp"`
	Payload       Payload   `json:"payload"`
}

// newEnvelope wraps evt into an envelope, assigning a fresh event id.
func newEnvelope(evt Event, at time.Time) (Envelope, error) {
	data, err := json.Marshal(evt)
	if err != nil {
		return Envelope{}, fmt.Errorf("%w: encode %s: %v", shared.ErrParse, evt.EventType(), err)
	}

	return Envelope{
		SchemaVersion: SchemaVersion,
		OriginID:      evt.OriginID(),
		EventID:       shared.GenerateID(),
		Timestamp:     at.UTC(),
		Payload:       Payload{Type: evt.EventType(), Data: data},
	}, nil
}

// Event decodes the envelope payload back into its concrete domain event.
// Unknown type tags and malformed data surface as errors wrapping
// [shared.ErrParse]; decoding never panics.
func (e Envelope) Event() (Event, error) {
	var evt Event
	var err error

	switch e.Payload.Type {
	case TypePlaylistCreated:
		evt, err = decode[PlaylistCreated](e)
	case TypeNameUpdated:
		evt, err = decode[NameUpdated](e)
	case TypeDescriptionUpdated:
		evt, err = decode[DescriptionUpdated](e)
	case TypeTracksAdded:
		evt, err = decode[TracksAdded](e)
	case TypeTracksRemoved:
		evt, err = decode[TracksRemoved](e)
	case TypePlaylistDeleted:
		evt, err = decode[PlaylistDeleted](e)
	default:
		return nil, fmt.Errorf("%w: unknown event type %q", shared.ErrParse, e.Payload.Type)
	}

	if err != nil {
		return nil, err
	}
	return evt, nil
}

func decode[E Event](e Envelope) (E, error) {
	var evt E
	if err := json.Unmarshal(e.Payload.Data, &evt); err != nil {
		return evt, fmt.Errorf("%w: decode %s: %v", shared.ErrParse, e.Payload.Type, err)
	}
	return evt, nil
}
