package outbox

import (
	"encoding/json"
	"time"
)

// ActorRef identifies who produced the event. OwnerKey covers both signed-in
// buyers and anonymous sessions; Operator flags back-office actions.
type ActorRef struct {
	OwnerKey string `json:"ownerKey,omitempty"`
	Operator bool   `json:"operator,omitempty"`
}

// PayloadEnvelope is the stable payload structure stored in outbox_events.
type PayloadEnvelope struct {
	Version    int             `json:"version"`
	EventID    string          `json:"eventId"`
	OccurredAt time.Time       `json:"occurredAt"`
	Actor      *ActorRef       `json:"actor,omitempty"`
	Data       json.RawMessage `json:"data"`
}
