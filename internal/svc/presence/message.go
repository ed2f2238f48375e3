package presence

import (
	"errors"
	"fmt"
	"sort"
	"time"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

var ErrMalformedMessage = errors.New("malformed gateway message")

type Opcode uint8

const (
	OpcodeEvent      Opcode = 0 // R - Server dispatches an event
	OpcodeHello      Opcode = 1 // R - Server greets the client with the heartbeat interval
	OpcodeInitialize Opcode = 2 // S - Subscribe to a set of user ids
	OpcodeHeartbeat  Opcode = 3 // S - Keep the connection alive
)

func (op Opcode) String() string {
	switch op {
	case OpcodeEvent:
		return "EVENT"
	case OpcodeHello:
		return "HELLO"
	case OpcodeInitialize:
		return "INITIALIZE"
	case OpcodeHeartbeat:
		return "HEARTBEAT"
	}

	return fmt.Sprintf("UNKNOWN(%d)", uint8(op))
}

type EventType string

const (
	EventTypeInitState      EventType = "INIT_STATE"
	EventTypePresenceUpdate EventType = "PRESENCE_UPDATE"
)

// Outbound

type Message[D any] struct {
	Op   Opcode `json:"op"`
	Data D      `json:"d,omitempty"`
}

func NewMessage[D any](op Opcode, data D) Message[D] {
	return Message[D]{
		Op:   op,
		Data: data,
	}
}

type InitializePayload struct {
	SubscribeToIDs []string `json:"subscribe_to_ids"`
}

func encodeInitialize(ids []string) ([]byte, error) {
	if ids == nil {
		ids = []string{}
	}

	return json.Marshal(NewMessage(OpcodeInitialize, InitializePayload{SubscribeToIDs: ids}))
}

func encodeHeartbeat() ([]byte, error) {
	return json.Marshal(Message[*struct{}]{Op: OpcodeHeartbeat})
}

// Inbound

type MessageKind uint8

const (
	KindUnknown MessageKind = iota
	KindHello
	KindEvent
)

// Inbound is a decoded gateway message; the concrete type is one of
// Hello, Event or Unknown.
type Inbound interface {
	Kind() MessageKind
}

type Hello struct {
	HeartbeatInterval time.Duration
}

type Event struct {
	Type EventType
	// Records carried by the event, ordered by user id. Empty when the payload was null.
	Records []Record
}

type Unknown struct {
	Op Opcode
}

func (Hello) Kind() MessageKind { return KindHello }
func (Event) Kind() MessageKind { return KindEvent }
func (Unknown) Kind() MessageKind { return KindUnknown }

type envelope struct {
	Op   *Opcode             `json:"op"`
	Type *string             `json:"t"`
	Data jsoniter.RawMessage `json:"d"`
}

type helloPayload struct {
	HeartbeatInterval *int64 `json:"heartbeat_interval"`
}

// Decode parses a raw gateway frame
func Decode(b []byte) (Inbound, error) {
	var env envelope
	if err := json.Unmarshal(b, &env); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrMalformedMessage, err.Error())
	}

	if env.Op == nil {
		return nil, fmt.Errorf("%w: missing op", ErrMalformedMessage)
	}

	switch *env.Op {
	case OpcodeHello:
		hello := Hello{}
		if isNull(env.Data) {
			return hello, nil
		}

		var p helloPayload
		if err := json.Unmarshal(env.Data, &p); err != nil {
			return nil, fmt.Errorf("%w: hello: %s", ErrMalformedMessage, err.Error())
		}

		if p.HeartbeatInterval != nil && *p.HeartbeatInterval > 0 {
			hello.HeartbeatInterval = time.Duration(*p.HeartbeatInterval) * time.Millisecond
		}

		return hello, nil
	case OpcodeEvent:
		evt := Event{}
		if env.Type != nil {
			evt.Type = EventType(*env.Type)
		}

		records, err := decodeRecords(env.Data)
		if err != nil {
			return nil, fmt.Errorf("%w: event %s: %s", ErrMalformedMessage, evt.Type, err.Error())
		}

		evt.Records = records

		return evt, nil
	}

	return Unknown{Op: *env.Op}, nil
}

// decodeRecords accepts either a single presence object or, as sent in
// INIT_STATE for multi-user subscriptions, a map of user id to presence.
func decodeRecords(data jsoniter.RawMessage) ([]Record, error) {
	if isNull(data) {
		return nil, nil
	}

	var fields map[string]jsoniter.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, err
	}

	if _, ok := fields["discord_user"]; ok {
		var rec Record
		if err := json.Unmarshal(data, &rec); err != nil {
			return nil, err
		}

		if rec.UserID() == "" {
			return nil, errors.New("presence without a user id")
		}

		return []Record{rec}, nil
	}

	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	records := make([]Record, 0, len(keys))

	for _, k := range keys {
		if isNull(fields[k]) {
			continue
		}

		var rec Record
		if err := json.Unmarshal(fields[k], &rec); err != nil {
			return nil, err
		}

		if rec.UserID() == "" {
			rec.DiscordUser.ID = k
		}

		records = append(records, rec)
	}

	return records, nil
}

func isNull(data jsoniter.RawMessage) bool {
	return len(data) == 0 || string(data) == "null"
}
