// Package messages is the wire protocol between arena clients and the server.
// Every message is a tagged value: its MessageType names it on the wire, and
// Decode turns a frame back into one of the concrete types below. Unknown
// tags fail closed with ErrUnknownType.
package messages

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
)

// Message type tags.
const (
	TypeJoin        = "join"
	TypeInput       = "input"
	TypePingTest    = "pingTest"
	TypeWelcome     = "welcome"
	TypeSnapshot    = "snapshot"
	TypeStart       = "start"
	TypeScoreUpdate = "scoreUpdate"
	TypeRoundWinner = "roundWinner"
	TypeMatchWinner = "matchWinner"
	TypePongTest    = "pongTest"
)

var (
	ErrUnknownType = errors.New("unknown message type")
	ErrMalformed   = errors.New("malformed message")
)

// Message is any value of the catalogue.
type Message interface {
	MessageType() string
}

var registry = map[string]func() Message{
	TypeJoin:        func() Message { return &Join{} },
	TypeInput:       func() Message { return &Input{} },
	TypePingTest:    func() Message { return &PingTest{} },
	TypeWelcome:     func() Message { return &Welcome{} },
	TypeSnapshot:    func() Message { return &Snapshot{} },
	TypeStart:       func() Message { return &Start{} },
	TypeScoreUpdate: func() Message { return &ScoreUpdate{} },
	TypeRoundWinner: func() Message { return &RoundWinner{} },
	TypeMatchWinner: func() Message { return &MatchWinner{} },
	TypePongTest:    func() Message { return &PongTest{} },
}

func newMessage(typ string) (Message, error) {
	factory, ok := registry[typ]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, typ)
	}
	return factory(), nil
}

// Codec encodes and decodes whole frames. Decode always returns a pointer to
// one of the catalogue types.
type Codec interface {
	Encode(Message) ([]byte, error)
	Decode([]byte) (Message, error)
	Binary() bool
}

// JSON is the text codec browsers speak: a flat object whose "type" field
// carries the tag next to the message fields.
var JSON Codec = jsonCodec{}

// Msgpack is the binary codec: an envelope of the tag and the encoded body.
var Msgpack Codec = msgpackCodec{}

type jsonCodec struct{}

func (jsonCodec) Binary() bool { return false }

func (jsonCodec) Encode(m Message) ([]byte, error) {
	body, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", m.MessageType(), err)
	}
	tag, _ := json.Marshal(m.MessageType())

	var buf bytes.Buffer
	buf.Grow(len(body) + len(tag) + 10)
	buf.WriteString(`{"type":`)
	buf.Write(tag)
	if len(body) > 2 {
		buf.WriteByte(',')
		buf.Write(body[1:])
	} else {
		buf.WriteByte('}')
	}
	return buf.Bytes(), nil
}

func (jsonCodec) Decode(data []byte) (Message, error) {
	var head struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	msg, err := newMessage(head.Type)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(data, msg); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformed, head.Type, err)
	}
	return msg, nil
}

type envelope struct {
	Type string             `msgpack:"type"`
	Data msgpack.RawMessage `msgpack:"data"`
}

type msgpackCodec struct{}

func (msgpackCodec) Binary() bool { return true }

func (msgpackCodec) Encode(m Message) ([]byte, error) {
	body, err := msgpack.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", m.MessageType(), err)
	}
	out, err := msgpack.Marshal(envelope{Type: m.MessageType(), Data: body})
	if err != nil {
		return nil, fmt.Errorf("encode envelope %s: %w", m.MessageType(), err)
	}
	return out, nil
}

func (msgpackCodec) Decode(data []byte) (Message, error) {
	var env envelope
	if err := msgpack.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	msg, err := newMessage(env.Type)
	if err != nil {
		return nil, err
	}
	if len(env.Data) == 0 {
		return msg, nil
	}
	if err := msgpack.Unmarshal(env.Data, msg); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformed, env.Type, err)
	}
	return msg, nil
}

// Validate reports inbound messages that decode but cannot be acted on.
func Validate(m Message) error {
	switch msg := m.(type) {
	case *Join:
		if msg.Match == "" {
			return fmt.Errorf("%w: join without match", ErrMalformed)
		}
	}
	return nil
}
