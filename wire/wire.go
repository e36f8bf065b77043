// Package wire encodes Sequence requests and responses for transport.
//
// Every message is a JSON envelope {"type": <name>, "body": {...}} where name
// is the request's diagnostic name. Decoders reject names they do not know
// with ErrUnknownVariant, so a peer running an older version can tell an
// unsupported request from a corrupt one.
package wire

import (
	"encoding/json"
	"errors"
	"fmt"

	"xdao.co/seqnet/messaging"
)

var (
	ErrUnknownVariant = errors.New("wire: unknown variant")
	ErrMalformed      = errors.New("wire: malformed message")
)

// IsUnknownVariant reports whether err was caused by an unknown type name.
func IsUnknownVariant(err error) bool { return errors.Is(err, ErrUnknownVariant) }

const cmdResultType = "CmdResult"

type envelope struct {
	Type string          `json:"type"`
	Body json.RawMessage `json:"body"`
}

func encode(typ string, body any) ([]byte, error) {
	b, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("wire: encode %s: %w", typ, err)
	}
	return json.Marshal(envelope{Type: typ, Body: b})
}

func decodeEnvelope(b []byte) (envelope, error) {
	var env envelope
	if err := json.Unmarshal(b, &env); err != nil {
		return env, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if env.Type == "" {
		return env, fmt.Errorf("%w: missing type", ErrMalformed)
	}
	if len(env.Body) == 0 {
		return env, fmt.Errorf("%w: missing body", ErrMalformed)
	}
	return env, nil
}

func decodeBody[T any](body json.RawMessage) (T, error) {
	var v T
	if err := json.Unmarshal(body, &v); err != nil {
		return v, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return v, nil
}

// errorJSON is the wire form of a failure. Errors that are not
// *messaging.Error travel as KindInternal with their message.
type errorJSON struct {
	Kind    messaging.ErrorKind `json:"kind"`
	Message string              `json:"message,omitempty"`
}

func encodeError(err error) *errorJSON {
	var e *messaging.Error
	if errors.As(err, &e) {
		return &errorJSON{Kind: e.Kind, Message: e.Message}
	}
	return &errorJSON{Kind: messaging.KindInternal, Message: err.Error()}
}

func (e *errorJSON) decode() error {
	if e.Kind == "" {
		return fmt.Errorf("%w: error without kind", ErrMalformed)
	}
	return messaging.NewError(e.Kind, e.Message)
}
