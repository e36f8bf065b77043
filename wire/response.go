package wire

import (
	"encoding/json"
	"fmt"

	"xdao.co/seqnet/messaging"
	"xdao.co/seqnet/sequence"
)

// resultJSON marks success explicitly so that a successful nil value (an
// empty range, unset permissions) is told apart from a missing result.
type resultJSON[T any] struct {
	OK    bool       `json:"ok"`
	Value *T         `json:"value,omitempty"`
	Err   *errorJSON `json:"err,omitempty"`
}

func toJSON[T, U any](r messaging.Result[T], conv func(T) U) resultJSON[U] {
	if r.Err != nil {
		return resultJSON[U]{Err: encodeError(r.Err)}
	}
	v := conv(r.Value)
	return resultJSON[U]{OK: true, Value: &v}
}

func fromJSON[T, U any](body json.RawMessage, conv func(U) (T, error)) (messaging.Result[T], error) {
	in, err := decodeBody[resultJSON[U]](body)
	if err != nil {
		return messaging.Result[T]{}, err
	}
	switch {
	case !in.OK && in.Err != nil && in.Value == nil:
		return messaging.Fail[T](in.Err.decode()), nil
	case in.OK && in.Err == nil:
		var u U
		if in.Value != nil {
			u = *in.Value
		}
		v, err := conv(u)
		if err != nil {
			return messaging.Result[T]{}, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
		return messaging.Ok(v), nil
	default:
		return messaging.Result[T]{}, fmt.Errorf("%w: result must be either ok or carry an err", ErrMalformed)
	}
}

// unwrapPermissions maps the empty envelope back to nil permissions.
func unwrapPermissions(e sequence.PermissionsEnvelope) (sequence.Permissions, error) {
	if e == (sequence.PermissionsEnvelope{}) {
		return nil, nil
	}
	return e.Unwrap()
}

func unwrapUserPermissions(e sequence.UserPermissionsEnvelope) (sequence.UserPermissions, error) {
	if e == (sequence.UserPermissionsEnvelope{}) {
		return nil, nil
	}
	return e.Unwrap()
}

func same[T any](v T) T { return v }

func sameOK[T any](v T) (T, error) { return v, nil }

// EncodeQueryResponse encodes a read response under the name of the read it
// answers.
func EncodeQueryResponse(resp messaging.QueryResponse) ([]byte, error) {
	var body any
	switch r := resp.(type) {
	case messaging.GetSequenceResponse:
		body = toJSON(r.Result, same[sequence.Data])
	case messaging.GetSequenceRangeResponse:
		body = toJSON(r.Result, same[[]sequence.Entry])
	case messaging.GetSequenceLastEntryResponse:
		body = toJSON(r.Result, same[sequence.IndexedEntry])
	case messaging.GetSequencePermissionsResponse:
		body = toJSON(r.Result, sequence.WrapPermissions)
	case messaging.GetSequenceUserPermissionsResponse:
		body = toJSON(r.Result, sequence.WrapUserPermissions)
	case messaging.GetSequenceOwnerResponse:
		body = toJSON(r.Result, same[sequence.Owner])
	default:
		return nil, fmt.Errorf("%w: response %T", ErrUnknownVariant, resp)
	}
	return encode(resp.Kind().String(), body)
}

// DecodeQueryResponse decodes a response produced by EncodeQueryResponse.
func DecodeQueryResponse(b []byte) (messaging.QueryResponse, error) {
	env, err := decodeEnvelope(b)
	if err != nil {
		return nil, err
	}
	k, ok := messaging.ParseReadKind(env.Type)
	if !ok {
		return nil, fmt.Errorf("%w: response %q", ErrUnknownVariant, env.Type)
	}
	return responseDecoders[k](env.Body)
}

var responseDecoders = map[messaging.ReadKind]func(json.RawMessage) (messaging.QueryResponse, error){
	messaging.ReadGet: func(body json.RawMessage) (messaging.QueryResponse, error) {
		r, err := fromJSON(body, sameOK[sequence.Data])
		return messaging.GetSequenceResponse{Result: r}, err
	},
	messaging.ReadGetRange: func(body json.RawMessage) (messaging.QueryResponse, error) {
		r, err := fromJSON(body, sameOK[[]sequence.Entry])
		return messaging.GetSequenceRangeResponse{Result: r}, err
	},
	messaging.ReadGetLastEntry: func(body json.RawMessage) (messaging.QueryResponse, error) {
		r, err := fromJSON(body, sameOK[sequence.IndexedEntry])
		return messaging.GetSequenceLastEntryResponse{Result: r}, err
	},
	messaging.ReadGetPermissions: func(body json.RawMessage) (messaging.QueryResponse, error) {
		r, err := fromJSON(body, unwrapPermissions)
		return messaging.GetSequencePermissionsResponse{Result: r}, err
	},
	messaging.ReadGetUserPermissions: func(body json.RawMessage) (messaging.QueryResponse, error) {
		r, err := fromJSON(body, unwrapUserPermissions)
		return messaging.GetSequenceUserPermissionsResponse{Result: r}, err
	},
	messaging.ReadGetOwner: func(body json.RawMessage) (messaging.QueryResponse, error) {
		r, err := fromJSON(body, sameOK[sequence.Owner])
		return messaging.GetSequenceOwnerResponse{Result: r}, err
	},
}

type cmdResultJSON struct {
	Err *errorJSON `json:"err,omitempty"`
}

// EncodeCmdResult encodes the outcome of a write. A nil e is success.
func EncodeCmdResult(e *messaging.CmdError) ([]byte, error) {
	var body cmdResultJSON
	if e != nil {
		var cause error = e
		if e.Err != nil {
			cause = e.Err
		}
		body.Err = encodeError(cause)
	}
	return encode(cmdResultType, body)
}

// DecodeCmdResult decodes the outcome of a write. It returns nil, nil for
// success.
func DecodeCmdResult(b []byte) (*messaging.CmdError, error) {
	env, err := decodeEnvelope(b)
	if err != nil {
		return nil, err
	}
	if env.Type != cmdResultType {
		return nil, fmt.Errorf("%w: command result %q", ErrUnknownVariant, env.Type)
	}
	in, err := decodeBody[cmdResultJSON](env.Body)
	if err != nil {
		return nil, err
	}
	if in.Err == nil {
		return nil, nil
	}
	return &messaging.CmdError{Err: in.Err.decode()}, nil
}
