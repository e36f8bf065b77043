package wire

import (
	"encoding/json"
	"fmt"

	"xdao.co/seqnet/messaging"
)

// EncodeRead encodes a read request.
func EncodeRead(op messaging.SequenceRead) ([]byte, error) {
	return encode(messaging.ReadName(op), op)
}

// DecodeRead decodes a read request produced by EncodeRead.
func DecodeRead(b []byte) (messaging.SequenceRead, error) {
	env, err := decodeEnvelope(b)
	if err != nil {
		return nil, err
	}
	k, ok := messaging.ParseReadKind(env.Type)
	if !ok {
		return nil, fmt.Errorf("%w: read %q", ErrUnknownVariant, env.Type)
	}
	return readDecoders[k](env.Body)
}

// EncodeWrite encodes a write request.
func EncodeWrite(op messaging.SequenceWrite) ([]byte, error) {
	return encode(messaging.WriteName(op), op)
}

// DecodeWrite decodes a write request produced by EncodeWrite.
func DecodeWrite(b []byte) (messaging.SequenceWrite, error) {
	env, err := decodeEnvelope(b)
	if err != nil {
		return nil, err
	}
	k, ok := messaging.ParseWriteKind(env.Type)
	if !ok {
		return nil, fmt.Errorf("%w: write %q", ErrUnknownVariant, env.Type)
	}
	return writeDecoders[k](env.Body)
}

func readDecoder[T messaging.SequenceRead]() func(json.RawMessage) (messaging.SequenceRead, error) {
	return func(body json.RawMessage) (messaging.SequenceRead, error) {
		v, err := decodeBody[T](body)
		if err != nil {
			return nil, err
		}
		return v, nil
	}
}

func writeDecoder[T messaging.SequenceWrite]() func(json.RawMessage) (messaging.SequenceWrite, error) {
	return func(body json.RawMessage) (messaging.SequenceWrite, error) {
		v, err := decodeBody[T](body)
		if err != nil {
			return nil, err
		}
		return v, nil
	}
}

var readDecoders = map[messaging.ReadKind]func(json.RawMessage) (messaging.SequenceRead, error){
	messaging.ReadGet:                readDecoder[messaging.GetSequence](),
	messaging.ReadGetRange:           readDecoder[messaging.GetSequenceRange](),
	messaging.ReadGetLastEntry:       readDecoder[messaging.GetSequenceLastEntry](),
	messaging.ReadGetPermissions:     readDecoder[messaging.GetSequencePermissions](),
	messaging.ReadGetUserPermissions: readDecoder[messaging.GetSequenceUserPermissions](),
	messaging.ReadGetOwner:           readDecoder[messaging.GetSequenceOwner](),
}

var writeDecoders = map[messaging.WriteKind]func(json.RawMessage) (messaging.SequenceWrite, error){
	messaging.WriteNew:                writeDecoder[messaging.NewSequence](),
	messaging.WriteEdit:               writeDecoder[messaging.EditSequence](),
	messaging.WriteDelete:             writeDecoder[messaging.DeleteSequence](),
	messaging.WriteSetOwner:           writeDecoder[messaging.SetSequenceOwner](),
	messaging.WriteSetPubPermissions:  writeDecoder[messaging.SetPubPermissions](),
	messaging.WriteSetPrivPermissions: writeDecoder[messaging.SetPrivPermissions](),
}
