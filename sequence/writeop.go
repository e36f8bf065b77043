package sequence

import "xdao.co/seqnet/xorname"

// Dot is the causal context of a mutation: the actor that issued it and the
// actor's own counter. It is carried for the CRDT engine and is not
// interpreted by request handling.
type Dot struct {
	Actor   xorname.Name `json:"actor"`
	Counter uint64       `json:"counter"`
}

// WriteOp binds a mutation payload to the Sequence it targets.
type WriteOp[T any] struct {
	Address Address `json:"address"`
	Dot     Dot     `json:"dot"`
	Payload T       `json:"payload"`
}

// NewWriteOp returns an envelope for payload targeting address.
func NewWriteOp[T any](address Address, dot Dot, payload T) WriteOp[T] {
	return WriteOp[T]{Address: address, Dot: dot, Payload: payload}
}
