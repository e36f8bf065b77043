// Package dispatch runs Sequence requests through the node pipeline:
// route to the responsible section, authorize, execute, and correlate any
// failure into the response shape the request expects.
package dispatch

import (
	"context"
	"fmt"

	"xdao.co/seqnet/keys"
	"xdao.co/seqnet/messaging"
	"xdao.co/seqnet/xorname"
)

// Service answers Sequence requests. Reads always yield a response whose kind
// matches the request; writes yield nil on success.
type Service interface {
	Read(ctx context.Context, requester keys.PublicKey, op messaging.SequenceRead) messaging.QueryResponse
	Write(ctx context.Context, requester keys.PublicKey, op messaging.SequenceWrite) *messaging.CmdError
}

// Router decides whether this node holds the data for a destination name.
type Router interface {
	Responsible(name xorname.Name) bool
}

// Authorizer gates a request on the capability it requires.
type Authorizer interface {
	Authorize(ctx context.Context, kind messaging.AuthorisationKind, requester keys.PublicKey, dst xorname.Name) error
}

// Engine executes requests. Errors are returned raw and shaped by the Handler.
type Engine interface {
	Read(ctx context.Context, requester keys.PublicKey, op messaging.SequenceRead) (messaging.QueryResponse, error)
	Write(ctx context.Context, requester keys.PublicKey, op messaging.SequenceWrite) error
}

// AllowAll is an Authorizer that grants every capability.
type AllowAll struct{}

func (AllowAll) Authorize(context.Context, messaging.AuthorisationKind, keys.PublicKey, xorname.Name) error {
	return nil
}

// Everything is a Router responsible for every name.
type Everything struct{}

func (Everything) Responsible(xorname.Name) bool { return true }

type handler struct {
	router     Router
	authorizer Authorizer
	engine     Engine
}

// NewHandler returns the base Service. A nil router or authorizer falls back
// to Everything and AllowAll.
func NewHandler(router Router, authorizer Authorizer, engine Engine) Service {
	if router == nil {
		router = Everything{}
	}
	if authorizer == nil {
		authorizer = AllowAll{}
	}
	return &handler{router: router, authorizer: authorizer, engine: engine}
}

func (h *handler) Read(ctx context.Context, requester keys.PublicKey, op messaging.SequenceRead) messaging.QueryResponse {
	dst := messaging.ReadDestination(op)
	if !h.router.Responsible(dst) {
		return messaging.ReadErrorResponse(op, notResponsible(dst))
	}
	if err := h.authorizer.Authorize(ctx, messaging.ReadAuthorisation(op), requester, dst); err != nil {
		return messaging.ReadErrorResponse(op, err)
	}

	resp, err := h.engine.Read(ctx, requester, op)
	if err != nil {
		return messaging.ReadErrorResponse(op, err)
	}
	if resp == nil || resp.Kind() != op.Kind() {
		return messaging.ReadErrorResponse(op, messaging.NewError(messaging.KindInternal,
			fmt.Sprintf("engine answered %s with %T", messaging.ReadName(op), resp)))
	}
	return resp
}

func (h *handler) Write(ctx context.Context, requester keys.PublicKey, op messaging.SequenceWrite) *messaging.CmdError {
	dst := messaging.WriteDestination(op)
	if !h.router.Responsible(dst) {
		return messaging.WriteErrorResponse(op, notResponsible(dst))
	}
	if err := h.authorizer.Authorize(ctx, messaging.WriteAuthorisation(op), requester, dst); err != nil {
		return messaging.WriteErrorResponse(op, err)
	}
	if err := h.engine.Write(ctx, requester, op); err != nil {
		return messaging.WriteErrorResponse(op, err)
	}
	return nil
}

func notResponsible(dst xorname.Name) error {
	return messaging.NewError(messaging.KindNotResponsible, "name "+dst.Short()+" is outside this section")
}
