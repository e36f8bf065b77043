package grpcseq

import (
	"context"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"xdao.co/seqnet/dispatch"
	"xdao.co/seqnet/keys"
	"xdao.co/seqnet/messaging"
	"xdao.co/seqnet/wire"
)

// Client implements dispatch.Service over a Sequence gRPC service.
type Client struct {
	cc     *grpc.ClientConn
	client SequenceClient

	// Timeout applies per RPC when non-zero.
	Timeout time.Duration

	// Signer signs calls made on behalf of its public key. Calls for any
	// other non-zero requester fail with AccessDenied before reaching the
	// node.
	Signer keys.Signer
}

var _ dispatch.Service = (*Client)(nil)

type DialOptions struct {
	// Timeout applies to the initial dial when non-zero.
	Timeout time.Duration

	// MaxMsgBytes sets both send/recv max sizes when non-zero.
	MaxMsgBytes int

	// Extra is appended to the default dial options.
	Extra []grpc.DialOption
}

func Dial(target string, opts DialOptions) (*Client, error) {
	dialOpts := []grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithStatsHandler(otelgrpc.NewClientHandler()),
	}
	if opts.MaxMsgBytes > 0 {
		dialOpts = append(dialOpts,
			grpc.WithDefaultCallOptions(
				grpc.MaxCallRecvMsgSize(opts.MaxMsgBytes),
				grpc.MaxCallSendMsgSize(opts.MaxMsgBytes),
			),
		)
	}
	dialOpts = append(dialOpts, opts.Extra...)

	ctx := context.Background()
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	cc, err := grpc.DialContext(ctx, target, dialOpts...)
	if err != nil {
		return nil, err
	}
	return &Client{cc: cc, client: NewSequenceClient(cc)}, nil
}

func (c *Client) Close() error {
	if c == nil || c.cc == nil {
		return nil
	}
	return c.cc.Close()
}

// Read sends op and returns the node's response. Transport failures are
// reported in op's response shape.
func (c *Client) Read(ctx context.Context, requester keys.PublicKey, op messaging.SequenceRead) messaging.QueryResponse {
	in, err := wire.EncodeRead(op)
	if err != nil {
		return messaging.ReadErrorResponse(op, messaging.WrapError(messaging.KindInvalidOperation, err.Error(), err))
	}
	ctx, err = c.sign(ctx, requester, readFullMethod, in)
	if err != nil {
		return messaging.ReadErrorResponse(op, err)
	}
	ctx, cancel := c.ctx(ctx)
	defer cancel()

	reply, err := c.client.Read(ctx, wrapperspb.Bytes(in))
	if err != nil {
		return messaging.ReadErrorResponse(op, mapRPC(err))
	}
	resp, err := wire.DecodeQueryResponse(reply.GetValue())
	if err != nil {
		return messaging.ReadErrorResponse(op, messaging.WrapError(messaging.KindInternal, "decode response", err))
	}
	if resp.Kind() != op.Kind() {
		return messaging.ReadErrorResponse(op, messaging.NewError(messaging.KindInternal,
			"node answered "+messaging.ReadName(op)+" with "+resp.Kind().String()))
	}
	return resp
}

func (c *Client) Write(ctx context.Context, requester keys.PublicKey, op messaging.SequenceWrite) *messaging.CmdError {
	in, err := wire.EncodeWrite(op)
	if err != nil {
		return messaging.WriteErrorResponse(op, messaging.WrapError(messaging.KindInvalidOperation, err.Error(), err))
	}
	ctx, err = c.sign(ctx, requester, writeFullMethod, in)
	if err != nil {
		return messaging.WriteErrorResponse(op, err)
	}
	ctx, cancel := c.ctx(ctx)
	defer cancel()

	reply, err := c.client.Write(ctx, wrapperspb.Bytes(in))
	if err != nil {
		return messaging.WriteErrorResponse(op, mapRPC(err))
	}
	cmdErr, err := wire.DecodeCmdResult(reply.GetValue())
	if err != nil {
		return messaging.WriteErrorResponse(op, messaging.WrapError(messaging.KindInternal, "decode response", err))
	}
	return cmdErr
}

func (c *Client) sign(ctx context.Context, requester keys.PublicKey, method string, body []byte) (context.Context, error) {
	if requester.IsZero() {
		return ctx, nil
	}
	if c.Signer == nil || c.Signer.PublicKey() != requester {
		return ctx, messaging.NewError(messaging.KindAccessDenied, "no signing key for requester "+requester.String())
	}
	ctx, err := signRequest(ctx, c.Signer, method, body, time.Now())
	if err != nil {
		return ctx, messaging.WrapError(messaging.KindInternal, "sign request", err)
	}
	return ctx, nil
}

func (c *Client) ctx(parent context.Context) (context.Context, context.CancelFunc) {
	if c.Timeout <= 0 {
		return context.WithCancel(parent)
	}
	return context.WithTimeout(parent, c.Timeout)
}
