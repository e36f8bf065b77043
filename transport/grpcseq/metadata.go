package grpcseq

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"time"

	"google.golang.org/grpc/metadata"

	"xdao.co/seqnet/keys"
)

// Metadata keys. A call naming a requester must carry a signature by that
// key over the method, the signing time and the request body.
const (
	RequesterKey = "seq-requester"
	SignatureKey = "seq-signature"
	SignedAtKey  = "seq-signed-at"
)

// DefaultMaxSkew bounds the distance between a signature's time and the
// server clock.
const DefaultMaxSkew = 5 * time.Minute

var (
	ErrUnsigned       = errors.New("grpcseq: requester without valid signature metadata")
	ErrStaleSignature = errors.New("grpcseq: signature time outside the accepted window")
)

func signedPayload(method string, signedAt int64, body []byte) []byte {
	out := make([]byte, 0, len(method)+len(body)+32)
	out = append(out, "seqnet-request-v1\x00"...)
	out = append(out, method...)
	out = append(out, 0)
	out = strconv.AppendInt(out, signedAt, 10)
	out = append(out, 0)
	return append(out, body...)
}

// signRequest attaches the signer's key and a signature over body to
// outgoing calls made with ctx.
func signRequest(ctx context.Context, s keys.Signer, method string, body []byte, now time.Time) (context.Context, error) {
	at := now.UnixNano()
	sig, err := s.Sign(signedPayload(method, at, body))
	if err != nil {
		return ctx, err
	}
	return metadata.AppendToOutgoingContext(ctx,
		RequesterKey, s.PublicKey().String(),
		SignatureKey, base64.StdEncoding.EncodeToString(sig),
		SignedAtKey, strconv.FormatInt(at, 10),
	), nil
}

// Authenticate returns the verified requester of an incoming call to method.
// Calls without a requester are anonymous (zero key, nil error).
func Authenticate(ctx context.Context, method string, body []byte, now time.Time, maxSkew time.Duration) (keys.PublicKey, error) {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return keys.PublicKey{}, nil
	}
	who := first(md, RequesterKey)
	if who == "" {
		return keys.PublicKey{}, nil
	}
	k, err := keys.Parse(who)
	if err != nil {
		return keys.PublicKey{}, err
	}

	sig, err := base64.StdEncoding.DecodeString(first(md, SignatureKey))
	if err != nil || len(sig) == 0 {
		return keys.PublicKey{}, ErrUnsigned
	}
	at, err := strconv.ParseInt(first(md, SignedAtKey), 10, 64)
	if err != nil {
		return keys.PublicKey{}, ErrUnsigned
	}
	if skew := now.Sub(time.Unix(0, at)); skew > maxSkew || skew < -maxSkew {
		return keys.PublicKey{}, fmt.Errorf("%w: %s", ErrStaleSignature, skew.Round(time.Second))
	}
	if err := keys.Verify(k, signedPayload(method, at, body), sig); err != nil {
		return keys.PublicKey{}, err
	}
	return k, nil
}

func first(md metadata.MD, key string) string {
	if vals := md.Get(key); len(vals) > 0 {
		return vals[0]
	}
	return ""
}
