package dispatch

import (
	"bytes"
	"context"
	"crypto/ed25519"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/go-kit/kit/metrics"
	"github.com/go-kit/log"
	otelcodes "go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"xdao.co/seqnet/engine"
	"xdao.co/seqnet/keys"
	"xdao.co/seqnet/messaging"
	"xdao.co/seqnet/sequence"
	"xdao.co/seqnet/storage"
	"xdao.co/seqnet/xorname"
)

func testKey(t *testing.T, b byte) keys.PublicKey {
	t.Helper()
	k, err := keys.PublicKeyFromSeed(bytes.Repeat([]byte{b}, ed25519.SeedSize))
	if err != nil {
		t.Fatalf("PublicKeyFromSeed: %v", err)
	}
	return k
}

func newEngine(t *testing.T) *engine.Engine {
	t.Helper()
	e, err := engine.New(storage.NewMemory())
	if err != nil {
		t.Fatalf("engine.New: %v", err)
	}
	return e
}

type denyAll struct{ calls int }

func (d *denyAll) Authorize(context.Context, messaging.AuthorisationKind, keys.PublicKey, xorname.Name) error {
	d.calls++
	return messaging.NewError(messaging.KindAccessDenied, "denied")
}

type nowhere struct{}

func (nowhere) Responsible(xorname.Name) bool { return false }

// wrongShape answers every read with an owner response.
type wrongShape struct{ Engine }

func (wrongShape) Read(context.Context, keys.PublicKey, messaging.SequenceRead) (messaging.QueryResponse, error) {
	return messaging.GetSequenceOwnerResponse{}, nil
}

func allReads(addr sequence.Address) []messaging.SequenceRead {
	return []messaging.SequenceRead{
		messaging.GetSequence{Address: addr},
		messaging.GetSequenceRange{Address: addr, Range: sequence.FullRange()},
		messaging.GetSequenceLastEntry{Address: addr},
		messaging.GetSequencePermissions{Address: addr},
		messaging.GetSequenceUserPermissions{Address: addr, User: sequence.Anyone()},
		messaging.GetSequenceOwner{Address: addr},
	}
}

func TestHandler_EndToEnd(t *testing.T) {
	ctx := context.Background()
	owner := testKey(t, 1)
	addr := sequence.PublicAddress(xorname.FromContent([]byte("e2e")), 1)
	svc := NewHandler(nil, nil, newEngine(t))

	if err := svc.Write(ctx, owner, messaging.NewSequence{Data: sequence.Data{
		Address: addr,
		Owner:   sequence.Owner{PublicKey: owner},
	}}); err != nil {
		t.Fatalf("NewSequence: %v", err)
	}
	dot := sequence.Dot{Actor: owner.Name(), Counter: 1}
	if err := svc.Write(ctx, owner, messaging.EditSequence{Op: sequence.NewWriteOp(addr, dot, sequence.Entry("hello"))}); err != nil {
		t.Fatalf("EditSequence: %v", err)
	}

	resp := svc.Read(ctx, keys.PublicKey{}, messaging.GetSequenceLastEntry{Address: addr})
	if err := resp.Err(); err != nil {
		t.Fatalf("GetSequenceLastEntry: %v", err)
	}
	if got := resp.(messaging.GetSequenceLastEntryResponse).Result.Value.Entry; string(got) != "hello" {
		t.Fatalf("entry=%q", got)
	}
}

func TestHandler_PublicDeleteFailsUniformly(t *testing.T) {
	ctx := context.Background()
	owner := testKey(t, 1)
	addr := sequence.PublicAddress(xorname.FromContent([]byte("no delete")), 1)
	svc := NewHandler(nil, nil, newEngine(t))
	if err := svc.Write(ctx, owner, messaging.NewSequence{Data: sequence.Data{Address: addr, Owner: sequence.Owner{PublicKey: owner}}}); err != nil {
		t.Fatalf("NewSequence: %v", err)
	}

	cmdErr := svc.Write(ctx, owner, messaging.DeleteSequence{Address: addr})
	if cmdErr == nil {
		t.Fatalf("expected public delete to fail")
	}
	if !messaging.IsKind(cmdErr, messaging.KindInvalidOperation) {
		t.Fatalf("got %v want InvalidOperation", cmdErr)
	}
}

func TestHandler_NotResponsibleKeepsShape(t *testing.T) {
	addr := sequence.PrivateAddress(xorname.FromContent([]byte("elsewhere")), 1)
	svc := NewHandler(nowhere{}, nil, newEngine(t))

	for _, op := range allReads(addr) {
		resp := svc.Read(context.Background(), testKey(t, 1), op)
		if resp.Kind() != op.Kind() {
			t.Fatalf("%s: response kind %s", messaging.ReadName(op), resp.Kind())
		}
		if !messaging.IsKind(resp.Err(), messaging.KindNotResponsible) {
			t.Fatalf("%s: got %v want NotResponsible", messaging.ReadName(op), resp.Err())
		}
	}

	cmdErr := svc.Write(context.Background(), testKey(t, 1), messaging.DeleteSequence{Address: addr})
	if !messaging.IsKind(cmdErr, messaging.KindNotResponsible) {
		t.Fatalf("got %v want NotResponsible", cmdErr)
	}
}

func TestHandler_AuthorizationFailureKeepsShape(t *testing.T) {
	deny := &denyAll{}
	addr := sequence.PublicAddress(xorname.FromContent([]byte("denied")), 1)
	svc := NewHandler(nil, deny, newEngine(t))

	for _, op := range allReads(addr) {
		resp := svc.Read(context.Background(), keys.PublicKey{}, op)
		if resp.Kind() != op.Kind() || !messaging.IsKind(resp.Err(), messaging.KindAccessDenied) {
			t.Fatalf("%s: got kind %s err %v", messaging.ReadName(op), resp.Kind(), resp.Err())
		}
	}
	if deny.calls != 6 {
		t.Fatalf("authorizer calls=%d want 6", deny.calls)
	}
}

func TestHandler_RoutingIsCheckedBeforeAuthorization(t *testing.T) {
	deny := &denyAll{}
	addr := sequence.PublicAddress(xorname.FromContent([]byte("order")), 1)
	svc := NewHandler(nowhere{}, deny, newEngine(t))
	svc.Read(context.Background(), keys.PublicKey{}, messaging.GetSequence{Address: addr})
	if deny.calls != 0 {
		t.Fatalf("authorizer consulted for a foreign name")
	}
}

func TestHandler_PrefixRouting(t *testing.T) {
	prefix, err := xorname.ParsePrefix("1")
	if err != nil {
		t.Fatalf("ParsePrefix: %v", err)
	}
	var in, out xorname.Name
	in[0] = 0x80
	svc := NewHandler(prefix, nil, newEngine(t))

	resp := svc.Read(context.Background(), keys.PublicKey{}, messaging.GetSequence{Address: sequence.PublicAddress(out, 1)})
	if !messaging.IsKind(resp.Err(), messaging.KindNotResponsible) {
		t.Fatalf("out of prefix: got %v", resp.Err())
	}
	resp = svc.Read(context.Background(), keys.PublicKey{}, messaging.GetSequence{Address: sequence.PublicAddress(in, 1)})
	if !messaging.IsKind(resp.Err(), messaging.KindNoSuchData) {
		t.Fatalf("in prefix: got %v", resp.Err())
	}
}

func TestHandler_WrongResponseShapeIsInternal(t *testing.T) {
	addr := sequence.PublicAddress(xorname.FromContent([]byte("shape")), 1)
	svc := NewHandler(nil, nil, wrongShape{})
	resp := svc.Read(context.Background(), keys.PublicKey{}, messaging.GetSequence{Address: addr})
	if resp.Kind() != messaging.ReadGet || !messaging.IsKind(resp.Err(), messaging.KindInternal) {
		t.Fatalf("got kind %s err %v", resp.Kind(), resp.Err())
	}
}

func TestLoggingService(t *testing.T) {
	var buf bytes.Buffer
	addr := sequence.PrivateAddress(xorname.FromContent([]byte("logged")), 1)
	svc := NewLoggingService(NewHandler(nil, nil, newEngine(t)), log.NewLogfmtLogger(&buf))

	svc.Read(context.Background(), keys.PublicKey{}, messaging.GetSequenceOwner{Address: addr})
	svc.Write(context.Background(), keys.PublicKey{}, messaging.DeleteSequence{Address: addr})

	out := buf.String()
	for _, want := range []string{
		"method=GetOwner",
		"auth=PrivateRead",
		"kind=NoSuchData",
		"method=DeleteSequence",
		"requester=anonymous",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("log output missing %q:\n%s", want, out)
		}
	}
}

type fakeCounter struct {
	mu     *sync.Mutex
	labels []string
	counts map[string]float64
}

func newFakeCounter() *fakeCounter {
	return &fakeCounter{mu: &sync.Mutex{}, counts: map[string]float64{}}
}

func (c *fakeCounter) With(labelValues ...string) metrics.Counter {
	return &fakeCounter{mu: c.mu, labels: append(append([]string{}, c.labels...), labelValues...), counts: c.counts}
}

func (c *fakeCounter) Add(delta float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.counts[strings.Join(c.labels, ",")] += delta
}

type fakeHistogram struct {
	mu     *sync.Mutex
	labels []string
	seen   map[string]int
}

func newFakeHistogram() *fakeHistogram {
	return &fakeHistogram{mu: &sync.Mutex{}, seen: map[string]int{}}
}

func (h *fakeHistogram) With(labelValues ...string) metrics.Histogram {
	return &fakeHistogram{mu: h.mu, labels: append(append([]string{}, h.labels...), labelValues...), seen: h.seen}
}

func (h *fakeHistogram) Observe(float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.seen[strings.Join(h.labels, ",")]++
}

func TestMetricsService(t *testing.T) {
	ctx := context.Background()
	owner := testKey(t, 1)
	addr := sequence.PublicAddress(xorname.FromContent([]byte("metered")), 1)
	requests, latency := newFakeCounter(), newFakeHistogram()
	svc := NewMetricsService(NewHandler(nil, nil, newEngine(t)), requests, latency)

	svc.Write(ctx, owner, messaging.NewSequence{Data: sequence.Data{Address: addr, Owner: sequence.Owner{PublicKey: owner}}})
	svc.Write(ctx, owner, messaging.NewSequence{Data: sequence.Data{Address: addr, Owner: sequence.Owner{PublicKey: owner}}})
	svc.Read(ctx, owner, messaging.GetSequenceOwner{Address: addr})

	want := map[string]float64{
		"op,NewSequence,outcome,ok":         1,
		"op,NewSequence,outcome,DataExists": 1,
		"op,GetOwner,outcome,ok":            1,
	}
	for k, v := range want {
		if requests.counts[k] != v {
			t.Fatalf("counter %s=%v want %v (all: %v)", k, requests.counts[k], v, requests.counts)
		}
	}
	if latency.seen["op,NewSequence"] != 2 || latency.seen["op,GetOwner"] != 1 {
		t.Fatalf("unexpected latency observations %v", latency.seen)
	}
}

func TestOutcome(t *testing.T) {
	if got := outcome(nil); got != "ok" {
		t.Fatalf("nil: %q", got)
	}
	if got := outcome(errors.New("boom")); got != "error" {
		t.Fatalf("foreign: %q", got)
	}
	if got := outcome(messaging.ErrAccessDenied); got != "AccessDenied" {
		t.Fatalf("domain: %q", got)
	}
}

func TestTracingService(t *testing.T) {
	rec := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec))
	defer tp.Shutdown(context.Background())

	addr := sequence.PublicAddress(xorname.FromContent([]byte("traced")), 1)
	svc := NewTracingService(NewHandler(nil, nil, newEngine(t)), tp.Tracer("dispatch_test"))

	svc.Read(context.Background(), keys.PublicKey{}, messaging.GetSequenceRange{Address: addr, Range: sequence.FullRange()})
	svc.Write(context.Background(), keys.PublicKey{}, messaging.SetPubPermissions{Op: sequence.NewWriteOp(addr, sequence.Dot{}, sequence.PubPermissions{})})

	spans := rec.Ended()
	if len(spans) != 2 {
		t.Fatalf("got %d spans want 2", len(spans))
	}
	if spans[0].Name() != "GetSequenceRange" || spans[1].Name() != "SetPublicPermissions" {
		t.Fatalf("span names %q, %q", spans[0].Name(), spans[1].Name())
	}
	for _, s := range spans {
		if len(s.Events()) == 0 {
			t.Fatalf("span %s: error not recorded", s.Name())
		}
		var kind string
		for _, a := range s.Attributes() {
			if a.Key == "seq.error_kind" {
				kind = a.Value.AsString()
			}
		}
		if kind != "NoSuchData" {
			t.Fatalf("span %s: error kind %q", s.Name(), kind)
		}
	}
}

func TestTracingService_SuccessStatusMatches(t *testing.T) {
	rec := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec))
	defer tp.Shutdown(context.Background())

	ctx := context.Background()
	owner := testKey(t, 1)
	addr := sequence.PublicAddress(xorname.FromContent([]byte("traced-ok")), 1)
	svc := NewTracingService(NewHandler(nil, nil, newEngine(t)), tp.Tracer("dispatch_test"))

	if cmdErr := svc.Write(ctx, owner, messaging.NewSequence{Data: sequence.Data{
		Address: addr,
		Owner:   sequence.Owner{PublicKey: owner},
		Entries: []sequence.Entry{sequence.Entry("a")},
	}}); cmdErr != nil {
		t.Fatalf("NewSequence: %v", cmdErr)
	}
	if err := svc.Read(ctx, keys.PublicKey{}, messaging.GetSequenceLastEntry{Address: addr}).Err(); err != nil {
		t.Fatalf("GetSequenceLastEntry: %v", err)
	}

	spans := rec.Ended()
	if len(spans) != 2 {
		t.Fatalf("got %d spans want 2", len(spans))
	}
	for _, s := range spans {
		if s.Status().Code != otelcodes.Ok {
			t.Fatalf("span %s: status %v want Ok", s.Name(), s.Status().Code)
		}
		if len(s.Events()) != 0 {
			t.Fatalf("span %s: unexpected events", s.Name())
		}
	}
}
