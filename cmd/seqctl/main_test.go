package main

import (
	"bytes"
	"context"
	"net"
	"strings"
	"testing"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/test/bufconn"

	"xdao.co/seqnet/dispatch"
	"xdao.co/seqnet/engine"
	"xdao.co/seqnet/keys"
	"xdao.co/seqnet/storage"
	"xdao.co/seqnet/transport/grpcseq"
)

// useEngine points every request command at one in-process node reached
// over an in-memory gRPC connection, so requests are signed and verified.
func useEngine(t *testing.T) {
	t.Helper()
	eng, err := engine.New(storage.NewMemory())
	if err != nil {
		t.Fatalf("engine.New: %v", err)
	}

	lis := bufconn.Listen(1024 * 1024)
	srv := grpc.NewServer()
	grpcseq.RegisterSequenceServer(srv, &grpcseq.Server{Service: dispatch.NewHandler(nil, eng, eng)})
	go func() {
		_ = srv.Serve(lis)
	}()
	t.Cleanup(srv.Stop)

	dialer := func(context.Context, string) (net.Conn, error) { return lis.Dial() }
	prev := dialService
	dialService = func(_ string, timeout time.Duration, signer keys.Signer) (dispatch.Service, func() error, error) {
		c, err := grpcseq.Dial("bufnet", grpcseq.DialOptions{
			Extra: []grpc.DialOption{grpc.WithContextDialer(dialer)},
		})
		if err != nil {
			return nil, nil, err
		}
		c.Timeout = timeout
		c.Signer = signer
		return c, c.Close, nil
	}
	t.Cleanup(func() { dialService = prev })
}

func runOK(t *testing.T, args ...string) string {
	t.Helper()
	var out, errOut bytes.Buffer
	if code := run(args, &out, &errOut); code != 0 {
		t.Fatalf("run %v: exit %d\nstderr: %s", args, code, errOut.String())
	}
	return out.String()
}

func runFail(t *testing.T, want int, args ...string) string {
	t.Helper()
	var out, errOut bytes.Buffer
	if code := run(args, &out, &errOut); code != want {
		t.Fatalf("run %v: exit %d want %d\nstdout: %s", args, code, want, out.String())
	}
	return errOut.String()
}

const aliceSeed = "0x0101010101010101010101010101010101010101010101010101010101010101"

func TestUsage(t *testing.T) {
	out := runOK(t, "help")
	if !strings.Contains(out, "seqctl set-perms") {
		t.Fatalf("usage missing set-perms:\n%s", out)
	}
	runFail(t, 2)
	runFail(t, 2, "compact")
}

func TestKeyCommands(t *testing.T) {
	dir := t.TempDir()
	out := runOK(t, "key", "init", "--key-dir", dir, "--name", "alice", "--seed-hex", aliceSeed)
	if !strings.Contains(out, "Created key: ed25519:") {
		t.Fatalf("unexpected init output %q", out)
	}
	runFail(t, 1, "key", "init", "--key-dir", dir, "--name", "alice", "--seed-hex", aliceSeed)
	runOK(t, "key", "derive", "--key-dir", dir, "--from", "alice", "--label", "ops")

	list := runOK(t, "key", "list", "--key-dir", dir)
	if !strings.Contains(list, "alice\t") || !strings.Contains(list, "alice-ops\t") {
		t.Fatalf("unexpected list %q", list)
	}
	show := runOK(t, "key", "show", "--key-dir", dir, "--name", "alice")
	if !strings.HasPrefix(show, "ed25519:") {
		t.Fatalf("unexpected show %q", show)
	}
	runFail(t, 2, "key", "init", "--key-dir", dir)
}

func TestRequestLifecycle(t *testing.T) {
	useEngine(t)
	dir := t.TempDir()
	runOK(t, "key", "init", "--key-dir", dir, "--name", "alice", "--seed-hex", aliceSeed)
	runOK(t, "key", "init", "--key-dir", dir, "--name", "bob")
	bob := strings.TrimSpace(runOK(t, "key", "show", "--key-dir", dir, "--name", "bob"))

	common := func(args ...string) []string {
		return append(args, "--key-dir", dir, "--seq", "journal", "--tag", "5", "--private")
	}

	runOK(t, common("new", "--as", "alice", "--entry", "one")...)
	runOK(t, common("append", "--as", "alice", "--entry", "two")...)

	last := runOK(t, common("last", "--as", "alice")...)
	if !strings.Contains(last, `"index": 1`) {
		t.Fatalf("unexpected last entry %s", last)
	}

	errOut := runFail(t, 1, common("get", "--as", "bob")...)
	if !strings.Contains(errOut, "AccessDenied") {
		t.Fatalf("expected AccessDenied, got %q", errOut)
	}

	runOK(t, common("set-perms", "--as", "alice", "--grant", bob+"=read")...)
	runOK(t, common("range", "--as", "bob", "--start", "0", "--end", "1", "--end-from-end=false")...)

	perms := runOK(t, common("user-perms", "--as", "bob", "--user", bob)...)
	if !strings.Contains(perms, `"read": true`) {
		t.Fatalf("unexpected user permissions %s", perms)
	}

	runOK(t, common("set-owner", "--as", "alice", "--owner", bob)...)
	owner := runOK(t, common("owner", "--as", "bob")...)
	if !strings.Contains(owner, bob) {
		t.Fatalf("owner not transferred: %s", owner)
	}

	runOK(t, common("delete", "--as", "bob")...)
	errOut = runFail(t, 1, common("get", "--as", "bob")...)
	if !strings.Contains(errOut, "NoSuchData") {
		t.Fatalf("expected NoSuchData, got %q", errOut)
	}
}

func TestPublicDeleteRejected(t *testing.T) {
	useEngine(t)
	dir := t.TempDir()
	runOK(t, "key", "init", "--key-dir", dir, "--name", "alice", "--seed-hex", aliceSeed)

	runOK(t, "new", "--key-dir", dir, "--as", "alice", "--seq", "board")
	errOut := runFail(t, 1, "delete", "--key-dir", dir, "--as", "alice", "--seq", "board")
	if !strings.Contains(errOut, "data command failed") || !strings.Contains(errOut, "InvalidOperation") {
		t.Fatalf("unexpected error %q", errOut)
	}
}

func TestSplitGrant(t *testing.T) {
	who, rights, err := splitGrant("anyone=append, admin")
	if err != nil || who != "anyone" || !rights["append"] || !rights["admin"] || rights["read"] {
		t.Fatalf("got %q %v %v", who, rights, err)
	}
	for _, bad := range []string{"anyone", "=read", "anyone=write"} {
		if _, _, err := splitGrant(bad); err == nil {
			t.Fatalf("%q: expected error", bad)
		}
	}
}

func TestNameCommand(t *testing.T) {
	name := strings.TrimSpace(runOK(t, "name", "journal"))
	if again := strings.TrimSpace(runOK(t, "name", name)); again != name {
		t.Fatalf("multibase name not accepted verbatim: %q vs %q", again, name)
	}
}
