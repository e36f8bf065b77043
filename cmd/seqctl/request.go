package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"
	"time"

	"xdao.co/seqnet/dispatch"
	"xdao.co/seqnet/keys"
	"xdao.co/seqnet/messaging"
	"xdao.co/seqnet/sequence"
	"xdao.co/seqnet/transport/grpcseq"
	"xdao.co/seqnet/xorname"
)

// dialService is replaced in tests with an in-process service.
// A nil signer sends anonymous requests.
var dialService = func(target string, timeout time.Duration, signer keys.Signer) (dispatch.Service, func() error, error) {
	c, err := grpcseq.Dial(target, grpcseq.DialOptions{Timeout: timeout})
	if err != nil {
		return nil, nil, err
	}
	c.Timeout = timeout
	c.Signer = signer
	return c, c.Close, nil
}

// request carries what every request command needs to build its operation.
type request struct {
	addr      sequence.Address
	requester keys.PublicKey
	dot       sequence.Dot
}

// builder registers command-specific flags and returns the constructor run
// after parsing. The constructor returns a SequenceRead or a SequenceWrite.
type builder func(fs *flag.FlagSet) func(r request) (any, error)

var requestCommands = map[string]builder{
	"get": func(*flag.FlagSet) func(request) (any, error) {
		return func(r request) (any, error) { return messaging.GetSequence{Address: r.addr}, nil }
	},
	"last": func(*flag.FlagSet) func(request) (any, error) {
		return func(r request) (any, error) { return messaging.GetSequenceLastEntry{Address: r.addr}, nil }
	},
	"owner": func(*flag.FlagSet) func(request) (any, error) {
		return func(r request) (any, error) { return messaging.GetSequenceOwner{Address: r.addr}, nil }
	},
	"perms": func(*flag.FlagSet) func(request) (any, error) {
		return func(r request) (any, error) { return messaging.GetSequencePermissions{Address: r.addr}, nil }
	},
	"range": func(fs *flag.FlagSet) func(request) (any, error) {
		start := fs.Uint64("start", 0, "Start offset")
		startFromEnd := fs.Bool("start-from-end", false, "Count --start from the end")
		end := fs.Uint64("end", 0, "End offset (exclusive)")
		endFromEnd := fs.Bool("end-from-end", true, "Count --end from the end")
		return func(r request) (any, error) {
			return messaging.GetSequenceRange{Address: r.addr, Range: sequence.Range{
				Start: index(*start, *startFromEnd),
				End:   index(*end, *endFromEnd),
			}}, nil
		}
	},
	"user-perms": func(fs *flag.FlagSet) func(request) (any, error) {
		user := fs.String("user", "", "User key, or anyone")
		return func(r request) (any, error) {
			var u sequence.User
			if err := u.UnmarshalText([]byte(*user)); err != nil {
				return nil, fmt.Errorf("invalid --user: %w", err)
			}
			return messaging.GetSequenceUserPermissions{Address: r.addr, User: u}, nil
		}
	},
	"new": func(fs *flag.FlagSet) func(request) (any, error) {
		var entries stringsFlag
		fs.Var(&entries, "entry", "Initial entry (repeatable)")
		return func(r request) (any, error) {
			d := sequence.Data{Address: r.addr, Owner: sequence.Owner{PublicKey: r.requester}}
			for _, e := range entries {
				d.Entries = append(d.Entries, sequence.Entry(e))
			}
			return messaging.NewSequence{Data: d}, nil
		}
	},
	"append": func(fs *flag.FlagSet) func(request) (any, error) {
		entry := fs.String("entry", "", "Entry to append")
		return func(r request) (any, error) {
			return messaging.EditSequence{Op: sequence.NewWriteOp(r.addr, r.dot, sequence.Entry(*entry))}, nil
		}
	},
	"delete": func(*flag.FlagSet) func(request) (any, error) {
		return func(r request) (any, error) { return messaging.DeleteSequence{Address: r.addr}, nil }
	},
	"set-owner": func(fs *flag.FlagSet) func(request) (any, error) {
		owner := fs.String("owner", "", "New owner key")
		return func(r request) (any, error) {
			k, err := keys.Parse(*owner)
			if err != nil {
				return nil, fmt.Errorf("invalid --owner: %w", err)
			}
			return messaging.SetSequenceOwner{Op: sequence.NewWriteOp(r.addr, r.dot, sequence.Owner{PublicKey: k})}, nil
		}
	},
	"set-perms": func(fs *flag.FlagSet) func(request) (any, error) {
		var grants stringsFlag
		fs.Var(&grants, "grant", "<user>=<read,append,admin> (repeatable)")
		return func(r request) (any, error) { return permissionsOp(r, grants) }
	},
}

func index(n uint64, fromEnd bool) sequence.Index {
	if fromEnd {
		return sequence.FromEnd(n)
	}
	return sequence.FromStart(n)
}

type stringsFlag []string

func (s *stringsFlag) String() string     { return strings.Join(*s, ",") }
func (s *stringsFlag) Set(v string) error { *s = append(*s, v); return nil }

// parseSeqName accepts a multibase content name or hashes any other text.
func parseSeqName(s string) xorname.Name {
	if n, err := xorname.Parse(s); err == nil {
		return n
	}
	return xorname.FromContent([]byte(s))
}

func permissionsOp(r request, grants []string) (any, error) {
	if r.addr.IsPub() {
		p := sequence.PubPermissions{Entries: map[sequence.User]sequence.PubUserPermissions{}}
		for _, g := range grants {
			who, rights, err := splitGrant(g)
			if err != nil {
				return nil, err
			}
			var u sequence.User
			if err := u.UnmarshalText([]byte(who)); err != nil {
				return nil, fmt.Errorf("invalid grant %q: %w", g, err)
			}
			if rights["read"] {
				return nil, fmt.Errorf("invalid grant %q: public sequences are readable by anyone", g)
			}
			p.Entries[u] = sequence.PubUserPermissions{Append: rights["append"], Admin: rights["admin"]}
		}
		return messaging.SetPubPermissions{Op: sequence.NewWriteOp(r.addr, r.dot, p)}, nil
	}

	p := sequence.PrivPermissions{Entries: map[keys.PublicKey]sequence.PrivUserPermissions{}}
	for _, g := range grants {
		who, rights, err := splitGrant(g)
		if err != nil {
			return nil, err
		}
		k, err := keys.Parse(who)
		if err != nil {
			return nil, fmt.Errorf("invalid grant %q: %w", g, err)
		}
		p.Entries[k] = sequence.PrivUserPermissions{Read: rights["read"], Append: rights["append"], Admin: rights["admin"]}
	}
	return messaging.SetPrivPermissions{Op: sequence.NewWriteOp(r.addr, r.dot, p)}, nil
}

func splitGrant(g string) (string, map[string]bool, error) {
	who, list, ok := strings.Cut(g, "=")
	if !ok || who == "" {
		return "", nil, fmt.Errorf("invalid grant %q: want <user>=<rights>", g)
	}
	rights := map[string]bool{}
	for _, r := range strings.Split(list, ",") {
		switch r = strings.TrimSpace(r); r {
		case "":
		case "read", "append", "admin":
			rights[r] = true
		default:
			return "", nil, fmt.Errorf("invalid grant %q: unknown right %q", g, r)
		}
	}
	return who, rights, nil
}

func runRequest(build builder, args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("request", flag.ContinueOnError)
	fs.SetOutput(errOut)

	var target, as, seq string
	var tag uint64
	var private bool
	var timeout time.Duration

	fs.StringVar(&target, "target", "127.0.0.1:7420", "seqnoded gRPC address")
	fs.StringVar(&as, "as", "", "Requester key name (empty sends anonymously)")
	fs.StringVar(&seq, "seq", "", "Sequence name: multibase content name or text to hash")
	fs.Uint64Var(&tag, "tag", 0, "Sequence type tag")
	fs.BoolVar(&private, "private", false, "Target a private Sequence")
	fs.DurationVar(&timeout, "timeout", 10*time.Second, "Per-request timeout")
	store := openKeyStore(fs)
	makeOp := build(fs)

	if err := fs.Parse(args); err != nil {
		return 2
	}
	if seq == "" {
		fmt.Fprintln(errOut, "missing --seq")
		return 2
	}

	var r request
	var signer keys.Signer
	r.addr = sequence.PublicAddress(parseSeqName(seq), tag)
	if private {
		r.addr = sequence.PrivateAddress(parseSeqName(seq), tag)
	}
	if as != "" {
		ks, err := store()
		if err != nil {
			fmt.Fprintf(errOut, "keys: %v\n", err)
			return 1
		}
		signer, err = ks.Signer(as)
		if err != nil {
			fmt.Fprintf(errOut, "read key %q: %v\n", as, err)
			return 1
		}
		r.requester = signer.PublicKey()
		r.dot = sequence.Dot{Actor: r.requester.Name(), Counter: uint64(time.Now().UnixNano())}
	}

	op, err := makeOp(r)
	if err != nil {
		fmt.Fprintln(errOut, err)
		return 2
	}

	svc, closeFn, err := dialService(target, timeout, signer)
	if err != nil {
		fmt.Fprintf(errOut, "dial %s: %v\n", target, err)
		return 1
	}
	defer closeFn()

	ctx := context.Background()
	switch v := op.(type) {
	case messaging.SequenceRead:
		resp := svc.Read(ctx, r.requester, v)
		if err := resp.Err(); err != nil {
			fmt.Fprintf(errOut, "%s failed: %v\n", messaging.ReadName(v), err)
			return 1
		}
		if err := printJSON(out, responseValue(resp)); err != nil {
			fmt.Fprintf(errOut, "encode response: %v\n", err)
			return 1
		}
		return 0
	case messaging.SequenceWrite:
		if cmdErr := svc.Write(ctx, r.requester, v); cmdErr != nil {
			fmt.Fprintf(errOut, "%s failed: %v\n", messaging.WriteName(v), cmdErr)
			return 1
		}
		fmt.Fprintf(out, "%s ok: %s\n", messaging.WriteName(v), r.addr)
		return 0
	default:
		fmt.Fprintln(errOut, errors.New("internal: command built no request"))
		return 1
	}
}

func responseValue(resp messaging.QueryResponse) any {
	switch v := resp.(type) {
	case messaging.GetSequenceResponse:
		return v.Result.Value
	case messaging.GetSequenceRangeResponse:
		return v.Result.Value
	case messaging.GetSequenceLastEntryResponse:
		return v.Result.Value
	case messaging.GetSequencePermissionsResponse:
		return sequence.WrapPermissions(v.Result.Value)
	case messaging.GetSequenceUserPermissionsResponse:
		return sequence.WrapUserPermissions(v.Result.Value)
	case messaging.GetSequenceOwnerResponse:
		return v.Result.Value
	default:
		return nil
	}
}

func printJSON(w io.Writer, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(b))
	return err
}
