package messaging

import (
	"errors"
	"testing"

	"xdao.co/seqnet/sequence"
)

func TestAllReads_CoverEveryKind(t *testing.T) {
	seen := map[ReadKind]bool{}
	for _, op := range allReads(t, pubAddr()) {
		seen[op.Kind()] = true
	}
	for _, k := range ReadKinds() {
		if !seen[k] {
			t.Fatalf("no test value for read kind %s", k)
		}
	}
	if len(seen) != len(ReadKinds()) {
		t.Fatalf("read kinds and variants disagree: %d vs %d", len(seen), len(ReadKinds()))
	}
}

func TestReadErrorResponse_PreservesKind(t *testing.T) {
	errs := []error{
		NewError(KindNoSuchData, "missing"),
		NewError(KindAccessDenied, ""),
		errors.New("opaque"),
	}
	for _, op := range allReads(t, privAddr()) {
		for _, e := range errs {
			resp := ReadErrorResponse(op, e)
			if resp.Kind() != op.Kind() {
				t.Fatalf("%s: response kind %s", op.Kind(), resp.Kind())
			}
			if resp.Err() != e {
				t.Fatalf("%s: response must carry the original error, got %v", op.Kind(), resp.Err())
			}
		}
	}
}

func TestReadErrorResponse_VariantTypes(t *testing.T) {
	addr := pubAddr()
	e := ErrNoSuchEntry
	cases := []struct {
		op   SequenceRead
		want QueryResponse
	}{
		{GetSequence{Address: addr}, GetSequenceResponse{Result: Fail[sequence.Data](e)}},
		{GetSequenceRange{Address: addr}, GetSequenceRangeResponse{Result: Fail[[]sequence.Entry](e)}},
		{GetSequenceLastEntry{Address: addr}, GetSequenceLastEntryResponse{Result: Fail[sequence.IndexedEntry](e)}},
		{GetSequencePermissions{Address: addr}, GetSequencePermissionsResponse{Result: Fail[sequence.Permissions](e)}},
		{GetSequenceUserPermissions{Address: addr}, GetSequenceUserPermissionsResponse{Result: Fail[sequence.UserPermissions](e)}},
		{GetSequenceOwner{Address: addr}, GetSequenceOwnerResponse{Result: Fail[sequence.Owner](e)}},
	}
	for _, tc := range cases {
		got := ReadErrorResponse(tc.op, e)
		switch want := tc.want.(type) {
		case GetSequenceResponse:
			if g, ok := got.(GetSequenceResponse); !ok || g.Result.Err != want.Result.Err {
				t.Fatalf("GetSequence: got %#v", got)
			}
		case GetSequenceRangeResponse:
			if g, ok := got.(GetSequenceRangeResponse); !ok || g.Result.Err != want.Result.Err {
				t.Fatalf("GetSequenceRange: got %#v", got)
			}
		case GetSequenceLastEntryResponse:
			if g, ok := got.(GetSequenceLastEntryResponse); !ok || g.Result.Err != want.Result.Err {
				t.Fatalf("GetSequenceLastEntry: got %#v", got)
			}
		case GetSequencePermissionsResponse:
			if g, ok := got.(GetSequencePermissionsResponse); !ok || g.Result.Err != want.Result.Err {
				t.Fatalf("GetSequencePermissions: got %#v", got)
			}
		case GetSequenceUserPermissionsResponse:
			if g, ok := got.(GetSequenceUserPermissionsResponse); !ok || g.Result.Err != want.Result.Err {
				t.Fatalf("GetSequenceUserPermissions: got %#v", got)
			}
		case GetSequenceOwnerResponse:
			if g, ok := got.(GetSequenceOwnerResponse); !ok || g.Result.Err != want.Result.Err {
				t.Fatalf("GetSequenceOwner: got %#v", got)
			}
		}
	}
}

func TestReadAuthorisation_DependsOnlyOnVisibility(t *testing.T) {
	for _, op := range allReads(t, pubAddr()) {
		if got := ReadAuthorisation(op); got != PublicRead {
			t.Fatalf("%s on public address: got %s want PublicRead", op.Kind(), got)
		}
	}
	for _, op := range allReads(t, privAddr()) {
		if got := ReadAuthorisation(op); got != PrivateRead {
			t.Fatalf("%s on private address: got %s want PrivateRead", op.Kind(), got)
		}
	}
}

func TestReadDestination_SameForEveryVariant(t *testing.T) {
	addr := pubAddr()
	for _, op := range allReads(t, addr) {
		if got := ReadDestination(op); got != addr.Name {
			t.Fatalf("%s: destination %s want %s", op.Kind(), got, addr.Name)
		}
		if got := ReadAddress(op); got != addr {
			t.Fatalf("%s: address %s want %s", op.Kind(), got, addr)
		}
	}
	if ReadDestination(GetSequence{Address: addr}) != ReadDestination(GetSequenceOwner{Address: addr}) {
		t.Fatalf("Get and GetOwner must resolve to the same name")
	}
}

func TestScenario_GetPublicNotFound(t *testing.T) {
	a := pubAddr()
	op := GetSequence{Address: a}

	resp := ReadErrorResponse(op, ErrNoSuchData)
	got, ok := resp.(GetSequenceResponse)
	if !ok {
		t.Fatalf("expected GetSequenceResponse, got %T", resp)
	}
	if !errors.Is(got.Result.Err, ErrNoSuchData) {
		t.Fatalf("expected NoSuchData, got %v", got.Result.Err)
	}
	if ReadName(op) != "GetSequence" {
		t.Fatalf("unexpected name %q", ReadName(op))
	}
	if ReadAuthorisation(op) != PublicRead {
		t.Fatalf("expected PublicRead")
	}
	if ReadDestination(op) != a.Name {
		t.Fatalf("expected destination %s", a.Name)
	}
}

func TestScenario_RangePassedThrough(t *testing.T) {
	a := pubAddr()
	r := sequence.Range{Start: sequence.FromStart(0), End: sequence.FromEnd(0)}
	op := GetSequenceRange{Address: a, Range: r}
	if ReadDestination(op) != ReadDestination(GetSequence{Address: a}) {
		t.Fatalf("range read must route like Get")
	}
	if op.Range != r {
		t.Fatalf("range must be carried untouched")
	}

	// Nonsensical bounds are not this layer's concern.
	bad := GetSequenceRange{Address: a, Range: sequence.Range{Start: sequence.FromEnd(99), End: sequence.FromStart(1)}}
	if ReadDestination(bad) != a.Name || ReadAuthorisation(bad) != PublicRead {
		t.Fatalf("range contents must not affect classification")
	}
}

type foreignRead struct{ GetSequence }

func (foreignRead) Kind() ReadKind { return numReadKinds }

func TestRead_UnknownKindPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic for unknown read kind")
		}
	}()
	ReadErrorResponse(foreignRead{}, ErrNoSuchData)
}
