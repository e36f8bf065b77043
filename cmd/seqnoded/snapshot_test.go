package main

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"xdao.co/seqnet/engine"
	"xdao.co/seqnet/keys"
	"xdao.co/seqnet/messaging"
	"xdao.co/seqnet/sequence"
	"xdao.co/seqnet/storage"
	"xdao.co/seqnet/xorname"
)

func TestSnapshotFile_RoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "node.snapshot")

	eng, err := engine.New(storage.NewMemory())
	require.NoError(t, err)

	restored, err := restoreSnapshot(ctx, eng, path)
	require.NoError(t, err)
	assert.False(t, restored, "missing file restores nothing")

	owner, err := keys.PublicKeyFromSeed(make([]byte, 32))
	require.NoError(t, err)
	addr := sequence.PublicAddress(xorname.FromContent([]byte("daemon")), 1)
	require.NoError(t, eng.Write(ctx, owner, messaging.NewSequence{Data: sequence.Data{
		Address: addr,
		Owner:   sequence.Owner{PublicKey: owner},
		Entries: []sequence.Entry{sequence.Entry("one")},
	}}))

	require.NoError(t, writeSnapshot(ctx, eng, path))
	// A second write replaces the first.
	require.NoError(t, writeSnapshot(ctx, eng, path))

	next, err := engine.New(storage.NewMemory())
	require.NoError(t, err)
	restored, err = restoreSnapshot(ctx, next, path)
	require.NoError(t, err)
	assert.True(t, restored)
	assert.Equal(t, 1, next.Len())

	resp, err := next.Read(ctx, keys.PublicKey{}, messaging.GetSequenceLastEntry{Address: addr})
	require.NoError(t, err)
	assert.Equal(t, "one", string(resp.(messaging.GetSequenceLastEntryResponse).Result.Value.Entry))
}

func TestSnapshotFile_EmptyPathDisabled(t *testing.T) {
	eng, err := engine.New(storage.NewMemory())
	require.NoError(t, err)

	restored, err := restoreSnapshot(context.Background(), eng, "")
	require.NoError(t, err)
	assert.False(t, restored)
	assert.NoError(t, writeSnapshot(context.Background(), eng, ""))
}
