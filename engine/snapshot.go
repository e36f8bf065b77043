package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"github.com/ipfs/go-cid"

	"xdao.co/seqnet/sequence"
	"xdao.co/seqnet/storage"
	"xdao.co/seqnet/storage/bundle"
)

const snapshotVersion = 1

type snapshotManifest struct {
	Version   int              `json:"version"`
	Sequences []snapshotRecord `json:"sequences"`
}

type snapshotRecord struct {
	Address     sequence.Address             `json:"address"`
	Owner       sequence.Owner               `json:"owner"`
	Permissions sequence.PermissionsEnvelope `json:"permissions"`
	Entries     []string                     `json:"entries"`
	OwnersIndex uint64                       `json:"owners_index"`
	PermsIndex  uint64                       `json:"permissions_index"`
}

// Snapshot writes every Sequence and the chunks behind its entries to w as a
// bundle. The output is deterministic for a given state.
func (e *Engine) Snapshot(ctx context.Context, w io.Writer) error {
	e.mu.RLock()
	defer e.mu.RUnlock()

	m := snapshotManifest{Version: snapshotVersion, Sequences: make([]snapshotRecord, 0, len(e.seqs))}
	ids := make([]cid.Cid, 0, len(e.refs))
	for id := range e.refs {
		ids = append(ids, id)
	}
	for addr, rec := range e.seqs {
		entries := make([]string, len(rec.entries))
		for i, id := range rec.entries {
			entries[i] = id.String()
		}
		m.Sequences = append(m.Sequences, snapshotRecord{
			Address:     addr,
			Owner:       rec.owner,
			Permissions: sequence.WrapPermissions(rec.perms),
			Entries:     entries,
			OwnersIndex: rec.ownersIndex,
			PermsIndex:  rec.permsIndex,
		})
	}
	sort.Slice(m.Sequences, func(i, j int) bool {
		return m.Sequences[i].Address.String() < m.Sequences[j].Address.String()
	})

	manifest, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("engine: encode snapshot manifest: %w", err)
	}
	return bundle.Export(ctx, w, e.store, ids, bundle.ExportOptions{Manifest: manifest, IncludeIndex: true})
}

// Restore loads a snapshot written by Snapshot. It replaces nothing: every
// Sequence in the snapshot must be absent from the Engine. The snapshot is
// checked in full before any chunk reaches the Engine's store, and a refused
// snapshot leaves the store as it was.
func (e *Engine) Restore(ctx context.Context, r io.Reader) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	staging := storage.NewMemory()
	raw, err := bundle.Import(ctx, r, staging)
	if err != nil {
		return fmt.Errorf("engine: import snapshot: %w", err)
	}
	if raw == nil {
		return fmt.Errorf("engine: snapshot has no manifest")
	}
	var m snapshotManifest
	if err := json.Unmarshal(raw, &m); err != nil {
		return fmt.Errorf("engine: decode snapshot manifest: %w", err)
	}
	if m.Version != snapshotVersion {
		return fmt.Errorf("engine: unsupported snapshot version %d", m.Version)
	}

	seqs := make(map[sequence.Address]*record, len(m.Sequences))
	refs := make(map[cid.Cid]int)
	for _, s := range m.Sequences {
		if _, exists := e.seqs[s.Address]; exists {
			return fmt.Errorf("engine: snapshot sequence %s already present", s.Address)
		}
		if _, dup := seqs[s.Address]; dup {
			return fmt.Errorf("engine: snapshot lists %s twice", s.Address)
		}
		perms, err := s.Permissions.Unwrap()
		if err != nil {
			return fmt.Errorf("engine: snapshot %s: %w", s.Address, err)
		}
		if perms.Kind() != s.Address.Kind {
			return fmt.Errorf("engine: snapshot %s: %s permissions", s.Address, perms.Kind())
		}
		entries := make([]cid.Cid, len(s.Entries))
		for i, str := range s.Entries {
			id, err := cid.Decode(str)
			if err != nil {
				return fmt.Errorf("engine: snapshot %s entry %d: %w", s.Address, i, err)
			}
			ok, err := staging.Has(ctx, id)
			if err != nil {
				return fmt.Errorf("engine: snapshot %s entry %d: %w", s.Address, i, err)
			}
			if !ok {
				return fmt.Errorf("engine: snapshot %s entry %d: chunk %s missing", s.Address, i, id)
			}
			entries[i] = id
			refs[id]++
		}
		seqs[s.Address] = &record{
			owner:       s.Owner,
			perms:       perms,
			entries:     entries,
			ownersIndex: s.OwnersIndex,
			permsIndex:  s.PermsIndex,
		}
	}

	if err := e.adopt(ctx, staging, refs); err != nil {
		return err
	}
	for addr, rec := range seqs {
		e.seqs[addr] = rec
	}
	for id, n := range refs {
		e.refs[id] += n
	}
	return nil
}

// adopt copies the referenced chunks from staging into the Engine's store.
// On failure the chunks it added are deleted again; chunks the Engine
// already referenced are never touched.
func (e *Engine) adopt(ctx context.Context, staging *storage.Memory, refs map[cid.Cid]int) error {
	added := make([]cid.Cid, 0, len(refs))
	for id := range refs {
		if e.refs[id] > 0 {
			continue
		}
		b, err := staging.Get(ctx, id)
		if err == nil {
			_, err = e.store.Put(ctx, b)
		}
		if err != nil {
			for _, done := range added {
				_ = e.store.Delete(ctx, done)
			}
			return fmt.Errorf("engine: restore chunk %s: %w", id, err)
		}
		added = append(added, id)
	}
	return nil
}
