// Package bundle moves chunks between stores as a deterministic TAR archive,
// optionally carrying a manifest that describes how the chunks fit together.
package bundle

import (
	"archive/tar"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/ipfs/go-cid"

	"xdao.co/seqnet/cidutil"
	"xdao.co/seqnet/storage"
)

// FormatVersion is the current bundle index schema version.
const FormatVersion = 1

const (
	indexPath    = "index.json"
	manifestPath = "manifest.json"
	blocksDir    = "blocks/"
)

var epoch0 = time.Unix(0, 0).UTC()

// ExportOptions controls bundle export behavior.
type ExportOptions struct {
	// Manifest is stored verbatim as manifest.json and handed back by Import.
	Manifest []byte
	// IncludeIndex controls whether index.json is included.
	IncludeIndex bool
}

// Export writes a deterministic TAR bundle containing the chunks for the given CIDs.
//
// The bundle bytes are deterministic: entry order is lexicographic and TAR headers are normalized.
// All exported bytes are validated against their CIDs.
func Export(ctx context.Context, w io.Writer, store storage.Store, ids []cid.Cid, opts ExportOptions) error {
	if store == nil {
		return fmt.Errorf("bundle: nil store")
	}

	uniq := make(map[string]cid.Cid, len(ids))
	for _, id := range ids {
		if !id.Defined() {
			return storage.ErrInvalidCID
		}
		uniq[id.String()] = id
	}
	cidStrings := make([]string, 0, len(uniq))
	for s := range uniq {
		cidStrings = append(cidStrings, s)
	}
	sort.Strings(cidStrings)

	tw := tar.NewWriter(w)
	fail := func(err error) error {
		_ = tw.Close()
		return err
	}

	blocks := make([]indexBlock, 0, len(cidStrings))
	for _, s := range cidStrings {
		id := uniq[s]
		b, err := store.Get(ctx, id)
		if err != nil {
			return fail(err)
		}
		if !cidutil.Verify(id, b) {
			return fail(storage.ErrCIDMismatch)
		}
		if err := writeFile(tw, blocksDir+s, b); err != nil {
			return fail(err)
		}
		blocks = append(blocks, indexBlock{CID: s, Size: len(b)})
	}

	if opts.IncludeIndex {
		b, err := marshalIndexJSON(indexJSON{
			Version:   FormatVersion,
			CIDCodec:  "raw",
			Multihash: "sha3-256",
			Blocks:    blocks,
		})
		if err != nil {
			return fail(err)
		}
		if err := writeFile(tw, indexPath, b); err != nil {
			return fail(err)
		}
	}
	if opts.Manifest != nil {
		if err := writeFile(tw, manifestPath, opts.Manifest); err != nil {
			return fail(err)
		}
	}
	return tw.Close()
}

// ImportOptions controls bundle import behavior.
type ImportOptions struct {
	// IgnoreUnknown controls whether unknown TAR entries are ignored.
	//
	// Default (false) is fail-closed: unknown entries cause Import to return an error.
	IgnoreUnknown bool
}

// Import reads a bundle from r, stores every chunk in store and returns the
// manifest, or nil when the bundle has none.
func Import(ctx context.Context, r io.Reader, store storage.Store) ([]byte, error) {
	return ImportWithOptions(ctx, r, store, ImportOptions{})
}

// ImportWithOptions validates that each chunk matches both its entry name
// and its computed CID before storing it.
func ImportWithOptions(ctx context.Context, r io.Reader, store storage.Store, opts ImportOptions) ([]byte, error) {
	if store == nil {
		return nil, fmt.Errorf("bundle: nil store")
	}

	tr := tar.NewReader(r)
	seen := map[string]struct{}{}
	var manifest []byte

	for {
		h, err := tr.Next()
		if err == io.EOF {
			return manifest, nil
		}
		if err != nil {
			return nil, err
		}
		name := cleanTarPath(h.Name)
		if name == "" {
			return nil, fmt.Errorf("bundle: invalid entry path: %q", h.Name)
		}
		if h.Typeflag != tar.TypeReg {
			if opts.IgnoreUnknown {
				continue
			}
			return nil, fmt.Errorf("bundle: unexpected tar entry type: %v (%s)", h.Typeflag, name)
		}

		switch {
		case name == indexPath:
			_, _ = io.Copy(io.Discard, tr)
			continue
		case name == manifestPath:
			if manifest, err = io.ReadAll(tr); err != nil {
				return nil, err
			}
			continue
		case !strings.HasPrefix(name, blocksDir):
			if opts.IgnoreUnknown {
				_, _ = io.Copy(io.Discard, tr)
				continue
			}
			return nil, fmt.Errorf("bundle: unknown entry: %s", name)
		}

		id, derr := cid.Decode(strings.TrimPrefix(name, blocksDir))
		if derr != nil || !id.Defined() {
			return nil, storage.ErrInvalidCID
		}
		payload, err := io.ReadAll(tr)
		if err != nil {
			return nil, err
		}
		if !cidutil.Verify(id, payload) {
			return nil, storage.ErrCIDMismatch
		}

		key := id.String()
		if _, ok := seen[key]; ok {
			return nil, fmt.Errorf("bundle: duplicate block entry: %s", key)
		}
		seen[key] = struct{}{}

		putID, err := store.Put(ctx, payload)
		if err != nil {
			return nil, err
		}
		if putID != id {
			return nil, storage.ErrCIDMismatch
		}
	}
}

type indexJSON struct {
	Version   int          `json:"version"`
	CIDCodec  string       `json:"cidCodec"`
	Multihash string       `json:"multihash"`
	Blocks    []indexBlock `json:"blocks"`
}

type indexBlock struct {
	CID  string `json:"cid"`
	Size int    `json:"size"`
}

func marshalIndexJSON(idx indexJSON) ([]byte, error) {
	// indexJSON is composed only of structs + slices; encoding/json will be deterministic.
	b, err := json.Marshal(idx)
	if err != nil {
		return nil, err
	}
	return append(b, '\n'), nil
}

func writeFile(tw *tar.Writer, name string, content []byte) error {
	hdr := &tar.Header{
		Name:     name,
		Mode:     0o644,
		Size:     int64(len(content)),
		ModTime:  epoch0,
		Typeflag: tar.TypeReg,
	}
	if err := tw.WriteHeader(hdr); err != nil {
		return err
	}
	_, err := io.Copy(tw, bytes.NewReader(content))
	return err
}

func cleanTarPath(name string) string {
	name = strings.TrimSpace(name)
	name = strings.ReplaceAll(name, "\\", "/")
	name = strings.TrimPrefix(name, "./")
	name = strings.TrimPrefix(name, "/")
	if name == "" {
		return ""
	}

	parts := strings.Split(name, "/")
	for _, part := range parts {
		if part == "" || part == "." || part == ".." {
			return ""
		}
	}
	return strings.Join(parts, "/")
}
