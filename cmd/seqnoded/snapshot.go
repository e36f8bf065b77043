package main

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"xdao.co/seqnet/engine"
)

// restoreSnapshot loads path into eng. A missing file is not an error.
func restoreSnapshot(ctx context.Context, eng *engine.Engine, path string) (bool, error) {
	if path == "" {
		return false, nil
	}
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	defer f.Close()
	if err := eng.Restore(ctx, f); err != nil {
		return false, err
	}
	return true, nil
}

// writeSnapshot replaces path atomically with the current engine state.
func writeSnapshot(ctx context.Context, eng *engine.Engine, path string) error {
	if path == "" {
		return nil
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".snapshot-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if err := eng.Snapshot(ctx, tmp); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
