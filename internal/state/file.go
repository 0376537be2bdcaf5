// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

// Package state persists learned model and policy documents as JSON files.
//
// Documents are read once at startup and written once at the end of a run.
// Writes go through a temporary file and rename, so a reader never sees a
// partial document. There is no locking: when two processes share a state
// file the last writer wins and the other run's learning is lost.
package state

import (
	"bytes"
	"encoding/json"
	"io/fs"
	"os"
	"path/filepath"

	"grimm.is/dnsadvisor/internal/errors"
	"grimm.is/dnsadvisor/internal/logging"
)

// Load decodes the JSON document at path into v.
//
// found is false when path is empty, the file does not exist, or it cannot be
// read; v is left untouched and the caller starts from fresh state. A file
// that exists but does not decode into v is a KindCorrupt error.
func Load(path string, v any) (found bool, err error) {
	if path == "" {
		return false, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			logging.WithComponent("state").Warn("state file unreadable, starting fresh",
				"path", path, "error", err)
		}
		return false, nil
	}

	if len(bytes.TrimSpace(data)) == 0 {
		return false, errors.Attr(errors.New(errors.KindCorrupt, "state file is empty"), "path", path)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, errors.Attr(errors.Wrap(err, errors.KindCorrupt, "decode state file"), "path", path)
	}
	return true, nil
}

// Save writes v to path as indented JSON, replacing any previous document.
func Save(path string, v any) error {
	if path == "" {
		return errors.New(errors.KindValidation, "state path is empty")
	}

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errors.Wrap(err, errors.KindInternal, "encode state")
	}
	data = append(data, '\n')

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Attr(errors.Wrap(err, errors.KindIO, "create state directory"), "path", dir)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return errors.Attr(errors.Wrap(err, errors.KindIO, "create temp file"), "path", path)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return errors.Attr(errors.Wrap(err, errors.KindIO, "write state"), "path", path)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return errors.Attr(errors.Wrap(err, errors.KindIO, "sync state"), "path", path)
	}
	if err := tmp.Close(); err != nil {
		return errors.Attr(errors.Wrap(err, errors.KindIO, "close state"), "path", path)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return errors.Attr(errors.Wrap(err, errors.KindIO, "chmod state"), "path", path)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return errors.Attr(errors.Wrap(err, errors.KindIO, "replace state"), "path", path)
	}
	return nil
}
