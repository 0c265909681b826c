// Package assets implements the server-side REST asset store: five
// resource kinds, each a flat directory of pretty-printed JSON files,
// with sanitized names and on-demand directory creation.
package assets

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/lanarena/relay/internal/room"
)

// Kinds are the five resource kinds the asset store serves.
var Kinds = []string{"maps", "menus", "heroes", "weapon-models", "sounds"}

func validKind(kind string) bool {
	for _, k := range Kinds {
		if k == kind {
			return true
		}
	}
	return false
}

// Store is a filesystem-backed asset store rooted at BaseDir, one
// subdirectory per kind.
type Store struct {
	BaseDir string
}

// NewStore returns a Store rooted at baseDir. Kind directories are
// created lazily, on first write.
func NewStore(baseDir string) *Store {
	return &Store{BaseDir: baseDir}
}

func (s *Store) dir(kind string) string {
	return filepath.Join(s.BaseDir, kind)
}

func (s *Store) path(kind, name string) string {
	return filepath.Join(s.dir(kind), name+".json")
}

// modelFilePath is the binary .glb sidecar a weapon-model definition may
// reference, stored alongside its JSON file under the same name.
func (s *Store) modelFilePath(name string) string {
	return filepath.Join(s.dir("weapon-models"), name+".glb")
}

// List returns the sanitized names of every asset under kind.
func (s *Store) List(kind string) ([]string, error) {
	if !validKind(kind) {
		return nil, ErrInvalidKind
	}

	entries, err := os.ReadDir(s.dir(kind))
	if os.IsNotExist(err) {
		return []string{}, nil
	}
	if err != nil {
		return nil, ErrIOFailure
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		names = append(names, strings.TrimSuffix(e.Name(), ".json"))
	}
	sort.Strings(names)
	return names, nil
}

// Get reads one asset's JSON body.
func (s *Store) Get(kind, name string) (json.RawMessage, error) {
	if !validKind(kind) {
		return nil, ErrInvalidKind
	}
	if !room.ValidName(name) {
		return nil, ErrInvalidName
	}

	data, err := os.ReadFile(s.path(kind, name))
	if os.IsNotExist(err) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, ErrIOFailure
	}
	return json.RawMessage(data), nil
}

// Put writes body (pretty-printed) to <kind>/<name>.json, creating the
// kind directory if absent. Writes go to a temp file and are renamed into
// place, avoiding a reader ever observing a partially written file.
func (s *Store) Put(kind, name string, body json.RawMessage) error {
	if !validKind(kind) {
		return ErrInvalidKind
	}
	if !room.ValidName(name) {
		return ErrInvalidName
	}

	var pretty interface{}
	if err := json.Unmarshal(body, &pretty); err != nil {
		return ErrIOFailure
	}
	formatted, err := json.MarshalIndent(pretty, "", "  ")
	if err != nil {
		return ErrIOFailure
	}

	dir := s.dir(kind)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return ErrIOFailure
	}

	tmp, err := os.CreateTemp(dir, name+".*.tmp")
	if err != nil {
		return ErrIOFailure
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(formatted); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return ErrIOFailure
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return ErrIOFailure
	}
	if err := os.Rename(tmpPath, s.path(kind, name)); err != nil {
		os.Remove(tmpPath)
		return ErrIOFailure
	}
	return nil
}

// GetModelFile reads a weapon-model's binary .glb sidecar.
func (s *Store) GetModelFile(name string) ([]byte, error) {
	if !room.ValidName(name) {
		return nil, ErrInvalidName
	}

	data, err := os.ReadFile(s.modelFilePath(name))
	if os.IsNotExist(err) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, ErrIOFailure
	}
	return data, nil
}

// PutModelFile writes a weapon-model's binary .glb sidecar, creating the
// weapon-models directory if absent. Same temp-file-then-rename pattern
// as Put, skipping the JSON validation step since this is opaque bytes.
func (s *Store) PutModelFile(name string, data []byte) error {
	if !room.ValidName(name) {
		return ErrInvalidName
	}

	dir := s.dir("weapon-models")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return ErrIOFailure
	}

	tmp, err := os.CreateTemp(dir, name+".*.glb.tmp")
	if err != nil {
		return ErrIOFailure
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return ErrIOFailure
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return ErrIOFailure
	}
	if err := os.Rename(tmpPath, s.modelFilePath(name)); err != nil {
		os.Remove(tmpPath)
		return ErrIOFailure
	}
	return nil
}

// Delete unlinks an asset. Deleting a name that doesn't exist returns
// ErrNotFound rather than succeeding silently, so callers can distinguish
// "already gone" from "deleted".
func (s *Store) Delete(kind, name string) error {
	if !validKind(kind) {
		return ErrInvalidKind
	}
	if !room.ValidName(name) {
		return ErrInvalidName
	}

	err := os.Remove(s.path(kind, name))
	if os.IsNotExist(err) {
		return ErrNotFound
	}
	if err != nil {
		return ErrIOFailure
	}
	return nil
}
