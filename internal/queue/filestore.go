package queue

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
)

// FileStore is a Persister backed by a single JSON file holding a key→value
// map. Writes replace the whole file, giving last-write-wins semantics with
// no versioning. An empty path disables persistence entirely.
type FileStore struct {
	mu   sync.Mutex
	path string
}

// NewFileStore builds a file-backed persister at path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Save marshals value and rewrites the state file.
func (f *FileStore) Save(ctx context.Context, key string, value any) error {
	if f.path == "" {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	data, err := f.readLocked()
	if err != nil {
		return err
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	data[key] = raw
	return f.writeLocked(data)
}

// Load unmarshals the value under key into out. A missing file or key is
// reported as absent, not as an error.
func (f *FileStore) Load(ctx context.Context, key string, out any) (bool, error) {
	if f.path == "" {
		return false, nil
	}
	if err := ctx.Err(); err != nil {
		return false, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	data, err := f.readLocked()
	if err != nil {
		return false, err
	}
	raw, ok := data[key]
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return false, err
	}
	return true, nil
}

func (f *FileStore) readLocked() (map[string]json.RawMessage, error) {
	b, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]json.RawMessage{}, nil
		}
		return nil, err
	}
	data := map[string]json.RawMessage{}
	if err := json.Unmarshal(b, &data); err != nil {
		// A corrupt state file should not wedge the daemon; start fresh.
		return map[string]json.RawMessage{}, nil
	}
	return data, nil
}

func (f *FileStore) writeLocked(data map[string]json.RawMessage) error {
	b, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(f.path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(f.path, b, 0o644)
}
