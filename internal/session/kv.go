package session

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
)

// KV is one storage tier: a small synchronous key/value group. Writes are
// whole-key replacements; there is no partial update.
type KV interface {
	Get(key string) (string, bool)
	Set(key, value string) error
	Delete(key string) error
}

// MemKV is an in-memory tier. Used for the ephemeral tier in tests and
// wherever session-scoped state should die with the process.
type MemKV struct {
	mu sync.Mutex
	m  map[string]string
}

func NewMemKV() *MemKV { return &MemKV{m: map[string]string{}} }

func (k *MemKV) Get(key string) (string, bool) {
	k.mu.Lock()
	defer k.mu.Unlock()
	v, ok := k.m[key]
	return v, ok
}

func (k *MemKV) Set(key, value string) error {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.m[key] = value
	return nil
}

func (k *MemKV) Delete(key string) error {
	k.mu.Lock()
	defer k.mu.Unlock()
	delete(k.m, key)
	return nil
}

// FileKV persists a key/value group as one JSON file. Each Set/Delete
// rewrites the whole file, so a group is never observed half-written.
type FileKV struct {
	mu   sync.Mutex
	path string
}

func NewFileKV(path string) *FileKV { return &FileKV{path: path} }

func (k *FileKV) load() map[string]string {
	m := map[string]string{}
	b, err := os.ReadFile(k.path)
	if err != nil {
		return m
	}
	_ = json.Unmarshal(b, &m)
	return m
}

func (k *FileKV) save(m map[string]string) error {
	if len(m) == 0 {
		err := os.Remove(k.path)
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	_ = os.MkdirAll(filepath.Dir(k.path), 0o700)
	b, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(k.path, b, 0o600)
}

func (k *FileKV) Get(key string) (string, bool) {
	k.mu.Lock()
	defer k.mu.Unlock()
	v, ok := k.load()[key]
	return v, ok
}

func (k *FileKV) Set(key, value string) error {
	k.mu.Lock()
	defer k.mu.Unlock()
	m := k.load()
	m[key] = value
	return k.save(m)
}

func (k *FileKV) Delete(key string) error {
	k.mu.Lock()
	defer k.mu.Unlock()
	m := k.load()
	delete(m, key)
	return k.save(m)
}
