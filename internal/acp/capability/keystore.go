package capability

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// ErrKeyNotFound is returned by a KeyStore when the requested key ID has
// no entry.
var ErrKeyNotFound = errors.New("capability: key not found")

// MemoryKeyStore is an in-memory KeyStore, suitable for tests and
// demos — grounded on the teacher's in-memory AuthKeyStore test doubles
// in internal/bfd/auth_test.go.
type MemoryKeyStore struct {
	mu   sync.Mutex
	keys map[uint32][]byte
}

// NewMemoryKeyStore returns an empty MemoryKeyStore.
func NewMemoryKeyStore() *MemoryKeyStore {
	return &MemoryKeyStore{keys: make(map[uint32][]byte)}
}

// Load implements KeyStore.
func (m *MemoryKeyStore) Load(keyID uint32, out []byte) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key, ok := m.keys[keyID]
	if !ok {
		return 0, fmt.Errorf("%w: id %d", ErrKeyNotFound, keyID)
	}

	return copy(out, key), nil
}

// Store implements KeyStore.
func (m *MemoryKeyStore) Store(keyID uint32, key []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored := make([]byte, len(key))
	copy(stored, key)
	m.keys[keyID] = stored

	return nil
}

// Erase implements KeyStore.
func (m *MemoryKeyStore) Erase(keyID uint32) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.keys, keyID)

	return nil
}

// FileKeyStore is a directory-scoped, JSON-on-disk KeyStore — the
// closest idiomatic Go analogue of original_source/acp_nvs.c's flat-file
// NVS keystore. Each key is written to its own file named by hex-encoded
// key ID, via a temp file plus rename so a crash mid-write never leaves
// a corrupt entry.
type FileKeyStore struct {
	dir string
}

// NewFileKeyStore returns a FileKeyStore rooted at dir, creating dir if
// it does not already exist.
func NewFileKeyStore(dir string) (*FileKeyStore, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("capability: create keystore dir: %w", err)
	}

	return &FileKeyStore{dir: dir}, nil
}

type fileKeyRecord struct {
	KeyHex string `json:"key_hex"`
}

func (f *FileKeyStore) path(keyID uint32) string {
	return filepath.Join(f.dir, fmt.Sprintf("%08x.json", keyID))
}

// Load implements KeyStore.
func (f *FileKeyStore) Load(keyID uint32, out []byte) (int, error) {
	data, err := os.ReadFile(f.path(keyID))
	if errors.Is(err, os.ErrNotExist) {
		return 0, fmt.Errorf("%w: id %d", ErrKeyNotFound, keyID)
	}
	if err != nil {
		return 0, fmt.Errorf("capability: read key %d: %w", keyID, err)
	}

	var rec fileKeyRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return 0, fmt.Errorf("capability: decode key %d: %w", keyID, err)
	}

	key, err := hex.DecodeString(rec.KeyHex)
	if err != nil {
		return 0, fmt.Errorf("capability: decode key %d hex: %w", keyID, err)
	}

	return copy(out, key), nil
}

// Store implements KeyStore.
func (f *FileKeyStore) Store(keyID uint32, key []byte) error {
	rec := fileKeyRecord{KeyHex: hex.EncodeToString(key)}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(rec); err != nil {
		return fmt.Errorf("capability: encode key %d: %w", keyID, err)
	}

	tmp, err := os.CreateTemp(f.dir, "key-*.tmp")
	if err != nil {
		return fmt.Errorf("capability: create temp key file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		os.Remove(tmpName)

		return fmt.Errorf("capability: write temp key file: %w", err)
	}

	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("capability: close temp key file: %w", err)
	}

	if err := os.Rename(tmpName, f.path(keyID)); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("capability: install key %d: %w", keyID, err)
	}

	return nil
}

// Erase implements KeyStore.
func (f *FileKeyStore) Erase(keyID uint32) error {
	err := os.Remove(f.path(keyID))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("capability: erase key %d: %w", keyID, err)
	}

	return nil
}
