// Package store persists work-in-progress dataset snapshots in a local
// BoltDB database, keyed by bucket file name.
package store

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/abbrevlab/annotab/internal/domain"
)

var bucketDrafts = []byte("drafts")

// draftRecord wraps a snapshot with the time it was taken.
type draftRecord struct {
	SavedAt time.Time     `json:"saved_at"`
	Rows    []*domain.Row `json:"rows"`
}

// DraftStore implements domain.DraftStore using BoltDB.
type DraftStore struct {
	db *bolt.DB
	mu sync.RWMutex // Protects memory cache

	// In-memory cache for hot-path reads (promoted on access)
	cache map[string][]byte
}

// NewDraftStore opens (or creates) the draft database under baseCacheDir,
// namespaced by the storage endpoint so two buckets never share drafts.
// An empty baseCacheDir yields a memory-only store with no persistence.
func NewDraftStore(baseCacheDir, endpoint string) (*DraftStore, error) {
	if baseCacheDir == "" {
		return &DraftStore{cache: make(map[string][]byte)}, nil
	}

	dir := baseCacheDir
	if endpoint != "" {
		dir = filepath.Join(baseCacheDir, hashEndpoint(endpoint))
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	dbPath := filepath.Join(dir, "annotab.db")
	db, err := bolt.Open(dbPath, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt db: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketDrafts)
		return err
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &DraftStore{db: db, cache: make(map[string][]byte)}, nil
}

func hashEndpoint(endpoint string) string {
	normalized := strings.TrimRight(strings.ToLower(endpoint), "/")
	hash := sha256.Sum256([]byte(normalized))
	return hex.EncodeToString(hash[:6])
}

// GetDraft returns the saved rows for a file, if a snapshot exists.
func (s *DraftStore) GetDraft(fileName string) ([]*domain.Row, bool) {
	var rec draftRecord
	if !s.get(fileName, &rec) {
		return nil, false
	}
	return rec.Rows, true
}

// SaveDraft snapshots the rows for a file.
func (s *DraftStore) SaveDraft(fileName string, rows []*domain.Row) error {
	return s.set(fileName, draftRecord{SavedAt: time.Now(), Rows: rows})
}

// DropDraft removes the snapshot for a file.
func (s *DraftStore) DropDraft(fileName string) {
	s.mu.Lock()
	delete(s.cache, fileName)
	s.mu.Unlock()

	if s.db == nil {
		return
	}
	s.db.Update(func(tx *bolt.Tx) error {
		if b := tx.Bucket(bucketDrafts); b != nil {
			b.Delete([]byte(fileName))
		}
		return nil
	})
}

// Close releases the underlying database.
func (s *DraftStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *DraftStore) get(key string, dest interface{}) bool {
	// Check memory cache first
	s.mu.RLock()
	if data, ok := s.cache[key]; ok {
		s.mu.RUnlock()
		return json.Unmarshal(data, dest) == nil
	}
	s.mu.RUnlock()

	if s.db == nil {
		return false
	}

	var data []byte
	s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketDrafts)
		if b == nil {
			return nil
		}
		if v := b.Get([]byte(key)); v != nil {
			data = make([]byte, len(v))
			copy(data, v)
		}
		return nil
	})

	if data == nil {
		return false
	}

	// Promote to memory cache
	s.mu.Lock()
	s.cache[key] = data
	s.mu.Unlock()

	return json.Unmarshal(data, dest) == nil
}

func (s *DraftStore) set(key string, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.cache[key] = data
	s.mu.Unlock()

	if s.db == nil {
		return nil // Memory-only mode
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketDrafts).Put([]byte(key), data)
	})
}
