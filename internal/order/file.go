package order

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"sync"
	"time"
)

// FileStore persists orders as a single JSON array in one file. Every
// append re-reads the file, appends the new order, and rewrites the whole
// array. A store-level mutex serializes appends so concurrent orders are
// never lost to a read-modify-write race.
type FileStore struct {
	mu   sync.Mutex
	path string
	now  func() time.Time
}

// FileStoreOpts holds parameters for creating a FileStore.
type FileStoreOpts struct {
	Path string
	Now  func() time.Time // defaults to time.Now; injectable for tests
}

// NewFileStore creates a FileStore backed by the given path. The file is
// created on first append.
func NewFileStore(opts FileStoreOpts) (*FileStore, error) {
	if opts.Path == "" {
		return nil, fmt.Errorf("order: file store: path is required")
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &FileStore{path: opts.Path, now: now}, nil
}

// Append stamps the order with the current local time and rewrites the
// store. Write failures are surfaced to the caller so the conversation
// step can fail without losing the user's data.
func (s *FileStore) Append(o Order) (Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	orders := s.readAll()
	o.Timestamp = s.now().Format(TimestampLayout)
	orders = append(orders, o)

	data, err := json.MarshalIndent(orders, "", "    ")
	if err != nil {
		return Order{}, fmt.Errorf("order: marshal store: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return Order{}, fmt.Errorf("order: write %s: %w", s.path, err)
	}
	return o, nil
}

// LoadAll returns all persisted orders, oldest first.
func (s *FileStore) LoadAll() ([]Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.readAll(), nil
}

// readAll reads the store file. A missing or corrupt file reads as empty;
// corruption is logged and the next append rewrites a valid array.
// Callers must hold s.mu.
func (s *FileStore) readAll() []Order {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Printf("order: read %s: %v (treating as empty)", s.path, err)
		}
		return nil
	}
	var orders []Order
	if err := json.Unmarshal(data, &orders); err != nil {
		log.Printf("order: parse %s: %v (treating as empty)", s.path, err)
		return nil
	}
	return orders
}
