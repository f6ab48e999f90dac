package store

import (
	"path/filepath"
	"sync"
	"time"

	"zkl/internal/domain"
)

const sendsFilename = "sends.json"

// JournalFileStore persists in-flight send progress keyed by the send's
// idempotency key.
type JournalFileStore struct {
	dir string
	mu  sync.Mutex
	now func() time.Time
}

// NewJournalFileStore returns a JournalFileStore rooted at dir.
func NewJournalFileStore(dir string) *JournalFileStore {
	return &JournalFileStore{dir: dir, now: time.Now}
}

func (s *JournalFileStore) Get(key string) (domain.SendJournalEntry, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.load()
	if err != nil {
		return domain.SendJournalEntry{}, false, err
	}
	e, ok := entries[key]
	return e, ok, nil
}

// Put stores entry under entry.Key, stamping UpdatedAt.
func (s *JournalFileStore) Put(entry domain.SendJournalEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.load()
	if err != nil {
		return err
	}
	entry.UpdatedAt = s.now().UTC()
	entries[entry.Key] = entry
	return saveState(s.path(), entries)
}

func (s *JournalFileStore) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.load()
	if err != nil {
		return err
	}
	if _, ok := entries[key]; !ok {
		return nil
	}
	delete(entries, key)
	return saveState(s.path(), entries)
}

func (s *JournalFileStore) path() string { return filepath.Join(s.dir, sendsFilename) }

func (s *JournalFileStore) load() (map[string]domain.SendJournalEntry, error) {
	entries := map[string]domain.SendJournalEntry{}
	if _, err := loadState(s.path(), &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

var _ domain.SendJournal = (*JournalFileStore)(nil)
