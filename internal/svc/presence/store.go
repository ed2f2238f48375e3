package presence

import "sync"

// Store holds at most one record per user id.
//
// Every write bumps a store-wide revision, which lets a slow writer (a one-shot
// fetch) detect that a newer record arrived while it was in flight.
type Store struct {
	mx      sync.RWMutex
	rev     uint64
	records map[string]storeEntry
}

type storeEntry struct {
	record Record
	rev    uint64
}

func NewStore() *Store {
	return &Store{
		records: make(map[string]storeEntry),
	}
}

// Put replaces the record for its user id and returns the new revision
func (s *Store) Put(rec Record) uint64 {
	s.mx.Lock()
	defer s.mx.Unlock()

	return s.putLocked(rec)
}

// PutIfUnchanged stores rec only if the user's record has not been written since rev
func (s *Store) PutIfUnchanged(rec Record, rev uint64) bool {
	s.mx.Lock()
	defer s.mx.Unlock()

	if e, ok := s.records[rec.UserID()]; ok && e.rev > rev {
		return false
	}

	s.putLocked(rec)

	return true
}

func (s *Store) putLocked(rec Record) uint64 {
	s.rev++
	s.records[rec.UserID()] = storeEntry{
		record: rec.Clone(),
		rev:    s.rev,
	}

	return s.rev
}

// Revision returns the current store-wide revision
func (s *Store) Revision() uint64 {
	s.mx.RLock()
	defer s.mx.RUnlock()

	return s.rev
}

func (s *Store) Get(id string) (Record, bool) {
	s.mx.RLock()
	defer s.mx.RUnlock()

	e, ok := s.records[id]
	if !ok {
		return Record{}, false
	}

	return e.record.Clone(), true
}

// Snapshot returns a copy of every record, keyed by user id
func (s *Store) Snapshot() map[string]Record {
	s.mx.RLock()
	defer s.mx.RUnlock()

	out := make(map[string]Record, len(s.records))
	for id, e := range s.records {
		out[id] = e.record.Clone()
	}

	return out
}

func (s *Store) Len() int {
	s.mx.RLock()
	defer s.mx.RUnlock()

	return len(s.records)
}
