package attendance

import (
	"context"
	"sync"
	"time"
)

// memStore is an in-memory SessionStore + RecordStore mirroring the Postgres
// repo's behavior, including the unique (session, student) arbitration.
type memStore struct {
	mu       sync.Mutex
	sessions map[string]Session
	records  []Record
	names    map[string]string
	nims     map[string]string
}

func newMemStore() *memStore {
	return &memStore{
		sessions: make(map[string]Session),
		names:    make(map[string]string),
		nims:     make(map[string]string),
	}
}

func (m *memStore) InsertSession(_ context.Context, s Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now().UTC()
	}
	m.sessions[s.ID] = s
	return nil
}

func (m *memStore) Session(_ context.Context, id string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, nil
	}
	return &s, nil
}

func (m *memStore) Sessions(_ context.Context) ([]Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		out = append(out, s)
	}
	return out, nil
}

func (m *memStore) CloseSession(_ context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return false, nil
	}
	s.IsActive = false
	m.sessions[id] = s
	return true, nil
}

func (m *memStore) DeleteSessionCascade(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[id]; !ok {
		return ErrSessionNotFound
	}
	delete(m.sessions, id)
	kept := m.records[:0]
	for _, rec := range m.records {
		if rec.SessionID != id {
			kept = append(kept, rec)
		}
	}
	m.records = kept
	return nil
}

func (m *memStore) CountActiveSessions(_ context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, s := range m.sessions {
		if s.IsActive {
			n++
		}
	}
	return n, nil
}

func (m *memStore) InsertRecord(_ context.Context, rec Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.records {
		if existing.SessionID == rec.SessionID && existing.StudentID == rec.StudentID {
			return ErrDuplicateScan
		}
	}
	rec.StudentName = m.names[rec.StudentID]
	if nim, ok := m.nims[rec.StudentID]; ok {
		rec.StudentNIM = &nim
	}
	m.records = append(m.records, rec)
	return nil
}

func (m *memStore) Record(_ context.Context, id string) (*Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, rec := range m.records {
		if rec.ID == id {
			r := rec
			return &r, nil
		}
	}
	return nil, nil
}

func (m *memStore) FindRecord(_ context.Context, sessionID, studentID string) (*Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, rec := range m.records {
		if rec.SessionID == sessionID && rec.StudentID == studentID {
			r := rec
			return &r, nil
		}
	}
	return nil, nil
}

func (m *memStore) Roster(_ context.Context, sessionID string, oldestFirst bool) ([]Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Record
	for _, rec := range m.records {
		if rec.SessionID == sessionID {
			out = append(out, rec)
		}
	}
	if !oldestFirst {
		for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
			out[i], out[j] = out[j], out[i]
		}
	}
	return out, nil
}

func (m *memStore) History(_ context.Context, studentID string) ([]HistoryEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []HistoryEntry
	for i := len(m.records) - 1; i >= 0; i-- {
		rec := m.records[i]
		if rec.StudentID != studentID {
			continue
		}
		out = append(out, HistoryEntry{
			ID:         rec.ID,
			SessionID:  rec.SessionID,
			CourseName: m.sessions[rec.SessionID].CourseName,
			ScannedAt:  rec.ScannedAt,
		})
	}
	return out, nil
}

func (m *memStore) CountScansSince(_ context.Context, studentID string, since time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, rec := range m.records {
		if studentID != "" && rec.StudentID != studentID {
			continue
		}
		if !rec.ScannedAt.Before(since) {
			n++
		}
	}
	return n, nil
}

func (m *memStore) CountScansByStudent(_ context.Context, studentID string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, rec := range m.records {
		if rec.StudentID == studentID {
			n++
		}
	}
	return n, nil
}
