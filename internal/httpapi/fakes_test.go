package httpapi

import (
	"context"
	"sync"
	"time"

	"absensi/internal/account"
	"absensi/internal/attendance"
)

// memStore backs the whole API with in-memory state: it implements
// account.Store, attendance.SessionStore and attendance.RecordStore so the
// handlers run against real services end to end.
type memStore struct {
	mu       sync.Mutex
	accounts map[string]account.Account // keyed by email
	profiles map[string]account.Profile
	tokens   map[string]*account.RefreshToken
	sessions map[string]attendance.Session
	records  []attendance.Record
	nextID   int64
}

func newMemStore() *memStore {
	return &memStore{
		accounts: make(map[string]account.Account),
		profiles: make(map[string]account.Profile),
		tokens:   make(map[string]*account.RefreshToken),
		sessions: make(map[string]attendance.Session),
	}
}

func (m *memStore) CreateWithProfile(_ context.Context, acct account.Account, profile account.Profile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.accounts[acct.Email]; exists {
		return account.ErrEmailTaken
	}
	now := time.Now().UTC()
	acct.CreatedAt = now
	profile.CreatedAt = now
	profile.UpdatedAt = now
	m.accounts[acct.Email] = acct
	m.profiles[profile.ID] = profile
	return nil
}

func (m *memStore) AccountByEmail(_ context.Context, email string) (*account.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	acct, ok := m.accounts[email]
	if !ok {
		return nil, nil
	}
	return &acct, nil
}

func (m *memStore) ProfileByID(_ context.Context, id string) (*account.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.profiles[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (m *memStore) ListProfilesByRole(_ context.Context, role account.Role) ([]account.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []account.Profile
	for _, p := range m.profiles {
		if p.Role == role {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *memStore) DeleteProfile(_ context.Context, id string, role account.Role) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.profiles[id]
	if !ok || p.Role != role {
		return false, nil
	}
	delete(m.profiles, id)
	return true, nil
}

func (m *memStore) CountByRole(_ context.Context, role account.Role) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, p := range m.profiles {
		if p.Role == role {
			n++
		}
	}
	return n, nil
}

func (m *memStore) SaveRefreshToken(_ context.Context, accountID, token string, expiresAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	m.tokens[token] = &account.RefreshToken{ID: m.nextID, AccountID: accountID, Token: token, ExpiresAt: expiresAt}
	return nil
}

func (m *memStore) RefreshTokenByValue(_ context.Context, token string) (*account.RefreshToken, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rt, ok := m.tokens[token]
	if !ok {
		return nil, nil
	}
	cp := *rt
	return &cp, nil
}

func (m *memStore) RevokeRefreshToken(_ context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if rt, ok := m.tokens[token]; ok {
		rt.Revoked = true
	}
	return nil
}

func (m *memStore) InsertSession(_ context.Context, s attendance.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now().UTC()
	}
	m.sessions[s.ID] = s
	return nil
}

func (m *memStore) Session(_ context.Context, id string) (*attendance.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, nil
	}
	return &s, nil
}

func (m *memStore) Sessions(_ context.Context) ([]attendance.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]attendance.Session, 0, len(m.sessions))
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
		return attendance.ErrSessionNotFound
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

func (m *memStore) InsertRecord(_ context.Context, rec attendance.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.records {
		if existing.SessionID == rec.SessionID && existing.StudentID == rec.StudentID {
			return attendance.ErrDuplicateScan
		}
	}
	if p, ok := m.profiles[rec.StudentID]; ok {
		rec.StudentName = p.FullName
		rec.StudentNIM = p.NIM
	}
	m.records = append(m.records, rec)
	return nil
}

func (m *memStore) Record(_ context.Context, id string) (*attendance.Record, error) {
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

func (m *memStore) FindRecord(_ context.Context, sessionID, studentID string) (*attendance.Record, error) {
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

func (m *memStore) Roster(_ context.Context, sessionID string, oldestFirst bool) ([]attendance.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []attendance.Record
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

func (m *memStore) History(_ context.Context, studentID string) ([]attendance.HistoryEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []attendance.HistoryEntry
	for i := len(m.records) - 1; i >= 0; i-- {
		rec := m.records[i]
		if rec.StudentID != studentID {
			continue
		}
		out = append(out, attendance.HistoryEntry{
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
