package repository

import (
	"context"
	"strings"
	"sync"

	"github.com/ncobase/taskdesk/core/auth/structs"
)

// Memory keeps users and sessions in process memory. It implements both
// UserRepository and SessionRepository.
type Memory struct {
	mu       sync.RWMutex
	users    map[string]structs.User
	sessions map[string]structs.Session
}

func NewMemory() *Memory {
	return &Memory{
		users:    make(map[string]structs.User),
		sessions: make(map[string]structs.Session),
	}
}

// Users returns m as a UserRepository.
func (m *Memory) Users() UserRepository { return memoryUsers{m} }

// Sessions returns m as a SessionRepository.
func (m *Memory) Sessions() SessionRepository { return memorySessions{m} }

type memoryUsers struct{ m *Memory }

func (r memoryUsers) Create(_ context.Context, user *structs.User) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, u := range r.m.users {
		if strings.EqualFold(u.Email, user.Email) {
			return structs.ErrEmailTaken
		}
	}
	r.m.users[user.ID] = *user
	return nil
}

func (r memoryUsers) FindByID(_ context.Context, id string) (*structs.User, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()
	u, ok := r.m.users[id]
	if !ok {
		return nil, structs.ErrUserNotFound
	}
	return &u, nil
}

func (r memoryUsers) FindByEmail(_ context.Context, email string) (*structs.User, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()
	for _, u := range r.m.users {
		if strings.EqualFold(u.Email, email) {
			return &u, nil
		}
	}
	return nil, structs.ErrUserNotFound
}

type memorySessions struct{ m *Memory }

func (r memorySessions) Create(_ context.Context, s *structs.Session) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	r.m.sessions[s.ID] = *s
	return nil
}

func (r memorySessions) FindByID(_ context.Context, id string) (*structs.Session, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()
	s, ok := r.m.sessions[id]
	if !ok {
		return nil, structs.ErrSessionNotFound
	}
	return &s, nil
}

func (r memorySessions) Delete(_ context.Context, id string) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if _, ok := r.m.sessions[id]; !ok {
		return structs.ErrSessionNotFound
	}
	delete(r.m.sessions, id)
	return nil
}
