package tokenguard

import (
	"context"
	"maps"
	"sync"
)

// MemoryUserProvider is a UserProvider over an in-process map. It is meant
// for tests, examples and the load test.
type MemoryUserProvider struct {
	mu    sync.RWMutex
	users map[string]User
}

func NewMemoryUserProvider(users ...User) *MemoryUserProvider {
	p := &MemoryUserProvider{users: make(map[string]User, len(users))}
	for _, u := range users {
		p.users[u.ID] = u
	}
	return p
}

// Put adds or replaces a user.
func (p *MemoryUserProvider) Put(user User) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.users[user.ID] = user
}

// Delete removes a user. Tokens already issued to it then fail with
// ErrUnknownSubject.
func (p *MemoryUserProvider) Delete(id string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.users, id)
}

func (p *MemoryUserProvider) GetUserByID(_ context.Context, userID string) (User, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	u, ok := p.users[userID]
	if !ok {
		return User{}, ErrUserNotFound
	}
	u.Attributes = maps.Clone(u.Attributes)
	return u, nil
}
