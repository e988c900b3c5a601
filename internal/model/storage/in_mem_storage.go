package storage

import (
	"sync"

	"max.ks1230/roundup-bot/internal/entity/user"
)

// InMemStorage keeps everything in process memory. It is the zero-config
// backend and the test double for the other two. Guarded by a mutex because
// the re-sync watcher reads it concurrently with handlers.
type InMemStorage struct {
	mu         sync.RWMutex
	userMap    map[string]user.Record
	activeUser string
}

func NewInMemStorage() *InMemStorage {
	s := make(map[string]user.Record)
	return &InMemStorage{userMap: s}
}

func (s *InMemStorage) GetUser(username string) (user.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.userMap[username]
	if !ok {
		return user.Record{}, nil
	}
	return u, nil
}

func (s *InMemStorage) SaveUser(username string, rec user.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.userMap[username] = rec
	return nil
}

func (s *InMemStorage) ActiveUser() (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.activeUser, nil
}

func (s *InMemStorage) SetActiveUser(username string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.activeUser = username
	return nil
}
