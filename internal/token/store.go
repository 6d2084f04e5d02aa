// Package token keeps the ephemeral guest session tokens. Tokens live only
// in process memory: a restart invalidates every outstanding token and
// guests must rejoin their table.
package token

import (
	"crypto/rand"
	"encoding/hex"
	"sync"
)

type Store struct {
	mu     sync.RWMutex
	tokens map[string]map[string]struct{} // sessionID -> token set
}

func NewStore() *Store {
	return &Store{tokens: map[string]map[string]struct{}{}}
}

// Issue mints a new token for the session. One table session accumulates
// one token per joined guest device.
func (s *Store) Issue(sessionID string) string {
	buf := make([]byte, 32)
	_, _ = rand.Read(buf)
	tok := hex.EncodeToString(buf)

	s.mu.Lock()
	set, ok := s.tokens[sessionID]
	if !ok {
		set = map[string]struct{}{}
		s.tokens[sessionID] = set
	}
	set[tok] = struct{}{}
	s.mu.Unlock()
	return tok
}

func (s *Store) IsValid(sessionID, token string) bool {
	if token == "" {
		return false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.tokens[sessionID][token]
	return ok
}

// RevokeAll drops every token of a session. Called when the session closes;
// close must be the last writer, so this runs after the store update commits.
func (s *Store) RevokeAll(sessionID string) {
	s.mu.Lock()
	delete(s.tokens, sessionID)
	s.mu.Unlock()
}
