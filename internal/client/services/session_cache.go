package services

import (
	"sync"

	"github.com/dmitrijs2005/ideaboard/internal/client/models"
)

// SessionCache holds the most recent session for the lifetime of the
// process. It is a hint, not the source of truth: persisted token plus the
// remote expiry check decide whether a session is valid after a restart.
type SessionCache struct {
	mu      sync.RWMutex
	session *models.Session
}

// Get returns a copy of the cached session, or nil.
func (c *SessionCache) Get() *models.Session {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.session == nil {
		return nil
	}
	s := *c.session
	return &s
}

// Set replaces the cached session. The last writer wins.
func (c *SessionCache) Set(s *models.Session) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if s == nil {
		c.session = nil
		return
	}
	cp := *s
	c.session = &cp
}

func (c *SessionCache) Clear() {
	c.Set(nil)
}
