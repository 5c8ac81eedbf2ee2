package memory

import (
	"sync"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

// SessionState carries the per-session lock that serializes pipeline runs.
// Two overlapping requests against one session would otherwise interleave
// their conversation appends.
type SessionState struct {
	Id uuid.UUID
	Mu sync.Mutex
}

// SessionRegistry is the session-keyed registry replacing a process-global
// conversation singleton. Sessions never expire from the registry; the
// durable message log lives in the conversation store, the registry only
// owns identity and locking.
type SessionRegistry struct {
	mu    sync.Mutex
	cache *cache.Cache
}

func NewSessionRegistry() *SessionRegistry {
	return &SessionRegistry{
		cache: cache.New(cache.NoExpiration, 0),
	}
}

// GetOrCreate returns the state for sessionId, creating it on first use.
func (r *SessionRegistry) GetOrCreate(sessionId uuid.UUID) *SessionState {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := sessionId.String()
	if x, found := r.cache.Get(key); found {
		return x.(*SessionState)
	}
	state := &SessionState{Id: sessionId}
	r.cache.Set(key, state, cache.NoExpiration)
	return state
}

func (r *SessionRegistry) Delete(sessionId uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cache.Delete(sessionId.String())
}
