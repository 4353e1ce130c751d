package recording

import "sync"

// SessionState is the explicit per-recording upload state. Tracking it
// here, instead of inferring it from row existence, is what rejects
// chunks that race a concurrent finalize.
type SessionState int

const (
	StateAwaitingChunks SessionState = iota
	StateFinalizing
	StateFinalized
)

type session struct {
	mu    sync.RWMutex
	state SessionState
}

// SessionTracker keeps upload session states in memory, keyed by
// recording id. Chunk writes take a shared hold on their session for
// the duration of the store call, and finalize takes an exclusive one,
// so a finalize never reassembles while an acked chunk write is still
// in flight. State is process-local: after a restart the registry's
// id uniqueness still enforces at-most-once finalize.
type SessionTracker struct {
	mu       sync.Mutex
	sessions map[string]*session
}

func NewSessionTracker() *SessionTracker {
	return &SessionTracker{sessions: make(map[string]*session)}
}

func (t *SessionTracker) get(id string) *session {
	t.mu.Lock()
	defer t.mu.Unlock()
	s, ok := t.sessions[id]
	if !ok {
		s = &session{}
		t.sessions[id] = s
	}
	return s
}

// BeginChunk takes a shared hold on id for the duration of one chunk
// write. It fails with ErrSessionFinalized once a finalize has begun.
// Every successful BeginChunk must be paired with EndChunk.
func (t *SessionTracker) BeginChunk(id string) error {
	s := t.get(id)
	s.mu.RLock()
	if s.state != StateAwaitingChunks {
		s.mu.RUnlock()
		return ErrSessionFinalized
	}
	return nil
}

// EndChunk releases the hold taken by BeginChunk.
func (t *SessionTracker) EndChunk(id string) {
	t.get(id).mu.RUnlock()
}

// BeginFinalize transitions id to Finalizing, waiting out any chunk
// writes already in flight. A second finalize, or one racing the
// first, fails with ErrRecordingExists.
func (t *SessionTracker) BeginFinalize(id string) error {
	s := t.get(id)
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateAwaitingChunks {
		return ErrRecordingExists
	}
	s.state = StateFinalizing
	return nil
}

// CompleteFinalize settles a finalize attempt: Finalized on success,
// back to AwaitingChunks on failure so the client may retry.
func (t *SessionTracker) CompleteFinalize(id string, ok bool) {
	if ok {
		s := t.get(id)
		s.mu.Lock()
		s.state = StateFinalized
		s.mu.Unlock()
		return
	}
	t.mu.Lock()
	delete(t.sessions, id)
	t.mu.Unlock()
}

// State returns the tracked state for id. Unseen ids are implicitly
// AwaitingChunks.
func (t *SessionTracker) State(id string) SessionState {
	t.mu.Lock()
	s, ok := t.sessions[id]
	t.mu.Unlock()
	if !ok {
		return StateAwaitingChunks
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}
