// Package storage defines the chat persistence boundary used to give agents
// conversational memory across requests. Implementations may back onto any
// datastore; an in-memory store is provided for tests and examples.
package storage

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/cordonlabs/cordon/core"
)

// ChatStore persists and retrieves per-agent conversation history.
// History is scoped by user, session and agent so several agents can hold
// independent conversations inside the same session.
type ChatStore interface {
	// FetchChat returns the stored conversation for one agent, oldest first.
	// A missing conversation yields an empty slice, not an error.
	FetchChat(ctx context.Context, userID, sessionID, agentID string) ([]core.Message, error)

	// SaveMessages appends messages to an agent's conversation.
	SaveMessages(ctx context.Context, userID, sessionID, agentID string, messages []core.Message) error

	// FetchAllChats returns every agent's conversation in the session merged
	// into a single slice ordered by the time each message was stored.
	FetchAllChats(ctx context.Context, userID, sessionID string) ([]core.Message, error)
}

// storedMessage pairs a message with its insertion time so cross-agent
// merges can be ordered.
type storedMessage struct {
	agentID string
	at      time.Time
	msg     core.Message
}

// InMemoryStore is a thread-safe ChatStore backed by process memory.
// Data does not survive restarts; use it for tests, examples and prototyping.
type InMemoryStore struct {
	mu    sync.RWMutex
	chats map[string][]storedMessage // key: userID/sessionID
	clock func() time.Time
}

// NewInMemoryStore creates an empty in-memory chat store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		chats: make(map[string][]storedMessage),
		clock: time.Now,
	}
}

func sessionKey(userID, sessionID string) string {
	return userID + "/" + sessionID
}

// FetchChat implements ChatStore.
func (s *InMemoryStore) FetchChat(_ context.Context, userID, sessionID, agentID string) ([]core.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []core.Message
	for _, sm := range s.chats[sessionKey(userID, sessionID)] {
		if sm.agentID == agentID {
			out = append(out, sm.msg)
		}
	}
	return out, nil
}

// SaveMessages implements ChatStore.
func (s *InMemoryStore) SaveMessages(_ context.Context, userID, sessionID, agentID string, messages []core.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := sessionKey(userID, sessionID)
	now := s.clock()
	for i, msg := range messages {
		s.chats[key] = append(s.chats[key], storedMessage{
			agentID: agentID,
			// Preserve relative order for batches stored at the same instant.
			at:  now.Add(time.Duration(i) * time.Nanosecond),
			msg: msg,
		})
	}
	return nil
}

// FetchAllChats implements ChatStore.
func (s *InMemoryStore) FetchAllChats(_ context.Context, userID, sessionID string) ([]core.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stored := s.chats[sessionKey(userID, sessionID)]
	merged := make([]storedMessage, len(stored))
	copy(merged, stored)

	sort.SliceStable(merged, func(i, j int) bool { return merged[i].at.Before(merged[j].at) })

	out := make([]core.Message, 0, len(merged))
	for _, sm := range merged {
		out = append(out, sm.msg)
	}
	return out, nil
}
