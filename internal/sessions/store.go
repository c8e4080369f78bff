// Package sessions keeps per-user conversations with each character
// and the per-user default character, and persists both between runs.
package sessions

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/Dmetrikx/goCharacterChatter/internal/ai"
	"github.com/Dmetrikx/goCharacterChatter/internal/characters"
)

// ErrNoSessions is returned when clearing a user that has no conversations
var ErrNoSessions = errors.New("no sessions stored for user")

// NoSessionError is returned when clearing a single character the user never talked to
type NoSessionError struct {
	Character string
}

// Error implements the error interface
func (e *NoSessionError) Error() string {
	return fmt.Sprintf("no session stored with %s", e.Character)
}

// Session pairs a live chat with the user and character it belongs to
type Session struct {
	UserID      string
	CharacterID string
	ai.Chat
}

// Histories maps user ID to character ID to transcript
type Histories map[string]map[string][]ai.Turn

// Store owns every session for the life of the process.
// It is safe for concurrent use.
type Store struct {
	backend   ai.Backend
	registry  *characters.Registry
	persister Persister

	mu        sync.Mutex
	sessions  map[string]map[string]*Session
	histories Histories
	defaults  map[string]string
}

// NewStore creates an empty store; call Load to restore persisted state
func NewStore(backend ai.Backend, registry *characters.Registry, persister Persister) *Store {
	return &Store{
		backend:   backend,
		registry:  registry,
		persister: persister,
		sessions:  make(map[string]map[string]*Session),
		histories: make(Histories),
		defaults:  make(map[string]string),
	}
}

// Get returns the live session for the pair, if any
func (s *Store) Get(userID, characterID string) (*Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[userID][characterID]
	return sess, ok
}

// GetOrCreate returns the live session for the pair, creating it from persisted history when needed
func (s *Store) GetOrCreate(ctx context.Context, userID, characterID string) (*Session, error) {
	if sess, ok := s.Get(userID, characterID); ok {
		return sess, nil
	}
	return s.Create(ctx, userID, characterID)
}

// Create starts a session seeded with the persisted history and the character's instruction.
// An existing session for the pair is returned unchanged.
func (s *Store) Create(ctx context.Context, userID, characterID string) (*Session, error) {
	character, ok := s.registry.Get(characterID)
	if !ok {
		return nil, &characters.UnknownCharacterError{Token: characterID, Valid: s.registry.Keys()}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if sess, ok := s.sessions[userID][characterID]; ok {
		return sess, nil
	}

	chat, err := s.backend.NewChat(ctx, ai.ChatConfig{
		SystemInstruction: character.SystemInstruction,
		History:           s.histories[userID][characterID],
	})
	if err != nil {
		return nil, fmt.Errorf("creating chat for %s: %w", characterID, err)
	}

	sess := &Session{UserID: userID, CharacterID: characterID, Chat: chat}
	if s.sessions[userID] == nil {
		s.sessions[userID] = make(map[string]*Session)
	}
	s.sessions[userID][characterID] = sess
	return sess, nil
}

// UpdateHistory replaces the stored transcript of the pair with the backend's own
func (s *Store) UpdateHistory(userID, characterID string, turns []ai.Turn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.histories[userID] == nil {
		s.histories[userID] = make(map[string][]ai.Turn)
	}
	s.histories[userID][characterID] = turns
}

// Commit stores the session's transcript as the pair's history. It reports false, and stores
// nothing, when the session was cleared or replaced since it was handed out.
func (s *Store) Commit(sess *Session) bool {
	turns := sess.History()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sessions[sess.UserID][sess.CharacterID] != sess {
		return false
	}
	if s.histories[sess.UserID] == nil {
		s.histories[sess.UserID] = make(map[string][]ai.Turn)
	}
	s.histories[sess.UserID][sess.CharacterID] = turns
	return true
}

// History returns the stored transcript of the pair
func (s *Store) History(userID, characterID string) []ai.Turn {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.histories[userID][characterID]
}

// ListForUser returns the characters the user has a live session or stored history with, sorted
func (s *Store) ListForUser(userID string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.listLocked(userID)
}

func (s *Store) listLocked(userID string) []string {
	seen := make(map[string]struct{})
	for id := range s.sessions[userID] {
		seen[id] = struct{}{}
	}
	for id := range s.histories[userID] {
		seen[id] = struct{}{}
	}
	ids := make([]string, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Remove drops the pair's session and history
func (s *Store) Remove(userID, characterID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.removeLocked(userID, characterID)
}

func (s *Store) removeLocked(userID, characterID string) {
	delete(s.sessions[userID], characterID)
	if len(s.sessions[userID]) == 0 {
		delete(s.sessions, userID)
	}
	delete(s.histories[userID], characterID)
	if len(s.histories[userID]) == 0 {
		delete(s.histories, userID)
	}
}

// Clear removes the user's conversation with characterID, or all of them when characterID is empty
func (s *Store) Clear(userID, characterID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := s.listLocked(userID)
	if len(stored) == 0 {
		return ErrNoSessions
	}

	if characterID == "" {
		delete(s.sessions, userID)
		delete(s.histories, userID)
		return nil
	}

	_, live := s.sessions[userID][characterID]
	_, persisted := s.histories[userID][characterID]
	if !live && !persisted {
		return &NoSessionError{Character: characterID}
	}
	s.removeLocked(userID, characterID)
	return nil
}

// DefaultCharacter returns the character the user picked with the default command
func (s *Store) DefaultCharacter(userID string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.defaults[userID]
	return id, ok
}

// SetDefaultCharacter records the user's preferred character
func (s *Store) SetDefaultCharacter(userID, characterID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.defaults[userID] = characterID
}

// Load replaces the in-memory state with the persisted one
func (s *Store) Load(ctx context.Context) error {
	state, err := s.persister.Load(ctx)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.histories = state.Histories
	if s.histories == nil {
		s.histories = make(Histories)
	}
	s.defaults = state.Defaults
	if s.defaults == nil {
		s.defaults = make(map[string]string)
	}
	return nil
}

// Save writes every transcript and default selection, taking live sessions' transcripts as the source of truth.
// Transcripts are read without holding the store lock, so a generation in flight delays neither Save nor other users.
func (s *Store) Save(ctx context.Context) error {
	s.mu.Lock()
	live := make([]*Session, 0, len(s.sessions))
	for _, chats := range s.sessions {
		for _, sess := range chats {
			live = append(live, sess)
		}
	}
	s.mu.Unlock()

	for _, sess := range live {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("saving sessions: %w", err)
		}
		s.Commit(sess)
	}

	s.mu.Lock()
	state := State{
		Histories: make(Histories, len(s.histories)),
		Defaults:  make(map[string]string, len(s.defaults)),
	}
	for userID, chats := range s.histories {
		state.Histories[userID] = make(map[string][]ai.Turn, len(chats))
		for characterID, turns := range chats {
			state.Histories[userID][characterID] = turns
		}
	}
	for userID, characterID := range s.defaults {
		state.Defaults[userID] = characterID
	}
	s.mu.Unlock()

	return s.persister.Save(ctx, state)
}
