package services

import (
	"sync"
	"time"
)

// ConversationState tracks users who issued /ask and whose next text
// message is a question. Flags expire after ttl so abandoned prompts do not
// capture unrelated messages later.
type ConversationState struct {
	awaiting map[int64]time.Time
	mutex    sync.Mutex
	ttl      time.Duration
	clock    Clock
}

// NewConversationState creates an empty state store
func NewConversationState(ttl time.Duration, clock Clock) *ConversationState {
	if clock == nil {
		clock = time.Now
	}
	return &ConversationState{
		awaiting: make(map[int64]time.Time),
		ttl:      ttl,
		clock:    clock,
	}
}

// ExpectQuestion marks userID as awaiting a question
func (cs *ConversationState) ExpectQuestion(userID int64) {
	cs.mutex.Lock()
	defer cs.mutex.Unlock()
	cs.awaiting[userID] = cs.clock().Add(cs.ttl)
	cs.sweepLocked()
}

// TakeQuestion reports whether userID was awaiting a question and clears
// the flag
func (cs *ConversationState) TakeQuestion(userID int64) bool {
	cs.mutex.Lock()
	defer cs.mutex.Unlock()

	expiresAt, ok := cs.awaiting[userID]
	if !ok {
		return false
	}
	delete(cs.awaiting, userID)
	return !cs.clock().After(expiresAt)
}

// Cancel clears any pending flag for userID
func (cs *ConversationState) Cancel(userID int64) {
	cs.mutex.Lock()
	defer cs.mutex.Unlock()
	delete(cs.awaiting, userID)
}

// Pending returns the number of live flags
func (cs *ConversationState) Pending() int {
	cs.mutex.Lock()
	defer cs.mutex.Unlock()
	cs.sweepLocked()
	return len(cs.awaiting)
}

func (cs *ConversationState) sweepLocked() {
	now := cs.clock()
	for id, expiresAt := range cs.awaiting {
		if now.After(expiresAt) {
			delete(cs.awaiting, id)
		}
	}
}
