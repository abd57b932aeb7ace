package session

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chat-backend/pkg/api"
)

func textTurn(role, text string) api.Turn {
	return api.Turn{Role: role, Parts: []api.Part{{Text: text}}}
}

func makeHistory(turns int) []api.Turn {
	history := make([]api.Turn, 0, turns*2)
	for i := 0; i < turns; i++ {
		history = append(history,
			textTurn(api.RoleUser, fmt.Sprintf("question %d", i)),
			textTurn(api.RoleModel, fmt.Sprintf("answer %d", i)),
		)
	}
	return history
}

func TestTrimWithinBound(t *testing.T) {
	for _, turns := range []int{0, 1, 39, 40} {
		history := makeHistory(turns)
		trimmed := Trim(history, DefaultMaxTurns)
		assert.Equal(t, history, trimmed, "history with %d turns should be unchanged", turns)
	}
}

func TestTrimOverBound(t *testing.T) {
	history := makeHistory(41)
	trimmed := Trim(history, DefaultMaxTurns)

	require.Len(t, trimmed, 80)
	assert.Equal(t, history[2:], trimmed)
	assert.Equal(t, textTurn(api.RoleUser, "question 1"), trimmed[0])
	assert.Equal(t, textTurn(api.RoleModel, "answer 40"), trimmed[79])
}

func TestTrimCustomBound(t *testing.T) {
	history := makeHistory(10)
	trimmed := Trim(history, 3)

	require.Len(t, trimmed, 6)
	assert.Equal(t, history[14:], trimmed)
}

func TestCreateReturnsUniqueIds(t *testing.T) {
	store := NewMemoryStore()

	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := store.Create()
		assert.NotEmpty(t, id)
		assert.False(t, seen[id], "session id %q issued twice", id)
		seen[id] = true
	}
	assert.Equal(t, 100, store.Len())
}

func TestHistoryUnknownIdIsEmpty(t *testing.T) {
	store := NewMemoryStore()

	history := store.History("unknown-id")
	assert.NotNil(t, history)
	assert.Empty(t, history)
}

func TestReplaceAndHistory(t *testing.T) {
	store := NewMemoryStore()
	id := store.Create()

	assert.Empty(t, store.History(id))

	history := makeHistory(2)
	store.Replace(id, history)
	assert.Equal(t, history, store.History(id))
}

func TestResetClearsHistory(t *testing.T) {
	store := NewMemoryStore()
	id := store.Create()
	store.Replace(id, makeHistory(5))

	store.Reset(id)
	assert.Empty(t, store.History(id))

	// Idempotent: a second reset observes the same empty state.
	store.Reset(id)
	assert.Empty(t, store.History(id))
}

func TestResetUnknownIdCreatesBinding(t *testing.T) {
	store := NewMemoryStore()

	store.Reset("never-created")
	assert.Empty(t, store.History("never-created"))
	assert.Equal(t, 1, store.Len())
}

func TestEvictIdle(t *testing.T) {
	store := NewMemoryStore()
	stale := store.Create()
	fresh := store.Create()

	store.mu.Lock()
	store.sessions[stale].lastAccessed = time.Now().Add(-time.Hour)
	store.mu.Unlock()

	store.evictIdle(30 * time.Minute)

	assert.Equal(t, 1, store.Len())

	store.mu.RLock()
	_, staleKept := store.sessions[stale]
	_, freshKept := store.sessions[fresh]
	store.mu.RUnlock()
	assert.False(t, staleKept)
	assert.True(t, freshKept)
}
