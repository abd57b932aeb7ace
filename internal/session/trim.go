package session

import "chat-backend/pkg/api"

// DefaultMaxTurns bounds how many user+model turn pairs a history keeps.
const DefaultMaxTurns = 40

// Trim bounds history to the most recent maxTurns user+model pairs. Each pair
// is two entries, so the result never exceeds maxTurns*2 entries; older
// entries are dropped from the front. Histories already within the bound are
// returned unchanged.
func Trim(history []api.Turn, maxTurns int) []api.Turn {
	if len(history) > maxTurns*2 {
		return history[len(history)-maxTurns*2:]
	}
	return history
}
