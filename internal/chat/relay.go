package chat

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"chat-backend/internal/session"
	"chat-backend/pkg/api"
)

// ErrInvalidInput marks validation failures the HTTP layer should report as
// 400s, as opposed to upstream failures which are 500s.
var ErrInvalidInput = errors.New("invalid chat input")

// Generator produces a model reply for the given conversation. The contents
// slice is the stored history followed by the new user turn; each call is
// self-contained, no conversation state is held upstream between calls.
type Generator interface {
	Generate(ctx context.Context, contents []api.Turn) (string, error)
}

// Relay implements the converse contract: read history, call the generator
// with history + new turn, append both sides of the exchange, trim, write
// back.
type Relay struct {
	store    session.Store
	gen      Generator
	maxTurns int

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewRelay(store session.Store, gen Generator, maxTurns int) *Relay {
	if maxTurns <= 0 {
		maxTurns = session.DefaultMaxTurns
	}
	return &Relay{
		store:    store,
		gen:      gen,
		maxTurns: maxTurns,
		locks:    make(map[string]*sync.Mutex),
	}
}

// sessionLock returns the mutex serializing converse calls for one session.
// Without it two concurrent calls for the same session would interleave their
// read-modify-write of the history and one update would be lost.
func (r *Relay) sessionLock(sessionID string) *sync.Mutex {
	r.mu.Lock()
	defer r.mu.Unlock()

	lock, ok := r.locks[sessionID]
	if !ok {
		lock = &sync.Mutex{}
		r.locks[sessionID] = lock
	}
	return lock
}

// Converse sends one user turn for the given session and returns the model's
// reply. A turn must carry at least one content item: inline text, file
// references, or both. File parts follow the text part in the order given.
func (r *Relay) Converse(ctx context.Context, sessionID, text string, files []api.FileReference) (string, error) {
	if sessionID == "" {
		return "", fmt.Errorf("%w: missing sessionId", ErrInvalidInput)
	}
	if text == "" && len(files) == 0 {
		return "", fmt.Errorf("%w: empty turn, provide text or files", ErrInvalidInput)
	}

	lock := r.sessionLock(sessionID)
	lock.Lock()
	defer lock.Unlock()

	history := r.store.History(sessionID)

	userTurn := api.Turn{Role: api.RoleUser, Parts: buildParts(text, files)}

	contents := make([]api.Turn, 0, len(history)+1)
	contents = append(contents, history...)
	contents = append(contents, userTurn)

	reply, err := r.gen.Generate(ctx, contents)
	if err != nil {
		return "", fmt.Errorf("generating reply: %w", err)
	}

	// Both sides of the exchange land together so readers never observe a
	// half-applied turn.
	history = append(history, userTurn, api.Turn{
		Role:  api.RoleModel,
		Parts: []api.Part{{Text: reply}},
	})
	r.store.Replace(sessionID, session.Trim(history, r.maxTurns))

	return reply, nil
}

func buildParts(text string, files []api.FileReference) []api.Part {
	var parts []api.Part
	if text != "" {
		parts = append(parts, api.Part{Text: text})
	}
	for _, f := range files {
		parts = append(parts, api.Part{FileData: &api.FileData{
			FileURI:  f.URI,
			MimeType: f.MimeType,
		}})
	}
	return parts
}
