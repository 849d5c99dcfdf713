package verification

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// InMemoryRepository implements Repository using in-memory storage.
// Intended for tests and local development.
type InMemoryRepository struct {
	mu       sync.Mutex
	tokens   map[uuid.UUID]Token
	byKey    map[string]uuid.UUID // purpose + subject key -> token id
	byValue  map[string]uuid.UUID // purpose + value -> token id
}

// NewInMemoryRepository creates a new in-memory token repository
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		tokens:  make(map[uuid.UUID]Token),
		byKey:   make(map[string]uuid.UUID),
		byValue: make(map[string]uuid.UUID),
	}
}

func keyIndex(purpose Purpose, key string) string {
	return string(purpose) + "\x00" + key
}

func valueIndex(purpose Purpose, value string) string {
	return string(purpose) + "\x00" + value
}

// UpsertToken atomically replaces any token for the same (purpose, subject key)
func (r *InMemoryRepository) UpsertToken(ctx context.Context, token Token) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := keyIndex(token.Purpose, token.Subject.Key())
	if oldID, ok := r.byKey[key]; ok {
		old := r.tokens[oldID]
		delete(r.byValue, valueIndex(old.Purpose, old.Value))
		delete(r.tokens, oldID)
	}

	r.tokens[token.ID] = token
	r.byKey[key] = token.ID
	r.byValue[valueIndex(token.Purpose, token.Value)] = token.ID
	return nil
}

// GetTokenByValue returns the token with the given value, if any
func (r *InMemoryRepository) GetTokenByValue(ctx context.Context, purpose Purpose, value string) (Token, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id, ok := r.byValue[valueIndex(purpose, value)]
	if !ok {
		return Token{}, ErrTokenNotFound
	}
	return r.tokens[id], nil
}

// DeleteToken removes a token by id; deleting a missing token is not an error
func (r *InMemoryRepository) DeleteToken(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	token, ok := r.tokens[id]
	if !ok {
		return nil
	}
	delete(r.byKey, keyIndex(token.Purpose, token.Subject.Key()))
	delete(r.byValue, valueIndex(token.Purpose, token.Value))
	delete(r.tokens, id)
	return nil
}
