package user

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// InMemoryRepository implements Repository using in-memory storage.
// Intended for tests and local development.
type InMemoryRepository struct {
	mu            sync.RWMutex
	users         map[uuid.UUID]User
	usersByEmail  map[string]uuid.UUID
	confirmations map[uuid.UUID]TwoFactorConfirmation // keyed by confirmation id
}

// NewInMemoryRepository creates a new in-memory user repository
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		users:         make(map[uuid.UUID]User),
		usersByEmail:  make(map[string]uuid.UUID),
		confirmations: make(map[uuid.UUID]TwoFactorConfirmation),
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// CreateUser creates a user, enforcing email uniqueness
func (r *InMemoryRepository) CreateUser(ctx context.Context, params CreateUserParams) (User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	email := normalizeEmail(params.Email)
	if _, exists := r.usersByEmail[email]; exists {
		return User{}, ErrEmailTaken
	}

	now := time.Now().UTC()
	u := User{
		ID:           uuid.New(),
		Name:         params.Name,
		Email:        email,
		PasswordHash: params.PasswordHash,
		Role:         params.Role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if u.Role == "" {
		u.Role = RoleUser
	}

	r.users[u.ID] = u
	r.usersByEmail[email] = u.ID
	return u, nil
}

// GetUserByID returns a user by id
func (r *InMemoryRepository) GetUserByID(ctx context.Context, id uuid.UUID) (User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[id]
	if !ok {
		return User{}, ErrUserNotFound
	}
	return u, nil
}

// GetUserByEmail returns a user by email
func (r *InMemoryRepository) GetUserByEmail(ctx context.Context, email string) (User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.usersByEmail[normalizeEmail(email)]
	if !ok {
		return User{}, ErrUserNotFound
	}
	return r.users[id], nil
}

// UpdateUser applies the non-nil fields of params to the user
func (r *InMemoryRepository) UpdateUser(ctx context.Context, id uuid.UUID, params UpdateUserParams) (User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return User{}, ErrUserNotFound
	}

	if params.Email != nil {
		email := normalizeEmail(*params.Email)
		if owner, exists := r.usersByEmail[email]; exists && owner != id {
			return User{}, ErrEmailTaken
		}
		delete(r.usersByEmail, u.Email)
		u.Email = email
		r.usersByEmail[email] = id
	}
	if params.Name != nil {
		u.Name = *params.Name
	}
	if params.PasswordHash != nil {
		u.PasswordHash = *params.PasswordHash
	}
	if params.Role != nil {
		u.Role = *params.Role
	}
	if params.TwoFactorEnabled != nil {
		u.TwoFactorEnabled = *params.TwoFactorEnabled
	}
	if params.EmailVerifiedAt != nil {
		t := *params.EmailVerifiedAt
		u.EmailVerifiedAt = &t
	}
	u.UpdatedAt = time.Now().UTC()

	r.users[id] = u
	return u, nil
}

// CreateTwoFactorConfirmation creates a confirmation marker for the user
func (r *InMemoryRepository) CreateTwoFactorConfirmation(ctx context.Context, userID uuid.UUID) (TwoFactorConfirmation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	c := TwoFactorConfirmation{
		ID:        uuid.New(),
		UserID:    userID,
		CreatedAt: time.Now().UTC(),
	}
	r.confirmations[c.ID] = c
	return c, nil
}

// GetTwoFactorConfirmationByUserID returns the confirmation for the user, if any
func (r *InMemoryRepository) GetTwoFactorConfirmationByUserID(ctx context.Context, userID uuid.UUID) (TwoFactorConfirmation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, c := range r.confirmations {
		if c.UserID == userID {
			return c, nil
		}
	}
	return TwoFactorConfirmation{}, ErrConfirmationNotFound
}

// DeleteTwoFactorConfirmation removes a confirmation by id; deleting a
// missing confirmation is not an error
func (r *InMemoryRepository) DeleteTwoFactorConfirmation(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.confirmations, id)
	return nil
}
