// Package repositorytest provides in-memory repositories for tests.
package repositorytest

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/chirpy/internal/domain"
	"github.com/spec-kit/chirpy/internal/repository"
)

// Store backs both in-memory repositories so deleting users cascades to chirps.
type Store struct {
	mu     sync.Mutex
	users  map[uuid.UUID]domain.User
	chirps map[uuid.UUID]domain.Chirp
	clock  time.Time
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{
		users:  make(map[uuid.UUID]domain.User),
		chirps: make(map[uuid.UUID]domain.Chirp),
		clock:  time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

// tick returns strictly increasing timestamps so ordering is deterministic.
func (s *Store) tick() time.Time {
	s.clock = s.clock.Add(time.Second)
	return s.clock
}

// Users returns a UserRepository view of the store.
func (s *Store) Users() repository.UserRepository { return userRepo{s} }

// Chirps returns a ChirpRepository view of the store.
func (s *Store) Chirps() repository.ChirpRepository { return chirpRepo{s} }

type userRepo struct{ s *Store }

func (r userRepo) Create(_ context.Context, user *domain.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Email == user.Email {
			return repository.ErrDuplicate
		}
	}
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	now := r.s.tick()
	user.CreatedAt, user.UpdatedAt = now, now
	r.s.users[user.ID] = *user
	return nil
}

func (r userRepo) Update(_ context.Context, user *domain.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	existing, ok := r.s.users[user.ID]
	if !ok {
		return repository.ErrNotFound
	}
	for id, u := range r.s.users {
		if id != user.ID && u.Email == user.Email {
			return repository.ErrDuplicate
		}
	}
	user.CreatedAt = existing.CreatedAt
	user.UpdatedAt = r.s.tick()
	r.s.users[user.ID] = *user
	return nil
}

func (r userRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &u, nil
}

func (r userRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r userRepo) DeleteAll(context.Context) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.users = make(map[uuid.UUID]domain.User)
	r.s.chirps = make(map[uuid.UUID]domain.Chirp)
	return nil
}

type chirpRepo struct{ s *Store }

func (r chirpRepo) Create(_ context.Context, chirp *domain.Chirp) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[chirp.UserID]; !ok {
		return repository.ErrNotFound
	}
	if chirp.ID == uuid.Nil {
		chirp.ID = uuid.New()
	}
	now := r.s.tick()
	chirp.CreatedAt, chirp.UpdatedAt = now, now
	r.s.chirps[chirp.ID] = *chirp
	return nil
}

func (r chirpRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.Chirp, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.chirps[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &c, nil
}

func (r chirpRepo) List(_ context.Context, filter repository.ChirpFilter) ([]domain.Chirp, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]domain.Chirp, 0, len(r.s.chirps))
	for _, c := range r.s.chirps {
		if filter.AuthorID != nil && c.UserID != *filter.AuthorID {
			continue
		}
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		if filter.Sort == domain.ChirpSortDesc {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (r chirpRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.chirps[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.s.chirps, id)
	return nil
}
