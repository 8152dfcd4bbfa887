package application_test

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/venduo/marketplace-identity/internal/domain/entity"
	"github.com/venduo/marketplace-identity/internal/domain/repository"
)

// memRepo is an in-memory UserRepository with the same version semantics as
// the Postgres implementation. staleReplaces injects lost-update failures.
type memRepo struct {
	mu            sync.Mutex
	users         map[string]*entity.User
	staleReplaces int
}

func newMemRepo() *memRepo {
	return &memRepo{users: make(map[string]*entity.User)}
}

func cloneUser(u *entity.User) *entity.User {
	if u == nil {
		return nil
	}
	c := *u
	if u.VendorDetails != nil {
		vd := *u.VendorDetails
		vd.Reputation.Comments = append([]entity.Comment(nil), u.VendorDetails.Reputation.Comments...)
		c.VendorDetails = &vd
	}
	return &c
}

func (r *memRepo) Create(_ context.Context, u *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if existing.Email == u.Email && existing.Role.Partition() == u.Role.Partition() {
			return repository.ErrDuplicateEmail
		}
	}
	u.ID = uuid.NewString()
	u.Version = 1
	u.CreatedAt = time.Now()
	u.UpdatedAt = u.CreatedAt
	r.users[u.ID] = cloneUser(u)
	return nil
}

func (r *memRepo) GetByID(_ context.Context, id string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return cloneUser(r.users[id]), nil
}

func (r *memRepo) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			return cloneUser(u), nil
		}
	}
	return nil, nil
}

func (r *memRepo) GetByEmailInPartition(_ context.Context, email string, p entity.Partition) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email && u.Role.Partition() == p {
			return cloneUser(u), nil
		}
	}
	return nil, nil
}

func (r *memRepo) Replace(_ context.Context, u *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.staleReplaces > 0 {
		r.staleReplaces--
		return repository.ErrStaleRecord
	}
	stored, ok := r.users[u.ID]
	if !ok || stored.Version != u.Version {
		return repository.ErrStaleRecord
	}
	u.Version++
	u.UpdatedAt = time.Now()
	r.users[u.ID] = cloneUser(u)
	return nil
}

func (r *memRepo) SetApproval(_ context.Context, id string, approved bool) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok || u.Role != entity.RoleCustomer {
		return false, nil
	}
	u.IsApproved = approved
	u.Version++
	return true, nil
}

func (r *memRepo) Delete(_ context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[id]; !ok {
		return false, nil
	}
	delete(r.users, id)
	return true, nil
}

func (r *memRepo) ListAll(_ context.Context) ([]*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*entity.User, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, cloneUser(u))
	}
	return out, nil
}

var _ repository.UserRepository = (*memRepo)(nil)

// fakeHasher avoids bcrypt cost in tests while keeping verify semantics.
type fakeHasher struct{}

func (fakeHasher) Hash(plain string) (string, error) { return "hashed:" + plain, nil }

func (fakeHasher) Verify(plain, hash string) bool { return hash == "hashed:"+plain }

type fakeTokenStore struct {
	mu     sync.Mutex
	tokens map[string]string
}

func newFakeTokenStore() *fakeTokenStore {
	return &fakeTokenStore{tokens: make(map[string]string)}
}

func (s *fakeTokenStore) Save(_ context.Context, userID, token string, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[userID] = token
	return nil
}

func (s *fakeTokenStore) Get(_ context.Context, userID string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tokens[userID], nil
}

func (s *fakeTokenStore) Delete(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tokens, userID)
	return nil
}

type fakeNotifier struct {
	mu       sync.Mutex
	notified []string
	err      error
}

func (n *fakeNotifier) NotifyPendingApproval(_ context.Context, u *entity.User) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.err != nil {
		return n.err
	}
	n.notified = append(n.notified, u.ID)
	return nil
}

var errNotifierDown = errors.New("queue unavailable")
