// Package repositorytest provides in-memory repositories for service and
// handler tests. They enforce the same uniqueness and reference rules as the
// Postgres schema.
package repositorytest

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/spec-kit/reimbursement-service/internal/domain"
	"github.com/spec-kit/reimbursement-service/internal/repository"
)

// Store holds users and tickets behind one mutex so ticket joins see a
// consistent view of owners.
type Store struct {
	mu       sync.Mutex
	users    map[int64]domain.User
	tickets  map[int64]domain.Ticket
	nextUser int64
	nextTick int64
	now      func() time.Time

	// Err, when set, is returned by every call.
	Err error
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{
		users:   map[int64]domain.User{},
		tickets: map[int64]domain.Ticket{},
		now:     time.Now,
	}
}

// SetClock replaces the timestamp source.
func (s *Store) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

// Users returns the identity repository view.
func (s *Store) Users() repository.UserRepository { return &users{s} }

// Tickets returns the ticket repository view.
func (s *Store) Tickets() repository.TicketRepository { return &tickets{s} }

// SeedUser inserts u directly and returns its id.
func (s *Store) SeedUser(u domain.User) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextUser++
	u.ID = s.nextUser
	if u.CreatedAt.IsZero() {
		u.CreatedAt = s.now()
		u.UpdatedAt = u.CreatedAt
	}
	s.users[u.ID] = u
	return u.ID
}

// Ticket returns a copy of the stored ticket.
func (s *Store) Ticket(id int64) (domain.Ticket, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tickets[id]
	return t, ok
}

// UserCount reports how many identities are stored.
func (s *Store) UserCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.users)
}

type users struct{ s *Store }

func (r *users) Create(_ context.Context, user *domain.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return r.s.Err
	}
	for _, existing := range r.s.users {
		if existing.Email == user.Email {
			return repository.ErrEmailTaken
		}
	}
	r.s.nextUser++
	user.ID = r.s.nextUser
	user.CreatedAt = r.s.now()
	user.UpdatedAt = user.CreatedAt
	r.s.users[user.ID] = *user
	return nil
}

func (r *users) find(match func(domain.User) bool) (*domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return nil, r.s.Err
	}
	for _, u := range r.s.users {
		if match(u) {
			out := u
			return &out, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *users) GetByID(_ context.Context, id int64) (*domain.User, error) {
	return r.find(func(u domain.User) bool { return u.ID == id })
}

func (r *users) GetActiveByID(_ context.Context, id int64) (*domain.User, error) {
	return r.find(func(u domain.User) bool { return u.ID == id && !u.Suspended })
}

func (r *users) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	return r.find(func(u domain.User) bool { return u.Email == email })
}

func (r *users) GetActiveByEmail(_ context.Context, email string) (*domain.User, error) {
	return r.find(func(u domain.User) bool { return u.Email == email && !u.Suspended })
}

func (r *users) EmailExists(ctx context.Context, email string) (bool, error) {
	_, err := r.GetByEmail(ctx, email)
	switch err {
	case nil:
		return true, nil
	case repository.ErrNotFound:
		return false, nil
	default:
		return false, err
	}
}

func (r *users) List(_ context.Context) ([]domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return nil, r.s.Err
	}
	out := make([]domain.User, 0, len(r.s.users))
	for _, u := range r.s.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Suspended != out[j].Suspended {
			return !out[i].Suspended
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (r *users) SetSuspended(_ context.Context, id int64, suspended bool) (*domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return nil, r.s.Err
	}
	u, ok := r.s.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	u.Suspended = suspended
	u.UpdatedAt = r.s.now()
	r.s.users[id] = u
	return &u, nil
}

type tickets struct{ s *Store }

func (r *tickets) Create(_ context.Context, ticket *domain.Ticket) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return r.s.Err
	}
	if _, ok := r.s.users[ticket.PurchaserID]; !ok {
		return repository.ErrPurchaserMissing
	}
	r.s.nextTick++
	ticket.ID = r.s.nextTick
	ticket.CreatedAt = r.s.now()
	ticket.UpdatedAt = ticket.CreatedAt
	r.s.tickets[ticket.ID] = *ticket
	return nil
}

func (r *tickets) ListWithOwner(_ context.Context, purchaserID *int64) ([]domain.TicketWithOwner, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return nil, r.s.Err
	}
	out := []domain.TicketWithOwner{}
	for _, t := range r.s.tickets {
		if purchaserID != nil && t.PurchaserID != *purchaserID {
			continue
		}
		item := domain.TicketWithOwner{Ticket: t}
		if owner, ok := r.s.users[t.PurchaserID]; ok {
			item.Owner = domain.TicketOwner{Email: owner.Email, Username: owner.Username}
		}
		out = append(out, item)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Ticket.ID > out[j].Ticket.ID })
	return out, nil
}

func (r *tickets) UpdateStatus(_ context.Context, id int64, status domain.TicketStatus) (*domain.Ticket, domain.TicketStatus, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return nil, "", r.s.Err
	}
	t, ok := r.s.tickets[id]
	if !ok {
		return nil, "", repository.ErrNotFound
	}
	previous := t.Status
	t.Status = status
	t.UpdatedAt = r.s.now()
	r.s.tickets[id] = t
	return &t, previous, nil
}
