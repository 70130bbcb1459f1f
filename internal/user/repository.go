package user

import (
	"context"
	"sort"
	"sync"
	"time"
)

type Repository interface {
	Create(ctx context.Context, user User) (User, error)
	GetByID(ctx context.Context, id int) (User, error)
	GetByEmail(ctx context.Context, email string) (User, error)
	ListByRole(ctx context.Context, role Role) ([]User, error)
	Update(ctx context.Context, user User) (User, error)
	Delete(ctx context.Context, id int) error
}

type InMemoryRepository struct {
	mu     sync.RWMutex
	users  map[int]User
	nextID int
	now    func() time.Time
}

func NewInMemoryRepository(seed []User) *InMemoryRepository {
	repo := &InMemoryRepository{
		users:  make(map[int]User, len(seed)),
		nextID: 1,
		now:    time.Now,
	}

	maxID := 0
	for _, user := range seed {
		if user.Role == "" {
			user.Role = RoleUser
		}
		repo.users[user.ID] = copyUser(user)
		if user.ID > maxID {
			maxID = user.ID
		}
	}

	repo.nextID = maxID + 1
	return repo
}

func (r *InMemoryRepository) Create(ctx context.Context, user User) (User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.emailTaken(user.Email, 0) {
		return User{}, ErrDuplicateEmail
	}

	user.ID = r.nextID
	r.nextID++
	if user.Role == "" {
		user.Role = RoleUser
	}
	if user.ProfileImage == nil {
		user.ProfileImage = []Attachment{}
	}
	now := r.now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now

	r.users[user.ID] = copyUser(user)
	return copyUser(user), nil
}

func (r *InMemoryRepository) GetByID(ctx context.Context, id int) (User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.users[id]
	if !ok {
		return User{}, ErrNotFound
	}
	return copyUser(user), nil
}

func (r *InMemoryRepository) GetByEmail(ctx context.Context, email string) (User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, user := range r.users {
		if user.Email == email {
			return copyUser(user), nil
		}
	}
	return User{}, ErrNotFound
}

func (r *InMemoryRepository) ListByRole(ctx context.Context, role Role) ([]User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	users := make([]User, 0, len(r.users))
	for _, user := range r.users {
		if user.Role == role {
			users = append(users, copyUser(user))
		}
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users, nil
}

func (r *InMemoryRepository) Update(ctx context.Context, user User) (User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.users[user.ID]
	if !ok {
		return User{}, ErrNotFound
	}
	if r.emailTaken(user.Email, user.ID) {
		return User{}, ErrDuplicateEmail
	}

	user.CreatedAt = existing.CreatedAt
	user.UpdatedAt = r.now().UTC()
	if user.ProfileImage == nil {
		user.ProfileImage = []Attachment{}
	}

	r.users[user.ID] = copyUser(user)
	return copyUser(user), nil
}

func (r *InMemoryRepository) Delete(ctx context.Context, id int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[id]; !ok {
		return ErrNotFound
	}
	delete(r.users, id)
	return nil
}

// emailTaken must be called with the lock held.
func (r *InMemoryRepository) emailTaken(email string, exceptID int) bool {
	for id, user := range r.users {
		if id != exceptID && user.Email == email {
			return true
		}
	}
	return false
}

func copyUser(u User) User {
	if u.ProfileImage != nil {
		u.ProfileImage = cloneAttachments(u.ProfileImage)
	}
	return u
}
