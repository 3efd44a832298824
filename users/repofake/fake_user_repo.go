// Package repofake provides an in-memory users.Store used by tests and by
// development mode when no database is configured. Semantics mirror the
// postgres store, including case-insensitive email uniqueness decided under
// the same lock as the insert.
package repofake

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/easylaw/auth-service/users"
)

var _ users.Store = (*FakeUserRepo)(nil)

type FakeUserRepo struct {
	lock     sync.RWMutex
	users    map[string]*users.User
	emailIDs map[string]string // lowercased email -> user id
	nowFunc  func() time.Time
}

func NewFakeUserRepo() *FakeUserRepo {
	return &FakeUserRepo{
		users:    make(map[string]*users.User),
		emailIDs: make(map[string]string),
		nowFunc:  time.Now,
	}
}

// SetNowFunc overrides the clock (for tests).
func (r *FakeUserRepo) SetNowFunc(now func() time.Time) {
	r.nowFunc = now
}

func (r *FakeUserRepo) Create(ctx context.Context, email, passwordHash string, role users.Role, status users.Status) (*users.User, error) {
	r.lock.Lock()
	defer r.lock.Unlock()

	key := strings.ToLower(email)
	if _, exists := r.emailIDs[key]; exists {
		return nil, users.ErrDuplicateEmail
	}

	now := r.nowFunc().UTC()
	user := &users.User{
		ID:           uuid.New().String(),
		Email:        email,
		PasswordHash: passwordHash,
		Role:         role,
		Status:       status,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	r.users[user.ID] = user
	r.emailIDs[key] = user.ID
	return copyUser(user), nil
}

func (r *FakeUserRepo) GetByID(ctx context.Context, id string) (*users.User, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	user, ok := r.users[id]
	if !ok {
		return nil, users.ErrNotFound
	}
	return copyUser(user), nil
}

func (r *FakeUserRepo) GetByEmail(ctx context.Context, email string) (*users.User, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	id, ok := r.emailIDs[strings.ToLower(email)]
	if !ok {
		return nil, users.ErrNotFound
	}
	return copyUser(r.users[id]), nil
}

func (r *FakeUserRepo) Update(ctx context.Context, id string, update users.Update) (*users.User, error) {
	r.lock.Lock()
	defer r.lock.Unlock()

	user, ok := r.users[id]
	if !ok {
		return nil, users.ErrNotFound
	}

	if update.PasswordHash != nil {
		user.PasswordHash = *update.PasswordHash
	}
	if update.Role != nil {
		user.Role = *update.Role
	}
	if update.Status != nil {
		user.Status = *update.Status
	}
	user.UpdatedAt = r.nowFunc().UTC()
	return copyUser(user), nil
}

func (r *FakeUserRepo) RecordLogin(ctx context.Context, id string) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	user, ok := r.users[id]
	if !ok {
		return users.ErrNotFound
	}

	now := r.nowFunc().UTC()
	user.LastLogin = &now
	user.LoginCount++
	user.UpdatedAt = now
	return nil
}

func (r *FakeUserRepo) SetStatus(ctx context.Context, id string, status users.Status) error {
	_, err := r.Update(ctx, id, users.Update{Status: &status})
	return err
}

func (r *FakeUserRepo) SetPasswordHash(ctx context.Context, id, passwordHash string) error {
	_, err := r.Update(ctx, id, users.Update{PasswordHash: &passwordHash})
	return err
}

func (r *FakeUserRepo) EnsureAdmin(ctx context.Context, email, passwordHash string) (*users.User, error) {
	r.lock.Lock()
	defer r.lock.Unlock()

	if id, exists := r.emailIDs[strings.ToLower(email)]; exists {
		return copyUser(r.users[id]), nil
	}

	now := r.nowFunc().UTC()
	user := &users.User{
		ID:           uuid.New().String(),
		Email:        email,
		PasswordHash: passwordHash,
		Role:         users.RoleAdmin,
		Status:       users.StatusActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	r.users[user.ID] = user
	r.emailIDs[strings.ToLower(email)] = user.ID
	return copyUser(user), nil
}

func (r *FakeUserRepo) List(ctx context.Context, offset, limit int, status *users.Status) ([]*users.User, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	list := make([]*users.User, 0, len(r.users))
	for _, u := range r.users {
		if status != nil && u.Status != *status {
			continue
		}
		list = append(list, copyUser(u))
	}

	// Newest first, id as tiebreak so pagination is stable.
	sort.Slice(list, func(i, j int) bool {
		if !list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].CreatedAt.After(list[j].CreatedAt)
		}
		return list[i].ID < list[j].ID
	})

	if offset >= len(list) {
		return []*users.User{}, nil
	}
	end := offset + limit
	if limit <= 0 || end > len(list) {
		end = len(list)
	}
	return list[offset:end], nil
}

func (r *FakeUserRepo) Count(ctx context.Context, status *users.Status) (int, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	if status == nil {
		return len(r.users), nil
	}
	n := 0
	for _, u := range r.users {
		if u.Status == *status {
			n++
		}
	}
	return n, nil
}

func (r *FakeUserRepo) Delete(ctx context.Context, id string) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	user, ok := r.users[id]
	if !ok {
		return users.ErrNotFound
	}
	delete(r.emailIDs, strings.ToLower(user.Email))
	delete(r.users, id)
	return nil
}

// copyUser shields internal state from caller mutation.
func copyUser(u *users.User) *users.User {
	cp := *u
	if u.LastLogin != nil {
		t := *u.LastLogin
		cp.LastLogin = &t
	}
	return &cp
}
