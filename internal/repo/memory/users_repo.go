package memory

import (
	"context"
	"sort"

	"github.com/geocoder89/kinerjahub/internal/domain/unit"
	"github.com/geocoder89/kinerjahub/internal/domain/user"
)

type UsersRepo struct {
	s *Store
}

func NewUsersRepo(s *Store) *UsersRepo {
	return &UsersRepo{s: s}
}

func (r *UsersRepo) Create(_ context.Context, in user.NewUser) (user.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, existing := range r.s.users {
		if existing.Email == in.Email {
			return user.User{}, user.ErrEmailTaken
		}
	}

	if in.UnitID != nil && !r.s.unitExists(*in.UnitID) {
		return user.User{}, unit.ErrUnknown
	}

	r.s.nextUserID++
	now := r.s.now()

	u := user.User{
		ID:           r.s.nextUserID,
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: in.PasswordHash,
		Role:         in.Role,
		UnitID:       copyInt64(in.UnitID),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	r.s.users[u.ID] = u

	return r.s.withUnitName(u), nil
}

func (r *UsersRepo) GetByID(_ context.Context, id int64) (user.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	u, ok := r.s.users[id]
	if !ok {
		return user.User{}, user.ErrNotFound
	}
	return r.s.withUnitName(u), nil
}

func (r *UsersRepo) GetByEmail(_ context.Context, email string) (user.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, u := range r.s.users {
		if u.Email == email {
			return r.s.withUnitName(u), nil
		}
	}
	return user.User{}, user.ErrNotFound
}

func (r *UsersRepo) List(_ context.Context, filter user.ListFilter) ([]user.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]user.User, 0, len(r.s.users))
	for _, u := range r.s.users {
		if filter.ID != nil && u.ID != *filter.ID {
			continue
		}
		out = append(out, r.s.withUnitName(u))
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Name == out[j].Name {
			return out[i].ID < out[j].ID
		}
		return out[i].Name < out[j].Name
	})

	return out, nil
}

func (r *UsersRepo) Update(_ context.Context, id int64, p user.Patch) (user.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	u, ok := r.s.users[id]
	if !ok {
		return user.User{}, user.ErrNotFound
	}

	if p.Email != nil && *p.Email != u.Email {
		for _, other := range r.s.users {
			if other.ID != id && other.Email == *p.Email {
				return user.User{}, user.ErrEmailTaken
			}
		}
		u.Email = *p.Email
	}

	if p.UnitID.Set {
		if p.UnitID.Value != nil && !r.s.unitExists(*p.UnitID.Value) {
			return user.User{}, unit.ErrUnknown
		}
		u.UnitID = copyInt64(p.UnitID.Value)
	}

	if p.Name != nil {
		u.Name = *p.Name
	}
	if p.PasswordHash != nil {
		u.PasswordHash = *p.PasswordHash
	}
	if p.Role != nil {
		u.Role = *p.Role
	}

	u.UpdatedAt = r.s.now()
	r.s.users[id] = u

	return r.s.withUnitName(u), nil
}

func (r *UsersRepo) Delete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.users[id]; !ok {
		return user.ErrNotFound
	}
	delete(r.s.users, id)
	return nil
}

func (s *Store) withUnitName(u user.User) user.User {
	u.UnitName = s.unitName(u.UnitID)
	return u
}

func copyInt64(v *int64) *int64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
