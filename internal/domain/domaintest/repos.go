// Package domaintest provides in-memory repository implementations for
// tests. The fakes mirror the store's atomicity contract: every mutating
// method holds a lock for its full read-check-write sequence, so the
// engines' concurrency properties can be exercised without a database.
package domaintest

import (
	"context"
	"sort"
	"sync"
	"time"

	"eventhub/internal/domain"
)

type EventRepo struct {
	mu      sync.Mutex
	events  map[string]*domain.Event
	regs    map[string]map[string]time.Time // eventID -> userID -> registered at
	deleted map[string]bool
}

func NewEventRepo() *EventRepo {
	return &EventRepo{
		events:  map[string]*domain.Event{},
		regs:    map[string]map[string]time.Time{},
		deleted: map[string]bool{},
	}
}

var _ domain.EventRepository = (*EventRepo)(nil)

func (f *EventRepo) snapshot(id string) *domain.Event {
	e := *f.events[id]
	e.AttendeeCount = len(f.regs[id])
	return &e
}

func (f *EventRepo) Create(_ context.Context, e *domain.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *e
	f.events[e.ID] = &cp
	f.regs[e.ID] = map[string]time.Time{}
	return nil
}

func (f *EventRepo) FindByID(_ context.Context, id string) (*domain.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.events[id]; !ok || f.deleted[id] {
		return nil, domain.ErrNotFound
	}
	return f.snapshot(id), nil
}

func (f *EventRepo) ListActive(_ context.Context) ([]domain.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Event
	for id := range f.events {
		if !f.deleted[id] {
			out = append(out, *f.snapshot(id))
		}
	}
	sortByDate(out)
	return out, nil
}

func (f *EventRepo) ListByCreator(_ context.Context, userID string) ([]domain.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Event
	for id, e := range f.events {
		if !f.deleted[id] && e.CreatorID == userID {
			out = append(out, *f.snapshot(id))
		}
	}
	sortByDate(out)
	return out, nil
}

func (f *EventRepo) ListRegisteredBy(_ context.Context, userID string) ([]domain.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Event
	for id := range f.events {
		if f.deleted[id] {
			continue
		}
		if _, ok := f.regs[id][userID]; ok {
			out = append(out, *f.snapshot(id))
		}
	}
	sortByDate(out)
	return out, nil
}

func (f *EventRepo) AttendeesOf(_ context.Context, eventIDs []string) (map[string][]domain.Attendee, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := map[string][]domain.Attendee{}
	for _, id := range eventIDs {
		for uid := range f.regs[id] {
			out[id] = append(out[id], domain.Attendee{
				ID: uid, Username: "user-" + uid, Email: uid + "@example.com",
			})
		}
	}
	return out, nil
}

func (f *EventRepo) Register(_ context.Context, eventID, userID string) (*domain.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.events[eventID]
	if !ok || f.deleted[eventID] {
		return nil, domain.ErrNotFound
	}
	if _, dup := f.regs[eventID][userID]; dup {
		return nil, domain.ErrAlreadyRegistered
	}
	if len(f.regs[eventID]) >= e.Capacity {
		return nil, domain.ErrSoldOut
	}
	f.regs[eventID][userID] = time.Now()
	return f.snapshot(eventID), nil
}

func (f *EventRepo) SoftDeleteIfEmpty(_ context.Context, eventID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.events[eventID]; !ok || f.deleted[eventID] {
		return domain.ErrNotFound
	}
	if len(f.regs[eventID]) > 0 {
		return domain.ErrHasAttendees
	}
	f.deleted[eventID] = true
	return nil
}

func (f *EventRepo) TopByAttendance(_ context.Context, n int) ([]domain.RankedEvent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var rows []domain.RankedEvent
	for id, e := range f.events {
		if f.deleted[id] {
			continue
		}
		rows = append(rows, domain.RankedEvent{
			ID: id, Name: e.Name, AttendeesCount: len(f.regs[id]), AverageRating: e.Rating,
		})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].AttendeesCount != rows[j].AttendeesCount {
			return rows[i].AttendeesCount > rows[j].AttendeesCount
		}
		if rows[i].AverageRating != rows[j].AverageRating {
			return rows[i].AverageRating > rows[j].AverageRating
		}
		return rows[i].ID < rows[j].ID
	})
	if len(rows) > n {
		rows = rows[:n]
	}
	return rows, nil
}

func (f *EventRepo) List(_ context.Context, q domain.ListEventsQuery) ([]domain.Event, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Event
	for id := range f.events {
		if f.deleted[id] && !q.WithDeleted {
			continue
		}
		out = append(out, *f.snapshot(id))
	}
	return out, int64(len(out)), nil
}

func sortByDate(events []domain.Event) {
	sort.Slice(events, func(i, j int) bool { return events[i].Date.Before(events[j].Date) })
}

type UserRepo struct {
	mu      sync.Mutex
	users   map[string]*domain.User
	deleted map[string]bool
}

func NewUserRepo() *UserRepo {
	return &UserRepo{users: map[string]*domain.User{}, deleted: map[string]bool{}}
}

var _ domain.UserRepository = (*UserRepo)(nil)

func (f *UserRepo) Create(_ context.Context, u *domain.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *u
	f.users[u.ID] = &cp
	return nil
}

func (f *UserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok || f.deleted[id] {
		return nil, domain.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *UserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for id, u := range f.users {
		if u.Email == email && !f.deleted[id] {
			cp := *u
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *UserRepo) SoftDelete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[id]; !ok || f.deleted[id] {
		return domain.ErrNotFound
	}
	f.deleted[id] = true
	return nil
}

func (f *UserRepo) List(_ context.Context, q domain.ListUsersQuery) ([]domain.User, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.User
	for id, u := range f.users {
		if f.deleted[id] && !q.WithDeleted {
			continue
		}
		out = append(out, *u)
	}
	return out, int64(len(out)), nil
}
