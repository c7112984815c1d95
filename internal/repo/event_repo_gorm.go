package repo

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"eventhub/internal/domain"
)

type EventRepo struct{ db *gorm.DB }

func NewEventRepo(db *gorm.DB) *EventRepo { return &EventRepo{db: db} }

var _ domain.EventRepository = (*EventRepo)(nil)

func (r *EventRepo) Create(ctx context.Context, e *domain.Event) error {
	if err := r.db.WithContext(ctx).Create(e).Error; err != nil {
		return fmt.Errorf("insert event: %w", err)
	}
	return nil
}

func (r *EventRepo) FindByID(ctx context.Context, id string) (*domain.Event, error) {
	var e domain.Event
	err := r.db.WithContext(ctx).First(&e, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find event by id: %w", err)
	}
	return &e, nil
}

func (r *EventRepo) ListActive(ctx context.Context) ([]domain.Event, error) {
	var events []domain.Event
	if err := r.db.WithContext(ctx).Order("date ASC").Find(&events).Error; err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	return events, nil
}

func (r *EventRepo) ListByCreator(ctx context.Context, userID string) ([]domain.Event, error) {
	var events []domain.Event
	err := r.db.WithContext(ctx).
		Where("creator_id = ?", userID).
		Order("date ASC").
		Find(&events).Error
	if err != nil {
		return nil, fmt.Errorf("list created events: %w", err)
	}
	return events, nil
}

func (r *EventRepo) ListRegisteredBy(ctx context.Context, userID string) ([]domain.Event, error) {
	var events []domain.Event
	err := r.db.WithContext(ctx).
		Joins("JOIN registrations ON registrations.event_id = events.id").
		Where("registrations.user_id = ?", userID).
		Order("events.date ASC").
		Find(&events).Error
	if err != nil {
		return nil, fmt.Errorf("list registered events: %w", err)
	}
	return events, nil
}

func (r *EventRepo) AttendeesOf(ctx context.Context, eventIDs []string) (map[string][]domain.Attendee, error) {
	if len(eventIDs) == 0 {
		return map[string][]domain.Attendee{}, nil
	}
	var rows []struct {
		EventID  string
		ID       string
		Username string
		Email    string
	}
	err := r.db.WithContext(ctx).
		Table("registrations").
		Select("registrations.event_id, users.id, users.username, users.email").
		Joins("JOIN users ON users.id = registrations.user_id").
		Where("registrations.event_id IN ?", eventIDs).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("resolve attendees: %w", err)
	}
	out := make(map[string][]domain.Attendee, len(eventIDs))
	for _, row := range rows {
		out[row.EventID] = append(out[row.EventID], domain.Attendee{
			ID: row.ID, Username: row.Username, Email: row.Email,
		})
	}
	return out, nil
}

// Register serializes concurrent attempts on the same event with a row-level
// lock, so the capacity and duplicate checks read committed state. The
// composite primary key on registrations backs up the duplicate check.
func (r *EventRepo) Register(ctx context.Context, eventID, userID string) (*domain.Event, error) {
	var out *domain.Event
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var e domain.Event
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&e, "id = ?", eventID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("lock event row: %w", err)
		}

		var dup int64
		if err := tx.Model(&domain.Registration{}).
			Where("event_id = ? AND user_id = ?", eventID, userID).
			Count(&dup).Error; err != nil {
			return fmt.Errorf("check duplicate: %w", err)
		}
		if dup > 0 {
			return domain.ErrAlreadyRegistered
		}

		if e.AttendeeCount >= e.Capacity {
			return domain.ErrSoldOut
		}

		if err := tx.Create(&domain.Registration{EventID: eventID, UserID: userID}).Error; err != nil {
			if isDupKey(err) {
				return domain.ErrAlreadyRegistered
			}
			return fmt.Errorf("insert registration: %w", err)
		}

		res := tx.Model(&domain.Event{}).
			Where("id = ? AND attendee_count < capacity", eventID).
			Update("attendee_count", gorm.Expr("attendee_count + 1"))
		if res.Error != nil {
			return fmt.Errorf("increment attendee count: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return domain.ErrSoldOut
		}

		e.AttendeeCount++
		out = &e
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *EventRepo) SoftDeleteIfEmpty(ctx context.Context, eventID string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var e domain.Event
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&e, "id = ?", eventID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("lock event row: %w", err)
		}
		if e.AttendeeCount > 0 {
			return domain.ErrHasAttendees
		}
		if err := tx.Delete(&domain.Event{}, "id = ?", eventID).Error; err != nil {
			return fmt.Errorf("soft delete event: %w", err)
		}
		return nil
	})
}

func (r *EventRepo) TopByAttendance(ctx context.Context, n int) ([]domain.RankedEvent, error) {
	var rows []domain.RankedEvent
	err := r.db.WithContext(ctx).
		Model(&domain.Event{}).
		Select("id, name, attendee_count AS attendees_count, rating AS average_rating").
		Order("attendee_count DESC, rating DESC, id ASC").
		Limit(n).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("rank events: %w", err)
	}
	return rows, nil
}

func (r *EventRepo) List(ctx context.Context, q domain.ListEventsQuery) ([]domain.Event, int64, error) {
	tx := r.db.WithContext(ctx).Model(&domain.Event{})
	if q.WithDeleted {
		tx = tx.Unscoped()
	}

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count events: %w", err)
	}

	var events []domain.Event
	if err := tx.Order("created_at DESC").Limit(q.Limit).Offset(q.Offset).Find(&events).Error; err != nil {
		return nil, 0, fmt.Errorf("list events: %w", err)
	}
	return events, total, nil
}

func isDupKey(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate") ||
		strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "unique violation")
}
