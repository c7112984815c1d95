package domain

import (
	"context"
	"time"

	"gorm.io/gorm"
)

// Event is a bookable event. AttendeeCount is denormalized so the capacity
// check can be a single guarded UPDATE; the registrations table is the only
// source of truth for who attends what.
type Event struct {
	ID            string         `gorm:"primaryKey;size:36" json:"id"`
	Name          string         `gorm:"size:191;not null" json:"name"`
	Description   string         `gorm:"type:text" json:"description"`
	Date          time.Time      `gorm:"index;not null" json:"date"`
	Capacity      int            `gorm:"not null" json:"capacity"`
	Price         float64        `gorm:"not null" json:"price"`
	Rating        float64        `gorm:"not null;default:0" json:"rating"`
	AttendeeCount int            `gorm:"not null;default:0" json:"attendeeCount"`
	CreatorID     string         `gorm:"size:36;index;not null" json:"creator"`
	CreatedAt     time.Time      `json:"createdAt"`
	UpdatedAt     time.Time      `json:"updatedAt"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`

	// Resolved attendee identities, populated on listing only.
	Attendees []Attendee `gorm:"-" json:"attendees,omitempty"`
}

func (Event) TableName() string { return "events" }

// Registration links a user to an event. The composite primary key doubles
// as the duplicate-registration guard.
type Registration struct {
	EventID   string    `gorm:"primaryKey;size:36" json:"eventId"`
	UserID    string    `gorm:"primaryKey;size:36" json:"userId"`
	CreatedAt time.Time `json:"createdAt"`
}

func (Registration) TableName() string { return "registrations" }

// Attendee is the identity projection exposed on event listings.
type Attendee struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// RankedEvent is the top-N aggregation row.
type RankedEvent struct {
	ID             string  `json:"id"`
	Name           string  `json:"name"`
	AttendeesCount int     `json:"attendeesCount"`
	AverageRating  float64 `json:"averageRating"`
}

// ListEventsQuery is the admin-side listing filter.
type ListEventsQuery struct {
	Offset      int
	Limit       int
	WithDeleted bool
}

type EventRepository interface {
	Create(ctx context.Context, e *Event) error
	// FindByID returns ErrNotFound for missing or soft-deleted events.
	FindByID(ctx context.Context, id string) (*Event, error)
	ListActive(ctx context.Context) ([]Event, error)
	ListByCreator(ctx context.Context, userID string) ([]Event, error)
	// ListRegisteredBy returns non-deleted events the user attends, date ascending.
	ListRegisteredBy(ctx context.Context, userID string) ([]Event, error)
	// AttendeesOf resolves attendee identities for a set of events.
	AttendeesOf(ctx context.Context, eventIDs []string) (map[string][]Attendee, error)
	// Register atomically adds userID to the event. Fails with ErrNotFound,
	// ErrAlreadyRegistered or ErrSoldOut; on success returns the updated event.
	Register(ctx context.Context, eventID, userID string) (*Event, error)
	// SoftDeleteIfEmpty marks the event deleted, guarded by a row lock so a
	// concurrent Register cannot slip in. Fails with ErrNotFound or ErrHasAttendees.
	SoftDeleteIfEmpty(ctx context.Context, eventID string) error
	// TopByAttendance ranks non-deleted events by attendee count desc,
	// rating desc, id asc.
	TopByAttendance(ctx context.Context, n int) ([]RankedEvent, error)
	List(ctx context.Context, q ListEventsQuery) ([]Event, int64, error)
}
