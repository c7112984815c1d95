package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"eventhub/internal/domain"
	"eventhub/pkg/utils"
)

var registrationOutcomes = prometheus.NewCounterVec(
	prometheus.CounterOpts{Name: "event_registrations_total", Help: "Registration attempts by outcome"},
	[]string{"outcome"},
)

func init() { prometheus.MustRegister(registrationOutcomes) }

// CreateEventInput is the validated creation payload.
type CreateEventInput struct {
	Name        string
	Description string
	Date        time.Time
	Capacity    int
	Price       float64
}

// EventService is the registration engine and cancellation policy.
type EventService struct {
	events   domain.EventRepository
	leadDays int // minimum days before the event date during which cancel is refused
}

func NewEventService(events domain.EventRepository, cancelLeadDays int) *EventService {
	return &EventService{events: events, leadDays: cancelLeadDays}
}

// Create validates and stores a new event owned by creatorID.
func (s *EventService) Create(ctx context.Context, creatorID string, in CreateEventInput) (*domain.Event, error) {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return nil, fmt.Errorf("%w: event name is required", domain.ErrValidation)
	}
	if in.Date.IsZero() {
		return nil, fmt.Errorf("%w: event date is required", domain.ErrValidation)
	}
	if in.Capacity <= 0 {
		return nil, fmt.Errorf("%w: capacity must be a positive integer", domain.ErrValidation)
	}
	if in.Price < 0 {
		return nil, fmt.Errorf("%w: price cannot be negative", domain.ErrValidation)
	}

	e := &domain.Event{
		ID:          utils.NewID(),
		Name:        in.Name,
		Description: in.Description,
		Date:        in.Date,
		Capacity:    in.Capacity,
		Price:       in.Price,
		CreatorID:   creatorID,
	}
	if err := s.events.Create(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}

// Register adds the principal to the event. Capacity and duplicate checks
// happen atomically in the store; see EventRepository.Register.
func (s *EventService) Register(ctx context.Context, eventID, principalID string) (*domain.Event, error) {
	e, err := s.events.Register(ctx, eventID, principalID)
	switch {
	case err == nil:
		registrationOutcomes.WithLabelValues("registered").Inc()
	case errors.Is(err, domain.ErrSoldOut):
		registrationOutcomes.WithLabelValues("sold_out").Inc()
	case errors.Is(err, domain.ErrAlreadyRegistered):
		registrationOutcomes.WithLabelValues("duplicate").Inc()
	}
	return e, err
}

// Cancel soft-deletes an event. Only the creator may cancel, never with
// attendees, and never within the lead-time window before the event date.
func (s *EventService) Cancel(ctx context.Context, eventID string, principal *domain.User) error {
	e, err := s.events.FindByID(ctx, eventID)
	if err != nil {
		return err
	}
	if e.CreatorID != principal.ID {
		return domain.ErrNotCreator
	}
	if e.AttendeeCount > 0 {
		return domain.ErrHasAttendees
	}
	daysUntil := time.Until(e.Date).Hours() / 24
	if daysUntil <= float64(s.leadDays) {
		return domain.ErrTooCloseToDate
	}
	// Re-checked under a row lock so a concurrent registration cannot land
	// between the check above and the delete.
	return s.events.SoftDeleteIfEmpty(ctx, eventID)
}

// ListAll returns non-deleted events with attendee identities resolved.
func (s *EventService) ListAll(ctx context.Context) ([]domain.Event, error) {
	events, err := s.events.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(events))
	for _, e := range events {
		ids = append(ids, e.ID)
	}
	attendees, err := s.events.AttendeesOf(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range events {
		events[i].Attendees = attendees[events[i].ID]
	}
	return events, nil
}

// ListCreatedBy returns the caller's own events.
func (s *EventService) ListCreatedBy(ctx context.Context, userID string) ([]domain.Event, error) {
	return s.events.ListByCreator(ctx, userID)
}

// ListRegisteredBy returns events the caller attends, date ascending.
func (s *EventService) ListRegisteredBy(ctx context.Context, userID string) ([]domain.Event, error) {
	return s.events.ListRegisteredBy(ctx, userID)
}

// List is the admin-side event listing.
func (s *EventService) List(ctx context.Context, q domain.ListEventsQuery) ([]domain.Event, int64, error) {
	if q.Limit <= 0 || q.Limit > 100 {
		q.Limit = 20
	}
	return s.events.List(ctx, q)
}
