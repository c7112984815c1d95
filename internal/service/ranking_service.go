package service

import (
	"context"
	"fmt"
	"time"

	"eventhub/internal/core/cache"
	"eventhub/internal/domain"
)

// RankingService computes derived read-only views: capacity fill and the
// top-N leaderboard. The leaderboard is served through a short-TTL redis
// cache when one is configured.
type RankingService struct {
	events domain.EventRepository
	cache  *cache.Cache // nil disables caching
	topN   int
	ttl    time.Duration
}

func NewRankingService(events domain.EventRepository, c *cache.Cache, topN int, ttl time.Duration) *RankingService {
	if topN <= 0 {
		topN = 5
	}
	return &RankingService{events: events, cache: c, topN: topN, ttl: ttl}
}

// CapacityFill returns (attendees / capacity) * 100 for a non-deleted event.
// Capacity is validated positive at creation, so the division is safe.
func (s *RankingService) CapacityFill(ctx context.Context, eventID string) (float64, error) {
	e, err := s.events.FindByID(ctx, eventID)
	if err != nil {
		return 0, err
	}
	return float64(e.AttendeeCount) / float64(e.Capacity) * 100, nil
}

// TopEvents ranks non-deleted events by attendee count desc, then rating
// desc, then id asc for a stable order.
func (s *RankingService) TopEvents(ctx context.Context) ([]domain.RankedEvent, error) {
	if s.cache == nil {
		return s.events.TopByAttendance(ctx, s.topN)
	}
	key := fmt.Sprintf("events:top:%d", s.topN)
	out, err := cache.GetOrLoadJSON(s.cache, ctx, key, s.ttl, func(ctx context.Context) (*[]domain.RankedEvent, error) {
		rows, err := s.events.TopByAttendance(ctx, s.topN)
		if err != nil {
			return nil, err
		}
		return &rows, nil
	})
	if err != nil {
		return nil, err
	}
	if out == nil {
		return nil, nil
	}
	return *out, nil
}
