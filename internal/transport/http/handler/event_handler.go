package handler

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"eventhub/internal/domain"
	"eventhub/internal/service"
	mdw "eventhub/internal/transport/http/middleware"
)

type EventHandler struct {
	events   *service.EventService
	ranking  *service.RankingService
	authMW   gin.HandlerFunc
	leadDays int
}

func NewEventHandler(events *service.EventService, ranking *service.RankingService, authMW gin.HandlerFunc, cancelLeadDays int) *EventHandler {
	return &EventHandler{events: events, ranking: ranking, authMW: authMW, leadDays: cancelLeadDays}
}

// MountAPI attaches the event routes under /events; all of them require auth.
func (h *EventHandler) MountAPI(api *gin.RouterGroup) {
	g := api.Group("/events")
	g.Use(h.authMW)
	g.POST("/create", h.Create)
	g.POST("/register/:eventId", h.Register)
	g.DELETE("/cancel/:eventId", h.Cancel)
	g.GET("/", h.List)
	g.GET("/created", h.ListCreated)
	g.GET("/registered", h.ListRegistered)
	g.GET("/capacity/:eventId", h.CapacityFill)
	g.GET("/top5", h.TopEvents)
}

func (h *EventHandler) Create(c *gin.Context) {
	principal, okP := mdw.Principal(c)
	if !okP {
		fail(c, http.StatusUnauthorized, "User not found")
		return
	}
	var in struct {
		Name        string    `json:"name"        binding:"required,max=191"`
		Description string    `json:"description"`
		Date        time.Time `json:"date"     binding:"required"`
		Capacity    int       `json:"capacity" binding:"required"`
		Price       float64   `json:"price"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}

	e, err := h.events.Create(c.Request.Context(), principal.ID, service.CreateEventInput{
		Name:        in.Name,
		Description: in.Description,
		Date:        in.Date,
		Capacity:    in.Capacity,
		Price:       in.Price,
	})
	switch {
	case err == nil:
		created(c, "Event created successfully", e)
	case errors.Is(err, domain.ErrValidation):
		fail(c, http.StatusBadRequest, err.Error())
	default:
		internal(c, "Error creating event")
	}
}

func (h *EventHandler) Register(c *gin.Context) {
	principal, okP := mdw.Principal(c)
	if !okP {
		fail(c, http.StatusUnauthorized, "User not found")
		return
	}

	e, err := h.events.Register(c.Request.Context(), c.Param("eventId"), principal.ID)
	switch {
	case err == nil:
		ok(c, "Registered successfully", e)
	case errors.Is(err, domain.ErrNotFound):
		fail(c, http.StatusNotFound, "Event not found")
	case errors.Is(err, domain.ErrAlreadyRegistered):
		fail(c, http.StatusBadRequest, "You have already registered for this event")
	case errors.Is(err, domain.ErrSoldOut):
		fail(c, http.StatusBadRequest, "Event is sold out")
	default:
		internal(c, "Error registering for event")
	}
}

func (h *EventHandler) Cancel(c *gin.Context) {
	principal, okP := mdw.Principal(c)
	if !okP {
		fail(c, http.StatusUnauthorized, "User not found")
		return
	}

	err := h.events.Cancel(c.Request.Context(), c.Param("eventId"), principal)
	switch {
	case err == nil:
		ok(c, "Event cancelled successfully", nil)
	case errors.Is(err, domain.ErrNotFound):
		fail(c, http.StatusNotFound, "Event not found")
	case errors.Is(err, domain.ErrNotCreator):
		fail(c, http.StatusForbidden, "Only the event creator can cancel this event")
	case errors.Is(err, domain.ErrHasAttendees):
		fail(c, http.StatusBadRequest, "Cannot cancel event with registered users")
	case errors.Is(err, domain.ErrTooCloseToDate):
		fail(c, http.StatusBadRequest, fmt.Sprintf("Cannot cancel event within %d days", h.leadDays))
	default:
		internal(c, "Error cancelling event")
	}
}

func (h *EventHandler) List(c *gin.Context) {
	events, err := h.events.ListAll(c.Request.Context())
	if err != nil {
		internal(c, "Error fetching events")
		return
	}
	ok(c, "", events)
}

func (h *EventHandler) ListCreated(c *gin.Context) {
	principal, okP := mdw.Principal(c)
	if !okP {
		fail(c, http.StatusUnauthorized, "User not found")
		return
	}
	events, err := h.events.ListCreatedBy(c.Request.Context(), principal.ID)
	if err != nil {
		internal(c, "Error fetching events")
		return
	}
	ok(c, "", events)
}

func (h *EventHandler) ListRegistered(c *gin.Context) {
	principal, okP := mdw.Principal(c)
	if !okP {
		fail(c, http.StatusUnauthorized, "User not found")
		return
	}
	events, err := h.events.ListRegisteredBy(c.Request.Context(), principal.ID)
	if err != nil {
		internal(c, "Error fetching registered events")
		return
	}
	ok(c, "", events)
}

func (h *EventHandler) CapacityFill(c *gin.Context) {
	pct, err := h.ranking.CapacityFill(c.Request.Context(), c.Param("eventId"))
	switch {
	case err == nil:
		ok(c, "", gin.H{"percentageFilled": pct})
	case errors.Is(err, domain.ErrNotFound):
		fail(c, http.StatusNotFound, "Event not found")
	default:
		internal(c, "Error calculating capacity")
	}
}

func (h *EventHandler) TopEvents(c *gin.Context) {
	rows, err := h.ranking.TopEvents(c.Request.Context())
	if err != nil {
		internal(c, "Error fetching top events")
		return
	}
	ok(c, "", rows)
}
