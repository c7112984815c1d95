package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"eventhub/internal/domain"
	"eventhub/internal/service"
)

// AdminHandler is the operator surface: user search/ban and event moderation.
type AdminHandler struct {
	users  *service.UserService
	events *service.EventService
}

func NewAdminHandler(users *service.UserService, events *service.EventService) *AdminHandler {
	return &AdminHandler{users: users, events: events}
}

func (h *AdminHandler) MountAdmin(admin *gin.RouterGroup) {
	admin.GET("/users", h.ListUsers)
	admin.POST("/users/:id/ban", h.BanUser)
	admin.GET("/events", h.ListEvents)
}

type adminListQuery struct {
	Offset      int    `form:"offset,default=0"`
	Limit       int    `form:"limit,default=20"`
	Q           string `form:"q"`
	WithDeleted bool   `form:"with_deleted"`
}

func (h *AdminHandler) ListUsers(c *gin.Context) {
	var q adminListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}

	users, total, err := h.users.List(c.Request.Context(), domain.ListUsersQuery{
		Offset:      q.Offset,
		Limit:       q.Limit,
		Search:      q.Q,
		WithDeleted: q.WithDeleted,
	})
	if err != nil {
		internal(c, "list users failed")
		return
	}

	type row struct {
		ID        string    `json:"id"`
		Email     string    `json:"email"`
		Username  string    `json:"username"`
		Role      string    `json:"role"`
		CreatedAt time.Time `json:"createdAt"`
	}
	items := make([]row, 0, len(users))
	for _, u := range users {
		items = append(items, row{ID: u.ID, Email: u.Email, Username: u.Username, Role: u.Role, CreatedAt: u.CreatedAt})
	}
	ok(c, "", gin.H{"total": total, "items": items})
}

func (h *AdminHandler) BanUser(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		fail(c, http.StatusBadRequest, "missing id")
		return
	}
	err := h.users.Deactivate(c.Request.Context(), id)
	switch {
	case err == nil:
		ok(c, "", gin.H{"id": id})
	case errors.Is(err, domain.ErrNotFound):
		fail(c, http.StatusNotFound, "user not found")
	default:
		internal(c, "ban user failed")
	}
}

func (h *AdminHandler) ListEvents(c *gin.Context) {
	var q adminListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}

	events, total, err := h.events.List(c.Request.Context(), domain.ListEventsQuery{
		Offset:      q.Offset,
		Limit:       q.Limit,
		WithDeleted: q.WithDeleted,
	})
	if err != nil {
		internal(c, "list events failed")
		return
	}
	ok(c, "", gin.H{"total": total, "items": events})
}
