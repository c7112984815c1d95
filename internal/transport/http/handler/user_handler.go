package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"eventhub/internal/domain"
	"eventhub/internal/service"
)

type UserHandler struct {
	users *service.UserService
}

func NewUserHandler(users *service.UserService) *UserHandler {
	return &UserHandler{users: users}
}

// MountAPI attaches the public user routes under /users.
func (h *UserHandler) MountAPI(api *gin.RouterGroup) {
	g := api.Group("/users")
	g.POST("/register", h.Register)
	g.POST("/login", h.Login)
	g.PATCH("/delete/:userId", h.Deactivate)
}

func (h *UserHandler) Priority() int { return 10 }

func (h *UserHandler) Register(c *gin.Context) {
	var in struct {
		Username string `json:"username" binding:"required,max=64"`
		Email    string `json:"email"    binding:"required,email"`
		Password string `json:"password" binding:"required,min=6"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}

	err := h.users.Register(c.Request.Context(), in.Username, in.Email, in.Password)
	switch {
	case err == nil:
		created(c, "User registered successfully", nil)
	case errors.Is(err, domain.ErrEmailTaken):
		// An active account already holds this email; not an error response
		// so the client cannot probe which emails exist via status codes.
		ok(c, "Email already registered", nil)
	case errors.Is(err, domain.ErrValidation):
		fail(c, http.StatusBadRequest, err.Error())
	default:
		internal(c, "Error while registering")
	}
}

func (h *UserHandler) Login(c *gin.Context) {
	var in struct {
		Email    string `json:"email"    binding:"required,email"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}

	token, err := h.users.Login(c.Request.Context(), in.Email, in.Password)
	switch {
	case err == nil:
		ok(c, "", gin.H{"token": token})
	case errors.Is(err, domain.ErrEmailNotRegistered):
		fail(c, http.StatusBadRequest, "Email not registered")
	case errors.Is(err, domain.ErrInvalidCredentials):
		fail(c, http.StatusUnauthorized, "Invalid credentials")
	default:
		internal(c, "Error while logging in")
	}
}

func (h *UserHandler) Deactivate(c *gin.Context) {
	err := h.users.Deactivate(c.Request.Context(), c.Param("userId"))
	switch {
	case err == nil:
		ok(c, "User account deactivated successfully", nil)
	case errors.Is(err, domain.ErrNotFound):
		fail(c, http.StatusNotFound, "User not found")
	default:
		internal(c, "Error deactivating user account")
	}
}
