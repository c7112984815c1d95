package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	resp "eventhub/internal/transport/http/response"
)

func ok(c *gin.Context, msg string, data any) {
	c.JSON(http.StatusOK, resp.OK(msg, data))
}

func created(c *gin.Context, msg string, data any) {
	c.JSON(http.StatusCreated, resp.OK(msg, data))
}

func fail(c *gin.Context, status int, msg string) {
	c.JSON(status, resp.Error(status, msg))
}

func internal(c *gin.Context, msg string) {
	c.JSON(http.StatusInternalServerError, resp.Error(resp.CodeServerError, msg))
}
